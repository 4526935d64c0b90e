package sqltx

import (
	"database/sql"
	"fmt"
	"time"
)

type commandKind int

const (
	kindStoredProc commandKind = iota
	kindText
)

// Command describes one statement to run: either a stored procedure
// reference or literal SQL text, plus its parameters. Build one with
// Conn.StoredProc or Conn.SQL, add parameters, then pass it to Exec,
// Query or Scalar.
//
// Parameters bind positionally in registration order. Names are not
// sent to the driver; they exist so values can be read back with Param
// after execution.
type Command struct {
	kind    commandKind
	text    string
	params  []*param
	timeout time.Duration
}

type paramDirection int

const (
	paramIn paramDirection = iota
	paramOut
	paramInOut
)

// param is one bound parameter. Output and input/output parameters
// carry a destination the driver writes into during execution.
type param struct {
	name  string
	dir   paramDirection
	value any
	dest  *any
}

// In registers an input parameter. Returns the command for chaining.
func (c *Command) In(name string, value any) *Command {
	c.params = append(c.params, &param{name: name, dir: paramIn, value: value})
	return c
}

// Out registers an output parameter. Its value is available through
// Param once the command has executed on a driver that supports output
// parameters.
func (c *Command) Out(name string) *Command {
	c.params = append(c.params, &param{name: name, dir: paramOut, dest: new(any)})
	return c
}

// InOut registers a parameter that carries value in and receives a
// value back. Param returns the input value until execution overwrites
// it.
func (c *Command) InOut(name string, value any) *Command {
	dest := new(any)
	*dest = value
	c.params = append(c.params, &param{name: name, dir: paramInOut, value: value, dest: dest})
	return c
}

// WithTimeout overrides the connection's command timeout for this
// command. Zero keeps the connection default; negative disables the
// bound.
func (c *Command) WithTimeout(d time.Duration) *Command {
	c.timeout = d
	return c
}

// Param reads back the value bound to a parameter. For input parameters
// this is the registered value; for output and input/output parameters
// it is whatever the driver wrote during execution.
func (c *Command) Param(name string) (any, error) {
	for _, p := range c.params {
		if p.name != name {
			continue
		}
		if p.dest != nil {
			return *p.dest, nil
		}
		return p.value, nil
	}
	return nil, fmt.Errorf("sqltx: no parameter named %q", name)
}

// statement renders the SQL to send to the driver.
func (c *Command) statement(p profile) string {
	if c.kind == kindStoredProc {
		return p.callStatement(c.text, len(c.params))
	}
	return c.text
}

// args assembles the driver arguments in registration order. Output
// directions are expressed with sql.Out; drivers without output
// parameter support reject them at execution time.
func (c *Command) args() []any {
	out := make([]any, 0, len(c.params))
	for _, p := range c.params {
		switch p.dir {
		case paramOut:
			out = append(out, sql.Out{Dest: p.dest})
		case paramInOut:
			out = append(out, sql.Out{Dest: p.dest, In: true})
		default:
			out = append(out, p.value)
		}
	}
	return out
}
