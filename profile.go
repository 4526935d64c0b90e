package sqltx

import (
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver
)

// placeholderStyle selects how positional parameters are written into
// generated statements.
type placeholderStyle int

const (
	placeholderQuestion placeholderStyle = iota // ?
	placeholderDollar                           // $1, $2, ...
	placeholderAt                               // @p1, @p2, ...
)

// profile captures the few per-driver differences needed to render a
// stored procedure invocation. Statement text supplied by the caller is
// never rewritten.
type profile struct {
	placeholders placeholderStyle
}

// profileFor maps a database/sql driver name to its profile. Unknown
// drivers get question-mark placeholders, the most widely accepted form.
func profileFor(driver string) profile {
	switch driver {
	case "pgx", "postgres":
		return profile{placeholders: placeholderDollar}
	case "sqlserver", "mssql":
		return profile{placeholders: placeholderAt}
	}
	return profile{placeholders: placeholderQuestion}
}

func (p profile) placeholder(i int) string {
	switch p.placeholders {
	case placeholderDollar:
		return "$" + strconv.Itoa(i+1)
	case placeholderAt:
		return "@p" + strconv.Itoa(i+1)
	}
	return "?"
}

// callStatement renders the invocation of a stored procedure with n
// positional parameters, e.g. CALL create_user($1, $2). Whether the
// engine supports CALL is the engine's own business: a driver that does
// not will reject the statement at execution time.
func (p profile) callStatement(name string, n int) string {
	var b strings.Builder
	b.WriteString("CALL ")
	b.WriteString(name)
	b.WriteString("(")
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.placeholder(i))
	}
	b.WriteString(")")
	return b.String()
}
