package sqltx

import "errors"

var (
	// ErrConnection indicates the underlying database connection could not
	// be opened (unknown driver, bad target, network or auth failure).
	ErrConnection = errors.New("sqltx: opening connection failed")

	// ErrTransaction indicates a transaction could not be started or
	// committed by the driver.
	ErrTransaction = errors.New("sqltx: transaction failed")

	// ErrExecution indicates a command failed at the driver level. The
	// enclosing transaction, if any, is left as-is: rollback happens only
	// when the connection is closed.
	ErrExecution = errors.New("sqltx: command execution failed")

	// ErrConversion indicates a parameter value could not be converted to
	// the requested Go type.
	ErrConversion = errors.New("sqltx: parameter value conversion failed")

	// ErrNotOpen indicates an operation that requires an open connection
	// was invoked before Open/Begin or after Close.
	ErrNotOpen = errors.New("sqltx: connection not open")
)
