// Package sqltx wraps database/sql with single-connection, single-
// transaction lifecycle management.
//
// # Overview
//
// A Conn owns one database connection and at most one transaction on
// it. The lifecycle is explicit: construct with New (no I/O), establish
// with Open or Begin, run commands, then Commit and Close. Close always
// releases the connection and rolls back whatever was not committed, so
// a deferred Close is the whole cleanup story. A closed Conn may be
// reopened.
//
// Commands carry their parameters. Build them from a Conn, bind inputs
// and outputs by name, execute, and read values back:
//
//	conn, err := sqltx.New(cfg)
//	if err != nil {
//	    return err
//	}
//	if err := conn.Begin(ctx); err != nil {
//	    return err
//	}
//	defer conn.Close()
//
//	cmd := conn.SQL("UPDATE accounts SET balance = balance - ? WHERE id = ?").
//	    In("amount", 100).
//	    In("id", 42)
//	if _, err := conn.Exec(ctx, cmd); err != nil {
//	    return err
//	}
//	return conn.Commit()
//
// For the common scope-per-operation shape, WithinTx and Within bundle
// construction, open, commit and close around a callback.
//
// # Errors
//
// Failures carry one of the package sentinels (ErrConnection,
// ErrTransaction, ErrExecution, ErrConversion, ErrNotOpen) and wrap the
// driver's error, so callers can branch with errors.Is and still see
// the cause. A failed command never rolls back the transaction on its
// own; the transaction ends only through Commit or Close.
//
// # Drivers
//
// The sqlite (modernc.org/sqlite) and pgx drivers are linked in. Any
// other database/sql driver works once registered; name it in the
// Target for the connection.
package sqltx
