package sqltx

import "context"

// TxFunc is the body of a scoped transaction. It receives an open Conn
// with an active transaction.
type TxFunc func(ctx context.Context, conn *Conn) error

// ConnFunc is the body of a scoped connection without a transaction.
type ConnFunc func(ctx context.Context, conn *Conn) error

// WithinTx runs fn inside one connection-plus-transaction scope: it
// builds a Conn from cfg, begins a transaction, and commits when fn
// returns nil. On any other path out, including a panic in fn, the
// deferred Close rolls the transaction back and releases the
// connection.
func WithinTx(ctx context.Context, cfg Config, fn TxFunc, opts ...Option) error {
	conn, err := New(cfg, opts...)
	if err != nil {
		return err
	}
	if err := conn.Begin(ctx); err != nil {
		return err
	}
	defer conn.Close()

	if err := fn(ctx, conn); err != nil {
		return err
	}
	return conn.Commit()
}

// Within runs fn with an open connection in auto-commit mode, closing
// it on every path out.
func Within(ctx context.Context, cfg Config, fn ConnFunc, opts ...Option) error {
	conn, err := New(cfg, opts...)
	if err != nil {
		return err
	}
	if err := conn.Open(ctx); err != nil {
		return err
	}
	defer conn.Close()

	return fn(ctx, conn)
}
