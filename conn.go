package sqltx

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Conn owns a single database connection and at most one transaction on
// it. The zero value is not usable; construct with New, establish the
// connection with Open or Begin, run commands, then Close. After Close
// the same Conn may be reopened.
//
// Conn is not safe for concurrent use. Each goroutine should construct
// its own, or callers must serialize access externally.
type Conn struct {
	id      string
	target  Target
	profile profile
	timeout time.Duration
	log     *slog.Logger
	metrics *Metrics

	db *sql.DB
	tx *sql.Tx
}

type options struct {
	target string
}

// Option adjusts construction of a Conn.
type Option func(*options)

// WithTarget selects a named target from the configuration. A ref that
// names no configured target is taken as a raw DSN for the configured
// driver.
func WithTarget(ref string) Option {
	return func(o *options) { o.target = ref }
}

// New builds an unopened Conn from cfg. No I/O happens here; the
// connection is established by Open or Begin.
func New(cfg Config, opts ...Option) (*Conn, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	target, err := cfg.resolveTarget(o.target)
	if err != nil {
		return nil, err
	}

	return &Conn{
		id:      uuid.NewString(),
		target:  target,
		profile: profileFor(target.Driver),
		timeout: cfg.commandTimeout(),
		log:     cfg.logger(),
		metrics: cfg.Metrics,
	}, nil
}

// Target reports the resolved driver and DSN this connection uses.
func (c *Conn) Target() Target { return c.target }

// InTx reports whether a transaction is currently active.
func (c *Conn) InTx() bool { return c.tx != nil }

// Open establishes the connection without a transaction. Commands run
// in auto-commit mode until Close.
func (c *Conn) Open(ctx context.Context) error { return c.open(ctx, false) }

// Begin establishes the connection and starts a transaction on it. All
// commands then run inside that transaction until Commit or Close. A
// Conn holds at most one transaction: calling Begin or Open while the
// connection is already open is an error.
func (c *Conn) Begin(ctx context.Context) error { return c.open(ctx, true) }

func (c *Conn) open(ctx context.Context, withTx bool) error {
	if c.db != nil {
		return fmt.Errorf("%w: already open", ErrConnection)
	}

	db, err := sql.Open(c.target.Driver, c.target.DSN)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}
	// One underlying connection, held for the whole open lifetime.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}

	if withTx {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			db.Close()
			return fmt.Errorf("%w: begin: %w", ErrTransaction, err)
		}
		c.tx = tx
	}
	c.db = db

	c.metrics.connOpened()
	c.log.Debug("connection opened",
		"conn_id", c.id, "driver", c.target.Driver, "tx", withTx)
	return nil
}

// Commit commits the active transaction. When the connection is closed
// or no transaction is active it does nothing, so it is safe to call
// unconditionally ahead of Close.
func (c *Conn) Commit() error {
	if c.db == nil || c.tx == nil {
		return nil
	}
	if err := c.tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrTransaction, err)
	}
	c.tx = nil

	c.metrics.txFinished(TxCommitted)
	c.log.Debug("transaction committed", "conn_id", c.id)
	return nil
}

// Close releases the connection. An uncommitted transaction is rolled
// back first. Close is idempotent and safe to call on a Conn that was
// never opened; afterwards the Conn may be reopened with Open or Begin.
func (c *Conn) Close() error {
	if c.db == nil {
		return nil
	}
	if c.tx != nil {
		if err := c.tx.Rollback(); err == nil {
			c.metrics.txFinished(TxRolledBack)
			c.log.Debug("transaction rolled back", "conn_id", c.id)
		}
		c.tx = nil
	}

	err := c.db.Close()
	c.db = nil
	c.log.Debug("connection closed", "conn_id", c.id)
	if err != nil {
		return fmt.Errorf("sqltx: closing connection: %w", err)
	}
	return nil
}

// StoredProc builds a command that invokes a stored procedure by name.
func (c *Conn) StoredProc(name string) *Command {
	return &Command{kind: kindStoredProc, text: name}
}

// SQL builds a command from literal statement text. Placeholders in the
// text follow the driver's own syntax.
func (c *Conn) SQL(query string) *Command {
	return &Command{kind: kindText, text: query}
}

// Exec runs cmd and returns the number of rows affected. An execution
// failure does not touch the transaction: an active transaction stays
// active, and only Commit or Close finish it.
func (c *Conn) Exec(ctx context.Context, cmd *Command) (int64, error) {
	if c.db == nil {
		return 0, ErrNotOpen
	}
	ctx, cancel := c.commandContext(ctx, cmd)
	defer cancel()

	query := cmd.statement(c.profile)
	start := time.Now()
	var (
		res sql.Result
		err error
	)
	if c.tx != nil {
		res, err = c.tx.ExecContext(ctx, query, cmd.args()...)
	} else {
		res, err = c.db.ExecContext(ctx, query, cmd.args()...)
	}
	c.observe(opExec, start, err)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecution, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: rows affected: %w", ErrExecution, err)
	}
	return n, nil
}

// Rows is a caller-owned result cursor. The caller must close it;
// closing also releases the command timeout attached to the query.
type Rows struct {
	*sql.Rows
	cancel context.CancelFunc
}

// Close closes the cursor and releases its resources.
func (r *Rows) Close() error {
	err := r.Rows.Close()
	r.cancel()
	return err
}

// Query runs cmd and returns its result cursor. The cursor belongs to
// the caller and stays open across later operations on the connection;
// whether it survives Close of the connection itself is up to the
// driver.
func (c *Conn) Query(ctx context.Context, cmd *Command) (*Rows, error) {
	if c.db == nil {
		return nil, ErrNotOpen
	}
	ctx, cancel := c.commandContext(ctx, cmd)

	query := cmd.statement(c.profile)
	start := time.Now()
	var (
		rows *sql.Rows
		err  error
	)
	if c.tx != nil {
		rows, err = c.tx.QueryContext(ctx, query, cmd.args()...)
	} else {
		rows, err = c.db.QueryContext(ctx, query, cmd.args()...)
	}
	c.observe(opQuery, start, err)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %w", ErrExecution, err)
	}
	return &Rows{Rows: rows, cancel: cancel}, nil
}

// Scalar runs cmd and returns the first column of the first row, or nil
// when the result set is empty.
func (c *Conn) Scalar(ctx context.Context, cmd *Command) (any, error) {
	rows, err := c.Query(ctx, cmd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrExecution, err)
		}
		return nil, nil
	}
	var v any
	if err := rows.Scan(&v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecution, err)
	}
	return v, nil
}

// commandContext applies the effective timeout for cmd: the command's
// own override when set, otherwise the connection default.
func (c *Conn) commandContext(ctx context.Context, cmd *Command) (context.Context, context.CancelFunc) {
	d := c.timeout
	switch {
	case cmd.timeout > 0:
		d = cmd.timeout
	case cmd.timeout < 0:
		d = 0
	}
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

func (c *Conn) observe(op string, start time.Time, err error) {
	status := statusOK
	if err != nil {
		status = statusError
	}
	c.metrics.command(op, status, time.Since(start))
}
