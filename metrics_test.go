package sqltx_test

import (
	"context"
	"testing"

	"github.com/alexanderramin/sqltx"
	"github.com/alexanderramin/sqltx/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordLifecycle(t *testing.T) {
	dsn := testutil.TempDSN(t)
	testutil.CreateSchema(t, dsn, notesDDL)

	m := sqltx.NewMetrics(prometheus.NewRegistry())
	conn, err := sqltx.New(sqltx.Config{Driver: "sqlite", DSN: dsn, Metrics: m})
	require.NoError(t, err)
	ctx := context.Background()

	// Committed transaction carrying one successful and one failed command.
	require.NoError(t, conn.Begin(ctx))
	_, err = conn.Exec(ctx, conn.SQL(`INSERT INTO notes (id, body) VALUES ('a', 'x')`))
	require.NoError(t, err)
	_, err = conn.Exec(ctx, conn.SQL(`INSERT INTO missing_table (x) VALUES (1)`))
	require.Error(t, err)
	require.NoError(t, conn.Commit())
	require.NoError(t, conn.Close())

	// Abandoned transaction rolls back on close.
	require.NoError(t, conn.Begin(ctx))
	require.NoError(t, conn.Close())

	assert.Equal(t, 2.0, promtestutil.ToFloat64(m.ConnectionsOpened))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.Transactions.WithLabelValues(sqltx.TxCommitted)))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.Transactions.WithLabelValues(sqltx.TxRolledBack)))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.Commands.WithLabelValues("exec", "ok")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.Commands.WithLabelValues("exec", "error")))
}

func TestMetrics_QueryCounted(t *testing.T) {
	dsn := testutil.TempDSN(t)
	testutil.CreateSchema(t, dsn, notesDDL)

	m := sqltx.NewMetrics(prometheus.NewRegistry())
	conn, err := sqltx.New(sqltx.Config{Driver: "sqlite", DSN: dsn, Metrics: m})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	ctx := context.Background()
	require.NoError(t, conn.Open(ctx))

	rows, err := conn.Query(ctx, conn.SQL(`SELECT id FROM notes`))
	require.NoError(t, err)
	require.NoError(t, rows.Close())

	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.Commands.WithLabelValues("query", "ok")))
}

func TestNewMetrics_NilRegistry(t *testing.T) {
	assert.Nil(t, sqltx.NewMetrics(nil))
}
