package sqltx_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/alexanderramin/sqltx"
	"github.com/alexanderramin/sqltx/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scopedConfig(t *testing.T) (sqltx.Config, string) {
	t.Helper()
	dsn := testutil.TempDSN(t)
	testutil.CreateSchema(t, dsn, notesDDL)
	return sqltx.Config{Driver: "sqlite", DSN: dsn}, dsn
}

func TestWithinTx_CommitOnSuccess(t *testing.T) {
	cfg, dsn := scopedConfig(t)

	err := sqltx.WithinTx(context.Background(), cfg, func(ctx context.Context, conn *sqltx.Conn) error {
		cmd := conn.SQL(`INSERT INTO notes (id, body) VALUES (?, ?)`).
			In("id", "k1").
			In("body", "v1")
		_, err := conn.Exec(ctx, cmd)
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, 1, testutil.CountRows(t, dsn, "notes"), "row should exist after commit")
}

func TestWithinTx_RollbackOnError(t *testing.T) {
	cfg, dsn := scopedConfig(t)

	err := sqltx.WithinTx(context.Background(), cfg, func(ctx context.Context, conn *sqltx.Conn) error {
		cmd := conn.SQL(`INSERT INTO notes (id, body) VALUES (?, ?)`).
			In("id", "k2").
			In("body", "v2")
		if _, err := conn.Exec(ctx, cmd); err != nil {
			return err
		}
		return fmt.Errorf("deliberate failure")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deliberate failure")

	assert.Equal(t, 0, testutil.CountRows(t, dsn, "notes"), "row should not exist after rollback")
}

func TestWithinTx_RollbackOnPanic(t *testing.T) {
	cfg, dsn := scopedConfig(t)

	assert.Panics(t, func() {
		_ = sqltx.WithinTx(context.Background(), cfg, func(ctx context.Context, conn *sqltx.Conn) error {
			cmd := conn.SQL(`INSERT INTO notes (id, body) VALUES (?, ?)`).
				In("id", "k3").
				In("body", "v3")
			_, _ = conn.Exec(ctx, cmd)
			panic("boom")
		})
	})

	assert.Equal(t, 0, testutil.CountRows(t, dsn, "notes"), "row should not exist after panic rollback")
}

func TestWithinTx_BadTarget(t *testing.T) {
	cfg := sqltx.Config{Driver: "nosuchdriver", DSN: "x"}

	err := sqltx.WithinTx(context.Background(), cfg, func(ctx context.Context, conn *sqltx.Conn) error {
		t.Fatal("callback should not run when the connection cannot open")
		return nil
	})
	require.ErrorIs(t, err, sqltx.ErrConnection)
}

func TestWithin_AutoCommit(t *testing.T) {
	cfg, dsn := scopedConfig(t)

	err := sqltx.Within(context.Background(), cfg, func(ctx context.Context, conn *sqltx.Conn) error {
		cmd := conn.SQL(`INSERT INTO notes (id, body) VALUES (?, ?)`).
			In("id", "k4").
			In("body", "v4")
		_, err := conn.Exec(ctx, cmd)
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, 1, testutil.CountRows(t, dsn, "notes"))
}

func TestWithin_ErrorStillReleases(t *testing.T) {
	cfg, dsn := scopedConfig(t)

	err := sqltx.Within(context.Background(), cfg, func(ctx context.Context, conn *sqltx.Conn) error {
		cmd := conn.SQL(`INSERT INTO notes (id, body) VALUES (?, ?)`).
			In("id", "k5").
			In("body", "v5")
		if _, err := conn.Exec(ctx, cmd); err != nil {
			return err
		}
		return fmt.Errorf("late failure")
	})
	require.Error(t, err)

	assert.Equal(t, 1, testutil.CountRows(t, dsn, "notes"),
		"auto-commit writes stay durable even when the callback errors")
}

func TestWithinTx_NamedTarget(t *testing.T) {
	dsn := testutil.TempDSN(t)
	testutil.CreateSchema(t, dsn, notesDDL)
	cfg := sqltx.Config{
		Targets: map[string]sqltx.Target{
			"reporting": {Driver: "sqlite", DSN: dsn},
		},
	}

	err := sqltx.WithinTx(context.Background(), cfg, func(ctx context.Context, conn *sqltx.Conn) error {
		cmd := conn.SQL(`INSERT INTO notes (id, body) VALUES (?, ?)`).
			In("id", "k6").
			In("body", "v6")
		_, err := conn.Exec(ctx, cmd)
		return err
	}, sqltx.WithTarget("reporting"))
	require.NoError(t, err)

	assert.Equal(t, 1, testutil.CountRows(t, dsn, "notes"))
}
