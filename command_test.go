package sqltx

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommand_StatementRendering(t *testing.T) {
	conn := &Conn{profile: profileFor("sqlite")}

	text := conn.SQL(`SELECT 1`)
	assert.Equal(t, `SELECT 1`, text.statement(conn.profile))

	proc := conn.StoredProc("refresh_totals").In("day", "2024-01-01").Out("count")
	assert.Equal(t, `CALL refresh_totals(?, ?)`, proc.statement(conn.profile))
}

func TestCommand_ArgsPreserveOrderAndDirection(t *testing.T) {
	cmd := (&Conn{}).StoredProc("f").
		In("a", 1).
		Out("b").
		InOut("c", "seed")

	args := cmd.args()
	require.Len(t, args, 3)
	assert.Equal(t, 1, args[0])

	out, ok := args[1].(sql.Out)
	require.True(t, ok)
	assert.False(t, out.In)

	inout, ok := args[2].(sql.Out)
	require.True(t, ok)
	assert.True(t, inout.In)
	assert.Equal(t, "seed", *(inout.Dest.(*any)))
}

func TestCommand_ParamReadback(t *testing.T) {
	cmd := (&Conn{}).StoredProc("f").
		In("a", 42).
		Out("b").
		InOut("c", "seed")

	v, err := cmd.Param("a")
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	v, err = cmd.Param("b")
	require.NoError(t, err)
	assert.Nil(t, v, "output parameter should be empty before execution")

	v, err = cmd.Param("c")
	require.NoError(t, err)
	assert.Equal(t, "seed", v, "input/output parameter should read as its input before execution")
}

func TestCommand_ParamAfterDriverWrite(t *testing.T) {
	cmd := (&Conn{}).StoredProc("f").Out("total")

	// The driver writes through sql.Out.Dest during execution.
	out := cmd.args()[0].(sql.Out)
	*(out.Dest.(*any)) = int64(7)

	v, err := cmd.Param("total")
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)
}

func TestCommand_ParamUnknownName(t *testing.T) {
	cmd := (&Conn{}).SQL(`SELECT 1`).In("a", 1)

	_, err := cmd.Param("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no parameter named")
}

func TestCommand_TimeoutOverride(t *testing.T) {
	conn := &Conn{timeout: 5 * time.Second}

	base := conn.SQL(`SELECT 1`)
	ctx, cancel := conn.commandContext(context.Background(), base)
	defer cancel()
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(5*time.Second), deadline, time.Second)

	longer := conn.SQL(`SELECT 1`).WithTimeout(time.Minute)
	ctx, cancel = conn.commandContext(context.Background(), longer)
	defer cancel()
	deadline, ok = ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, time.Second)

	unbounded := conn.SQL(`SELECT 1`).WithTimeout(-1)
	ctx, cancel = conn.commandContext(context.Background(), unbounded)
	defer cancel()
	_, ok = ctx.Deadline()
	assert.False(t, ok, "negative timeout should disable the bound")
}
