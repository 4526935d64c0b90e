package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTable(t *testing.T) {
	out := RenderTable(
		[]string{"NAME", "DRIVER"},
		[][]string{
			{"main", "sqlite"},
			{"reporting", "pgx"},
		},
	)

	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "DRIVER")
	assert.Contains(t, out, "main")
	assert.Contains(t, out, "reporting")
	assert.Contains(t, out, "─")

	// Header, separator, and one line per row.
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
}

func TestRenderTable_ColumnsAlign(t *testing.T) {
	out := RenderTable(
		[]string{"A", "B"},
		[][]string{
			{"short", "x1"},
			{"considerably longer", "y2"},
		},
	)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	xCol := strings.Index(lines[2], "x1")
	yCol := strings.Index(lines[3], "y2")
	assert.Equal(t, xCol, yCol, "second column should start at the same offset in every row")
}

func TestRenderTable_RaggedRow(t *testing.T) {
	out := RenderTable(
		[]string{"A", "B", "C"},
		[][]string{{"only"}},
	)
	assert.Contains(t, out, "only")
}

func TestRenderTable_NoHeaders(t *testing.T) {
	assert.Empty(t, RenderTable(nil, [][]string{{"x"}}))
}
