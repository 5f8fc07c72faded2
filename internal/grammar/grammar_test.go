package grammar_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nrm/internal/grammar"
	"nrm/internal/heap"
	"nrm/internal/term"
)

func init() {
	term.SetAllocator(heap.Alloc)
}

func TestParseIdentityLambda(t *testing.T) {
	got, err := grammar.ParseTerm("test", `\x. x`)
	require.Nil(t, err)
	require.True(t, term.IsLam(got))
}

func TestParseApplicationIsLeftAssociative(t *testing.T) {
	got, err := grammar.ParseTerm("test", `f x y`)
	require.Nil(t, err)
	// (f x) y
	require.True(t, term.IsApp(got))
	require.True(t, term.IsApp(got.L))
}

func TestParseSemicolonStartsRightSubapplication(t *testing.T) {
	// "(f x; g y)" means "f x (g y)"
	got, err := grammar.ParseTerm("test", `(f x; g y)`)
	require.Nil(t, err)
	require.True(t, term.IsApp(got))
	require.True(t, term.IsApp(got.R))
}

func TestParseReservedCombinators(t *testing.T) {
	got, err := grammar.ParseTerm("test", `S K I`)
	require.Nil(t, err)
	require.Equal(t, term.TS, got.L.L.Tag)
	require.Equal(t, term.TK, got.L.R.Tag)
	require.Equal(t, term.TI, got.R.Tag)
}

func TestParsePlusDesugarsToEagerTwo(t *testing.T) {
	got, err := grammar.ParseTerm("test", `+ 2 3`)
	require.Nil(t, err)
	require.Equal(t, term.TEager, got.L.L.L.Tag)
	require.Equal(t, term.TAddI, got.L.L.R.Tag)
	require.Equal(t, int64(2), got.L.R.I)
	require.Equal(t, int64(3), got.R.I)
}

func TestParseIfDesugarsToEagerOneIfte(t *testing.T) {
	got, err := grammar.ParseTerm("test", `if (> 3 2) 10 20`)
	require.Nil(t, err)
	require.Equal(t, term.TEager, got.L.L.L.L.Tag)
	require.Equal(t, 1, got.L.L.L.L.N)
	require.Equal(t, term.TIfte, got.L.L.L.R.Tag)
}

func TestParseIntegerLiteral(t *testing.T) {
	got, err := grammar.ParseTerm("test", `42`)
	require.Nil(t, err)
	require.Equal(t, term.TInt, got.Tag)
	require.Equal(t, int64(42), got.I)
}

func TestParseErrorReportsPosition(t *testing.T) {
	_, err := grammar.ParseTerm("test", `\x x`)
	require.NotNil(t, err)
	require.Equal(t, "test", err.Position.Filename)
}

func TestParseCommandDefine(t *testing.T) {
	cmd, err := grammar.ParseCommand("repl", ":define double \\x. + x x")
	require.Nil(t, err)
	require.NotNil(t, cmd.Define)
	require.Equal(t, `\x. + x x`, cmd.Define.Text)
}

func TestParseCommandQuit(t *testing.T) {
	cmd, err := grammar.ParseCommand("repl", ":quit")
	require.Nil(t, err)
	require.True(t, cmd.Quit)
}

func TestParseCommandBareExpr(t *testing.T) {
	cmd, err := grammar.ParseCommand("repl", "+ 1 2")
	require.Nil(t, err)
	require.NotNil(t, cmd.Repl)
}
