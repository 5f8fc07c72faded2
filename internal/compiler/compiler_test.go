package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nrm/internal/compiler"
	"nrm/internal/heap"
	"nrm/internal/symbol"
	"nrm/internal/term"
)

func init() {
	term.SetAllocator(heap.Alloc)
}

func compileOpt(t term.Ref) term.Ref {
	return compiler.Optimize(compiler.CompileSKI(t))
}

func TestIdentityCompilesToI(t *testing.T) {
	x := symbol.New("x")
	lam := term.Lam(x, term.Var(x))
	require.True(t, term.Equal(compileOpt(lam), term.I))
}

func TestConstCompilesToK(t *testing.T) {
	x, y := symbol.New("x"), symbol.New("y")
	lam := term.Lam(x, term.Lam(y, term.Var(x)))
	require.True(t, term.Equal(compileOpt(lam), term.K))
}

func TestSCombinatorShape(t *testing.T) {
	f, g, x := symbol.New("f"), symbol.New("g"), symbol.New("x")
	// \f g x. f x (g x)
	body := term.App(term.App(term.Var(f), term.Var(x)), term.App(term.Var(g), term.Var(x)))
	lam := term.Lam(f, term.Lam(g, term.Lam(x, body)))
	require.True(t, term.Equal(compileOpt(lam), term.S))
}

func TestOptimizerIsIdempotent(t *testing.T) {
	x := symbol.New("x")
	// \x. + (1 x)  (manually built: App(App(E2,AddI), App(1, x)))
	lam := term.Lam(x, term.App(term.App(term.Eager(2), term.AddI), term.App(term.Int(1), term.Var(x))))
	once := compileOpt(lam)
	twice := compiler.Optimize(once)
	// structural (deep) equality: Optimize rebuilds App nodes, so the two
	// trees never share child pointers
	require.Equal(t, once, twice)
}

func TestOptimizeSKpI(t *testing.T) {
	// S (K p) I = p
	p := term.Int(7)
	e := term.App(term.App(term.S, term.App(term.K, p)), term.I)
	require.True(t, term.Equal(compiler.Optimize(e), p))
}

func TestOptimizeSKpKq(t *testing.T) {
	// S (K p) (K q) = K (p q)
	p, q := term.I, term.K
	e := term.App(term.App(term.S, term.App(term.K, p)), term.App(term.K, q))
	got := compiler.Optimize(e)
	want := term.App(term.K, term.App(p, q))
	require.True(t, term.Equal(got.R, want.R))
	require.Equal(t, term.TK, got.L.Tag)
}

func TestOptimizeSKpBqr(t *testing.T) {
	// S (K p) (B q r) = B* p q r
	p, q, r := term.I, term.K, term.S
	e := term.App(term.App(term.S, term.App(term.K, p)), term.App(term.App(term.B, q), r))
	got := compiler.Optimize(e)
	// B* p q r curries as App(App(App(Bs,p),q),r)
	require.Equal(t, term.Bs, got.L.L.L)
	require.Equal(t, p, got.L.L.R)
	require.Equal(t, q, got.L.R)
	require.Equal(t, r, got.R)
}

func TestIsFreeIn(t *testing.T) {
	x, y := symbol.New("free-in-x"), symbol.New("free-in-y")
	require.True(t, compiler.IsFreeIn(x, term.Var(x)))
	require.False(t, compiler.IsFreeIn(x, term.Var(y)))
	require.False(t, compiler.IsFreeIn(x, term.Lam(x, term.Var(x))))
	require.True(t, compiler.IsFreeIn(x, term.App(term.Var(x), term.Var(y))))
}
