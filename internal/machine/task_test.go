package machine_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nrm/internal/compiler"
	"nrm/internal/heap"
	"nrm/internal/machine"
	"nrm/internal/symbol"
	"nrm/internal/term"
)

func init() {
	term.SetAllocator(heap.Alloc)
}

// emptyDict never resolves any symbol; scenarios below only need
// combinators/literals/primitives, no free variables.
type emptyDict struct{}

func (emptyDict) Lookup(symbol.Symb) (term.Ref, bool) { return nil, false }

func run(t *testing.T, start term.Ref) (term.Ref, *machine.RuntimeError) {
	task := machine.NewTask(start)
	for {
		res, done, err := task.Eval(emptyDict{}, 1024)
		if err != nil {
			return nil, err
		}
		if done {
			return res, nil
		}
	}
}

func TestAddTwoThree(t *testing.T) {
	// + 2 3 = E2 AddI 2 3
	e := term.App(term.App(term.App(term.Eager(2), term.AddI), term.Int(2)), term.Int(3))
	res, err := run(t, e)
	require.Nil(t, err)
	require.Equal(t, int64(5), res.I)
}

func TestIfteScenarios(t *testing.T) {
	mk := func(condTrue bool) term.Ref {
		var cond term.Ref
		if condTrue {
			cond = term.App(term.App(term.App(term.Eager(2), term.GrtI), term.Int(3)), term.Int(2))
		} else {
			cond = term.App(term.App(term.App(term.Eager(2), term.EqlI), term.Int(1)), term.Int(2))
		}
		return term.App(term.App(term.App(term.App(term.Eager(1), term.Ifte), cond), term.Int(10)), term.Int(20))
	}

	res, err := run(t, mk(true))
	require.Nil(t, err)
	require.Equal(t, int64(10), res.I)

	res, err = run(t, mk(false))
	require.Nil(t, err)
	require.Equal(t, int64(20), res.I)
}

func TestDoubleAppliedToInt(t *testing.T) {
	x := symbol.New("x")
	// (\x. + x x) 7
	lam := term.Lam(x, term.App(term.App(term.App(term.Eager(2), term.AddI), term.Var(x)), term.Var(x)))
	compiled := compiler.Optimize(compiler.CompileSKI(lam))
	e := term.App(compiled, term.Int(7))
	res, err := run(t, e)
	require.Nil(t, err)
	require.Equal(t, int64(14), res.I)
}

func TestTwiceApplication(t *testing.T) {
	f, y, x := symbol.New("f"), symbol.New("y"), symbol.New("x")
	// (\f x. f (f x)) (\y. + y 1) 5
	twice := term.Lam(f, term.Lam(x, term.App(term.Var(f), term.App(term.Var(f), term.Var(x)))))
	succ := term.Lam(y, term.App(term.App(term.App(term.Eager(2), term.AddI), term.Var(y)), term.Int(1)))
	twiceC := compiler.Optimize(compiler.CompileSKI(twice))
	succC := compiler.Optimize(compiler.CompileSKI(succ))
	e := term.App(term.App(twiceC, succC), term.Int(5))
	res, err := run(t, e)
	require.Nil(t, err)
	require.Equal(t, int64(7), res.I)
}

func TestSPrimeReducesToLiteral(t *testing.T) {
	// S (B p q) r = S' p q r, so S' p q r x = p (q x) (r x). r must itself
	// be an application (else Optimize never reaches the S' case), so use
	// I I — reduces to I, same as I alone, just built from an App node.
	// p = + (as E2 AddI), q = I, r = I I, x = 3: + (I 3) ((I I) 3) = 3 + 3 = 6.
	p := term.App(term.Eager(2), term.AddI)
	q := term.I
	r := term.App(term.I, term.I)
	raw := term.App(term.App(term.S, term.App(term.App(term.B, p), q)), r)
	opt := compiler.Optimize(raw)
	require.Equal(t, term.Sp, opt.L.L.L)

	e := term.App(opt, term.Int(3))
	res, err := run(t, e)
	require.Nil(t, err)
	require.Equal(t, int64(6), res.I)
}

func TestBStarReducesToLiteral(t *testing.T) {
	// S (K p) (B q r) = B* p q r, so B* p q r x = p q (r x).
	// p = + (as E2 AddI), q = 3, r = I, x = 4: + 3 (I 4) = 3 + 4 = 7.
	p := term.App(term.Eager(2), term.AddI)
	q := term.Int(3)
	r := term.I
	raw := term.App(term.App(term.S, term.App(term.K, p)), term.App(term.App(term.B, q), r))
	opt := compiler.Optimize(raw)
	require.Equal(t, term.Bs, opt.L.L.L)

	e := term.App(opt, term.Int(4))
	res, err := run(t, e)
	require.Nil(t, err)
	require.Equal(t, int64(7), res.I)
}

func TestCPrimeReducesToLiteral(t *testing.T) {
	// S (B p q) (K r) = C' p q r, so C' p q r x = p (q x) r.
	// p = + (as E2 AddI), q = I, r = 4, x = 3: + (I 3) 4 = 3 + 4 = 7.
	p := term.App(term.Eager(2), term.AddI)
	q := term.I
	r := term.Int(4)
	raw := term.App(term.App(term.S, term.App(term.App(term.B, p), q)), term.App(term.K, r))
	opt := compiler.Optimize(raw)
	require.Equal(t, term.Cp, opt.L.L.L)

	e := term.App(opt, term.Int(3))
	res, err := run(t, e)
	require.Nil(t, err)
	require.Equal(t, int64(7), res.I)
}

func TestDivideByZero(t *testing.T) {
	e := term.App(term.App(term.App(term.Eager(2), term.DivI), term.Int(10)), term.Int(0))
	_, err := run(t, e)
	require.NotNil(t, err)
	require.Equal(t, "division by zero", err.Error())
}

func TestFrameBalanceOnCompletion(t *testing.T) {
	e := term.App(term.App(term.App(term.Eager(2), term.AddI), term.Int(2)), term.Int(3))
	task := machine.NewTask(e)
	res, done, err := task.Eval(emptyDict{}, 1024)
	require.Nil(t, err)
	require.True(t, done)
	require.Equal(t, int64(5), res.I)
	require.Empty(t, task.Stack())
	_, hasRet := task.Ret()
	require.False(t, hasRet)
}

func TestUnboundSymbolFails(t *testing.T) {
	x := symbol.New("unbound-test-symbol")
	_, err := run(t, term.Var(x))
	require.NotNil(t, err)
}

func TestNotAFunctionOnSaturatedLiteral(t *testing.T) {
	e := term.App(term.Int(1), term.Int(2))
	_, err := run(t, e)
	require.NotNil(t, err)
}
