package infer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nrm/internal/heap"
	"nrm/internal/infer"
	"nrm/internal/symbol"
	"nrm/internal/term"
)

func init() {
	term.SetAllocator(heap.Alloc)
}

func TestInferIdentityIsPolymorphic(t *testing.T) {
	x := symbol.New("x")
	id := term.Lam(x, term.Var(x))

	sc, err := infer.InferType(id)
	require.Nil(t, err)
	require.Equal(t, "forall a. a -> a", sc.String())
}

func TestInferIntLiteral(t *testing.T) {
	sc, err := infer.InferType(term.Int(42))
	require.Nil(t, err)
	require.Equal(t, "Int", sc.String())
}

func TestInferAdditionIsIntArrowIntArrowInt(t *testing.T) {
	plus := term.App(term.Eager(2), term.AddI)
	sc, err := infer.InferType(plus)
	require.Nil(t, err)
	require.Equal(t, "Int -> Int -> Int", sc.String())
}

func TestInferAppliedAdditionIsInt(t *testing.T) {
	e := term.App(term.App(term.App(term.Eager(2), term.AddI), term.Int(2)), term.Int(3))
	sc, err := infer.InferType(e)
	require.Nil(t, err)
	require.Equal(t, "Int", sc.String())
}

func TestInferIfteIsPolymorphicOverItsBranches(t *testing.T) {
	ifte := term.App(term.Eager(1), term.Ifte)
	sc, err := infer.InferType(ifte)
	require.Nil(t, err)
	require.Equal(t, "forall a. Bool -> a -> a -> a", sc.String())
}

func TestInferAppliedIfteUnifiesBranchTypes(t *testing.T) {
	e := term.App(term.App(term.App(
		term.App(term.Eager(1), term.Ifte), term.Bool(true)), term.Int(1)), term.Int(2))
	sc, err := infer.InferType(e)
	require.Nil(t, err)
	require.Equal(t, "Int", sc.String())
}

func TestInferMismatchedIfteBranchesFails(t *testing.T) {
	e := term.App(term.App(term.App(
		term.App(term.Eager(1), term.Ifte), term.Bool(true)), term.Int(1)), term.Bool(false))
	_, err := infer.InferType(e)
	require.NotNil(t, err)
}

func TestInferUnboundVariableFails(t *testing.T) {
	_, err := infer.InferType(term.Var(symbol.New("nowhere")))
	require.NotNil(t, err)
}

func TestInferSelfAdditionFunction(t *testing.T) {
	x := symbol.New("x")
	double := term.Lam(x, term.App(term.App(term.App(term.Eager(2), term.AddI), term.Var(x)), term.Var(x)))
	sc, err := infer.InferType(double)
	require.Nil(t, err)
	require.Equal(t, "Int -> Int", sc.String())
}

func TestInferNestedLambdaShadowing(t *testing.T) {
	x := symbol.New("x")
	e := term.Lam(x, term.Lam(x, term.Var(x)))
	sc, err := infer.InferType(e)
	require.Nil(t, err)
	require.Equal(t, "forall a b. a -> b -> b", sc.String())
}
