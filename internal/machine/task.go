// Package machine implements the stack-based combinator reduction
// machine: per-task call frames, the per-combinator rewrite steps, and
// eager-forcing primitives.
package machine

import (
	"fmt"

	"nrm/internal/compiler"
	"nrm/internal/errors"
	"nrm/internal/symbol"
	"nrm/internal/term"
)

// Dictionary resolves free variables during reduction. internal/dict
// implements this; machine depends only on the interface so that the
// reduction machine and the dictionary can each be tested without the
// other.
type Dictionary interface {
	Lookup(symbol.Symb) (term.Ref, bool)
}

// RuntimeError wraps a task-fatal diagnostic. A task that returns a
// RuntimeError from Eval is dropped by the caller; it must never poison
// the worker or the pool.
type RuntimeError struct {
	Diagnostic errors.Diagnostic
}

func (e *RuntimeError) Error() string { return e.Diagnostic.Message }

// Task is a self-contained reducer state.
type Task struct {
	with  term.Ref
	stack []term.Ref
	len   int
	frame []int
	ret   term.Ref // nil means "empty"
}

// NewTask creates a task focused on t, with empty stack/frame/ret.
func NewTask(t term.Ref) *Task {
	return &Task{with: t}
}

// With exposes the currently-focused term, mainly for GC relocation and
// debug printing.
func (t *Task) With() term.Ref { return t.with }

// SetWith overwrites the focused term — used by the collector when
// relocating a task onto fresh pages.
func (t *Task) SetWith(v term.Ref) { t.with = v }

// Stack exposes the raw argument/frame spine for GC relocation.
func (t *Task) Stack() []term.Ref { return t.stack }

// SetStackEntry overwrites one relocated stack slot.
func (t *Task) SetStackEntry(i int, v term.Ref) { t.stack[i] = v }

// Ret exposes the pending return value, if any, for GC relocation.
func (t *Task) Ret() (term.Ref, bool) {
	if t.ret == nil {
		return nil, false
	}
	return t.ret, true
}

// SetRet overwrites the relocated pending return value.
func (t *Task) SetRet(v term.Ref) { t.ret = v }

func (t *Task) push(v term.Ref) {
	t.stack = append(t.stack, v)
	t.len++
}

func (t *Task) pop() term.Ref {
	if t.len == 0 {
		panic("machine: pop from an empty frame")
	}
	t.len--
	last := t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
	return last
}

// call begins a nested eager evaluation of v: the current focus is saved
// on the stack as the value slot retn() will later replace.
func (t *Task) call(v term.Ref) {
	t.stack = append(t.stack, t.with)
	t.frame = append(t.frame, t.len+1)
	t.with = v
	t.len = 0
}

// retn re-applies the current frame's pending arguments to with, stores
// the result in ret, and restores the caller's with/len.
func (t *Task) retn() {
	result := t.with
	for i := 0; i < t.len; i++ {
		result = term.App(result, t.stack[len(t.stack)-1])
		t.stack = t.stack[:len(t.stack)-1]
	}
	if t.ret != nil {
		panic("machine: retn with a result already pending")
	}
	t.ret = result
	t.with = t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
	t.frame, t.len = t.frame[:len(t.frame)-1], t.frame[len(t.frame)-1]-1
}

// rewindIfShort performs the rewind contract: if the current frame has
// fewer than n pending arguments, retn() instead of stepping normally.
func (t *Task) rewindIfShort(n int) bool {
	if t.len < n {
		t.retn()
		return true
	}
	return false
}

func (t *Task) reserve1() term.Ref { return t.pop() }
func (t *Task) reserve2() (term.Ref, term.Ref) {
	x := t.pop()
	y := t.pop()
	return x, y
}
func (t *Task) reserve3() (term.Ref, term.Ref, term.Ref) {
	x := t.pop()
	y := t.pop()
	z := t.pop()
	return x, y, z
}
func (t *Task) reserve4() (term.Ref, term.Ref, term.Ref, term.Ref) {
	w := t.pop()
	x := t.pop()
	y := t.pop()
	z := t.pop()
	return w, x, y, z
}

// eager implements the E(n) family: forces the n+1-th-from-top argument
// to head normal, then continues the chain down to E(n-1).
func (t *Task) eager(n int) {
	if t.rewindIfShort(n + 1) {
		return
	}
	slot := len(t.stack) - 1 - n
	if t.ret == nil {
		t.call(t.stack[slot])
		return
	}
	t.stack[slot] = t.ret
	t.ret = nil
	if n == 1 {
		t.with = t.pop()
	} else {
		t.with = term.Eager(n - 1)
	}
}

func intOp(name string, x, y term.Ref) (term.Ref, *RuntimeError) {
	if x.Tag != term.TInt || y.Tag != term.TInt {
		return nil, &RuntimeError{errors.TypeMismatch(name, "non-integer operand")}
	}
	switch name {
	case "+":
		return term.Int(x.I + y.I), nil
	case "-":
		return term.Int(x.I - y.I), nil
	case "*":
		return term.Int(x.I * y.I), nil
	case "/":
		if y.I == 0 {
			return nil, &RuntimeError{errors.DivideByZero()}
		}
		return term.Int(x.I / y.I), nil
	case ">":
		return term.Bool(x.I > y.I), nil
	case "<":
		return term.Bool(x.I < y.I), nil
	case "=":
		return term.Bool(x.I == y.I), nil
	}
	panic("machine: unknown int op " + name)
}

// Step consumes with and either advances to a new with or performs retn.
// It is the unit of work that timeslice accounting counts: one Step is
// one reduction step.
func (t *Task) Step(dict Dictionary) (result term.Ref, done bool, err *RuntimeError) {
	w := t.with
	switch w.Tag {
	case term.TVar:
		v, ok := dict.Lookup(w.X)
		if !ok {
			return nil, false, &RuntimeError{errors.UnboundSymbol(symbol.Name(w.X))}
		}
		t.with = v

	case term.TLam:
		t.with = compiler.CompileSKI(w)

	case term.TApp:
		t.push(w.R)
		t.with = w.L

	case term.TI:
		if t.rewindIfShort(1) {
			return nil, false, nil
		}
		t.with = t.reserve1()

	case term.TK:
		if t.rewindIfShort(2) {
			return nil, false, nil
		}
		c, _ := t.reserve2()
		t.with = c

	case term.TS:
		if t.rewindIfShort(3) {
			return nil, false, nil
		}
		f, g, x := t.reserve3()
		t.push(term.App(g, x))
		t.push(x)
		t.with = f

	case term.TB:
		if t.rewindIfShort(3) {
			return nil, false, nil
		}
		f, g, x := t.reserve3()
		t.push(term.App(g, x))
		t.with = f

	case term.TC:
		if t.rewindIfShort(3) {
			return nil, false, nil
		}
		f, g, x := t.reserve3()
		t.push(g)
		t.push(x)
		t.with = f

	case term.TSp:
		if t.rewindIfShort(4) {
			return nil, false, nil
		}
		c, f, g, x := t.reserve4()
		t.push(term.App(g, x))
		t.push(term.App(f, x))
		t.with = c

	case term.TBs:
		if t.rewindIfShort(4) {
			return nil, false, nil
		}
		c, f, g, x := t.reserve4()
		t.push(term.App(g, x))
		t.push(f)
		t.with = c

	case term.TCp:
		if t.rewindIfShort(4) {
			return nil, false, nil
		}
		c, f, g, x := t.reserve4()
		t.push(g)
		t.push(term.App(f, x))
		t.with = c

	case term.TEager:
		t.eager(w.N)

	case term.TAddI, term.TSubI, term.TMulI, term.TDivI, term.TGrtI, term.TLssI, term.TEqlI:
		if t.rewindIfShort(2) {
			return nil, false, nil
		}
		x, y := t.reserve2()
		res, rerr := intOp(intOpName[w.Tag], x, y)
		if rerr != nil {
			return nil, false, rerr
		}
		t.with = res

	case term.TNot:
		if t.rewindIfShort(1) {
			return nil, false, nil
		}
		x := t.reserve1()
		if x.Tag != term.TBool {
			return nil, false, &RuntimeError{errors.TypeMismatch("not", "non-boolean operand")}
		}
		t.with = term.Bool(!x.B)

	case term.TAnd, term.TOr:
		if t.rewindIfShort(2) {
			return nil, false, nil
		}
		x, y := t.reserve2()
		if x.Tag != term.TBool || y.Tag != term.TBool {
			return nil, false, &RuntimeError{errors.TypeMismatch("and/or", "non-boolean operand")}
		}
		if w.Tag == term.TAnd {
			t.with = term.Bool(x.B && y.B)
		} else {
			t.with = term.Bool(x.B || y.B)
		}

	case term.TIfte:
		if t.rewindIfShort(3) {
			return nil, false, nil
		}
		p, a, b := t.reserve3()
		if p.Tag != term.TBool {
			return nil, false, &RuntimeError{errors.TypeMismatch("if", "non-boolean condition")}
		}
		if p.B {
			t.with = a
		} else {
			t.with = b
		}

	case term.TInt, term.TBool, term.TChar, term.TReal:
		if t.len != 0 {
			return nil, false, &RuntimeError{errors.NotAFunction(w.String())}
		}
		if len(t.frame) == 0 {
			return w, true, nil
		}
		t.retn()

	default:
		return nil, false, &RuntimeError{errors.UnknownTerm(fmt.Sprintf("%v", w))}
	}
	return nil, false, nil
}

var intOpName = map[term.Tag]string{
	term.TAddI: "+", term.TSubI: "-", term.TMulI: "*", term.TDivI: "/",
	term.TGrtI: ">", term.TLssI: "<", term.TEqlI: "=",
}

// Eval runs up to timeslice steps, returning the literal result when the
// task completes, nil with done=false when the budget expires, and a
// RuntimeError when a task-fatal condition is hit.
func (t *Task) Eval(dict Dictionary, timeslice int) (result term.Ref, done bool, err *RuntimeError) {
	if timeslice <= 0 {
		panic("machine: timeslice must be positive")
	}
	for i := 0; i < timeslice; i++ {
		result, done, err = t.Step(dict)
		if done || err != nil {
			return result, done, err
		}
	}
	return nil, false, nil
}
