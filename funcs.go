package bindexpr

import (
	"errors"
	"math/big"
	"strconv"

	"github.com/zephyrtronium/bigfloat"
)

// Func is a function from reals to reals that can be bound to the calls of an
// expression.
type Func interface {
	// Call evaluates the function. The function arguments are passed in
	// invoc, in the order they appear in the expression. The function must
	// set r to its result and should not use the value of r otherwise. invoc
	// has a length for which CanCall returned true. Call may modify the
	// elements of invoc.
	Call(invoc []*big.Float, r *big.Float) error

	// CanCall returns whether the function can be called with n arguments.
	// Binding a Func to a signature whose arity it cannot be called with
	// fails with an *ArityError.
	CanCall(n int) bool
}

// recoverNaN converts a big.ErrNaN panic into a *DomainError naming fn. Any
// other panic continues.
func recoverNaN(err *error, fn string, x *big.Float) {
	r := recover()
	if r == nil {
		return
	}
	e, ok := r.(error)
	if !ok {
		panic(r)
	}
	var de *DomainError
	if errors.As(e, &de) {
		*err = de
		return
	}
	if errors.As(e, new(big.ErrNaN)) {
		*err = &DomainError{X: new(big.Float).Copy(x), Func: fn}
		return
	}
	panic(r)
}

type niladic struct {
	f func(out *big.Float) *big.Float
}

func (n niladic) Call(invoc []*big.Float, r *big.Float) error {
	n.f(r)
	return nil
}

func (n niladic) CanCall(k int) bool {
	return k == 0
}

// Niladic wraps a function of zero variables, generally a function which
// computes a constant, into a Func. f must set out to its result; its return
// value is always ignored. The wrapped function is expected never to panic.
func Niladic(f func(out *big.Float) *big.Float) Func {
	return niladic{f}
}

type monadic struct {
	f func(out, in *big.Float) *big.Float
}

func (m monadic) Call(invoc []*big.Float, r *big.Float) (err error) {
	in := invoc[0]
	defer recoverNaN(&err, "", in)
	m.f(r, in)
	return nil
}

func (m monadic) CanCall(n int) bool {
	return n == 1
}

// Monadic wraps a function of one variable into a Func. f must set out to its
// result; its return value is always ignored. If f is called on an argument
// outside f's domain, it should panic with an error of type big.ErrNaN or
// *DomainError, or that unwraps to either.
func Monadic(f func(out, in *big.Float) *big.Float) Func {
	return monadic{f}
}

type dyadic struct {
	f func(out, x, y *big.Float) *big.Float
}

func (d dyadic) Call(invoc []*big.Float, r *big.Float) (err error) {
	defer recoverNaN(&err, "", invoc[1])
	d.f(r, invoc[0], invoc[1])
	return nil
}

func (d dyadic) CanCall(n int) bool {
	return n == 2
}

// Dyadic wraps a function of two variables into a Func, with the same
// conventions as Monadic.
func Dyadic(f func(out, x, y *big.Float) *big.Float) Func {
	return dyadic{f}
}

type fixed struct {
	n int
	f func(out *big.Float, args []*big.Float) error
}

func (f fixed) Call(invoc []*big.Float, r *big.Float) error {
	return f.f(r, invoc)
}

func (f fixed) CanCall(n int) bool {
	return n == f.n
}

// FuncN wraps a function of exactly n variables into a Func. f must set out to
// its result.
func FuncN(n int, f func(out *big.Float, args []*big.Float) error) Func {
	return fixed{n: n, f: f}
}

var builtins = map[Signature]Func{
	{"exp", 1}: Monadic(bigfloat.Exp),
	{"ln", 1}: Monadic(func(out, in *big.Float) *big.Float {
		if in.Sign() < 0 {
			panic(&DomainError{X: new(big.Float).Copy(in), Arg: 1, Func: "ln"})
		}
		return bigfloat.Log(out, in)
	}),
	{"log", 1}: Monadic(func(out, in *big.Float) *big.Float {
		if in.Sign() < 0 {
			panic(&DomainError{X: new(big.Float).Copy(in), Arg: 1, Func: "log"})
		}
		bigfloat.Log(out, in)
		in.SetFloat64(10).SetPrec(out.Prec())
		bigfloat.Log(in, in)
		return out.Quo(out, in)
	}),
	{"log", 2}: Dyadic(func(out, x, b *big.Float) *big.Float {
		if x.Sign() < 0 {
			panic(&DomainError{X: new(big.Float).Copy(x), Arg: 1, Func: "log"})
		}
		if b.Sign() <= 0 || b.Cmp(big.NewFloat(1)) == 0 {
			panic(&DomainError{X: new(big.Float).Copy(b), Arg: 2, Func: "log"})
		}
		bigfloat.Log(out, x)
		bigfloat.Log(b, b)
		return out.Quo(out, b)
	}),
	{"sqrt", 1}: Monadic(func(out, in *big.Float) *big.Float {
		if in.Sign() < 0 {
			panic(&DomainError{X: new(big.Float).Copy(in), Arg: 1, Func: "sqrt"})
		}
		return out.Sqrt(in)
	}),
	{"pow", 2}: Dyadic(func(out, x, y *big.Float) *big.Float {
		if x.Sign() == 0 {
			switch y.Sign() {
			case 0:
				return out.SetInt64(1)
			case -1:
				panic(&DomainError{X: new(big.Float).Copy(y), Arg: 2, Func: "pow"})
			}
			return out.SetInt64(0)
		}
		// TODO: allow negative base with integer exponent
		if x.Sign() < 0 {
			panic(&DomainError{X: new(big.Float).Copy(x), Arg: 1, Func: "pow"})
		}
		return bigfloat.Pow(out, x, y)
	}),

	// constants
	{"pi", 0}: Niladic(bigfloat.Pi),
	{"e", 0}: Niladic(func(out *big.Float) *big.Float {
		var one big.Float
		one.SetFloat64(1)
		return bigfloat.Exp(out, &one)
	}),
}

// Builtins returns a copy of the functions that BindDefaults binds.
func Builtins() map[Signature]Func {
	m := make(map[Signature]Func, len(builtins))
	for k, v := range builtins {
		m[k] = v
	}
	return m
}

// DomainError is an error returned when a function is called on arguments
// outside its domain.
type DomainError struct {
	// X is the out-of-domain argument.
	X *big.Float
	// Arg is the 1-based index of the argument, or 0 if unknown.
	Arg int
	// Func is a name identifying the function or operator.
	Func string
}

func (err *DomainError) Error() string {
	r := err.X.String() + " outside domain"
	if err.Func != "" {
		r += " of " + err.Func
	}
	if err.Arg > 0 {
		r += " (argument " + strconv.Itoa(err.Arg) + ")"
	}
	return r
}
