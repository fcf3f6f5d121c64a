package bindexpr

import (
	"io"
	"math/big"
	"strconv"
	"strings"
)

// BindVariable sets the value of a variable, replacing any previous value. The
// value is copied at the expression's precision and must not be nil. If the
// expression does not use the variable, the result is an
// *UndefinedVariableError.
func (e *Expr) BindVariable(name string, val *big.Float) error {
	v := e.syms.vars[name]
	if v == nil {
		return &UndefinedVariableError{Name: name}
	}
	if v.val == nil {
		v.val = new(big.Float).SetPrec(e.cfg.prec)
	}
	v.val.Set(val)
	return nil
}

// BindFunction sets the function called for every call of name with arity
// arguments, replacing any previous function. fn must not be nil. If the
// expression has no such call, the result is an *UndefinedFunctionError. If fn
// cannot be called with arity arguments, the result is an *ArityError.
func (e *Expr) BindFunction(name string, arity int, fn Func) error {
	sig := Signature{Name: name, Arity: arity}
	f := e.syms.funcs[sig]
	if f == nil {
		return &UndefinedFunctionError{Sig: sig}
	}
	if !fn.CanCall(arity) {
		return &ArityError{Sig: sig}
	}
	f.fn = fn
	return nil
}

// BindDefaults binds the built-in function for each signature the expression
// uses which has one. Signatures without built-ins are left as they are.
func (e *Expr) BindDefaults() {
	for _, f := range e.syms.flist {
		if fn := builtins[f.sig]; fn != nil {
			f.fn = fn
		}
	}
}

// Validate checks that every variable and function in the expression is bound.
// Variables are checked before functions, each in order of first appearance.
func (e *Expr) Validate() error {
	if e.valid {
		return nil
	}
	for _, v := range e.syms.vlist {
		if v.val == nil {
			return &UninitializedVariableError{Name: v.name}
		}
	}
	for _, f := range e.syms.flist {
		if f.fn == nil {
			return &UninitializedFunctionError{Sig: f.sig}
		}
	}
	e.valid = true
	return nil
}

// Evaluate validates the expression, then evaluates it with the current
// bindings and returns a new value holding the result.
func (e *Expr) Evaluate() (*big.Float, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	// Discard anything left from an evaluation that failed partway.
	e.stack = e.stack[:0]
	if err := e.n.eval(e); err != nil {
		return nil, err
	}
	if len(e.stack) != 1 {
		panic("bindexpr: inconsistent stack: " + strconv.Itoa(len(e.stack)) + " items (bad AST?)")
	}
	return new(big.Float).Copy(e.stack[0]), nil
}

// Vars returns the sorted names of the variables the expression uses.
func (e *Expr) Vars() []string {
	return e.syms.names()
}

// Funcs returns the signatures of the functions the expression calls, sorted
// by name and then arity.
func (e *Expr) Funcs() []Signature {
	return e.syms.sigs()
}

// Prec returns the precision to which values are computed.
func (e *Expr) Prec() uint {
	return e.cfg.prec
}

// String creates a string representation of the expression, with alternating
// round and square brackets grouping each term.
func (e *Expr) String() string {
	var b strings.Builder
	e.n.fmt(&b, false)
	return b.String()
}

// Describe renders the expression tree with one node per line, each indented
// two spaces per level below the root.
func (e *Expr) Describe() string {
	var b strings.Builder
	e.n.describe(&b, 0)
	return b.String()
}

// Clone creates a copy of the expression with its own binding slots. The copy
// starts with the same bindings as e.
func (e *Expr) Clone() *Expr {
	c := Expr{
		syms:  newSymbols(),
		cfg:   e.cfg,
		valid: e.valid,
	}
	c.n = e.n.clone(c.syms)
	for _, v := range e.syms.vlist {
		if v.val != nil {
			c.syms.vars[v.name].val = new(big.Float).Copy(v.val)
		}
	}
	for _, f := range e.syms.flist {
		c.syms.funcs[f.sig].fn = f.fn
	}
	return &c
}

// clone copies the tree rooted at n, registering its symbols in syms in the
// same order that parsing did.
func (n *node) clone(syms *symbols) *node {
	m := &node{kind: n.kind, name: n.name, num: n.num}
	switch n.kind {
	case nodeNum:
		// Literals are never modified.
	case nodeName:
		m.v = syms.variable(n.name)
	case nodeCall:
		if n.args != nil {
			m.args = make([]*node, len(n.args))
			for i, a := range n.args {
				m.args[i] = a.clone(syms)
			}
		}
		m.fn = syms.function(n.name, m.args)
	case nodeNeg:
		m.left = n.left.clone(syms)
	case nodeAdd, nodeSub, nodeMul, nodeDiv:
		m.left = n.left.clone(syms)
		m.right = n.right.clone(syms)
	default:
		panic("bindexpr: invalid AST node " + n.kind.String())
	}
	return m
}

// push ensures a settable value on the stack.
func (e *Expr) push() *big.Float {
	if len(e.stack) < cap(e.stack) {
		e.stack = e.stack[:len(e.stack)+1]
		v := e.stack[len(e.stack)-1]
		if v == nil {
			v = new(big.Float)
			e.stack[len(e.stack)-1] = v
		}
		// Funcs may change the precision of their results.
		return v.SetPrec(e.cfg.prec)
	}
	e.stack = append(e.stack, new(big.Float).SetPrec(e.cfg.prec))
	return e.stack[len(e.stack)-1]
}

// pop removes the top from the stack and returns it. The returned value may be
// modified by future node evaluations.
func (e *Expr) pop() *big.Float {
	r := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	return r
}

// top is a shortcut to get the top element of the stack.
func (e *Expr) top() *big.Float {
	return e.stack[len(e.stack)-1]
}

// eval pushes the node's value to the expression's stack.
func (n *node) eval(e *Expr) error {
	switch n.kind {
	case nodeNum:
		e.push().Set(n.num)
	case nodeName:
		if n.v.val == nil {
			panic("bindexpr: unbound variable " + strconv.Quote(n.name) + " after validation")
		}
		e.push().Set(n.v.val)
	case nodeCall:
		if n.fn.fn == nil {
			panic("bindexpr: unbound function " + n.fn.sig.String() + " after validation")
		}
		r := e.push()
		k := len(e.stack)
		for _, a := range n.args {
			if err := a.eval(e); err != nil {
				return err
			}
		}
		invoc := e.stack[k:len(e.stack):len(e.stack)]
		if err := n.fn.fn.Call(invoc, r); err != nil {
			return &CallError{Sig: n.fn.sig, Err: err}
		}
		e.stack = e.stack[:k]
	case nodeNeg:
		if err := n.left.eval(e); err != nil {
			return err
		}
		v := e.top()
		v.Neg(v)
	case nodeAdd, nodeSub, nodeMul, nodeDiv:
		if err := n.left.eval(e); err != nil {
			return err
		}
		if err := n.right.eval(e); err != nil {
			return err
		}
		r := e.pop()
		l := e.top()
		return arith(n.kind, l, r, e.cfg.nonfinite)
	default:
		panic("bindexpr: invalid AST node " + n.kind.String())
	}
	return nil
}

// arith sets l to l op r.
func arith(op nodeKind, l, r *big.Float, nonfinite bool) (err error) {
	switch op {
	case nodeAdd:
		defer recoverNaN(&err, "+", r)
		l.Add(l, r)
	case nodeSub:
		defer recoverNaN(&err, "-", r)
		l.Sub(l, r)
	case nodeMul:
		// Mul clears l before it panics, so choose the infinite operand now.
		x := r
		if l.IsInf() {
			x = new(big.Float).Copy(l)
		}
		defer recoverNaN(&err, "*", x)
		l.Mul(l, r)
	case nodeDiv:
		switch {
		case r.Sign() == 0 && !nonfinite:
			return &DivisionByZeroError{X: new(big.Float).Copy(l), Y: new(big.Float).Copy(r)}
		case r.Sign() == 0 && l.Sign() == 0, l.IsInf() && r.IsInf():
			return &DomainError{X: new(big.Float).Copy(r), Func: "/"}
		case l.IsInf() && !nonfinite:
			return &DivisionByZeroError{X: new(big.Float).Copy(l), Y: new(big.Float).Copy(r)}
		}
		l.Quo(l, r)
	default:
		panic("bindexpr: invalid arithmetic node " + op.String())
	}
	return nil
}

// Eval is a shortcut to compile an expression with no variables, bind the
// built-in functions, and evaluate it.
func Eval(src io.RuneScanner, opts ...ParseOption) (*big.Float, error) {
	e, err := Parse(src, opts...)
	if err != nil {
		return nil, err
	}
	e.BindDefaults()
	return e.Evaluate()
}

// EvalString is a shortcut to compile and evaluate a string expression.
func EvalString(src string, opts ...ParseOption) (*big.Float, error) {
	return Eval(strings.NewReader(src), opts...)
}

// UndefinedVariableError is an error from binding a variable that the
// expression does not use.
type UndefinedVariableError struct {
	// Name is the name that was bound.
	Name string
}

func (err *UndefinedVariableError) Error() string {
	return "undefined variable: " + strconv.Quote(err.Name)
}

// UndefinedFunctionError is an error from binding a function signature that
// the expression does not call.
type UndefinedFunctionError struct {
	// Sig is the signature that was bound.
	Sig Signature
}

func (err *UndefinedFunctionError) Error() string {
	return "undefined function: " + err.Sig.String()
}

// ArityError is an error from binding a Func that cannot be called with the
// number of arguments of the signature it was bound to.
type ArityError struct {
	// Sig is the signature that was bound.
	Sig Signature
}

func (err *ArityError) Error() string {
	return "cannot call function bound to " + err.Sig.Name + " with " + strconv.Itoa(err.Sig.Arity) + " arguments"
}

// UninitializedVariableError is an error from evaluating an expression
// before binding one of its variables.
type UninitializedVariableError struct {
	// Name is the unbound variable.
	Name string
}

func (err *UninitializedVariableError) Error() string {
	return "uninitialized variable: " + strconv.Quote(err.Name)
}

// UninitializedFunctionError is an error from evaluating an expression
// before binding one of its functions.
type UninitializedFunctionError struct {
	// Sig is the unbound signature.
	Sig Signature
}

func (err *UninitializedFunctionError) Error() string {
	return "uninitialized function: " + err.Sig.String()
}

// DivisionByZeroError is an error from a division that would produce an
// infinite result, which is either division by zero or division of an
// infinity. Expressions compiled with AllowNonFinite do not return it.
type DivisionByZeroError struct {
	// X is the dividend.
	X *big.Float
	// Y is the divisor.
	Y *big.Float
}

func (err *DivisionByZeroError) Error() string {
	if err.Y == nil || err.Y.Sign() == 0 {
		return "division by zero: " + err.X.String() + " / 0"
	}
	return "non-finite quotient: " + err.X.String() + " / " + err.Y.String()
}

// CallError wraps an error returned by a bound Func.
type CallError struct {
	// Sig is the signature of the call that failed.
	Sig Signature
	// Err is the error from the Func.
	Err error
}

func (err *CallError) Error() string {
	return "calling " + err.Sig.String() + ": " + err.Err.Error()
}

func (err *CallError) Unwrap() error {
	return err.Err
}
