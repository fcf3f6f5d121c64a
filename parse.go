package bindexpr

import (
	"io"
	"math/big"
	"strings"
)

// Expr = Term { ('+' | '-') Term }
// Term = Atom { ('*' | '/') Atom }
// Atom = num | ident | Call | '-' Atom | '(' Expr ')'
// Call = ident '(' [ Expr { ',' Expr } ] ')'

// Expr is a compiled expression. Bind every variable and function it uses,
// then evaluate it as many times as needed. An Expr is not safe for concurrent
// use; callers must not bind while another goroutine evaluates.
type Expr struct {
	// n is the root node of the expression.
	n *node
	// syms holds the binding slots of the expression's variables and
	// functions.
	syms *symbols
	// cfg holds the options the expression was compiled with.
	cfg parsectx
	// valid is set once every symbol has been bound. Bindings cannot be
	// removed, so it is never cleared.
	valid bool
	// stack is reused between evaluations.
	stack []*big.Float
}

// parser holds the state of a single compilation.
type parser struct {
	cur  *cursor
	syms *symbols
	cfg  parsectx
}

// Parse compiles an expression, reading until the end of src. The given
// options are applied in order.
func Parse(src io.RuneScanner, opts ...ParseOption) (*Expr, error) {
	p := parser{
		cur:  newCursor(src),
		syms: newSymbols(),
		cfg:  parsectx{prec: DefaultPrec},
	}
	for _, opt := range opts {
		p.cfg = opt.parseOption(p.cfg)
	}
	n, err := parseterm(&p, exprprec)
	if err != nil {
		return nil, err
	}
	if err := p.cur.skipSpace(); err != nil {
		return nil, err
	}
	r, err := p.cur.peek()
	switch {
	case err == io.EOF: // done
	case err != nil:
		return nil, err
	default:
		return nil, &SyntaxError{Col: p.cur.pos(), Text: string(r), Want: "operator or end of input"}
	}
	ex := Expr{
		n:    n,
		syms: p.syms,
		cfg:  p.cfg,
	}
	return &ex, nil
}

// Compile compiles an expression from a string.
func Compile(src string, opts ...ParseOption) (*Expr, error) {
	return Parse(strings.NewReader(src), opts...)
}

// parseterm parses atoms joined by binary operators at least as binding as
// until. Operators of equal precedence associate to the left.
func parseterm(p *parser, until int8) (*node, error) {
	n, err := parseatom(p)
	if err != nil {
		return nil, err
	}
	for {
		if err := p.cur.skipSpace(); err != nil {
			return nil, err
		}
		r, err := p.cur.peek()
		if err != nil {
			if err == io.EOF {
				return n, nil
			}
			return nil, err
		}
		op := binop(r)
		if op.op == nodeNone || op.prec < until {
			return n, nil
		}
		p.cur.advance()
		rhs, err := parseterm(p, op.prec+1)
		if err != nil {
			return nil, err
		}
		n = &node{kind: op.op, left: n, right: rhs}
	}
}

// parseatom parses a number, variable, call, negation, or bracketed
// subexpression.
func parseatom(p *parser) (*node, error) {
	if err := p.cur.skipSpace(); err != nil {
		return nil, err
	}
	r, err := p.cur.peek()
	if err != nil {
		return nil, p.unexpected(err, "expression")
	}
	switch {
	case isDigit(r), r == '.':
		return parsenum(p)
	case isLetter(r):
		return parseident(p)
	case r == '-':
		// Unary minus binds to one atom: -a*b is (-a)*b.
		p.cur.advance()
		x, err := parseatom(p)
		if err != nil {
			return nil, err
		}
		return &node{kind: nodeNeg, left: x}, nil
	case r == '(':
		p.cur.advance()
		n, err := parseterm(p, exprprec)
		if err != nil {
			return nil, err
		}
		if err := p.expect(')', "close bracket"); err != nil {
			return nil, err
		}
		return n, nil
	default:
		return nil, &SyntaxError{Col: p.cur.pos(), Text: string(r), Want: "expression"}
	}
}

func parsenum(p *parser) (*node, error) {
	text, err := scanNum(p.cur)
	if err != nil {
		return nil, err
	}
	x, err := parsefloat(text, p.cfg.prec)
	if err != nil {
		return nil, &SyntaxError{Col: p.cur.pos(), Text: text, Want: "number"}
	}
	return &node{kind: nodeNum, name: text, num: x}, nil
}

// parsefloat parses the text of a number at a given precision. Numbers too
// large to represent are infinite.
func parsefloat(text string, prec uint) (*big.Float, error) {
	r, _, err := new(big.Float).SetPrec(prec).Parse(text, 10)
	switch {
	case err == nil:
		return r, nil
	case err.Error() == "exponent overflow",
		strings.HasSuffix(err.Error(), ": value out of range"):
		// There isn't realistically any better way to detect this error.
		return new(big.Float).SetPrec(prec).SetInf(false), nil
	default:
		return nil, err
	}
}

// parseident parses a variable or, if the identifier is followed by an open
// bracket, a function call.
func parseident(p *parser) (*node, error) {
	name, err := scanIdent(p.cur)
	if err != nil {
		return nil, err
	}
	if err := p.cur.skipSpace(); err != nil {
		return nil, err
	}
	r, err := p.cur.peek()
	if err != nil && err != io.EOF {
		return nil, err
	}
	if err == nil && r == '(' {
		p.cur.advance()
		args, err := parseargs(p)
		if err != nil {
			return nil, err
		}
		n := &node{kind: nodeCall, name: name, args: args}
		n.fn = p.syms.function(name, args)
		return n, nil
	}
	return &node{kind: nodeName, name: name, v: p.syms.variable(name)}, nil
}

// parseargs parses a comma-separated argument list after its open bracket,
// through the close bracket.
func parseargs(p *parser) ([]*node, error) {
	if err := p.cur.skipSpace(); err != nil {
		return nil, err
	}
	r, err := p.cur.peek()
	if err != nil {
		return nil, p.unexpected(err, "argument or close bracket")
	}
	if r == ')' {
		p.cur.advance()
		return nil, nil
	}
	var args []*node
	for {
		a, err := parseterm(p, exprprec)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if err := p.cur.skipSpace(); err != nil {
			return nil, err
		}
		r, err := p.cur.peek()
		if err != nil {
			return nil, p.unexpected(err, "comma or close bracket")
		}
		switch r {
		case ',':
			p.cur.advance()
		case ')':
			p.cur.advance()
			return args, nil
		default:
			return nil, &SyntaxError{Col: p.cur.pos(), Text: string(r), Want: "comma or close bracket"}
		}
	}
}

// expect consumes want after any whitespace.
func (p *parser) expect(want rune, what string) error {
	if err := p.cur.skipSpace(); err != nil {
		return err
	}
	r, err := p.cur.peek()
	if err != nil {
		return p.unexpected(err, what)
	}
	if r != want {
		return &SyntaxError{Col: p.cur.pos(), Text: string(r), Want: what}
	}
	p.cur.advance()
	return nil
}

// unexpected converts an error from the cursor into a syntax error if it is
// the end of the input.
func (p *parser) unexpected(err error, want string) error {
	if err == io.EOF {
		return &SyntaxError{Col: p.cur.pos(), Want: want}
	}
	return err
}

type operator struct {
	// prec is the precedence value. Higher is more binding.
	prec int8
	// op is the node kind to use when this operator is selected.
	op nodeKind
}

// binop gets a binary operator for a rune. If there is no such binary
// operator, then the result has an op of nodeNone.
func binop(r rune) operator {
	switch r {
	case '+':
		return operator{1, nodeAdd}
	case '-':
		return operator{1, nodeSub}
	case '*':
		return operator{5, nodeMul}
	case '/':
		return operator{5, nodeDiv}
	default:
		return operator{}
	}
}

// exprprec is the precedence required to parse an entire subexpression.
const exprprec int8 = 0
