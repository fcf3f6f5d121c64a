package bindexpr

import (
	"math/big"
	"strconv"
	"strings"
)

// node is a node in the abstract syntax tree of an expression.
type node struct {
	kind nodeKind

	// name is the literal text of a number, or the name of a variable or
	// function.
	name string
	// num is the value of a number.
	num *big.Float

	v    *variable
	fn   *function
	args []*node

	left  *node
	right *node
}

type nodeKind int8

const (
	nodeNone nodeKind = iota

	nodeNum  // push num
	nodeName // push v.val
	nodeCall // evaluate args in order, then call fn.fn

	nodeNeg // evaluate left, then negate
	nodeAdd // evaluate left, add right
	nodeSub // evaluate left, sub right
	nodeMul // evaluate left, mul right
	nodeDiv // evaluate left, div by right
)

func (k nodeKind) String() string {
	switch k {
	case nodeNone:
		return "None"
	case nodeNum:
		return "Num"
	case nodeName:
		return "Name"
	case nodeCall:
		return "Call"
	case nodeNeg:
		return "Neg"
	case nodeAdd:
		return "Add"
	case nodeSub:
		return "Sub"
	case nodeMul:
		return "Mul"
	case nodeDiv:
		return "Div"
	default:
		return "nodeKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// children returns the node's operands in evaluation order.
func (n *node) children() []*node {
	switch n.kind {
	case nodeNum, nodeName:
		return nil
	case nodeCall:
		return n.args
	case nodeNeg:
		return []*node{n.left}
	case nodeAdd, nodeSub, nodeMul, nodeDiv:
		return []*node{n.left, n.right}
	default:
		panic("bindexpr: invalid node kind " + n.kind.String())
	}
}

// tag is the one-line description of the node used by describe.
func (n *node) tag() string {
	switch n.kind {
	case nodeNum:
		return "num " + n.name
	case nodeName:
		return "var " + n.name
	case nodeCall:
		return "call " + n.fn.sig.String()
	case nodeNeg:
		return "neg"
	case nodeAdd:
		return "add"
	case nodeSub:
		return "sub"
	case nodeMul:
		return "mul"
	case nodeDiv:
		return "div"
	default:
		panic("bindexpr: invalid node kind " + n.kind.String())
	}
}

// describe writes the tree rooted at n, one node per line, indented by two
// spaces per level of depth.
func (n *node) describe(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString("  ")
	}
	b.WriteString(n.tag())
	b.WriteByte('\n')
	for _, c := range n.children() {
		c.describe(b, depth+1)
	}
}

func (n *node) String() string {
	var b strings.Builder
	n.fmt(&b, false)
	return b.String()
}

func (n *node) fmt(b *strings.Builder, square bool) {
	var l, r byte = '(', ')'
	if square {
		l, r = '[', ']'
	}
	b.WriteByte(l)
	defer b.WriteByte(r)
	switch n.kind {
	case nodeNum, nodeName:
		b.WriteString(n.name)
	case nodeCall:
		b.WriteString(n.name)
		n.fmtargs(b, !square)
	case nodeNeg:
		b.WriteByte('-')
		n.left.fmt(b, !square)
	case nodeAdd:
		n.left.fmt(b, !square)
		b.WriteString(" + ")
		n.right.fmt(b, !square)
	case nodeSub:
		n.left.fmt(b, !square)
		b.WriteString(" - ")
		n.right.fmt(b, !square)
	case nodeMul:
		n.left.fmt(b, !square)
		b.WriteString(" * ")
		n.right.fmt(b, !square)
	case nodeDiv:
		n.left.fmt(b, !square)
		b.WriteString(" / ")
		n.right.fmt(b, !square)
	default:
		panic("bindexpr: invalid node kind " + n.kind.String() + " after writing " + b.String())
	}
}

func (n *node) fmtargs(b *strings.Builder, square bool) {
	var l, r byte = '(', ')'
	if square {
		l, r = '[', ']'
	}
	b.WriteByte(l)
	defer b.WriteByte(r)
	for i, a := range n.args {
		if i > 0 {
			b.WriteString(", ")
		}
		a.fmt(b, !square)
	}
}
