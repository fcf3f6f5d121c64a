package bindexpr

import (
	"cmp"
	"math/big"
	"slices"
	"strconv"
)

// Signature identifies a function by name and number of arguments. The same
// name with different arities refers to unrelated functions.
type Signature struct {
	Name  string
	Arity int
}

func (s Signature) String() string {
	return s.Name + "/" + strconv.Itoa(s.Arity)
}

// variable is the binding slot shared by every occurrence of a variable name.
type variable struct {
	name string
	// val is nil until bound.
	val *big.Float
}

// function is the binding slot shared by every call with the same signature.
// Each call site keeps its own argument nodes.
type function struct {
	sig Signature
	// fn is nil until bound.
	fn Func
}

// symbols holds the variables and functions referenced by an expression, in
// order of first appearance.
type symbols struct {
	vars  map[string]*variable
	funcs map[Signature]*function
	vlist []*variable
	flist []*function
}

func newSymbols() *symbols {
	return &symbols{
		vars:  make(map[string]*variable),
		funcs: make(map[Signature]*function),
	}
}

// variable returns the slot for name, creating an unbound one the first time
// name is seen.
func (s *symbols) variable(name string) *variable {
	if v := s.vars[name]; v != nil {
		return v
	}
	v := &variable{name: name}
	s.vars[name] = v
	s.vlist = append(s.vlist, v)
	return v
}

// function returns the slot for a call of name with args, creating an unbound
// one the first time the signature is seen.
func (s *symbols) function(name string, args []*node) *function {
	sig := Signature{Name: name, Arity: len(args)}
	if f := s.funcs[sig]; f != nil {
		return f
	}
	f := &function{sig: sig}
	s.funcs[sig] = f
	s.flist = append(s.flist, f)
	return f
}

// names returns the variable names, sorted.
func (s *symbols) names() []string {
	r := make([]string, 0, len(s.vlist))
	for _, v := range s.vlist {
		r = append(r, v.name)
	}
	slices.Sort(r)
	return r
}

// sigs returns the function signatures, sorted by name then arity.
func (s *symbols) sigs() []Signature {
	r := make([]Signature, 0, len(s.flist))
	for _, f := range s.flist {
		r = append(r, f.sig)
	}
	slices.SortFunc(r, func(a, b Signature) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.Arity, b.Arity))
	})
	return r
}
