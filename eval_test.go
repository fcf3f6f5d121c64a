package bindexpr_test

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/bindexpr"
)

func float(t *testing.T, x *big.Float) float64 {
	t.Helper()
	require.NotNil(t, x)
	f, _ := x.Float64()
	return f
}

func TestEval(t *testing.T) {
	type vv struct {
		n string
		v float64
	}
	type vc struct {
		vars []vv
		r    float64
	}
	cases := []struct {
		name string
		src  string
		r    []vc
	}{
		{"num", "1", []vc{{nil, 1}}},
		{"frac", ".5+.25", []vc{{nil, 0.75}}},
		{"exp", "1.5e1", []vc{{nil, 15}}},
		{"ident", "x", []vc{
			{[]vv{{"x", 4}}, 4},
			{[]vv{{"x", 5}}, 5},
			{[]vv{{"x", 6}}, 6},
		}},
		{"neg", "-x", []vc{
			{[]vv{{"x", 4}}, -4},
			{[]vv{{"x", -5}}, 5},
		}},
		{"add", "4+5+6", []vc{{nil, 4 + 5 + 6}}},
		{"sub", "4-5-6", []vc{{nil, 4 - 5 - 6}}},
		{"mul", "4*5*6", []vc{{nil, 4 * 5 * 6}}},
		{"div", "4/5/6", []vc{{nil, 4.0 / 5.0 / 6.0}}},
		{"prec-add-mul", "2+3*4", []vc{{nil, 14}}},
		{"prec-mul-add", "2*3+4", []vc{{nil, 10}}},
		{"left-sub", "10-3-2", []vc{{nil, 5}}},
		{"left-div", "8/4/2", []vc{{nil, 1}}},
		{"paren", "(2+3)*4", []vc{{nil, 20}}},
		{"neg-mul", "-2*3", []vc{{nil, -6}}},
		{"neg-neg", "-(2)*-3", []vc{{nil, 6}}},
		{"neg-sub", "1--1", []vc{{nil, 2}}},
		{"neg-paren", "-(1-3)*2", []vc{{nil, 4}}},
		{"nested", "2*(3+(4-1)*2)/3", []vc{{nil, 6}}},
		{"shared", "a+a", []vc{
			{[]vv{{"a", 5}}, 10},
			{[]vv{{"a", -1.5}}, -3},
		}},
		{"two", "x*y-x", []vc{
			{[]vv{{"x", 2}, {"y", 3}}, 4},
			{[]vv{{"y", 10}}, 18},
			{[]vv{{"x", 0}}, 0},
		}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := bindexpr.Compile(c.src)
			require.NoError(t, err, "%q failed to parse", c.src)
			for _, v := range c.r {
				for _, x := range v.vars {
					require.NoError(t, a.BindVariable(x.n, big.NewFloat(x.v)))
				}
				r, err := a.Evaluate()
				require.NoError(t, err, "evaluation error")
				assert.Equal(t, v.r, float(t, r))
			}
		})
	}
}

func TestEvalIdempotent(t *testing.T) {
	a, err := bindexpr.Compile("x*2+1")
	require.NoError(t, err)
	require.NoError(t, a.BindVariable("x", big.NewFloat(3)))
	r1, err := a.Evaluate()
	require.NoError(t, err)
	r2, err := a.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, 0, r1.Cmp(r2))
	assert.NotSame(t, r1, r2)
	assert.Equal(t, 7.0, float(t, r2))

	// Results belong to the caller.
	r1.SetInt64(100)
	r3, err := a.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, 7.0, float(t, r3))

	require.NoError(t, a.BindVariable("x", big.NewFloat(4)))
	r4, err := a.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, 9.0, float(t, r4))
}

func TestEvalBindingIsCopied(t *testing.T) {
	a, err := bindexpr.Compile("x")
	require.NoError(t, err)
	x := big.NewFloat(1)
	require.NoError(t, a.BindVariable("x", x))
	x.SetInt64(2)
	r, err := a.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, 1.0, float(t, r))
}

func TestEvalOverloads(t *testing.T) {
	a, err := bindexpr.Compile("f(x) + f(x, y)")
	require.NoError(t, err)
	assert.Equal(t, []bindexpr.Signature{{Name: "f", Arity: 1}, {Name: "f", Arity: 2}}, a.Funcs())
	assert.Equal(t, []string{"x", "y"}, a.Vars())

	times10 := bindexpr.Monadic(func(out, in *big.Float) *big.Float {
		return out.Mul(in, big.NewFloat(10))
	})
	plus := bindexpr.Dyadic(func(out, x, y *big.Float) *big.Float {
		return out.Add(x, y)
	})
	require.NoError(t, a.BindFunction("f", 1, times10))
	require.NoError(t, a.BindFunction("f", 2, plus))
	require.NoError(t, a.BindVariable("x", big.NewFloat(2)))
	require.NoError(t, a.BindVariable("y", big.NewFloat(3)))
	r, err := a.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, 25.0, float(t, r))
}

func TestEvalCallSitesKeepArguments(t *testing.T) {
	a, err := bindexpr.Compile("f(1) + f(2) * 10")
	require.NoError(t, err)
	require.Len(t, a.Funcs(), 1)
	id := bindexpr.Monadic(func(out, in *big.Float) *big.Float { return out.Set(in) })
	require.NoError(t, a.BindFunction("f", 1, id))
	r, err := a.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, 21.0, float(t, r))
}

func TestEvalArgumentOrder(t *testing.T) {
	a, err := bindexpr.Compile("f(a, b, c, 4)")
	require.NoError(t, err)
	var got []float64
	rec := bindexpr.FuncN(4, func(out *big.Float, args []*big.Float) error {
		for _, x := range args {
			f, _ := x.Float64()
			got = append(got, f)
		}
		out.SetInt64(int64(len(args)))
		return nil
	})
	require.NoError(t, a.BindFunction("f", 4, rec))
	for i, n := range []string{"a", "b", "c"} {
		require.NoError(t, a.BindVariable(n, big.NewFloat(float64(i+1))))
	}
	r, err := a.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, 4.0, float(t, r))
	assert.Equal(t, []float64{1, 2, 3, 4}, got)
}

func TestEvalNiladic(t *testing.T) {
	a, err := bindexpr.Compile("two() * two() + x")
	require.NoError(t, err)
	require.NoError(t, a.BindFunction("two", 0, bindexpr.Niladic(func(out *big.Float) *big.Float {
		return out.SetInt64(2)
	})))
	require.NoError(t, a.BindVariable("x", big.NewFloat(1)))
	r, err := a.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, 5.0, float(t, r))
}

func TestBindErrors(t *testing.T) {
	a, err := bindexpr.Compile("f(x, y) + g()")
	require.NoError(t, err)
	id := bindexpr.Monadic(func(out, in *big.Float) *big.Float { return out.Set(in) })

	err = a.BindVariable("z", big.NewFloat(1))
	var uv *bindexpr.UndefinedVariableError
	require.True(t, errors.As(err, &uv), "%#v is not UndefinedVariableError", err)
	assert.Equal(t, "z", uv.Name)
	assert.Regexp(t, regexp.MustCompile(`(?i)\bundefined variable\b.*\bz\b`), err.Error())

	err = a.BindFunction("f", 1, id)
	var uf *bindexpr.UndefinedFunctionError
	require.True(t, errors.As(err, &uf), "%#v is not UndefinedFunctionError", err)
	assert.Equal(t, bindexpr.Signature{Name: "f", Arity: 1}, uf.Sig)

	err = a.BindFunction("h", 0, id)
	require.True(t, errors.As(err, &uf), "%#v is not UndefinedFunctionError", err)

	err = a.BindFunction("f", 2, id)
	var ae *bindexpr.ArityError
	require.True(t, errors.As(err, &ae), "%#v is not ArityError", err)
	assert.Equal(t, bindexpr.Signature{Name: "f", Arity: 2}, ae.Sig)
	assert.Contains(t, err.Error(), "2 arguments")

	err = a.BindFunction("g", 0, bindexpr.FuncN(1, nil))
	require.True(t, errors.As(err, &ae), "%#v is not ArityError", err)
}

type countingFunc struct {
	calls int
}

func (f *countingFunc) Call(invoc []*big.Float, r *big.Float) error {
	f.calls++
	r.SetInt64(1)
	return nil
}

func (f *countingFunc) CanCall(n int) bool {
	return true
}

func TestValidate(t *testing.T) {
	a, err := bindexpr.Compile("f(1) + x * g(y) + f(2)")
	require.NoError(t, err)
	fn := &countingFunc{}
	require.NoError(t, a.BindFunction("f", 1, fn))

	_, err = a.Evaluate()
	var uv *bindexpr.UninitializedVariableError
	require.True(t, errors.As(err, &uv), "%#v is not UninitializedVariableError", err)
	assert.Equal(t, "x", uv.Name)
	assert.Equal(t, 0, fn.calls, "validation must fail before any call")
	assert.Regexp(t, `\bx\b`, err.Error())

	require.NoError(t, a.BindVariable("x", big.NewFloat(2)))
	_, err = a.Evaluate()
	require.True(t, errors.As(err, &uv))
	assert.Equal(t, "y", uv.Name)

	require.NoError(t, a.BindVariable("y", big.NewFloat(3)))
	_, err = a.Evaluate()
	var uf *bindexpr.UninitializedFunctionError
	require.True(t, errors.As(err, &uf), "%#v is not UninitializedFunctionError", err)
	assert.Equal(t, bindexpr.Signature{Name: "g", Arity: 1}, uf.Sig)
	assert.Contains(t, err.Error(), "g/1")
	assert.Equal(t, 0, fn.calls)

	require.NoError(t, a.BindFunction("g", 1, fn))
	require.NoError(t, a.Validate())
	r, err := a.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, 4.0, float(t, r))
	assert.Equal(t, 3, fn.calls)
}

func TestValidateNoSymbols(t *testing.T) {
	a, err := bindexpr.Compile("1+2")
	require.NoError(t, err)
	assert.NoError(t, a.Validate())
	assert.Empty(t, a.Vars())
	assert.Empty(t, a.Funcs())
}

func TestEvalDivisionByZero(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"lit", "1/0"},
		{"neg", "-1/0"},
		{"zero", "0/0"},
		{"var", "1/(x-x)"},
		{"nested", "2 + 3/(0*x)"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := bindexpr.Compile(c.src)
			require.NoError(t, err)
			if len(a.Vars()) > 0 {
				require.NoError(t, a.BindVariable("x", big.NewFloat(3)))
			}
			r, err := a.Evaluate()
			assert.Nil(t, r)
			var dz *bindexpr.DivisionByZeroError
			require.True(t, errors.As(err, &dz), "%#v is not DivisionByZeroError", err)
			assert.Contains(t, err.Error(), "division by zero")
		})
	}
}

func TestEvalDivisionOfInfinity(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"huge", "1e999999999999/2"},
		{"neg", "-1e999999999999/x"},
		{"nested", "1 + (1e999999999999*x)/3"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := bindexpr.Compile(c.src)
			require.NoError(t, err)
			if len(a.Vars()) > 0 {
				require.NoError(t, a.BindVariable("x", big.NewFloat(3)))
			}
			r, err := a.Evaluate()
			assert.Nil(t, r)
			var dz *bindexpr.DivisionByZeroError
			require.True(t, errors.As(err, &dz), "%#v is not DivisionByZeroError", err)
			assert.True(t, dz.X.IsInf())
			assert.Contains(t, err.Error(), "non-finite quotient")
		})
	}
}

func TestEvalMulNaNNamesInfinity(t *testing.T) {
	for _, src := range []string{"1e999999999999*0", "0*1e999999999999", "-1e999999999999*(x-x)"} {
		t.Run(src, func(t *testing.T) {
			a, err := bindexpr.Compile(src)
			require.NoError(t, err)
			if len(a.Vars()) > 0 {
				require.NoError(t, a.BindVariable("x", big.NewFloat(2)))
			}
			_, err = a.Evaluate()
			var de *bindexpr.DomainError
			require.True(t, errors.As(err, &de), "%#v is not DomainError", err)
			assert.Equal(t, "*", de.Func)
			assert.True(t, de.X.IsInf(), "reported %v instead of the infinite operand", de.X)
			assert.Contains(t, err.Error(), "Inf outside domain of *")
		})
	}
}

func TestEvalAllowNonFinite(t *testing.T) {
	cases := []struct {
		name string
		src  string
		r    float64
	}{
		{"pos", "1/0", math.Inf(1)},
		{"neg", "-1/0", math.Inf(-1)},
		{"negzero", "1/-0", math.Inf(-1)},
		{"sum", "1/0 + 1", math.Inf(1)},
		{"inv", "1/(1/0)", 0},
		{"huge", "1e999999999999/2", math.Inf(1)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := bindexpr.Compile(c.src, bindexpr.AllowNonFinite())
			require.NoError(t, err)
			r, err := a.Evaluate()
			require.NoError(t, err)
			assert.Equal(t, c.r, float(t, r))
		})
	}
}

func TestEvalOpError(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"div-zero", "0/0"},
		{"div-inf", "1/0/(1/0)"},
		{"sub-inf", "1/0-1/0"},
		{"add-inf", "1/0+-1/0"},
		{"mul-inf", "0*(1/0)"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := bindexpr.Compile(c.src, bindexpr.AllowNonFinite())
			require.NoError(t, err)
			r, err := a.Evaluate()
			assert.Nil(t, r)
			var de *bindexpr.DomainError
			require.True(t, errors.As(err, &de), "%#v is not DomainError", err)
			assert.Regexp(t, `outside domain of [-+*/]$`, err.Error())
		})
	}
}

func TestEvalRecoversAfterError(t *testing.T) {
	a, err := bindexpr.Compile("1 + 2*(3/x)")
	require.NoError(t, err)
	require.NoError(t, a.BindVariable("x", new(big.Float)))
	_, err = a.Evaluate()
	require.Error(t, err)
	require.NoError(t, a.BindVariable("x", big.NewFloat(3)))
	r, err := a.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, 3.0, float(t, r))
}

func TestEvalFuncError(t *testing.T) {
	boom := errors.New("boom")
	a, err := bindexpr.Compile("1 + f(2)")
	require.NoError(t, err)
	require.NoError(t, a.BindFunction("f", 1, bindexpr.FuncN(1, func(out *big.Float, args []*big.Float) error {
		return boom
	})))
	_, err = a.Evaluate()
	assert.ErrorIs(t, err, boom)
	var ce *bindexpr.CallError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, bindexpr.Signature{Name: "f", Arity: 1}, ce.Sig)
}

func TestClone(t *testing.T) {
	a, err := bindexpr.Compile("x + f(x)")
	require.NoError(t, err)
	require.NoError(t, a.BindVariable("x", big.NewFloat(1)))
	id := bindexpr.Monadic(func(out, in *big.Float) *big.Float { return out.Set(in) })
	require.NoError(t, a.BindFunction("f", 1, id))

	b := a.Clone()
	assert.Equal(t, a.String(), b.String())
	require.NoError(t, b.BindVariable("x", big.NewFloat(10)))

	r, err := a.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, 2.0, float(t, r))
	r, err = b.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, 20.0, float(t, r))

	c, err := bindexpr.Compile("y")
	require.NoError(t, err)
	d := c.Clone()
	_, err = d.Evaluate()
	var uv *bindexpr.UninitializedVariableError
	assert.True(t, errors.As(err, &uv), "clone of unbound expression should be unbound")
}

func TestPrec(t *testing.T) {
	a, err := bindexpr.Compile("1/3", bindexpr.Prec(200))
	require.NoError(t, err)
	r, err := a.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, uint(200), r.Prec())
	assert.Equal(t, "0.33333333333333333333333333333333333333333333333333", r.Text('f', 50))
}

func TestString(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"x", "(x)"},
		{"1+2*x", "([1] + [(2) * (x)])"},
		{"-f(a, b)", "(-[f([a], [b])])"},
		{"g()", "(g[])"},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			a, err := bindexpr.Compile(c.src)
			require.NoError(t, err)
			assert.Equal(t, c.want, a.String())
		})
	}
}

func TestDescribe(t *testing.T) {
	a, err := bindexpr.Compile("1 + x*f(2, -y)")
	require.NoError(t, err)
	want := `add
  num 1
  mul
    var x
    call f/2
      num 2
      neg
        var y
`
	assert.Equal(t, want, a.Describe())
}

func ExampleExpr_Describe() {
	a, _ := bindexpr.Compile("(a - b) / 2")
	fmt.Print(a.Describe())

	// Output:
	// div
	//   sub
	//     var a
	//     var b
	//   num 2
}

func Example() {
	a, _ := bindexpr.Compile("x*x*x/2 - x")
	for i := 0; i < 4; i++ {
		a.BindVariable("x", big.NewFloat(float64(i)))
		y, _ := a.Evaluate()
		fmt.Printf("x = %d   y = %g\n", i, y)
	}

	// Output:
	// x = 0   y = 0
	// x = 1   y = -0.5
	// x = 2   y = 2
	// x = 3   y = 10.5
}
