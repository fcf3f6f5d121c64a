package bindexpr

// ParseOption is an option for compiling.
type ParseOption interface {
	parseOption(parsectx) parsectx
}

type (
	precopt      uint
	nonfiniteopt struct{}
)

// parsectx holds the settings that compiled expressions carry into
// evaluation.
type parsectx struct {
	// prec is the precision of literals and of every value computed during
	// evaluation.
	prec uint
	// nonfinite allows division to produce infinities instead of failing.
	nonfinite bool
}

// DefaultPrec is the precision in bits used when none is given.
const DefaultPrec = 64

// Prec sets the precision of calculations in bits. A precision of 0 selects
// DefaultPrec.
func Prec(prec uint) ParseOption {
	return precopt(prec)
}

func (o precopt) parseOption(p parsectx) parsectx {
	p.prec = uint(o)
	if p.prec == 0 {
		p.prec = DefaultPrec
	}
	return p
}

// AllowNonFinite makes division by zero produce a signed infinity rather than
// a *DivisionByZeroError. Dividing zero by zero is still an error, since there
// is no NaN to represent the result.
func AllowNonFinite() ParseOption {
	return nonfiniteopt{}
}

func (nonfiniteopt) parseOption(p parsectx) parsectx {
	p.nonfinite = true
	return p
}
