package runner

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// FormatFixed renders r in plain decimal notation rounded to places digits
// after the point, rounding halves away from zero. Infinities render as
// "+Inf" or "-Inf".
func FormatFixed(r *big.Float, places int32) string {
	if r.IsInf() {
		return r.String()
	}
	d, err := decimal.NewFromString(r.Text('g', -1))
	if err != nil {
		// Exponent too large for a decimal.
		return r.Text('g', 10)
	}
	return d.StringFixed(places)
}
