package contracts

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round2 rounds half away from zero to 2 decimals (5.004999 -> 5.00, 12.005 -> 12.01)
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Floor2 truncates toward negative infinity at 2 decimals; used for stops so
// rounding never loosens them
func Floor2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	f, _ := decimal.NewFromFloat(v).RoundFloor(2).Float64()
	return f
}

// ClampScore rounds to the nearest integer and clamps to [0,100]. NaN -> 0.
func ClampScore(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	r := math.Round(v)
	if r < 0 {
		return 0
	}
	if r > 100 {
		return 100
	}
	return int(r)
}

// Float64Ptr / IntPtr / BoolPtr are small helpers for optional fields
func Float64Ptr(v float64) *float64 { return &v }
func IntPtr(v int) *int             { return &v }
func BoolPtr(v bool) *bool          { return &v }
