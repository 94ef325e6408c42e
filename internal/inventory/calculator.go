package inventory

import (
	"math"

	"github.com/Benediks/Sidaya/internal/models"
)

// qtyEpsilon absorbs float noise in stored quantities (0.3/0.1 must give 3).
const qtyEpsilon = 1e-9

// ComputeAvailable returns how many units a recipe can produce from the
// given on-hand levels: the minimum of floor(onHand/requiredQty) over links
// with requiredQty > 0, or 0 when no link qualifies. A link whose stock is
// absent from onHand contributes 0.
func ComputeAvailable(links []models.RecipeLink, onHand map[string]float64) int64 {
	var (
		best  int64
		found bool
	)
	for _, l := range links {
		if l.RequiredQty <= 0 {
			continue
		}
		n := unitsFrom(onHand[l.StockID], l.RequiredQty)
		if !found || n < best {
			best = n
			found = true
		}
	}
	return best
}

// unitsFrom is the largest n with n*perUnit <= onHand+qtyEpsilon, the same
// bound deductStock enforces, clamped to MaxInt64.
func unitsFrom(onHand, perUnit float64) int64 {
	if onHand <= 0 || perUnit <= 0 {
		return 0
	}
	n := math.Floor(onHand/perUnit + qtyEpsilon)
	// the ratio can round up by an ulp; two steps always suffice
	for i := 0; i < 2 && n > 0 && n*perUnit > onHand+qtyEpsilon; i++ {
		n--
	}
	if n <= 0 {
		return 0
	}
	if n >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(n)
}
