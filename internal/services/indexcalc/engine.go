package indexcalc

import (
	"math"
	"sort"

	"IndexForge/internal/domain/models"
)

// baseValue anchors the weighted composite series.
const baseValue = 100.0

// Composite computes the base-100 weighted level series. The baseline day is
// the first aligned point where every weighted asset has a price, falling
// back to the first point. Days where only some weighted assets are present
// renormalize over the present subset; a day where none are present carries
// the base value, not an error.
func Composite(points []models.AlignedPoint, assignment models.WeightAssignment) []models.IndexPoint {
	if len(points) == 0 || len(assignment) == 0 {
		return nil
	}

	ids := make([]string, 0, len(assignment))
	for id := range assignment {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	baseline := points[0]
	for _, p := range points {
		if hasAll(p, ids) {
			baseline = p
			break
		}
	}

	// Assets without a usable baseline price cannot be expressed relative
	// to it and drop out of every day's sum.
	basePrice := make(map[string]float64, len(ids))
	for _, id := range ids {
		if v, ok := baseline.Prices[id]; ok && isValid(v) {
			basePrice[id] = v
		}
	}

	out := make([]models.IndexPoint, 0, len(points))
	for _, p := range points {
		num, den := 0.0, 0.0
		for _, id := range ids {
			base, okBase := basePrice[id]
			price, okNow := p.Prices[id]
			if !okBase || !okNow {
				continue
			}
			w := assignment[id]
			num += w * price / base
			den += w
		}
		value := baseValue
		if den > 0 {
			value = baseValue * num / den
		}
		out = append(out, models.IndexPoint{Day: p.Day, Value: value})
	}
	return out
}

func hasAll(p models.AlignedPoint, ids []string) bool {
	for _, id := range ids {
		if _, ok := p.Prices[id]; !ok {
			return false
		}
	}
	return true
}

// PercentReturns computes the percent-change-from-baseline series for one
// asset's day-ordered samples. The baseline is the first strictly positive,
// finite price; invalid samples carry the last computed value forward. An
// all-invalid series yields nil, which callers treat as insufficient data.
func PercentReturns(points []models.PricePoint) []models.IndexPoint {
	start := -1
	var baseline float64
	for i, p := range points {
		if isValid(p.Price) {
			start = i
			baseline = p.Price
			break
		}
	}
	if start == -1 {
		return nil
	}

	out := make([]models.IndexPoint, 0, len(points)-start)
	lastValue := 0.0
	for _, p := range points[start:] {
		value := lastValue
		if isValid(p.Price) {
			value = baseValue * (p.Price/baseline - 1)
			lastValue = value
		}
		out = append(out, models.IndexPoint{Day: p.Timestamp, Value: value})
	}
	return out
}

func isValid(p float64) bool {
	return p > 0 && !math.IsNaN(p) && !math.IsInf(p, 0)
}
