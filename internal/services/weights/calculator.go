package weights

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"IndexForge/internal/domain/models"
)

// ErrInsufficientData signals that fewer than two assets carry a usable
// sizing metric, so no meaningful composite can be built.
var ErrInsufficientData = errors.New("insufficient sizing data")

// Compute converts a sizing snapshot into a bounded, normalized weight
// assignment. Assets with a zero metric are excluded, not weighted at the
// minimum. All iteration runs in sorted asset order, so identical snapshots
// and bounds yield bit-identical assignments.
func Compute(snapshot models.SizingSnapshot, minWeight, maxWeight float64) (models.WeightAssignment, error) {
	ids := make([]string, 0, len(snapshot))
	for id, s := range snapshot {
		if s.MarketCap > 0 && !math.IsInf(s.MarketCap, 0) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	if len(ids) < 2 {
		return nil, fmt.Errorf("%w: %d of %d assets carry a usable metric",
			ErrInsufficientData, len(ids), len(snapshot))
	}

	n := float64(len(ids))
	if minWeight*n > 1 || maxWeight*n < 1 {
		// The bounds are jointly unsatisfiable for this asset count; an
		// equal split is the only assignment that still sums to one.
		return equalSplit(ids), nil
	}

	total := 0.0
	for _, id := range ids {
		total += snapshot[id].MarketCap
	}
	if total <= 0 {
		return equalSplit(ids), nil
	}

	raw := make(map[string]float64, len(ids))
	out := make(models.WeightAssignment, len(ids))
	for _, id := range ids {
		raw[id] = snapshot[id].MarketCap / total
		out[id] = math.Min(raw[id], maxWeight)
	}

	// Redistribute the capped surplus proportionally among the assets whose
	// raw share sat strictly below the cap.
	excess := 1.0
	for _, id := range ids {
		excess -= out[id]
	}
	if excess > 0 {
		subTotal := 0.0
		for _, id := range ids {
			if raw[id] < maxWeight {
				subTotal += raw[id]
			}
		}
		if subTotal > 0 {
			for _, id := range ids {
				if raw[id] < maxWeight {
					out[id] += excess * raw[id] / subTotal
				}
			}
		}
	}

	for _, id := range ids {
		out[id] = math.Max(out[id], minWeight)
	}

	sum := 0.0
	for _, id := range ids {
		sum += out[id]
	}
	for _, id := range ids {
		out[id] /= sum
	}

	return out, nil
}

func equalSplit(ids []string) models.WeightAssignment {
	out := make(models.WeightAssignment, len(ids))
	share := 1.0 / float64(len(ids))
	for _, id := range ids {
		out[id] = share
	}
	return out
}
