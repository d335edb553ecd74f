package timeseries

import (
	"sort"
	"time"

	"IndexForge/internal/domain/models"
	"IndexForge/pkg/util"
)

// acceptWindow is the largest distance between a sample and a day start for
// the sample to count as that day's value.
const acceptWindow = 24 * time.Hour

// Align merges independently sampled per-asset series onto one calendar-day
// timeline: every sample is bucketed to its UTC day floor, the union of day
// floors becomes the timeline, and each asset contributes its nearest sample
// per day. Days without any contributing asset are dropped.
func Align(series []*models.AssetSeries) []models.AlignedPoint {
	daySet := make(map[time.Time]struct{})
	for _, s := range series {
		if s == nil {
			continue
		}
		for _, p := range s.Points {
			daySet[util.DayFloor(p.Timestamp)] = struct{}{}
		}
	}

	days := make([]time.Time, 0, len(daySet))
	for d := range daySet {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	out := make([]models.AlignedPoint, 0, len(days))
	for _, day := range days {
		prices := make(map[string]float64)
		for _, s := range series {
			if s == nil || len(s.Points) == 0 {
				continue
			}
			if price, ok := nearestSample(s.Points, day); ok {
				prices[s.ID] = price
			}
		}
		if len(prices) == 0 {
			continue
		}
		out = append(out, models.AlignedPoint{Day: day, Prices: prices})
	}
	return out
}

// nearestSample picks the sample closest to the day start, accepting it only
// when the distance is under one day. Points must be ordered by timestamp.
func nearestSample(points []models.PricePoint, day time.Time) (float64, bool) {
	idx := sort.Search(len(points), func(i int) bool {
		return !points[i].Timestamp.Before(day)
	})

	best := -1
	bestDelta := time.Duration(0)
	for _, i := range []int{idx - 1, idx} {
		if i < 0 || i >= len(points) {
			continue
		}
		delta := points[i].Timestamp.Sub(day)
		if delta < 0 {
			delta = -delta
		}
		if best == -1 || delta < bestDelta {
			best = i
			bestDelta = delta
		}
	}

	if best == -1 || bestDelta >= acceptWindow {
		return 0, false
	}
	return points[best].Price, true
}

// ForwardFill returns a copy of the aligned timeline where every asset's
// missing day carries its last known price. Days before an asset's first
// sample stay missing; values are never filled backward. Applying the pass
// twice yields the same result as applying it once.
func ForwardFill(points []models.AlignedPoint) []models.AlignedPoint {
	ids := make(map[string]struct{})
	for _, p := range points {
		for id := range p.Prices {
			ids[id] = struct{}{}
		}
	}

	last := make(map[string]float64, len(ids))
	out := make([]models.AlignedPoint, len(points))
	for i, p := range points {
		prices := make(map[string]float64, len(ids))
		for id := range p.Prices {
			prices[id] = p.Prices[id]
			last[id] = p.Prices[id]
		}
		for id := range ids {
			if _, ok := prices[id]; ok {
				continue
			}
			if v, ok := last[id]; ok {
				prices[id] = v
			}
		}
		out[i] = models.AlignedPoint{Day: p.Day, Prices: prices}
	}
	return out
}
