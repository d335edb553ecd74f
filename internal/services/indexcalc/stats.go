package indexcalc

import (
	"gonum.org/v1/gonum/stat"

	"IndexForge/internal/domain/models"
	"IndexForge/pkg/util"
)

// LastChangePriorPoint derives latest-value stats against the prior array
// element. Meant for timelines with unique days, like the aligned composite.
func LastChangePriorPoint(points []models.IndexPoint) *models.LastStats {
	if len(points) == 0 {
		return nil
	}
	last := points[len(points)-1]
	stats := &models.LastStats{V: last.Value}
	if len(points) > 1 {
		setChange(stats, last.Value, points[len(points)-2].Value)
	}
	return stats
}

// LastChangeDistinctDay derives latest-value stats against the most recent
// sample on an earlier calendar day. Meant for series that can carry
// same-day duplicates, like a live point appended to a daily history.
func LastChangeDistinctDay(points []models.IndexPoint) *models.LastStats {
	if len(points) == 0 {
		return nil
	}
	last := points[len(points)-1]
	stats := &models.LastStats{V: last.Value}

	lastDay := util.DayFloor(last.Day)
	for i := len(points) - 2; i >= 0; i-- {
		if !util.DayFloor(points[i].Day).Equal(lastDay) {
			setChange(stats, last.Value, points[i].Value)
			break
		}
	}
	return stats
}

func setChange(stats *models.LastStats, last, prev float64) {
	stats.ChangeAbs = last - prev
	if prev != 0 {
		stats.ChangePct = 100 * (last - prev) / prev
	}
}

// Volatility is the sample standard deviation of a series' day-over-day
// moves. Series too short to have two moves report zero.
func Volatility(points []models.IndexPoint) float64 {
	if len(points) < 3 {
		return 0
	}
	moves := make([]float64, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		moves = append(moves, points[i].Value-points[i-1].Value)
	}
	return stat.StdDev(moves, nil)
}
