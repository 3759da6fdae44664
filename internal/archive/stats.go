package archive

import (
	"fmt"
	"time"

	"sae/internal/models"
)

const dateLayout = "20060102"

// ComputeUserStats derives posting averages from an entry set. The
// timespan is the inclusive day count between the first and last
// distinct dates, never less than one, so a single-date set divides by
// one rather than zero.
func ComputeUserStats(entries []*models.MediaEntry) models.UserStats {
	distinct := make(map[string]struct{})
	minDate, maxDate := "", ""
	for _, e := range entries {
		distinct[e.Date] = struct{}{}
		if minDate == "" || e.Date < minDate {
			minDate = e.Date
		}
		if e.Date > maxDate {
			maxDate = e.Date
		}
	}

	total := len(entries)
	if len(distinct) == 0 {
		return models.UserStats{
			TotalStories: total,
			AvgPerDay:    "0.0",
			AvgPerWeek:   "0.0",
		}
	}

	timespanDays := max(1, daysBetween(minDate, maxDate)+1)

	perDay := float64(total) / float64(timespanDays)
	perWeek := float64(total) / (float64(timespanDays) / 7)

	return models.UserStats{
		TotalStories: total,
		TimespanDays: timespanDays,
		AvgPerDay:    fmt.Sprintf("%.1f", perDay),
		AvgPerWeek:   fmt.Sprintf("%.1f", perWeek),
	}
}

func daysBetween(minDate, maxDate string) int {
	first, err := time.Parse(dateLayout, minDate)
	if err != nil {
		return 0
	}
	last, err := time.Parse(dateLayout, maxDate)
	if err != nil {
		return 0
	}
	return int(last.Sub(first).Hours() / 24)
}
