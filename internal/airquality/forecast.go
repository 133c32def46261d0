package airquality

import (
	"sort"
	"time"
)

// MergeByDate collapses raw forecast entries to at most one per calendar
// date, keeping the entry with the higher index. Forecast services publish
// one entry per pollutant per day; the worst pollutant is what matters for
// exposure, so the merge keeps the maximum rather than averaging. On equal
// indexes the first-seen entry wins. The result is sorted by date
// ascending, and merging is idempotent.
func MergeByDate(entries []ForecastDay) []ForecastDay {
	byDate := make(map[time.Time]ForecastDay, len(entries))
	for _, e := range entries {
		d := DateOnly(e.Date)
		cur, seen := byDate[d]
		if !seen || e.AQI > cur.AQI {
			e.Date = d
			byDate[d] = e
		}
	}

	merged := make([]ForecastDay, 0, len(byDate))
	for _, day := range byDate {
		merged = append(merged, day)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Date.Before(merged[j].Date) })

	return merged
}

// TravelWindow holds the in-window forecast days and the recommended one.
type TravelWindow struct {
	// Days are the forecast days inside the look-ahead window, date order.
	Days []ForecastDay

	// Best is the recommended travel day, the lowest index in the window.
	Best ForecastDay
}

// SelectTravelDay filters forecast days to [today, today+horizon], both
// ends inclusive, and recommends the day with the lowest index. The
// selection is a stable minimum, so with date-sorted input (as MergeByDate
// returns) ties go to the earliest date. Fails with ErrEmptyWindow when no
// day falls inside the window.
func SelectTravelDay(days []ForecastDay, today time.Time, horizonDays int) (*TravelWindow, error) {
	start := DateOnly(today)
	cutoff := start.AddDate(0, 0, horizonDays)

	var window []ForecastDay
	for _, d := range days {
		date := DateOnly(d.Date)
		if date.Before(start) || date.After(cutoff) {
			continue
		}
		window = append(window, d)
	}
	if len(window) == 0 {
		return nil, ErrEmptyWindow
	}

	best := window[0]
	for _, d := range window[1:] {
		if d.AQI < best.AQI {
			best = d
		}
	}

	return &TravelWindow{Days: window, Best: best}, nil
}

// DateOnly truncates a timestamp to its calendar date at UTC midnight.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
