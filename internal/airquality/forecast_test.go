package airquality_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asthmaguardian/asthmaguardian/internal/airquality"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMergeByDate_KeepsWorstPerDay(t *testing.T) {
	d1 := date(2025, time.March, 10)
	d2 := date(2025, time.March, 11)

	entries := []airquality.ForecastDay{
		{Date: d1, AQI: 40, Category: "Good", Pollutant: "O3"},
		{Date: d1, AQI: 55, Category: "Moderate", Pollutant: "PM2.5"},
		{Date: d2, AQI: 20, Category: "Good", Pollutant: "PM2.5"},
	}

	merged := airquality.MergeByDate(entries)
	require.Len(t, merged, 2)

	assert.Equal(t, d1, merged[0].Date)
	assert.Equal(t, 55, merged[0].AQI)
	assert.Equal(t, "PM2.5", merged[0].Pollutant)

	assert.Equal(t, d2, merged[1].Date)
	assert.Equal(t, 20, merged[1].AQI)
}

func TestMergeByDate_Idempotent(t *testing.T) {
	entries := []airquality.ForecastDay{
		{Date: date(2025, time.March, 10), AQI: 40, Pollutant: "O3"},
		{Date: date(2025, time.March, 10), AQI: 55, Pollutant: "PM2.5"},
		{Date: date(2025, time.March, 12), AQI: 33, Pollutant: "PM10"},
	}

	once := airquality.MergeByDate(entries)
	twice := airquality.MergeByDate(once)

	assert.Equal(t, once, twice)
}

func TestMergeByDate_EqualIndexKeepsFirst(t *testing.T) {
	d := date(2025, time.March, 10)
	entries := []airquality.ForecastDay{
		{Date: d, AQI: 50, Pollutant: "O3"},
		{Date: d, AQI: 50, Pollutant: "PM2.5"},
	}

	merged := airquality.MergeByDate(entries)
	require.Len(t, merged, 1)
	assert.Equal(t, "O3", merged[0].Pollutant)
}

func TestMergeByDate_NormalizesTimestamps(t *testing.T) {
	// Same calendar day at different clock times collapses to one entry.
	entries := []airquality.ForecastDay{
		{Date: time.Date(2025, time.March, 10, 8, 30, 0, 0, time.UTC), AQI: 40},
		{Date: time.Date(2025, time.March, 10, 17, 0, 0, 0, time.UTC), AQI: 60},
	}

	merged := airquality.MergeByDate(entries)
	require.Len(t, merged, 1)
	assert.Equal(t, date(2025, time.March, 10), merged[0].Date)
	assert.Equal(t, 60, merged[0].AQI)
}

func TestSelectTravelDay_PicksLowestIndex(t *testing.T) {
	today := date(2025, time.March, 10)
	days := []airquality.ForecastDay{
		{Date: today, AQI: 55},
		{Date: today.AddDate(0, 0, 1), AQI: 20},
		{Date: today.AddDate(0, 0, 2), AQI: 80},
	}

	window, err := airquality.SelectTravelDay(days, today, 3)
	require.NoError(t, err)

	assert.Len(t, window.Days, 3)
	assert.Equal(t, today.AddDate(0, 0, 1), window.Best.Date)
	assert.Equal(t, 20, window.Best.AQI)
}

func TestSelectTravelDay_WindowIsInclusive(t *testing.T) {
	today := date(2025, time.March, 10)
	days := []airquality.ForecastDay{
		{Date: today.AddDate(0, 0, -1), AQI: 5},  // yesterday, excluded
		{Date: today, AQI: 50},                   // first day in
		{Date: today.AddDate(0, 0, 3), AQI: 40},  // last day in
		{Date: today.AddDate(0, 0, 4), AQI: 1},   // past horizon, excluded
	}

	window, err := airquality.SelectTravelDay(days, today, 3)
	require.NoError(t, err)

	require.Len(t, window.Days, 2)
	assert.Equal(t, today, window.Days[0].Date)
	assert.Equal(t, today.AddDate(0, 0, 3), window.Days[1].Date)
	assert.Equal(t, 40, window.Best.AQI)
}

func TestSelectTravelDay_BestAlwaysInsideWindow(t *testing.T) {
	today := date(2025, time.March, 10)
	days := []airquality.ForecastDay{
		{Date: today.AddDate(0, 0, 1), AQI: 61},
		{Date: today.AddDate(0, 0, 2), AQI: 59},
		{Date: today.AddDate(0, 0, 9), AQI: 2}, // cleanest day is out of reach
	}

	window, err := airquality.SelectTravelDay(days, today, 5)
	require.NoError(t, err)

	cutoff := today.AddDate(0, 0, 5)
	assert.False(t, window.Best.Date.Before(today))
	assert.False(t, window.Best.Date.After(cutoff))
	assert.Equal(t, 59, window.Best.AQI)
}

func TestSelectTravelDay_TiesGoToEarliestDate(t *testing.T) {
	today := date(2025, time.March, 10)
	days := []airquality.ForecastDay{
		{Date: today, AQI: 30},
		{Date: today.AddDate(0, 0, 1), AQI: 30},
	}

	window, err := airquality.SelectTravelDay(days, today, 3)
	require.NoError(t, err)
	assert.Equal(t, today, window.Best.Date)
}

func TestSelectTravelDay_EmptyWindow(t *testing.T) {
	today := date(2025, time.March, 10)
	days := []airquality.ForecastDay{
		{Date: today.AddDate(0, 0, 10), AQI: 10},
	}

	window, err := airquality.SelectTravelDay(days, today, 3)
	assert.Nil(t, window)
	assert.ErrorIs(t, err, airquality.ErrEmptyWindow)
}

func TestSelectTravelDay_NoDays(t *testing.T) {
	_, err := airquality.SelectTravelDay(nil, date(2025, time.March, 10), 3)
	assert.ErrorIs(t, err, airquality.ErrEmptyWindow)
}

func TestDateOnly(t *testing.T) {
	ts := time.Date(2025, time.March, 10, 23, 59, 58, 123, time.UTC)
	assert.Equal(t, date(2025, time.March, 10), airquality.DateOnly(ts))
}
