// Package models provides request and response models for the AsthmaGuardian API.
package models

import "time"

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"required,gte=-180,lte=180"`
}

// AQIBand is a display label for an Air Quality Index value.
type AQIBand string

const (
	BandGood            AQIBand = "GOOD"
	BandModerate        AQIBand = "MODERATE"
	BandSensitiveGroups AQIBand = "UNHEALTHY_FOR_SENSITIVE_GROUPS"
	BandUnhealthy       AQIBand = "UNHEALTHY"
	BandVeryUnhealthy   AQIBand = "VERY_UNHEALTHY"
)

// BandForAQI returns the display band for an AQI value using the EPA
// breakpoints (50, 100, 150, 200).
func BandForAQI(aqi float64) AQIBand {
	switch {
	case aqi <= 50:
		return BandGood
	case aqi <= 100:
		return BandModerate
	case aqi <= 150:
		return BandSensitiveGroups
	case aqi <= 200:
		return BandUnhealthy
	default:
		return BandVeryUnhealthy
	}
}

// HealthStatus grades a component for the ops endpoints.
type HealthStatus string

const (
	HealthStatusOK       HealthStatus = "OK"
	HealthStatusDegraded HealthStatus = "DEGRADED"
	HealthStatusFail     HealthStatus = "FAIL"
)

// Timestamp marshals as a quoted RFC 3339 string, the wire format for
// every time field in the API.
type Timestamp time.Time

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(time.Time(t).Format(`"` + time.RFC3339 + `"`)), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	parsed, err := time.Parse(`"`+time.RFC3339+`"`, string(data))
	if err != nil {
		return err
	}
	*t = Timestamp(parsed)
	return nil
}

// Time returns the underlying time.Time.
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}
