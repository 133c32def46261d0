package openrouteservice

// orsRequest is the directions API request body.
type orsRequest struct {
	// Coordinates are [lon, lat] pairs, origin first (GeoJSON order).
	Coordinates [][]float64 `json:"coordinates"`
	Preference  string      `json:"preference,omitempty"`
	Options     *orsOptions `json:"options,omitempty"`
	Units       string      `json:"units"`
	Geometry    bool        `json:"geometry"`
}

// orsOptions carries road-feature avoidance.
type orsOptions struct {
	AvoidFeatures []string `json:"avoid_features,omitempty"`
}

// orsResponse is the directions API response.
type orsResponse struct {
	Routes []orsRoute `json:"routes"`
}

// orsRoute is a single route; Geometry is an encoded polyline.
type orsRoute struct {
	Summary  orsSummary `json:"summary"`
	Geometry string     `json:"geometry"`
}

// orsSummary totals distance in meters and duration in seconds.
type orsSummary struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
}

// orsErrorResponse is the error envelope ORS returns on non-2xx status.
type orsErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Info string `json:"info,omitempty"`
}

const (
	orsErrorCodeNotFound = 2009 // ORS: route could not be found between locations
)
