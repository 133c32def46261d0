package models

// TripPlanRequest is the request body for POST /v1/trips:plan.
type TripPlanRequest struct {
	// Origin is the free-text starting place.
	Origin string `json:"origin" validate:"required"`

	// Destination is the free-text destination place.
	Destination string `json:"destination" validate:"required"`

	// HomeZip is the 5-digit postal code for the air quality forecast.
	HomeZip string `json:"homeZip" validate:"required,len=5"`

	// LookAheadDays is the travel-day look-ahead horizon (1-7).
	// Omitted or zero selects the default of 3.
	LookAheadDays int `json:"lookAheadDays,omitempty" validate:"gte=0,lte=7"`
}

// PlanLocation is a geocoded endpoint of the trip.
type PlanLocation struct {
	// Label is the geocoder's canonical name for the place.
	Label string `json:"label"`

	// Point is the resolved coordinate.
	Point Point `json:"point"`
}

// RouteGeometry is a route shape in compact transfer form.
type RouteGeometry struct {
	// Polyline is the Google-encoded polyline string.
	Polyline string `json:"polyline"`

	// PointCount is the number of coordinates in the decoded shape.
	PointCount int `json:"pointCount"`
}

// RouteScore is a scored route alternative.
type RouteScore struct {
	// Name identifies the routing preference ("Shortest", "Balanced",
	// "Avoid highways").
	Name string `json:"name"`

	// DistanceKm is the route length in kilometers.
	DistanceKm float64 `json:"distanceKm"`

	// DurationMinutes is the estimated driving time in minutes.
	DurationMinutes float64 `json:"durationMinutes"`

	// MeanAqi and MaxAqi summarize pollution over the sampled points.
	MeanAqi float64 `json:"meanAqi"`
	MaxAqi  int     `json:"maxAqi"`

	// Band is the display band for the mean AQI.
	Band AQIBand `json:"band"`

	// SampleCount is the number of points with a successful reading.
	SampleCount int `json:"sampleCount"`

	// MapsUrl is a deep link for turn-by-turn navigation.
	MapsUrl string `json:"mapsUrl"`

	// Geometry is the route shape.
	Geometry RouteGeometry `json:"geometry"`
}

// TravelDay is one day of the merged air quality forecast.
type TravelDay struct {
	// Date in YYYY-MM-DD form.
	Date string `json:"date"`

	// Aqi is the worst-case index forecast for the day.
	Aqi int `json:"aqi"`

	// Band is the display band for the index.
	Band AQIBand `json:"band"`

	// Category is the provider's own label for the day.
	Category string `json:"category"`

	// Pollutant is the pollutant responsible for the index.
	Pollutant string `json:"pollutant"`
}

// TravelWindow is the forecast window with the recommended day.
type TravelWindow struct {
	// Days are the in-window forecast days, earliest first.
	Days []TravelDay `json:"days"`

	// Best is the recommended (lowest-index) travel day.
	Best TravelDay `json:"best"`
}

// ProximityStop is a point of interest near a route.
type ProximityStop struct {
	// Name of the place.
	Name string `json:"name"`

	// Point is the place coordinate.
	Point Point `json:"point"`

	// Address is the formatted address, when known.
	Address string `json:"address,omitempty"`

	// DistanceKm is the perpendicular distance to the route.
	DistanceKm float64 `json:"distanceKm"`

	// Rating is the provider popularity score, when carried.
	Rating float64 `json:"rating,omitempty"`
}

// TripPlan is the response body for a completed planning run.
type TripPlan struct {
	// ID uniquely identifies the plan.
	ID string `json:"id"`

	// CreatedAt is when the plan was assembled.
	CreatedAt Timestamp `json:"createdAt"`

	// Origin and Destination are the geocoded endpoints.
	Origin      PlanLocation `json:"origin"`
	Destination PlanLocation `json:"destination"`

	// HomeZip is the postal code the forecast was fetched for.
	HomeZip string `json:"homeZip"`

	// TravelWindow is the forecast window with the recommended day.
	TravelWindow TravelWindow `json:"travelWindow"`

	// Routes are the scored alternatives, cleanest first.
	Routes []RouteScore `json:"routes"`

	// BestRoute is the recommendation (the first entry of Routes).
	BestRoute RouteScore `json:"bestRoute"`

	// PediatricStops and FoodStops are advisory stops near the best route.
	PediatricStops []ProximityStop `json:"pediatricStops"`
	FoodStops      []ProximityStop `json:"foodStops"`
}

// RouteRankRequest is the request body for POST /v1/routes:rank.
type RouteRankRequest struct {
	// Origin is the free-text starting place.
	Origin string `json:"origin" validate:"required"`

	// Destination is the free-text destination place.
	Destination string `json:"destination" validate:"required"`
}

// RankedRoutes is the response body for POST /v1/routes:rank.
type RankedRoutes struct {
	// Origin and Destination echo the request.
	Origin      string `json:"origin"`
	Destination string `json:"destination"`

	// Routes are the scored alternatives, cleanest first.
	Routes []RouteScore `json:"routes"`
}
