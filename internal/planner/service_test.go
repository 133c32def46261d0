package planner_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asthmaguardian/asthmaguardian/internal/airquality"
	"github.com/asthmaguardian/asthmaguardian/internal/exposure"
	"github.com/asthmaguardian/asthmaguardian/internal/geocoding"
	"github.com/asthmaguardian/asthmaguardian/internal/places"
	"github.com/asthmaguardian/asthmaguardian/internal/planner"
	"github.com/asthmaguardian/asthmaguardian/pkg/geo"
)

type mockGeocoder struct {
	locations map[string]*geocoding.Location
	errs      map[string]error
	calls     []string
}

func (m *mockGeocoder) Geocode(_ context.Context, place string) (*geocoding.Location, error) {
	m.calls = append(m.calls, place)
	if err, ok := m.errs[place]; ok {
		return nil, err
	}
	if loc, ok := m.locations[place]; ok {
		return loc, nil
	}
	return nil, geocoding.ErrNotFound
}

func (m *mockGeocoder) Name() string { return "mock-geocoder" }

type mockTravelDays struct {
	window   *airquality.TravelWindow
	err      error
	zips     []string
	horizons []int
}

func (m *mockTravelDays) TravelWindow(_ context.Context, zipCode string, horizonDays int) (*airquality.TravelWindow, error) {
	m.zips = append(m.zips, zipCode)
	m.horizons = append(m.horizons, horizonDays)
	if m.err != nil {
		return nil, m.err
	}
	return m.window, nil
}

type mockRanker struct {
	scores []exposure.RouteScore
	err    error
	reqs   []exposure.RankRequest
}

func (m *mockRanker) RankRoutes(_ context.Context, req exposure.RankRequest) ([]exposure.RouteScore, error) {
	m.reqs = append(m.reqs, req)
	if m.err != nil {
		return nil, m.err
	}
	return m.scores, nil
}

type mockStops struct {
	pediatric []places.ProximityStop
	food      []places.ProximityStop
	routes    [][]geo.Coordinate
}

func (m *mockStops) PediatricStops(_ context.Context, route []geo.Coordinate) []places.ProximityStop {
	m.routes = append(m.routes, route)
	return m.pediatric
}

func (m *mockStops) FoodStops(_ context.Context, route []geo.Coordinate) []places.ProximityStop {
	m.routes = append(m.routes, route)
	return m.food
}

// fixture wires a planner with happy-path collaborators.
type fixture struct {
	geocoder   *mockGeocoder
	travelDays *mockTravelDays
	ranker     *mockRanker
	stops      *mockStops
	service    *planner.Service
}

func newFixture() *fixture {
	fresno := geo.Coordinate{Lat: 36.7378, Lon: -119.7871}
	yosemite := geo.Coordinate{Lat: 37.7456, Lon: -119.5936}
	bestGeometry := []geo.Coordinate{fresno, {Lat: 37.2, Lon: -119.7}, yosemite}

	f := &fixture{
		geocoder: &mockGeocoder{locations: map[string]*geocoding.Location{
			"Fresno":   {Coordinate: fresno, Label: "Fresno, CA, United States"},
			"Yosemite": {Coordinate: yosemite, Label: "Yosemite Valley, CA, United States"},
		}},
		travelDays: &mockTravelDays{window: &airquality.TravelWindow{
			Days: []airquality.ForecastDay{
				{Date: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), AQI: 80, Category: "Moderate", Pollutant: "PM2.5"},
				{Date: time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), AQI: 35, Category: "Good", Pollutant: "OZONE"},
			},
			Best: airquality.ForecastDay{Date: time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), AQI: 35, Category: "Good", Pollutant: "OZONE"},
		}},
		ranker: &mockRanker{scores: []exposure.RouteScore{
			{Name: "Avoid highways", MeanAQI: 32, MaxAQI: 41, Geometry: bestGeometry},
			{Name: "Balanced", MeanAQI: 48, MaxAQI: 63},
		}},
		stops: &mockStops{
			pediatric: []places.ProximityStop{{Place: places.Place{Name: "Valley Children's Hospital"}, DistanceKm: 2.1}},
			food:      []places.ProximityStop{{Place: places.Place{Name: "Oakhurst Diner"}, DistanceKm: 0.4}},
		},
	}

	f.service = planner.NewService(planner.ServiceConfig{
		Geocoder:   f.geocoder,
		TravelDays: f.travelDays,
		Ranker:     f.ranker,
		Stops:      f.stops,
		Logger:     zerolog.Nop(),
	})
	return f
}

func planRequest() planner.PlanRequest {
	return planner.PlanRequest{
		Origin:        "Fresno",
		Destination:   "Yosemite",
		HomeZip:       "93720",
		LookAheadDays: 3,
	}
}

func TestService_PlanTrip(t *testing.T) {
	f := newFixture()

	plan, err := f.service.PlanTrip(context.Background(), planRequest())
	require.NoError(t, err)

	assert.True(t, len(plan.ID) > 5 && plan.ID[:5] == "plan_", "plan ID %q", plan.ID)
	assert.WithinDuration(t, time.Now(), plan.CreatedAt, time.Minute)

	assert.Equal(t, "Fresno, CA, United States", plan.Origin.Label)
	assert.Equal(t, "Yosemite Valley, CA, United States", plan.Destination.Label)
	assert.Equal(t, "93720", plan.HomeZip)

	assert.Len(t, plan.Window.Days, 2)
	assert.Equal(t, 35, plan.Window.Best.AQI)

	require.Len(t, plan.Routes, 2)
	assert.Equal(t, "Avoid highways", plan.BestRoute().Name)

	require.Len(t, plan.PediatricStops, 1)
	assert.Equal(t, "Valley Children's Hospital", plan.PediatricStops[0].Name)
	require.Len(t, plan.FoodStops, 1)
	assert.Equal(t, "Oakhurst Diner", plan.FoodStops[0].Name)

	// The forecast is fetched for the home zip with the requested horizon.
	assert.Equal(t, []string{"93720"}, f.travelDays.zips)
	assert.Equal(t, []int{3}, f.travelDays.horizons)

	// Ranking runs on the geocoded coordinates but keeps the user's own
	// place names for the map links.
	require.Len(t, f.ranker.reqs, 1)
	req := f.ranker.reqs[0]
	assert.InDelta(t, 36.7378, req.Origin.Lat, 1e-9)
	assert.InDelta(t, 37.7456, req.Destination.Lat, 1e-9)
	assert.Equal(t, "Fresno", req.OriginLabel)
	assert.Equal(t, "Yosemite", req.DestinationLabel)

	// Both stop lookups use the geometry of the recommended route.
	require.Len(t, f.stops.routes, 2)
	for _, route := range f.stops.routes {
		assert.Len(t, route, 3)
	}
}

func TestService_PlanTrip_ValidationErrors(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*planner.PlanRequest)
		wantField string
	}{
		{"empty origin", func(r *planner.PlanRequest) { r.Origin = "  " }, "origin"},
		{"empty destination", func(r *planner.PlanRequest) { r.Destination = "" }, "destination"},
		{"missing zip", func(r *planner.PlanRequest) { r.HomeZip = "" }, "homeZip"},
		{"short zip", func(r *planner.PlanRequest) { r.HomeZip = "1234" }, "homeZip"},
		{"non-numeric zip", func(r *planner.PlanRequest) { r.HomeZip = "ABCDE" }, "homeZip"},
		{"negative look-ahead", func(r *planner.PlanRequest) { r.LookAheadDays = -1 }, "lookAheadDays"},
		{"look-ahead beyond horizon", func(r *planner.PlanRequest) { r.LookAheadDays = 8 }, "lookAheadDays"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			req := planRequest()
			tt.mutate(&req)

			_, err := f.service.PlanTrip(context.Background(), req)
			require.Error(t, err)

			var validationErr *planner.ValidationError
			require.ErrorAs(t, err, &validationErr)
			require.NotEmpty(t, validationErr.Errors)
			assert.Equal(t, tt.wantField, validationErr.Errors[0].Field)

			// Nothing downstream ran.
			assert.Empty(t, f.travelDays.zips)
			assert.Empty(t, f.geocoder.calls)
		})
	}
}

func TestService_PlanTrip_ForecastFailureAbortsBeforeGeocoding(t *testing.T) {
	f := newFixture()
	f.travelDays.err = airquality.ErrNoData

	_, err := f.service.PlanTrip(context.Background(), planRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, airquality.ErrNoData)

	assert.Empty(t, f.geocoder.calls, "geocoding must not run when travel-day selection fails")
	assert.Empty(t, f.ranker.reqs)
}

func TestService_PlanTrip_GeocodeFailurePropagates(t *testing.T) {
	f := newFixture()
	req := planRequest()
	req.Destination = "Nowhereville"

	_, err := f.service.PlanTrip(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, geocoding.ErrNotFound)

	assert.Empty(t, f.ranker.reqs, "ranking must not run when geocoding fails")
}

func TestService_PlanTrip_NoScoreableRoutesPropagates(t *testing.T) {
	f := newFixture()
	f.ranker.err = exposure.ErrNoScoreableRoutes

	_, err := f.service.PlanTrip(context.Background(), planRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, exposure.ErrNoScoreableRoutes)

	_, err = f.service.LatestPlan()
	assert.ErrorIs(t, err, planner.ErrNoPlan)
}

func TestService_PlanTrip_FailedRunKeepsPreviousPlan(t *testing.T) {
	f := newFixture()

	first, err := f.service.PlanTrip(context.Background(), planRequest())
	require.NoError(t, err)

	f.ranker.err = exposure.ErrNoScoreableRoutes
	_, err = f.service.PlanTrip(context.Background(), planRequest())
	require.Error(t, err)

	cached, err := f.service.LatestPlan()
	require.NoError(t, err)
	assert.Equal(t, first.ID, cached.ID)
}

func TestService_LatestPlan(t *testing.T) {
	f := newFixture()

	_, err := f.service.LatestPlan()
	assert.ErrorIs(t, err, planner.ErrNoPlan)

	plan, err := f.service.PlanTrip(context.Background(), planRequest())
	require.NoError(t, err)

	geocodeCalls := len(f.geocoder.calls)

	cached, err := f.service.LatestPlan()
	require.NoError(t, err)
	assert.Equal(t, plan.ID, cached.ID)

	// Redisplay hits no provider.
	assert.Len(t, f.geocoder.calls, geocodeCalls)
	assert.Len(t, f.travelDays.zips, 1)
}

func TestService_LatestPlan_OverwrittenBySuccessfulRun(t *testing.T) {
	f := newFixture()

	first, err := f.service.PlanTrip(context.Background(), planRequest())
	require.NoError(t, err)

	second, err := f.service.PlanTrip(context.Background(), planRequest())
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	cached, err := f.service.LatestPlan()
	require.NoError(t, err)
	assert.Equal(t, second.ID, cached.ID)
}

func TestService_RankRoutes(t *testing.T) {
	f := newFixture()

	scores, err := f.service.RankRoutes(context.Background(), "Fresno", "Yosemite")
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, "Avoid highways", scores[0].Name)

	require.Len(t, f.ranker.reqs, 1)
	assert.Equal(t, "Fresno", f.ranker.reqs[0].OriginLabel)
	assert.Equal(t, "Yosemite", f.ranker.reqs[0].DestinationLabel)

	// The narrow ranking endpoint never touches the plan cache.
	_, err = f.service.LatestPlan()
	assert.ErrorIs(t, err, planner.ErrNoPlan)
}

func TestService_RankRoutes_Validation(t *testing.T) {
	f := newFixture()

	_, err := f.service.RankRoutes(context.Background(), "", "Yosemite")
	var validationErr *planner.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "origin", validationErr.Errors[0].Field)
}

func TestService_SuggestTravelDay(t *testing.T) {
	f := newFixture()

	window, err := f.service.SuggestTravelDay(context.Background(), "93720", 5)
	require.NoError(t, err)
	assert.Equal(t, 35, window.Best.AQI)
	assert.Equal(t, []int{5}, f.travelDays.horizons)
}

func TestService_SuggestTravelDay_InvalidZip(t *testing.T) {
	f := newFixture()

	_, err := f.service.SuggestTravelDay(context.Background(), "fresno", 3)
	var validationErr *planner.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "zip", validationErr.Errors[0].Field)

	assert.Empty(t, f.travelDays.zips)
}
