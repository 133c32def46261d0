package handler

import (
	"github.com/asthmaguardian/asthmaguardian/internal/airquality"
	"github.com/asthmaguardian/asthmaguardian/internal/api/models"
	"github.com/asthmaguardian/asthmaguardian/internal/exposure"
	"github.com/asthmaguardian/asthmaguardian/internal/geocoding"
	"github.com/asthmaguardian/asthmaguardian/internal/places"
	"github.com/asthmaguardian/asthmaguardian/internal/planner"
	"github.com/asthmaguardian/asthmaguardian/pkg/geo"
)

func tripPlanToModel(plan *planner.TripPlan) models.TripPlan {
	return models.TripPlan{
		ID:             plan.ID,
		CreatedAt:      models.Timestamp(plan.CreatedAt),
		Origin:         locationToModel(plan.Origin),
		Destination:    locationToModel(plan.Destination),
		HomeZip:        plan.HomeZip,
		TravelWindow:   travelWindowToModel(plan.Window),
		Routes:         routeScoresToModel(plan.Routes),
		BestRoute:      routeScoreToModel(plan.BestRoute()),
		PediatricStops: stopsToModel(plan.PediatricStops),
		FoodStops:      stopsToModel(plan.FoodStops),
	}
}

func locationToModel(loc geocoding.Location) models.PlanLocation {
	return models.PlanLocation{
		Label: loc.Label,
		Point: models.Point{Lat: loc.Coordinate.Lat, Lon: loc.Coordinate.Lon},
	}
}

func routeScoresToModel(scores []exposure.RouteScore) []models.RouteScore {
	out := make([]models.RouteScore, 0, len(scores))
	for _, s := range scores {
		out = append(out, routeScoreToModel(s))
	}
	return out
}

func routeScoreToModel(s exposure.RouteScore) models.RouteScore {
	return models.RouteScore{
		Name:            s.Name,
		DistanceKm:      s.DistanceKm,
		DurationMinutes: s.DurationMinutes,
		MeanAqi:         s.MeanAQI,
		MaxAqi:          s.MaxAQI,
		Band:            models.BandForAQI(s.MeanAQI),
		SampleCount:     s.SampleCount,
		MapsUrl:         s.MapsURL,
		Geometry: models.RouteGeometry{
			Polyline:   geo.EncodePolyline(s.Geometry),
			PointCount: len(s.Geometry),
		},
	}
}

func travelWindowToModel(window airquality.TravelWindow) models.TravelWindow {
	days := make([]models.TravelDay, 0, len(window.Days))
	for _, d := range window.Days {
		days = append(days, forecastDayToModel(d))
	}
	return models.TravelWindow{
		Days: days,
		Best: forecastDayToModel(window.Best),
	}
}

func forecastDayToModel(day airquality.ForecastDay) models.TravelDay {
	return models.TravelDay{
		Date:      day.Date.Format("2006-01-02"),
		Aqi:       day.AQI,
		Band:      models.BandForAQI(float64(day.AQI)),
		Category:  day.Category,
		Pollutant: day.Pollutant,
	}
}

func stopsToModel(stops []places.ProximityStop) []models.ProximityStop {
	out := make([]models.ProximityStop, 0, len(stops))
	for _, s := range stops {
		out = append(out, models.ProximityStop{
			Name:       s.Name,
			Point:      models.Point{Lat: s.Coordinate.Lat, Lon: s.Coordinate.Lon},
			Address:    s.Address,
			DistanceKm: s.DistanceKm,
			Rating:     s.Rating,
		})
	}
	return out
}
