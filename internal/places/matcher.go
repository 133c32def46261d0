package places

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/asthmaguardian/asthmaguardian/pkg/geo"
)

// Classifier decides whether a place belongs to a specialized group.
type Classifier func(p Place) bool

// PediatricKeywords is the fixed keyword set for recognizing pediatric
// care facilities by name or address.
var PediatricKeywords = []string{
	"pediatric",
	"paediatric",
	"children",
	"kids",
	"infant",
}

// PediatricClassifier reports whether a place's name or address mentions
// pediatric care. Matching is a case-insensitive substring check against
// PediatricKeywords; it is a heuristic, not a medical taxonomy.
func PediatricClassifier(p Place) bool {
	text := strings.ToLower(p.Name + " " + p.Address)
	for _, keyword := range PediatricKeywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// Defaults for the pediatric specialization and result caps.
const (
	// DefaultPediatricFallbackThreshold is the minimum number of pediatric
	// matches before the search broadens to general hospitals and clinics.
	DefaultPediatricFallbackThreshold = 3
	// DefaultPediatricCap bounds the pediatric stop list.
	DefaultPediatricCap = 10
	// DefaultFoodCap bounds the food stop list.
	DefaultFoodCap = 20
)

// MatcherConfig holds configuration for the proximity matcher.
type MatcherConfig struct {
	// Provider is the points-of-interest provider.
	Provider Provider

	// Logger for matcher operations.
	Logger zerolog.Logger

	// Pediatric overrides the pediatric classifier (default:
	// PediatricClassifier).
	Pediatric Classifier

	// FallbackThreshold is the pediatric match count below which the
	// search broadens (default: 3).
	FallbackThreshold int

	// PediatricCap bounds the pediatric stop list (default: 10).
	PediatricCap int

	// FoodCap bounds the food stop list (default: 20).
	FoodCap int
}

// Matcher finds, ranks and filters points of interest around a route.
// Stops are advisory: every provider failure degrades to an empty list,
// never an error.
type Matcher struct {
	provider          Provider
	logger            zerolog.Logger
	pediatric         Classifier
	fallbackThreshold int
	pediatricCap      int
	foodCap           int
}

// NewMatcher creates a new proximity matcher.
func NewMatcher(cfg MatcherConfig) *Matcher {
	pediatric := cfg.Pediatric
	if pediatric == nil {
		pediatric = PediatricClassifier
	}

	fallbackThreshold := cfg.FallbackThreshold
	if fallbackThreshold <= 0 {
		fallbackThreshold = DefaultPediatricFallbackThreshold
	}

	pediatricCap := cfg.PediatricCap
	if pediatricCap <= 0 {
		pediatricCap = DefaultPediatricCap
	}

	foodCap := cfg.FoodCap
	if foodCap <= 0 {
		foodCap = DefaultFoodCap
	}

	return &Matcher{
		provider:          cfg.Provider,
		logger:            cfg.Logger,
		pediatric:         pediatric,
		fallbackThreshold: fallbackThreshold,
		pediatricCap:      pediatricCap,
		foodCap:           foodCap,
	}
}

// PediatricStops returns pediatric care stops near the route, closest
// first. Healthcare places matching the pediatric classifier come first;
// when fewer than the fallback threshold match, general hospitals and
// clinics are merged in after them, deduplicated by name in first-seen
// order. The list is capped at the pediatric cap.
func (m *Matcher) PediatricStops(ctx context.Context, route []geo.Coordinate) []ProximityStop {
	healthcare := m.stopsNearRoute(ctx, route, []Category{CategoryHealthcare})

	pediatric := make([]ProximityStop, 0, len(healthcare))
	for _, stop := range healthcare {
		if m.pediatric(stop.Place) {
			pediatric = append(pediatric, stop)
		}
	}

	if len(pediatric) < m.fallbackThreshold {
		broader := m.stopsNearRoute(ctx, route, []Category{CategoryHospital, CategoryClinic})
		pediatric = mergeByName(pediatric, broader)
	}

	return capStops(pediatric, m.pediatricCap)
}

// FoodStops returns food stops near the route, closest first, capped at
// the food cap.
func (m *Matcher) FoodStops(ctx context.Context, route []geo.Coordinate) []ProximityStop {
	stops := m.stopsNearRoute(ctx, route, []Category{CategoryRestaurant, CategoryFastFood, CategoryCafe})
	return capStops(stops, m.foodCap)
}

// stopsNearRoute queries the provider for the route's bounding box, then
// ranks candidates by true distance to the polyline. The box admits
// points far from the route shape; the distance sort is what puts the
// near ones first.
func (m *Matcher) stopsNearRoute(ctx context.Context, route []geo.Coordinate, categories []Category) []ProximityStop {
	box, ok := geo.BoundsOf(route)
	if !ok {
		return nil
	}

	found, err := m.provider.SearchPlaces(ctx, box, categories)
	if err != nil {
		m.logger.Warn().
			Str("provider", m.provider.Name()).
			Err(err).
			Msg("places lookup failed, continuing without stops")
		return nil
	}

	stops := make([]ProximityStop, 0, len(found))
	for _, place := range found {
		stops = append(stops, ProximityStop{
			Place:      place,
			DistanceKm: geo.DistanceToPolylineKm(place.Coordinate, route),
		})
	}

	sort.SliceStable(stops, func(i, j int) bool {
		if stops[i].DistanceKm != stops[j].DistanceKm {
			return stops[i].DistanceKm < stops[j].DistanceKm
		}
		return stops[i].Rating > stops[j].Rating
	})

	return stops
}

// mergeByName concatenates two stop lists, dropping later entries whose
// name was already seen.
func mergeByName(first, second []ProximityStop) []ProximityStop {
	seen := make(map[string]bool, len(first)+len(second))
	merged := make([]ProximityStop, 0, len(first)+len(second))
	for _, list := range [][]ProximityStop{first, second} {
		for _, stop := range list {
			if seen[stop.Name] {
				continue
			}
			seen[stop.Name] = true
			merged = append(merged, stop)
		}
	}
	return merged
}

func capStops(stops []ProximityStop, limit int) []ProximityStop {
	if len(stops) > limit {
		return stops[:limit]
	}
	return stops
}
