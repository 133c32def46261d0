package exposure

import "github.com/asthmaguardian/asthmaguardian/pkg/geo"

// SamplePoints downsamples a polyline to at most budget points so a dense
// route does not turn into hundreds of pollution lookups. Polylines within
// budget are returned unchanged. Longer ones are walked with stride
// floor(len/budget), starting at the first point, and cut off at budget
// samples. The cutoff can leave the last stretch of a long polyline
// unsampled, so coverage skews toward the start of the route.
// A non-positive budget disables downsampling.
func SamplePoints(points []geo.Coordinate, budget int) []geo.Coordinate {
	if budget < 1 || len(points) <= budget {
		return points
	}

	stride := len(points) / budget
	if stride < 1 {
		stride = 1
	}

	sampled := make([]geo.Coordinate, 0, budget)
	for i := 0; i < len(points); i += stride {
		sampled = append(sampled, points[i])
		if len(sampled) == budget {
			break
		}
	}

	return sampled
}
