// Package geo provides the shared geometry primitives for route polylines:
// coordinates, bounding boxes, point-to-polyline distance, and a Google
// polyline codec for compact geometry transport.
package geo

import (
	"math"
)

// KilometersPerDegree converts angular distance in WGS84 degrees to
// kilometers. One degree of latitude is ~111 km; the same factor is applied
// to longitude, which overstates east-west distances away from the equator.
// Good enough for near-route proximity ranking, not geodesically exact.
const KilometersPerDegree = 111.0

// Coordinate represents a geographic point in WGS84 degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// BoundingBox is the minimal axis-aligned rectangle containing a set of
// coordinates. Used to scope spatial searches around a route.
type BoundingBox struct {
	MinLat float64 `json:"minLat"`
	MinLon float64 `json:"minLon"`
	MaxLat float64 `json:"maxLat"`
	MaxLon float64 `json:"maxLon"`
}

// BoundsOf computes the bounding box of the given coordinates.
// Returns false when coords is empty.
func BoundsOf(coords []Coordinate) (BoundingBox, bool) {
	if len(coords) == 0 {
		return BoundingBox{}, false
	}

	box := BoundingBox{
		MinLat: coords[0].Lat,
		MinLon: coords[0].Lon,
		MaxLat: coords[0].Lat,
		MaxLon: coords[0].Lon,
	}
	for _, c := range coords[1:] {
		box.MinLat = math.Min(box.MinLat, c.Lat)
		box.MinLon = math.Min(box.MinLon, c.Lon)
		box.MaxLat = math.Max(box.MaxLat, c.Lat)
		box.MaxLon = math.Max(box.MaxLon, c.Lon)
	}
	return box, true
}

// Contains reports whether the point lies inside the box (edges inclusive).
func (b BoundingBox) Contains(c Coordinate) bool {
	return c.Lat >= b.MinLat && c.Lat <= b.MaxLat &&
		c.Lon >= b.MinLon && c.Lon <= b.MaxLon
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() Coordinate {
	return Coordinate{
		Lat: (b.MinLat + b.MaxLat) / 2,
		Lon: (b.MinLon + b.MaxLon) / 2,
	}
}

// CircumradiusKm returns the distance from the box center to a corner, in
// kilometers under the flat-degree approximation. A circle of this radius
// around the center covers the whole box.
func (b BoundingBox) CircumradiusKm() float64 {
	halfLat := (b.MaxLat - b.MinLat) / 2
	halfLon := (b.MaxLon - b.MinLon) / 2
	return math.Hypot(halfLat, halfLon) * KilometersPerDegree
}

// DistanceToSegmentDegrees returns the distance in degrees from point p to
// the segment a-b, treating latitude and longitude as planar coordinates.
// The point is projected onto the segment's supporting line with the
// projection parameter clamped to [0, 1], so endpoints bound the answer.
func DistanceToSegmentDegrees(p, a, b Coordinate) float64 {
	dLat := b.Lat - a.Lat
	dLon := b.Lon - a.Lon

	lenSq := dLat*dLat + dLon*dLon
	if lenSq == 0 {
		// Degenerate segment: distance to the single point.
		return math.Hypot(p.Lat-a.Lat, p.Lon-a.Lon)
	}

	t := ((p.Lat-a.Lat)*dLat + (p.Lon-a.Lon)*dLon) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	return math.Hypot(p.Lat-(a.Lat+t*dLat), p.Lon-(a.Lon+t*dLon))
}

// DistanceToPolylineKm returns the minimum perpendicular distance in
// kilometers from point p to the polyline, treated as a connected sequence
// of segments. Distances are computed in raw degree space and scaled by
// KilometersPerDegree; see that constant for the accuracy caveat.
// A single-point line degenerates to point distance. Returns 0 for an
// empty line.
func DistanceToPolylineKm(p Coordinate, line []Coordinate) float64 {
	switch len(line) {
	case 0:
		return 0
	case 1:
		return math.Hypot(p.Lat-line[0].Lat, p.Lon-line[0].Lon) * KilometersPerDegree
	}

	min := math.Inf(1)
	for i := 1; i < len(line); i++ {
		d := DistanceToSegmentDegrees(p, line[i-1], line[i])
		if d < min {
			min = d
		}
	}
	return min * KilometersPerDegree
}
