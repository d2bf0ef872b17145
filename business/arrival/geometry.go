package arrival

import (
	"math"

	"github.com/ciotlosm/neary/business/data/feed"
)

// ProjectionResult is the closest point on a route shape to an arbitrary
// position, the perpendicular distance to it in meters, the owning segment,
// and the fractional position along that segment.
type ProjectionResult struct {
	Point                feed.Coordinates `json:"point"`
	DistanceToShape      float64          `json:"distance_to_shape"`
	SegmentIndex         int              `json:"segment_index"`
	PositionAlongSegment float64          `json:"position_along_segment"`
}

// ProjectPointToSegment projects point orthogonally onto the segment from
// segStart to segEnd, clamped to the segment ends. Returns the projected
// point and its parametric position t in [0,1].
// A zero length segment projects to segStart with t of 0.
// Works in degree space, adequate for coordinates within one transit area;
// will not produce good results where longitude rolls over from -179.9 to 179.9
func ProjectPointToSegment(point, segStart, segEnd feed.Coordinates) (feed.Coordinates, float64) {
	diffLat := segEnd.Latitude - segStart.Latitude
	diffLon := segEnd.Longitude - segStart.Longitude
	lengthSquared := diffLat*diffLat + diffLon*diffLon
	if lengthSquared == 0 {
		return segStart, 0
	}
	dot := (point.Latitude-segStart.Latitude)*diffLat + (point.Longitude-segStart.Longitude)*diffLon
	t := math.Min(1, math.Max(0, dot/lengthSquared))
	return feed.Coordinates{
		Latitude:  segStart.Latitude + diffLat*t,
		Longitude: segStart.Longitude + diffLon*t,
	}, t
}

// CalculateBearing returns the initial bearing in degrees [0,360) from start
// to end using the standard spherical bearing formula
func CalculateBearing(start, end feed.Coordinates) float64 {
	lat1 := start.Latitude * math.Pi / 180
	lat2 := end.Latitude * math.Pi / 180
	diffLon := (end.Longitude - start.Longitude) * math.Pi / 180

	y := math.Sin(diffLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(diffLon)
	bearing := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(bearing+360, 360)
}

// DistancePointToLineSegment returns the great-circle distance in meters from
// point to its clamped projection on the segment from segStart to segEnd
func DistancePointToLineSegment(point, segStart, segEnd feed.Coordinates) float64 {
	projected, _ := ProjectPointToSegment(point, segStart, segEnd)
	return feed.HaversineMeters(point, projected)
}

// CalculateRoutePosition returns the cumulative along-route distance in
// meters from the start of the shape to the projection: the full length of
// every segment before the owning segment plus the traveled fraction of the
// owning segment.
func CalculateRoutePosition(projection ProjectionResult, shape *feed.RouteShape) float64 {
	position := 0.0
	for i := 0; i < projection.SegmentIndex && i < len(shape.Segments); i++ {
		position += shape.Segments[i].Distance
	}
	if projection.SegmentIndex < len(shape.Segments) {
		position += projection.PositionAlongSegment * shape.Segments[projection.SegmentIndex].Distance
	}
	return position
}

// IsProjectionBetween returns true when the vehicle's route position falls
// within the closed interval between the two stop projections' route
// positions, in either stop order.
func IsProjectionBetween(vehicleProjection, stopAProjection, stopBProjection ProjectionResult,
	shape *feed.RouteShape) bool {
	vehiclePosition := CalculateRoutePosition(vehicleProjection, shape)
	positionA := CalculateRoutePosition(stopAProjection, shape)
	positionB := CalculateRoutePosition(stopBProjection, shape)
	return vehiclePosition >= math.Min(positionA, positionB) &&
		vehiclePosition <= math.Max(positionA, positionB)
}

// CalculateSegmentConfidence scores a candidate stop-pair segment from the
// worst of the three projections' perpendicular distances to the shape
func CalculateSegmentConfidence(vehicleProjection, stopAProjection, stopBProjection ProjectionResult) float64 {
	maxDistance := math.Max(vehicleProjection.DistanceToShape,
		math.Max(stopAProjection.DistanceToShape, stopBProjection.DistanceToShape))
	switch {
	case maxDistance < 50:
		return 0.9
	case maxDistance < 100:
		return 0.7
	case maxDistance < 200:
		return 0.5
	}
	return 0.3
}
