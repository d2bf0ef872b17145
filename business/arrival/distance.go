package arrival

import (
	"math"

	"github.com/ciotlosm/neary/business/data/feed"
)

// DistanceResult is the estimated distance in meters a vehicle must travel
// to reach the target stop, with the confidence grade and method that
// produced it
type DistanceResult struct {
	TotalDistance float64    `json:"total_distance"`
	Confidence    Confidence `json:"confidence"`
	Method        Method     `json:"method"`
}

// ProjectPointToShape projects point onto every segment of the shape and
// keeps the minimum distance result. Linear in the segment count, which is
// adequate for shapes of a few hundred points.
func ProjectPointToShape(point feed.Coordinates, shape *feed.RouteShape) ProjectionResult {
	if len(shape.Segments) == 0 {
		// single point shape, the projection is the point itself
		result := ProjectionResult{Point: point}
		if len(shape.Points) > 0 {
			result.Point = shape.Points[0]
			result.DistanceToShape = feed.HaversineMeters(point, shape.Points[0])
		}
		return result
	}
	best := ProjectionResult{DistanceToShape: math.MaxFloat64}
	for i, segment := range shape.Segments {
		projected, t := ProjectPointToSegment(point, segment.Start, segment.End)
		distance := feed.HaversineMeters(point, projected)
		if distance < best.DistanceToShape {
			best = ProjectionResult{
				Point:                projected,
				DistanceToShape:      distance,
				SegmentIndex:         i,
				PositionAlongSegment: t,
			}
		}
	}
	return best
}

// CalculateDistanceAlongShape projects the vehicle and the target stop onto
// the shape and totals: distance from the vehicle to the shape, the
// along-route distance between the two projections, and the distance from
// the shape to the stop. Confidence is high when both projections sit within
// 50m of the shape, medium within 200m, low beyond that.
func CalculateDistanceAlongShape(vehiclePosition, stopPosition feed.Coordinates,
	shape *feed.RouteShape) DistanceResult {

	vehicleProjection := ProjectPointToShape(vehiclePosition, shape)
	stopProjection := ProjectPointToShape(stopPosition, shape)

	alongRoute := math.Abs(CalculateRoutePosition(stopProjection, shape) -
		CalculateRoutePosition(vehicleProjection, shape))

	confidence := ConfidenceLow
	if vehicleProjection.DistanceToShape < 50 && stopProjection.DistanceToShape < 50 {
		confidence = ConfidenceHigh
	} else if vehicleProjection.DistanceToShape < 200 && stopProjection.DistanceToShape < 200 {
		confidence = ConfidenceMedium
	}

	return DistanceResult{
		TotalDistance: vehicleProjection.DistanceToShape + alongRoute + stopProjection.DistanceToShape,
		Confidence:    confidence,
		Method:        MethodRouteProjection,
	}
}

// CalculateDistanceViaStops sums straight-line distances from the vehicle
// through each intermediate stop to the target stop. Used when no route
// shape is available for the vehicle's trip; the method is inherently
// approximate so it always reports medium confidence.
func CalculateDistanceViaStops(vehiclePosition, stopPosition feed.Coordinates,
	intermediateStops []feed.Coordinates) DistanceResult {

	total := 0.0
	previous := vehiclePosition
	for _, stop := range intermediateStops {
		total += feed.HaversineMeters(previous, stop)
		previous = stop
	}
	total += feed.HaversineMeters(previous, stopPosition)

	return DistanceResult{
		TotalDistance: total,
		Confidence:    ConfidenceMedium,
		Method:        MethodStopSegments,
	}
}
