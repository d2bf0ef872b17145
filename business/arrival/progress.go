package arrival

import (
	"math"

	"github.com/ciotlosm/neary/business/data/feed"
)

// offSegmentTolerance is how far beyond the stop-pair length the summed
// vehicle-to-stop distances may be before the GPS heuristic is downgraded
const offSegmentTolerance = 1.5

// StopSegment is the stretch of a trip between two consecutive scheduled stops
type StopSegment struct {
	PreviousStop feed.StopTime `json:"previous_stop"`
	NextStop     feed.StopTime `json:"next_stop"`
}

// ProgressEstimation locates a vehicle along its trip: the projected point,
// the stop-pair segment it occupies (nil when none could be identified with
// any confidence), and the method that produced the estimate.
type ProgressEstimation struct {
	ProjectedPoint      feed.Coordinates `json:"projected_point"`
	SegmentBetweenStops *StopSegment     `json:"segment_between_stops"`
	Confidence          Confidence       `json:"confidence"`
	Method              Method           `json:"method"`
}

// EstimateProgressWithShape locates the vehicle's current stop-pair segment
// by projecting the vehicle and every consecutive stop pair onto the route
// shape. Among the pairs the vehicle projects between, the one with the best
// segment confidence wins. Requires at least two stop times on the trip;
// with fewer, or when the vehicle projects outside every pair, the result
// carries no segment and low confidence.
func EstimateProgressWithShape(vehicle *feed.Vehicle, tripStopTimes []feed.StopTime,
	stops map[string]feed.Stop, shape *feed.RouteShape) ProgressEstimation {

	vehicleProjection := ProjectPointToShape(vehicle.Position(), shape)
	result := ProgressEstimation{
		ProjectedPoint: vehicleProjection.Point,
		Confidence:     ConfidenceLow,
		Method:         MethodRouteProjection,
	}
	if len(tripStopTimes) < 2 {
		return result
	}

	bestScore := 0.0
	for i := 0; i+1 < len(tripStopTimes); i++ {
		stopA, presentA := stops[tripStopTimes[i].StopId]
		stopB, presentB := stops[tripStopTimes[i+1].StopId]
		if !presentA || !presentB {
			continue
		}
		projectionA := ProjectPointToShape(stopA.Position(), shape)
		projectionB := ProjectPointToShape(stopB.Position(), shape)
		if !IsProjectionBetween(vehicleProjection, projectionA, projectionB, shape) {
			continue
		}
		score := CalculateSegmentConfidence(vehicleProjection, projectionA, projectionB)
		if score > bestScore {
			bestScore = score
			segment := StopSegment{PreviousStop: tripStopTimes[i], NextStop: tripStopTimes[i+1]}
			result.SegmentBetweenStops = &segment
		}
	}

	if result.SegmentBetweenStops != nil {
		if bestScore > 0.7 {
			result.Confidence = ConfidenceHigh
		} else {
			result.Confidence = ConfidenceMedium
		}
	}
	return result
}

// EstimateProgressWithStops locates the vehicle's current stop-pair segment
// from raw GPS alone, picking the consecutive pair minimizing the summed
// vehicle-to-stop distances. When that sum exceeds the pair's own length by
// more than 50 percent the vehicle is likely off the expected segment and
// confidence drops to low. This method never reports high confidence.
func EstimateProgressWithStops(vehicle *feed.Vehicle, tripStopTimes []feed.StopTime,
	stops map[string]feed.Stop) ProgressEstimation {

	result := ProgressEstimation{
		ProjectedPoint: vehicle.Position(),
		Confidence:     ConfidenceLow,
		Method:         MethodStopSegments,
	}
	if len(tripStopTimes) < 2 {
		return result
	}

	bestSum := math.MaxFloat64
	bestSegmentLength := 0.0
	for i := 0; i+1 < len(tripStopTimes); i++ {
		stopA, presentA := stops[tripStopTimes[i].StopId]
		stopB, presentB := stops[tripStopTimes[i+1].StopId]
		if !presentA || !presentB {
			continue
		}
		sum := feed.HaversineMeters(vehicle.Position(), stopA.Position()) +
			feed.HaversineMeters(vehicle.Position(), stopB.Position())
		if sum < bestSum {
			bestSum = sum
			bestSegmentLength = feed.HaversineMeters(stopA.Position(), stopB.Position())
			segment := StopSegment{PreviousStop: tripStopTimes[i], NextStop: tripStopTimes[i+1]}
			result.SegmentBetweenStops = &segment
		}
	}
	if result.SegmentBetweenStops == nil {
		return result
	}

	result.Confidence = ConfidenceMedium
	if bestSum > bestSegmentLength*offSegmentTolerance {
		result.Confidence = ConfidenceLow
	}
	return result
}
