package arrival

import (
	"sort"
	"time"

	"github.com/ciotlosm/neary/business/data/feed"
)

const (
	// stalePositionWindow is how old a vehicle position may be before the
	// vehicle is treated as off route
	stalePositionWindow = 30 * time.Minute

	// offRouteDistanceMeters is how far a vehicle may project from its route
	// shape before it is treated as off route
	offRouteDistanceMeters = 200.0
)

// ArrivalTimeResult is the per-vehicle output of the engine. EstimatedMinutes
// is negative when the vehicle has already departed the target stop.
type ArrivalTimeResult struct {
	VehicleId        string        `json:"vehicle_id"`
	EstimatedMinutes float64       `json:"estimated_minutes"`
	Status           ArrivalStatus `json:"status"`
	Message          string        `json:"message"`
	Confidence       Confidence    `json:"confidence"`
	Method           Method        `json:"method"`
	DistanceMeters   float64       `json:"distance_meters"`
}

// DetermineTargetStopRelation classifies the target stop against the
// vehicle's trip progress. A stop absent from the trip's sequence is
// not_in_trip. Otherwise the vehicle's stop-pair segment is estimated with
// the shape when one is supplied, and the target's stop sequence is compared
// to the segment's next stop.
//
// When no segment can be identified the vehicle is reported as still
// approaching. This optimistic default is kept from the product's original
// behavior: a vehicle that has passed the stop but cannot be confidently
// placed will be reported as upcoming.
func DetermineTargetStopRelation(vehicle *feed.Vehicle, targetStop feed.Stop,
	stopTimes []feed.StopTime, stops map[string]feed.Stop, shape *feed.RouteShape) TargetStopRelation {

	tripStopTimes := TripStopSequence(vehicle, stopTimes)
	_, targetStopTime := FindStopInSequence(targetStop.StopId, tripStopTimes)
	if targetStopTime == nil {
		return RelationNotInTrip
	}

	var progress ProgressEstimation
	if shape != nil {
		progress = EstimateProgressWithShape(vehicle, tripStopTimes, stops, shape)
	} else {
		progress = EstimateProgressWithStops(vehicle, tripStopTimes, stops)
	}
	if progress.SegmentBetweenStops == nil {
		return RelationUpcoming
	}
	if targetStopTime.StopSequence >= progress.SegmentBetweenStops.NextStop.StopSequence {
		return RelationUpcoming
	}
	return RelationPassed
}

// CalculateVehicleArrivalTime runs the full pipeline for one vehicle:
// intermediate stop data, distance by the shape method when a shape is
// supplied or the stop-segment method otherwise, the ETA model, and status
// derivation.
func CalculateVehicleArrivalTime(vehicle *feed.Vehicle, targetStop feed.Stop,
	stopTimes []feed.StopTime, stops map[string]feed.Stop, shape *feed.RouteShape) ArrivalTimeResult {

	intermediate := IntermediateStopData(vehicle, targetStop, stopTimes, stops)

	var distance DistanceResult
	if shape != nil {
		distance = CalculateDistanceAlongShape(vehicle.Position(), targetStop.Position(), shape)
	} else {
		distance = CalculateDistanceViaStops(vehicle.Position(), targetStop.Position(), intermediate.Coordinates)
	}

	minutes := EstimateMinutes(distance.TotalDistance, intermediate.Count)
	relation := DetermineTargetStopRelation(vehicle, targetStop, stopTimes, stops, shape)
	status := ArrivalStatusOf(vehicle, targetStop, relation)
	switch status {
	case StatusAtStop:
		minutes = 0
	case StatusDeparted:
		// negative minutes mean already past the stop
		minutes = -minutes
	}

	return ArrivalTimeResult{
		VehicleId:        vehicle.VehicleId,
		EstimatedMinutes: minutes,
		Status:           status,
		Message:          StatusMessageWithConfidence(status, minutes, distance.Confidence),
		Confidence:       distance.Confidence,
		Method:           distance.Method,
		DistanceMeters:   distance.TotalDistance,
	}
}

// CalculateMultipleArrivals computes an arrival result for every vehicle
// whose trip serves the target stop, resolving each vehicle's route shape
// through its trip's shape id
func CalculateMultipleArrivals(vehicles []feed.Vehicle, targetStop feed.Stop,
	trips map[string]feed.Trip, stopTimes []feed.StopTime, stops map[string]feed.Stop,
	shapes map[string]*feed.RouteShape) []ArrivalTimeResult {

	servingTrips := make(map[string]bool)
	for _, stopTime := range stopTimes {
		if stopTime.StopId == targetStop.StopId {
			servingTrips[stopTime.TripId] = true
		}
	}

	results := make([]ArrivalTimeResult, 0, len(vehicles))
	for i := range vehicles {
		vehicle := &vehicles[i]
		if vehicle.TripId == nil || !servingTrips[*vehicle.TripId] {
			continue
		}
		var shape *feed.RouteShape
		if trip, present := trips[*vehicle.TripId]; present && trip.ShapeId != nil {
			shape = shapes[*trip.ShapeId]
		}
		results = append(results, CalculateVehicleArrivalTime(vehicle, targetStop, stopTimes, stops, shape))
	}
	return results
}

// statusPriority orders statuses for display: vehicles at the stop first,
// then approaching, then departed, then off route
var statusPriority = map[ArrivalStatus]int{
	StatusAtStop:    0,
	StatusInMinutes: 1,
	StatusDeparted:  2,
	StatusOffRoute:  3,
}

// SortVehiclesByArrival returns results ordered by status priority, then
// estimated minutes, then vehicle id. The sort is stable and idempotent.
func SortVehiclesByArrival(results []ArrivalTimeResult) []ArrivalTimeResult {
	sorted := make([]ArrivalTimeResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		if statusPriority[sorted[i].Status] != statusPriority[sorted[j].Status] {
			return statusPriority[sorted[i].Status] < statusPriority[sorted[j].Status]
		}
		if sorted[i].EstimatedMinutes != sorted[j].EstimatedMinutes {
			return sorted[i].EstimatedMinutes < sorted[j].EstimatedMinutes
		}
		return sorted[i].VehicleId < sorted[j].VehicleId
	})
	return sorted
}

// IsVehicleOffRoute reports whether a vehicle should be treated as off its
// route: missing route or trip assignment, a position older than the
// staleness window, or, when a shape is supplied, a projection too far from
// the shape.
func IsVehicleOffRoute(vehicle *feed.Vehicle, shape *feed.RouteShape, now time.Time) bool {
	if vehicle.RouteId == nil || vehicle.TripId == nil {
		return true
	}
	if now.Sub(vehicle.Timestamp) > stalePositionWindow {
		return true
	}
	if shape != nil {
		projection := ProjectPointToShape(vehicle.Position(), shape)
		if projection.DistanceToShape > offRouteDistanceMeters {
			return true
		}
	}
	return false
}
