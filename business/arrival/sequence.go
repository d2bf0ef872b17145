package arrival

import (
	"sort"

	"github.com/ciotlosm/neary/business/data/feed"
)

// TripStopSequence returns the vehicle's trip's scheduled stops ordered by
// stop sequence. Empty when the vehicle has no trip.
func TripStopSequence(vehicle *feed.Vehicle, stopTimes []feed.StopTime) []feed.StopTime {
	if vehicle.TripId == nil {
		return nil
	}
	var sequence []feed.StopTime
	for _, stopTime := range stopTimes {
		if stopTime.TripId == *vehicle.TripId {
			sequence = append(sequence, stopTime)
		}
	}
	sort.Slice(sequence, func(i, j int) bool {
		return sequence[i].StopSequence < sequence[j].StopSequence
	})
	return sequence
}

// FindStopInSequence locates stopId within an ordered trip stop sequence.
// Returns -1 and nil when the stop is not on the trip.
func FindStopInSequence(stopId string, tripStopTimes []feed.StopTime) (int, *feed.StopTime) {
	for i := range tripStopTimes {
		if tripStopTimes[i].StopId == stopId {
			return i, &tripStopTimes[i]
		}
	}
	return -1, nil
}

// IntermediateStops is the set of scheduled stops between a vehicle's
// estimated position and the target stop, used by the stop-to-stop fallback
// distance method
type IntermediateStops struct {
	Coordinates []feed.Coordinates
	Count       int
	TargetIndex int
}

// IntermediateStopData locates the target stop in the vehicle's trip
// sequence and collects the stops between the vehicle's estimated next stop
// and the target. When progress estimation fails the span starts at the
// beginning of the trip. TargetIndex is -1 when the target stop is not on
// the trip.
func IntermediateStopData(vehicle *feed.Vehicle, targetStop feed.Stop,
	stopTimes []feed.StopTime, stops map[string]feed.Stop) IntermediateStops {

	tripStopTimes := TripStopSequence(vehicle, stopTimes)
	targetIndex, _ := FindStopInSequence(targetStop.StopId, tripStopTimes)
	if targetIndex < 0 {
		return IntermediateStops{TargetIndex: -1}
	}

	start := 0
	progress := EstimateProgressWithStops(vehicle, tripStopTimes, stops)
	if progress.SegmentBetweenStops != nil {
		if index, _ := FindStopInSequence(progress.SegmentBetweenStops.NextStop.StopId, tripStopTimes); index >= 0 {
			start = index
		}
	}

	count := targetIndex - start
	if count < 0 {
		count = 0
	}
	coordinates := make([]feed.Coordinates, 0, count)
	for i := start; i < targetIndex; i++ {
		if stop, present := stops[tripStopTimes[i].StopId]; present {
			coordinates = append(coordinates, stop.Position())
		}
	}
	return IntermediateStops{
		Coordinates: coordinates,
		Count:       count,
		TargetIndex: targetIndex,
	}
}
