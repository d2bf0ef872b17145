package arrival

import (
	"fmt"
	"math"

	"github.com/ciotlosm/neary/business/data/feed"
)

// ETA policy constants. The estimate is deliberately simple: an assumed
// average in-service speed plus a fixed dwell per intermediate stop.
const (
	// averageSpeedMetersPerMinute is 21.6 km/h, a typical urban bus average
	// including traffic
	averageSpeedMetersPerMinute = 360.0

	// dwellSecondsPerStop is the boarding time added per intermediate stop
	dwellSecondsPerStop = 20.0

	// atStopProximityMeters is how close a stationary vehicle must be to the
	// target stop to count as at the stop
	atStopProximityMeters = 20.0
)

// EstimateMinutes converts a distance in meters and the number of
// intermediate stops along the way into an arrival estimate in minutes.
// Monotonic increasing in both arguments.
func EstimateMinutes(distanceMeters float64, intermediateStopCount int) float64 {
	travel := distanceMeters / averageSpeedMetersPerMinute
	dwell := float64(intermediateStopCount) * dwellSecondsPerStop / 60
	return travel + dwell
}

// ArrivalStatusOf derives the discrete arrival status, in precedence order:
// a vehicle without a route is off route; a stationary vehicle within the
// proximity threshold of the target stop is at the stop; otherwise the
// target stop relation decides.
func ArrivalStatusOf(vehicle *feed.Vehicle, targetStop feed.Stop, relation TargetStopRelation) ArrivalStatus {
	if vehicle.RouteId == nil {
		return StatusOffRoute
	}
	if vehicle.Speed == 0 &&
		feed.HaversineMeters(vehicle.Position(), targetStop.Position()) <= atStopProximityMeters {
		return StatusAtStop
	}
	switch relation {
	case RelationUpcoming:
		return StatusInMinutes
	case RelationPassed:
		return StatusDeparted
	}
	return StatusOffRoute
}

// StatusMessage renders a human readable message for the status
func StatusMessage(status ArrivalStatus, estimatedMinutes float64) string {
	switch status {
	case StatusAtStop:
		return "At stop"
	case StatusInMinutes:
		minutes := int(math.Round(estimatedMinutes))
		if minutes == 1 {
			return "In 1 minute"
		}
		return fmt.Sprintf("In %d minutes", minutes)
	case StatusDeparted:
		return "Departed"
	}
	return "Off route"
}

// StatusMessageWithConfidence is StatusMessage with an estimated marker
// appended for low confidence results
func StatusMessageWithConfidence(status ArrivalStatus, estimatedMinutes float64, confidence Confidence) string {
	message := StatusMessage(status, estimatedMinutes)
	if confidence == ConfidenceLow {
		message += " (estimated)"
	}
	return message
}
