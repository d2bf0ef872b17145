// Package arrival predicts when vehicles reach a rider's stop of interest.
// It projects vehicle positions onto route polylines, locates the stop-pair
// segment a vehicle currently occupies, and converts along-route distance
// into an arrival estimate with an explicit confidence grade.
//
// Every function is a pure transform over the feed snapshot it is given.
// Bad feed data degrades to safe defaults rather than errors; the engine
// drives a live display and must produce a best-effort answer for any input.
package arrival

import "fmt"

// Confidence grades an estimate derived from imperfect projections or GPS
// heuristics.
type Confidence int

const (
	ConfidenceLow Confidence = iota
	ConfidenceMedium
	ConfidenceHigh
)

// String - Stringer interface for Confidence
func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	}
	return "low"
}

// MarshalJSON presents Confidence by grade name
func (c Confidence) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// UnmarshalJSON accepts the grade names produced by MarshalJSON
func (c *Confidence) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"high"`:
		*c = ConfidenceHigh
	case `"medium"`:
		*c = ConfidenceMedium
	case `"low"`:
		*c = ConfidenceLow
	default:
		return fmt.Errorf("unknown confidence %s", data)
	}
	return nil
}

// Method identifies which strategy produced an estimate: projection onto the
// route shape, or the stop-to-stop GPS heuristic used when no shape exists.
type Method int

const (
	MethodRouteProjection Method = iota
	MethodStopSegments
)

// String - Stringer interface for Method
func (m Method) String() string {
	if m == MethodStopSegments {
		return "stop_segments"
	}
	return "route_projection"
}

// MarshalJSON presents Method by name
func (m Method) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts the method names produced by MarshalJSON
func (m *Method) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"route_projection"`:
		*m = MethodRouteProjection
	case `"stop_segments"`:
		*m = MethodStopSegments
	default:
		return fmt.Errorf("unknown method %s", data)
	}
	return nil
}

// ArrivalStatus is the discrete arrival classification of a vehicle relative
// to the target stop
type ArrivalStatus int

const (
	StatusAtStop ArrivalStatus = iota
	StatusInMinutes
	StatusDeparted
	StatusOffRoute
)

// String - Stringer interface for ArrivalStatus
func (s ArrivalStatus) String() string {
	switch s {
	case StatusAtStop:
		return "at_stop"
	case StatusInMinutes:
		return "in_minutes"
	case StatusDeparted:
		return "departed"
	}
	return "off_route"
}

// MarshalJSON presents ArrivalStatus by name
func (s ArrivalStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON accepts the status names produced by MarshalJSON
func (s *ArrivalStatus) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"at_stop"`:
		*s = StatusAtStop
	case `"in_minutes"`:
		*s = StatusInMinutes
	case `"departed"`:
		*s = StatusDeparted
	case `"off_route"`:
		*s = StatusOffRoute
	default:
		return fmt.Errorf("unknown arrival status %s", data)
	}
	return nil
}

// TargetStopRelation classifies where the target stop sits relative to a
// vehicle's progress along its trip
type TargetStopRelation int

const (
	RelationUpcoming TargetStopRelation = iota
	RelationPassed
	RelationNotInTrip
)

// String - Stringer interface for TargetStopRelation
func (r TargetStopRelation) String() string {
	switch r {
	case RelationUpcoming:
		return "upcoming"
	case RelationPassed:
		return "passed"
	}
	return "not_in_trip"
}
