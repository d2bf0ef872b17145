package arrival

import (
	"reflect"
	"testing"
	"time"

	"github.com/ciotlosm/neary/business/data/feed"
)

func Test_DetermineTargetStopRelation(t *testing.T) {
	stops := testStops()
	stopTimes := testStopTimes()
	shape := testShape()

	tests := []struct {
		name         string
		vehicle      feed.Vehicle
		targetStopId string
		shape        *feed.RouteShape
		want         TargetStopRelation
	}{
		{
			name:         "target ahead with shape",
			vehicle:      testVehicle(fixtureLat, 23.61), //between s1 and s2
			targetStopId: "s3",
			shape:        shape,
			want:         RelationUpcoming,
		},
		{
			name:         "target behind with shape",
			vehicle:      testVehicle(fixtureLat, 23.63), //between s2 and s3
			targetStopId: "s1",
			shape:        shape,
			want:         RelationPassed,
		},
		{
			name:         "next stop itself is upcoming",
			vehicle:      testVehicle(fixtureLat, 23.61),
			targetStopId: "s2",
			shape:        shape,
			want:         RelationUpcoming,
		},
		{
			name:         "target ahead without shape",
			vehicle:      testVehicle(fixtureLat, 23.61),
			targetStopId: "s3",
			want:         RelationUpcoming,
		},
		{
			name:         "target behind without shape",
			vehicle:      testVehicle(fixtureLat, 23.63),
			targetStopId: "s1",
			want:         RelationPassed,
		},
		{
			name:         "stop not on the trip",
			vehicle:      testVehicle(fixtureLat, 23.61),
			targetStopId: "missing",
			want:         RelationNotInTrip,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			targetStop := stops[tt.targetStopId]
			targetStop.StopId = tt.targetStopId
			got := DetermineTargetStopRelation(&tt.vehicle, targetStop, stopTimes, stops, tt.shape)
			if got != tt.want {
				t.Errorf("DetermineTargetStopRelation() = %s, want %s", got, tt.want)
			}
		})
	}

	t.Run("unidentified segment defaults to upcoming", func(t *testing.T) {
		//a single stop trip cannot identify a segment; the vehicle is
		//reported as approaching even though its position is unknown
		singleStop := []feed.StopTime{{TripId: "t1", StopId: "s1", StopSequence: 1}}
		vehicle := testVehicle(fixtureLat, 23.64)
		got := DetermineTargetStopRelation(&vehicle, stops["s1"], singleStop, stops, nil)
		if got != RelationUpcoming {
			t.Errorf("DetermineTargetStopRelation() = %s, want upcoming", got)
		}
	})
}

func Test_CalculateVehicleArrivalTime(t *testing.T) {
	stops := testStops()
	stopTimes := testStopTimes()
	shape := testShape()

	t.Run("vehicle at route start approaching the last stop", func(t *testing.T) {
		vehicle := testVehicle(fixtureLat, 23.60)
		result := CalculateVehicleArrivalTime(&vehicle, stops["s3"], stopTimes, stops, shape)

		if result.VehicleId != "v1" {
			t.Errorf("VehicleId = %s", result.VehicleId)
		}
		if result.Status != StatusInMinutes {
			t.Errorf("Status = %s, want in_minutes", result.Status)
		}
		if result.Method != MethodRouteProjection {
			t.Errorf("Method = %s, want route_projection", result.Method)
		}
		if result.Confidence != ConfidenceHigh {
			t.Errorf("Confidence = %s, want high", result.Confidence)
		}
		assertWithinMeters(t, "DistanceMeters", result.DistanceMeters, 4*metersPerShapeSegment, 5.0)
		//about 8.5 minutes of travel plus dwell at one intermediate stop
		if result.EstimatedMinutes < 8 || result.EstimatedMinutes > 10 {
			t.Errorf("EstimatedMinutes = %f, want about 8.8", result.EstimatedMinutes)
		}
		if result.Message != "In 9 minutes" {
			t.Errorf("Message = %q, want %q", result.Message, "In 9 minutes")
		}
	})

	t.Run("vehicle past the target reports departed with negative minutes", func(t *testing.T) {
		vehicle := testVehicle(fixtureLat, 23.63) //past s1
		result := CalculateVehicleArrivalTime(&vehicle, stops["s1"], stopTimes, stops, shape)
		if result.Status != StatusDeparted {
			t.Errorf("Status = %s, want departed", result.Status)
		}
		if result.EstimatedMinutes >= 0 {
			t.Errorf("EstimatedMinutes = %f, want negative", result.EstimatedMinutes)
		}
		if result.Message != "Departed" {
			t.Errorf("Message = %q, want %q", result.Message, "Departed")
		}
	})

	t.Run("stationary vehicle at the target stop", func(t *testing.T) {
		vehicle := stoppedVehicleNear(fixtureLat, 23.62)
		result := CalculateVehicleArrivalTime(&vehicle, stops["s2"], stopTimes, stops, shape)
		if result.Status != StatusAtStop {
			t.Errorf("Status = %s, want at_stop", result.Status)
		}
		if result.EstimatedMinutes != 0 {
			t.Errorf("EstimatedMinutes = %f, want 0", result.EstimatedMinutes)
		}
	})

	t.Run("without a shape the fallback method is used", func(t *testing.T) {
		vehicle := testVehicle(fixtureLat, 23.60)
		result := CalculateVehicleArrivalTime(&vehicle, stops["s3"], stopTimes, stops, nil)
		if result.Method != MethodStopSegments {
			t.Errorf("Method = %s, want stop_segments", result.Method)
		}
		if result.Confidence != ConfidenceMedium {
			t.Errorf("Confidence = %s, want medium", result.Confidence)
		}
	})
}

func Test_CalculateMultipleArrivals(t *testing.T) {
	stops := testStops()
	stopTimes := testStopTimes()
	trips := map[string]feed.Trip{
		"t1": {TripId: "t1", RouteId: "r1", ServiceId: "wk", ShapeId: stringPtr("sh1")},
		"t2": {TripId: "t2", RouteId: "r2", ServiceId: "wk"},
	}
	shapes := map[string]*feed.RouteShape{"sh1": testShape()}

	onTrip := testVehicle(fixtureLat, 23.61)
	otherTrip := testVehicle(fixtureLat, 23.61)
	otherTrip.VehicleId = "v2"
	otherTrip.TripId = stringPtr("t2")
	noTrip := testVehicle(fixtureLat, 23.61)
	noTrip.VehicleId = "v3"
	noTrip.TripId = nil

	results := CalculateMultipleArrivals([]feed.Vehicle{onTrip, otherTrip, noTrip},
		stops["s3"], trips, stopTimes, stops, shapes)

	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if results[0].VehicleId != "v1" {
		t.Errorf("VehicleId = %s, want v1", results[0].VehicleId)
	}
	//the vehicle's shape resolved through its trip
	if results[0].Method != MethodRouteProjection {
		t.Errorf("Method = %s, want route_projection", results[0].Method)
	}
}

func Test_SortVehiclesByArrival(t *testing.T) {
	results := []ArrivalTimeResult{
		{VehicleId: "d", Status: StatusOffRoute, EstimatedMinutes: 1},
		{VehicleId: "c", Status: StatusInMinutes, EstimatedMinutes: 7},
		{VehicleId: "b", Status: StatusInMinutes, EstimatedMinutes: 3},
		{VehicleId: "e", Status: StatusDeparted, EstimatedMinutes: -2},
		{VehicleId: "a", Status: StatusAtStop, EstimatedMinutes: 0},
		{VehicleId: "f", Status: StatusInMinutes, EstimatedMinutes: 3},
	}

	sorted := SortVehiclesByArrival(results)

	wantOrder := []string{"a", "b", "f", "c", "e", "d"}
	for i, want := range wantOrder {
		if sorted[i].VehicleId != want {
			t.Errorf("sorted[%d].VehicleId = %s, want %s", i, sorted[i].VehicleId, want)
		}
	}

	//sorting a sorted list must not change it
	again := SortVehiclesByArrival(sorted)
	if !reflect.DeepEqual(sorted, again) {
		t.Errorf("sort is not idempotent")
	}

	//the input must be left alone
	if results[0].VehicleId != "d" {
		t.Errorf("input slice was mutated")
	}
}

func Test_IsVehicleOffRoute(t *testing.T) {
	now := time.Now()
	shape := testShape()

	tests := []struct {
		name    string
		vehicle feed.Vehicle
		shape   *feed.RouteShape
		want    bool
	}{
		{
			name:    "fresh vehicle on route",
			vehicle: testVehicle(fixtureLat, 23.61),
			shape:   shape,
			want:    false,
		},
		{
			name: "missing route id",
			vehicle: feed.Vehicle{
				VehicleId: "v1",
				Timestamp: now,
				TripId:    stringPtr("t1"),
			},
			want: true,
		},
		{
			name: "missing trip id",
			vehicle: feed.Vehicle{
				VehicleId: "v1",
				Timestamp: now,
				RouteId:   stringPtr("r1"),
			},
			want: true,
		},
		{
			name:    "stale position",
			vehicle: staleVehicle(now.Add(-40 * time.Minute)),
			want:    true,
		},
		{
			name:    "far from route shape",
			vehicle: testVehicle(fixtureLat+0.0045, 23.61), //about 500 meters north
			shape:   shape,
			want:    true,
		},
		{
			name:    "far from nothing without a shape",
			vehicle: testVehicle(fixtureLat+0.0045, 23.61),
			want:    false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsVehicleOffRoute(&tt.vehicle, tt.shape, now); got != tt.want {
				t.Errorf("IsVehicleOffRoute() = %t, want %t", got, tt.want)
			}
		})
	}
}

// staleVehicle returns an otherwise valid vehicle with an old position timestamp
func staleVehicle(at time.Time) feed.Vehicle {
	vehicle := testVehicle(fixtureLat, 23.61)
	vehicle.Timestamp = at
	return vehicle
}
