package arrival

import (
	"math"
	"testing"
	"time"

	"github.com/ciotlosm/neary/business/data/feed"
)

//test fixtures model a straight east-west route along latitude 46.77 with
//three scheduled stops two shape points apart

const (
	fixtureLat = 46.77

	//approximate meters per 0.01 degree of longitude at fixtureLat
	metersPerShapeSegment = 761.3
)

func stringPtr(s string) *string {
	return &s
}

// testShape returns a five point straight shape from lon 23.60 to 23.64
func testShape() *feed.RouteShape {
	points := []feed.ShapePoint{
		{ShapeId: "sh1", Latitude: fixtureLat, Longitude: 23.60, Sequence: 1},
		{ShapeId: "sh1", Latitude: fixtureLat, Longitude: 23.61, Sequence: 2},
		{ShapeId: "sh1", Latitude: fixtureLat, Longitude: 23.62, Sequence: 3},
		{ShapeId: "sh1", Latitude: fixtureLat, Longitude: 23.63, Sequence: 4},
		{ShapeId: "sh1", Latitude: fixtureLat, Longitude: 23.64, Sequence: 5},
	}
	return feed.BuildRouteShape("sh1", points)
}

// testStops returns the route's stops keyed by stop id: s1, s2 and s3 at
// lon 23.60, 23.62 and 23.64
func testStops() map[string]feed.Stop {
	return map[string]feed.Stop{
		"s1": {StopId: "s1", StopName: "First", Latitude: fixtureLat, Longitude: 23.60},
		"s2": {StopId: "s2", StopName: "Middle", Latitude: fixtureLat, Longitude: 23.62},
		"s3": {StopId: "s3", StopName: "Last", Latitude: fixtureLat, Longitude: 23.64},
	}
}

// testStopTimes returns trip t1's ordered schedule over the three stops
func testStopTimes() []feed.StopTime {
	return []feed.StopTime{
		{TripId: "t1", StopId: "s1", StopSequence: 1},
		{TripId: "t1", StopId: "s2", StopSequence: 2},
		{TripId: "t1", StopId: "s3", StopSequence: 3},
	}
}

// testVehicle returns a vehicle on trip t1 with a fresh timestamp
func testVehicle(lat, lon float64) feed.Vehicle {
	return feed.Vehicle{
		VehicleId: "v1",
		Latitude:  lat,
		Longitude: lon,
		Speed:     20,
		Timestamp: time.Now(),
		RouteId:   stringPtr("r1"),
		TripId:    stringPtr("t1"),
	}
}

// assertWithinMeters fails the test when got is not within tolerance of want
func assertWithinMeters(t *testing.T, name string, got, want, tolerance float64) {
	t.Helper()
	if math.Abs(got-want) > tolerance {
		t.Errorf("%s = %f, want %f within %f", name, got, want, tolerance)
	}
}
