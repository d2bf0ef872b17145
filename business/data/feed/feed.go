// Package feed provides the typed transit feed records the arrival engine
// consumes, along with storage, validation and service calendar support.
package feed

import (
	"errors"
	"math"
	"sort"
	"time"
)

// Coordinates is a WGS84 position in degrees.
type Coordinates struct {
	Latitude  float64 `db:"latitude" json:"latitude"`
	Longitude float64 `db:"longitude" json:"longitude"`
}

// Vehicle is a single position report from the operator's vehicle feed.
// Optional feed fields are pointers and are nil when absent.
type Vehicle struct {
	VehicleId string    `db:"vehicle_id" json:"vehicle_id" validate:"required"`
	Label     string    `db:"label" json:"label"`
	Latitude  float64   `db:"latitude" json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64   `db:"longitude" json:"longitude" validate:"gte=-180,lte=180"`
	Speed     float64   `db:"speed" json:"speed" validate:"gte=0"` //km/h, zero when the feed omits it
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
	RouteId   *string   `db:"route_id" json:"route_id"`
	TripId    *string   `db:"trip_id" json:"trip_id"`
}

// Position returns the vehicle's reported coordinates
func (v *Vehicle) Position() Coordinates {
	return Coordinates{Latitude: v.Latitude, Longitude: v.Longitude}
}

// Stop contains a record from a gtfs stops.txt file
type Stop struct {
	StopId    string  `db:"stop_id" json:"stop_id"`
	StopName  string  `db:"stop_name" json:"stop_name"`
	Latitude  float64 `db:"latitude" json:"latitude"`
	Longitude float64 `db:"longitude" json:"longitude"`
}

// Position returns the stop's coordinates
func (s *Stop) Position() Coordinates {
	return Coordinates{Latitude: s.Latitude, Longitude: s.Longitude}
}

// Trip contains a record from a gtfs trips.txt file
type Trip struct {
	TripId    string  `db:"trip_id" json:"trip_id"`
	RouteId   string  `db:"route_id" json:"route_id"`
	ServiceId string  `db:"service_id" json:"service_id"`
	ShapeId   *string `db:"shape_id" json:"shape_id"`
}

// StopTime is the scheduled ordering of one stop within a trip.
// For a given TripId the StopSequence values are unique and increase along
// the physical route.
type StopTime struct {
	TripId       string `db:"trip_id" json:"trip_id"`
	StopId       string `db:"stop_id" json:"stop_id"`
	StopSequence uint32 `db:"stop_sequence" json:"stop_sequence"`
}

// ShapePoint contains a record from a gtfs shapes.txt file
type ShapePoint struct {
	ShapeId   string  `db:"shape_id" json:"shape_id"`
	Latitude  float64 `db:"latitude" json:"latitude"`
	Longitude float64 `db:"longitude" json:"longitude"`
	Sequence  int     `db:"sequence" json:"sequence"`
}

// Segment is one edge of a route polyline between two consecutive shape
// points, with its length precomputed in meters.
type Segment struct {
	Start    Coordinates `json:"start"`
	End      Coordinates `json:"end"`
	Distance float64     `json:"distance"`
}

// RouteShape is the polyline a route's vehicles physically follow.
// Segments[i] connects Points[i] to Points[i+1], so len(Segments) is always
// len(Points)-1.
type RouteShape struct {
	ShapeId  string        `json:"shape_id"`
	Points   []Coordinates `json:"points"`
	Segments []Segment     `json:"segments"`
}

// BuildRouteShape orders points by sequence and derives the shape's segments.
// Returns nil when no points are supplied.
func BuildRouteShape(shapeId string, points []ShapePoint) *RouteShape {
	if len(points) == 0 {
		return nil
	}
	ordered := make([]ShapePoint, len(points))
	copy(ordered, points)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Sequence < ordered[j].Sequence
	})

	shape := RouteShape{ShapeId: shapeId}
	for _, point := range ordered {
		shape.Points = append(shape.Points, Coordinates{Latitude: point.Latitude, Longitude: point.Longitude})
	}
	for i := 0; i+1 < len(shape.Points); i++ {
		shape.Segments = append(shape.Segments, Segment{
			Start:    shape.Points[i],
			End:      shape.Points[i+1],
			Distance: HaversineMeters(shape.Points[i], shape.Points[i+1]),
		})
	}
	return &shape
}

// DensityCenter returns the center of a set of positions weighted toward
// where the points cluster, so a few outliers pull the center less than a
// plain average would. The only input this package refuses is an empty set.
func DensityCenter(points []Coordinates) (Coordinates, error) {
	if len(points) == 0 {
		return Coordinates{}, errors.New("no points to calculate a density center from")
	}
	if len(points) == 1 {
		return points[0], nil
	}

	var totalWeight, lat, lon float64
	for i, point := range points {
		sum := 0.0
		for j, other := range points {
			if i == j {
				continue
			}
			sum += HaversineMeters(point, other)
		}
		mean := sum / float64(len(points)-1)
		weight := 1 / (1 + mean)
		totalWeight += weight
		lat += point.Latitude * weight
		lon += point.Longitude * weight
	}
	return Coordinates{Latitude: lat / totalWeight, Longitude: lon / totalWeight}, nil
}

const earthRadiusMeters = 6371000.0

// HaversineMeters returns the great-circle distance between two coordinates
// in meters
func HaversineMeters(a, b Coordinates) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	diffLat := (b.Latitude - a.Latitude) * math.Pi / 180
	diffLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(diffLat/2)*math.Sin(diffLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(diffLon/2)*math.Sin(diffLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}
