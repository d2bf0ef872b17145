package arrivals

import (
	"sync"
	"time"

	"github.com/ciotlosm/neary/business/arrival"
	"github.com/ciotlosm/neary/business/data/feed"
)

// StopArrivals is the published and served result batch for one watched stop
type StopArrivals struct {
	StopId      string                      `json:"stop_id"`
	StopName    string                      `json:"stop_name"`
	GeneratedAt time.Time                   `json:"generated_at"`
	Results     []arrival.ArrivalTimeResult `json:"results"`
}

// resultsStore holds the most recent computation pass for the web service to
// serve. The monitor loop writes, request handlers read.
type resultsStore struct {
	mu       sync.RWMutex
	byStop   map[string]StopArrivals
	vehicles []feed.Vehicle
	shapes   map[string]*feed.RouteShape
	trips    map[string]feed.Trip
}

func newResultsStore() *resultsStore {
	return &resultsStore{byStop: make(map[string]StopArrivals)}
}

func (s *resultsStore) setArrivals(stopArrivals StopArrivals) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byStop[stopArrivals.StopId] = stopArrivals
}

func (s *resultsStore) arrivalsFor(stopId string) (StopArrivals, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stopArrivals, present := s.byStop[stopId]
	return stopArrivals, present
}

func (s *resultsStore) setVehicles(vehicles []feed.Vehicle, trips map[string]feed.Trip,
	shapes map[string]*feed.RouteShape) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vehicles = vehicles
	s.trips = trips
	s.shapes = shapes
}

// vehicleStates returns the latest vehicles with each one's route shape
// resolved through its trip, for off-route classification
func (s *resultsStore) vehicleStates() ([]feed.Vehicle, map[string]*feed.RouteShape) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	shapesByVehicle := make(map[string]*feed.RouteShape)
	for i := range s.vehicles {
		vehicle := &s.vehicles[i]
		if vehicle.TripId == nil {
			continue
		}
		if trip, present := s.trips[*vehicle.TripId]; present && trip.ShapeId != nil {
			shapesByVehicle[vehicle.VehicleId] = s.shapes[*trip.ShapeId]
		}
	}
	vehicles := make([]feed.Vehicle, len(s.vehicles))
	copy(vehicles, s.vehicles)
	return vehicles, shapesByVehicle
}
