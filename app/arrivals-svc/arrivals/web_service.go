package arrivals

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ciotlosm/neary/business/arrival"
	"github.com/ciotlosm/neary/business/data/feed"
	"github.com/gorilla/mux"
)

// defaultHttpHandler simple default http handler for default route
type defaultHttpHandler struct {
}

// ServeHTTP implements defaultHttpHandler http.Handler interface
func (h *defaultHttpHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Add("Application-Status", "OK")
}

// WebHandler builds the service's http routes
func (s *Service) WebHandler() http.Handler {
	router := mux.NewRouter()
	router.Handle("/", &defaultHttpHandler{})
	router.HandleFunc("/health", s.serveHealth).Methods(http.MethodGet)
	router.HandleFunc("/arrivals/{stopId}", s.serveStopArrivals).Methods(http.MethodGet)
	router.HandleFunc("/vehicles", s.serveVehicles).Methods(http.MethodGet)
	router.HandleFunc("/vehicles/center", s.serveVehicleCenter).Methods(http.MethodGet)
	router.Handle("/metrics", s.collector.Handler()).Methods(http.MethodGet)
	return router
}

func (s *Service) serveHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

// serveStopArrivals sends the latest computed arrivals for a watched stop
func (s *Service) serveStopArrivals(w http.ResponseWriter, r *http.Request) {
	stopId := mux.Vars(r)["stopId"]
	stopArrivals, present := s.store.arrivalsFor(stopId)
	if !present {
		http.Error(w, "no arrivals for stop", http.StatusNotFound)
		return
	}
	s.writeJSON(w, stopArrivals)
}

// vehicleState is the /vehicles response entry: the raw vehicle record with
// its off-route classification
type vehicleState struct {
	feed.Vehicle
	OffRoute bool `json:"off_route"`
}

// serveVehicles sends every vehicle from the latest poll with off-route flags
func (s *Service) serveVehicles(w http.ResponseWriter, _ *http.Request) {
	vehicles, shapesByVehicle := s.store.vehicleStates()
	now := time.Now()
	states := make([]vehicleState, 0, len(vehicles))
	for i := range vehicles {
		states = append(states, vehicleState{
			Vehicle:  vehicles[i],
			OffRoute: arrival.IsVehicleOffRoute(&vehicles[i], shapesByVehicle[vehicles[i].VehicleId], now),
		})
	}
	s.writeJSON(w, states)
}

// serveVehicleCenter sends the density-weighted center of the latest vehicle
// positions, for centering a live map over the fleet
func (s *Service) serveVehicleCenter(w http.ResponseWriter, _ *http.Request) {
	vehicles, _ := s.store.vehicleStates()
	positions := make([]feed.Coordinates, 0, len(vehicles))
	for i := range vehicles {
		positions = append(positions, vehicles[i].Position())
	}
	center, err := feed.DensityCenter(positions)
	if err != nil {
		http.Error(w, "no vehicle positions", http.StatusNotFound)
		return
	}
	s.writeJSON(w, map[string]interface{}{
		"center":        center,
		"vehicle_count": len(positions),
	})
}

func (s *Service) writeJSON(w http.ResponseWriter, payload interface{}) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		s.log.Printf("Error marshaling response to json: error:%v\n", err)
		http.Error(w, "Error serving request", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(jsonData)
	if err != nil {
		s.log.Printf("Error writing json response: %s", err)
	}
}
