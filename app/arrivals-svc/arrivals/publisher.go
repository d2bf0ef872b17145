package arrivals

import (
	"encoding/json"
	"log"

	"github.com/ciotlosm/neary/business/data/feed"
	"github.com/jmoiron/sqlx"
	"github.com/nats-io/nats.go"
)

// natsSubject carries per-stop arrival result batches to downstream displays
const natsSubject = "arrival-results"

// arrivalResultsPublisher sends computed arrivals to their destinations
// (NATS for live consumers, the database for position history)
type arrivalResultsPublisher struct {
	log              *log.Logger
	db               *sqlx.DB
	natsConnection   *nats.Conn
	collector        *Collector
	recordToDatabase bool
	publishOverNats  bool
}

func makeArrivalResultsPublisher(log *log.Logger,
	db *sqlx.DB,
	natsConnection *nats.Conn,
	collector *Collector,
	recordToDatabase bool,
	publishOverNats bool) *arrivalResultsPublisher {
	return &arrivalResultsPublisher{
		log:              log,
		db:               db,
		natsConnection:   natsConnection,
		collector:        collector,
		recordToDatabase: recordToDatabase,
		publishOverNats:  publishOverNats,
	}
}

// publishArrivals sends one stop's result batch over NATS
func (p *arrivalResultsPublisher) publishArrivals(stopArrivals *StopArrivals) {
	if !p.publishOverNats || p.natsConnection == nil {
		return
	}
	jsonData, err := json.Marshal(stopArrivals)
	if err != nil {
		p.log.Printf("failed to marshal StopArrivals for stop %s, error:%v", stopArrivals.StopId, err)
		p.collector.PublishErrors.Inc()
		return
	}
	err = p.natsConnection.Publish(natsSubject, jsonData)
	if err != nil {
		p.log.Printf("failed to send StopArrivals for stop %s, error:%v", stopArrivals.StopId, err)
		p.collector.PublishErrors.Inc()
	}
}

// recordVehicles saves the polled vehicle positions for later analysis
func (p *arrivalResultsPublisher) recordVehicles(vehicles []feed.Vehicle) {
	if !p.recordToDatabase || len(vehicles) == 0 {
		return
	}
	rows := make([]*feed.Vehicle, len(vehicles))
	for i := range vehicles {
		rows[i] = &vehicles[i]
	}
	err := feed.RecordVehiclePositions(p.db, rows)
	if err != nil {
		p.log.Printf("failed to record %d vehicle positions, error:%v", len(rows), err)
	}
}
