// Package arrivals runs the live arrival prediction service: it polls the
// vehicle feed, computes arrivals for the watched stops, and serves and
// publishes the results.
package arrivals

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ciotlosm/neary/business/arrival"
	"github.com/ciotlosm/neary/business/data/feed"
	"github.com/ciotlosm/neary/business/data/gtfsrt"
	"github.com/jmoiron/sqlx"
	"github.com/nats-io/nats.go"
)

// Config carries the monitor's settings from main
type Config struct {
	VehiclePositionsUrl  string
	WatchedStopIds       []string
	LoadEverySeconds     int
	RefreshStaticSeconds int
	RecordToDatabase     bool
	PublishOverNats      bool
}

// Service owns the shared state between the monitor loop and the web service
type Service struct {
	log       *log.Logger
	db        *sqlx.DB
	cfg       Config
	collector *Collector
	store     *resultsStore
	cache     *staticFeedCache
	publisher *arrivalResultsPublisher
}

// NewService wires the monitor, publisher and result store together
func NewService(log *log.Logger, db *sqlx.DB, natsConnection *nats.Conn, cfg Config) *Service {
	collector := NewCollector()
	return &Service{
		log:       log,
		db:        db,
		cfg:       cfg,
		collector: collector,
		store:     newResultsStore(),
		cache:     makeStaticFeedCache(db, feed.NewServiceCalendar(), time.Duration(cfg.RefreshStaticSeconds)*time.Second),
		publisher: makeArrivalResultsPublisher(log, db, natsConnection, collector,
			cfg.RecordToDatabase, cfg.PublishOverNats),
	}
}

// RunMonitorLoop polls the vehicle feed every LoadEverySeconds, subtracting
// the time each pass took, until a shutdown signal arrives
func (s *Service) RunMonitorLoop(shutdownSignal chan os.Signal) error {
	if len(s.cfg.WatchedStopIds) == 0 {
		return fmt.Errorf("no watched stops configured")
	}

	loopDuration := time.Duration(s.cfg.LoadEverySeconds) * time.Second

	sleepChan := make(chan bool)
	sleep := time.Duration(0) //no sleep the first time
	for {

		go func() {
			time.Sleep(sleep)
			sleepChan <- true
		}()

		select {
		case <-shutdownSignal:
			s.log.Printf("Exiting on shutdown signal")
			return nil
		case <-sleepChan:
			break
		}

		//set default sleep for next loop in the event of an error after continue statements
		sleep = loopDuration

		// mark the time we start working
		start := time.Now()

		err := s.runOnePass(start)
		if err != nil {
			s.log.Printf("monitor pass failed. error:%v\n", err)
			continue
		}

		workTook := time.Since(start)
		s.collector.LoopDuration.Observe(workTook.Seconds())

		// if the work took longer than the loop duration don't sleep at all on the next loop
		if workTook >= loopDuration {
			sleep = time.Duration(0)
		} else {
			sleep = loopDuration - workTook
		}
	}
}

// runOnePass fetches the live feed and recomputes arrivals for every watched stop
func (s *Service) runOnePass(start time.Time) error {
	vehicles, err := gtfsrt.GetVehiclePositions(s.log, s.cfg.VehiclePositionsUrl)
	if err != nil {
		s.collector.FeedFetchErrors.Inc()
		return fmt.Errorf("getting vehicle positions: %w", err)
	}
	vehicles = feed.FilterValidVehicles(s.log, vehicles)
	s.collector.VehiclesLoaded.Set(float64(len(vehicles)))
	s.log.Printf("loaded %d vehicle positions\n", len(vehicles))

	snapshot, err := s.cache.snapshotAt(s.log, start)
	if err != nil {
		return fmt.Errorf("loading static feed snapshot: %w", err)
	}

	generatedAt := time.Now()
	for _, stopId := range s.cfg.WatchedStopIds {
		stop, present := snapshot.Stops[stopId]
		if !present {
			s.log.Printf("watched stop %s not present in static feed\n", stopId)
			continue
		}
		results := arrival.CalculateMultipleArrivals(vehicles, stop,
			snapshot.Trips, snapshot.StopTimes, snapshot.Stops, snapshot.Shapes)
		results = arrival.SortVehiclesByArrival(results)
		s.collector.ArrivalsComputed.Add(float64(len(results)))

		stopArrivals := StopArrivals{
			StopId:      stopId,
			StopName:    stop.StopName,
			GeneratedAt: generatedAt,
			Results:     results,
		}
		s.store.setArrivals(stopArrivals)
		s.publisher.publishArrivals(&stopArrivals)
	}

	s.store.setVehicles(vehicles, snapshot.Trips, snapshot.Shapes)
	s.publisher.recordVehicles(vehicles)
	return nil
}
