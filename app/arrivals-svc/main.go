package main

import (
	"fmt"
	logger "log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ardanlabs/conf"
	"github.com/ciotlosm/neary/app/arrivals-svc/arrivals"
	"github.com/ciotlosm/neary/foundation/database"
	"github.com/nats-io/nats.go"
)

var build = "develop"

func main() {
	log := logger.New(os.Stdout, "ARRIVALS : ", logger.LstdFlags|logger.Lmicroseconds|logger.Lshortfile)
	if err := run(log); err != nil {
		log.Printf("main: error: %v", err)
		os.Exit(1)
	}
}

func run(log *logger.Logger) error {
	var cfg struct {
		conf.Version
		Args conf.Args
		DB   struct {
			User       string `conf:"default:postgres"`
			Password   string `conf:"default:postgres,noprint"`
			Host       string `conf:"default:0.0.0.0"`
			Name       string `conf:"default:postgres"`
			DisableTLS bool   `conf:"default:true"`
		}
		NATS struct {
			URL     string `conf:"default:nats://127.0.0.1:4222"`
			Publish bool   `conf:"default:true"`
		}
		Web struct {
			Host string `conf:"default:0.0.0.0:3000"`
		}
		Feed struct {
			VehiclePositionsUrl  string `conf:"default:https://api.ctpcj.ro/gtfs-rt/vehicle-positions"`
			LoadEverySeconds     int    `conf:"default:10"`
			RefreshStaticSeconds int    `conf:"default:3600"`
			WatchedStops         string `conf:"default:"`
			RecordVehicles       bool   `conf:"default:false"`
		}
	}
	cfg.Version.SVN = build
	cfg.Version.Desc = "Compute live bus arrival predictions for watched stops"
	const prefix = "ARRIVALS"
	if err := conf.Parse(os.Args[1:], prefix, &cfg); err != nil {
		switch err {
		case conf.ErrHelpWanted:
			usage, err := conf.Usage(prefix, &cfg)
			if err != nil {
				return fmt.Errorf("generating config usage: %w", err)
			}
			fmt.Println(usage)
			return nil
		case conf.ErrVersionWanted:
			version, err := conf.VersionString(prefix, &cfg)
			if err != nil {
				return fmt.Errorf("generating config version: %w", err)
			}
			fmt.Println(version)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Printf("main : Started : Application initializing : version %s", build)
	defer log.Println("main: Completed")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Printf("main: Config :\n%v\n", out)

	// =========================================================================
	// Start Database

	log.Println("main: Initializing database support")

	db, err := database.Open(database.Config{
		User:       cfg.DB.User,
		Password:   cfg.DB.Password,
		Host:       cfg.DB.Host,
		Name:       cfg.DB.Name,
		DisableTLS: cfg.DB.DisableTLS,
	})
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}
	defer func() {
		log.Printf("main: Database Stopping : %s", cfg.DB.Host)
		err = db.Close()
		if err != nil {
			log.Printf("main: error closing database: %v", err)
		}
	}()

	// =========================================================================
	// Start NATS

	var natsConnection *nats.Conn
	if cfg.NATS.Publish {
		log.Println("main: Initializing NATS support")
		natsConnection, err = nats.Connect(cfg.NATS.URL, nats.Name("arrivals-svc"))
		if err != nil {
			return fmt.Errorf("connecting to nats at %s: %w", cfg.NATS.URL, err)
		}
		defer natsConnection.Close()
	}

	// =========================================================================
	// Start Service

	service := arrivals.NewService(log, db, natsConnection, arrivals.Config{
		VehiclePositionsUrl:  cfg.Feed.VehiclePositionsUrl,
		WatchedStopIds:       splitStopIds(cfg.Feed.WatchedStops),
		LoadEverySeconds:     cfg.Feed.LoadEverySeconds,
		RefreshStaticSeconds: cfg.Feed.RefreshStaticSeconds,
		RecordToDatabase:     cfg.Feed.RecordVehicles,
		PublishOverNats:      cfg.NATS.Publish,
	})

	go func() {
		log.Printf("main: web service listening on %s", cfg.Web.Host)
		webErr := http.ListenAndServe(cfg.Web.Host, service.WebHandler())
		if webErr != nil {
			log.Printf("main: web service stopped: %v", webErr)
		}
	}()

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	return service.RunMonitorLoop(shutdown)
}

// splitStopIds parses the comma separated watched stop list
func splitStopIds(watchedStops string) []string {
	var stopIds []string
	for _, stopId := range strings.Split(watchedStops, ",") {
		stopId = strings.TrimSpace(stopId)
		if stopId != "" {
			stopIds = append(stopIds, stopId)
		}
	}
	return stopIds
}
