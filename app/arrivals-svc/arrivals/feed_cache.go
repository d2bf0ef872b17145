package arrivals

import (
	"fmt"
	"log"
	"time"

	"github.com/ciotlosm/neary/business/data/feed"
	"github.com/jmoiron/sqlx"
)

// FeedSnapshot is one consistent load of the static feed, shared read-only
// by every arrival computation until the next refresh
type FeedSnapshot struct {
	Stops     map[string]feed.Stop
	Trips     map[string]feed.Trip
	StopTimes []feed.StopTime
	Shapes    map[string]*feed.RouteShape
}

// staticFeedCache loads the static feed tables and keeps them until the
// refresh interval passes, so the poll loop doesn't reload the schedule on
// every pass
type staticFeedCache struct {
	db              *sqlx.DB
	serviceCalendar *feed.ServiceCalendar
	refreshInterval time.Duration

	loadedAt time.Time
	snapshot *FeedSnapshot
}

func makeStaticFeedCache(db *sqlx.DB, serviceCalendar *feed.ServiceCalendar,
	refreshInterval time.Duration) *staticFeedCache {
	return &staticFeedCache{
		db:              db,
		serviceCalendar: serviceCalendar,
		refreshInterval: refreshInterval,
	}
}

// snapshotAt returns the current snapshot, refreshing it first when it is
// older than the refresh interval. A failed refresh keeps serving the
// previous snapshot when one exists.
func (c *staticFeedCache) snapshotAt(log *log.Logger, now time.Time) (*FeedSnapshot, error) {
	if c.snapshot != nil && now.Sub(c.loadedAt) < c.refreshInterval {
		return c.snapshot, nil
	}

	snapshot, err := c.load(now)
	if err != nil {
		if c.snapshot != nil {
			log.Printf("static feed refresh failed, keeping previous snapshot. error:%v", err)
			return c.snapshot, nil
		}
		return nil, err
	}

	log.Printf("loaded static feed: %d stops, %d trips, %d stop times, %d shapes",
		len(snapshot.Stops), len(snapshot.Trips), len(snapshot.StopTimes), len(snapshot.Shapes))
	c.snapshot = snapshot
	c.loadedAt = now
	return snapshot, nil
}

func (c *staticFeedCache) load(now time.Time) (*FeedSnapshot, error) {
	serviceIds, err := feed.GetActiveServiceIds(c.db, c.serviceCalendar, now)
	if err != nil {
		return nil, fmt.Errorf("loading active service ids: %w", err)
	}
	trips, err := feed.GetTrips(c.db, serviceIds)
	if err != nil {
		return nil, fmt.Errorf("loading trips: %w", err)
	}
	stops, err := feed.GetStops(c.db)
	if err != nil {
		return nil, fmt.Errorf("loading stops: %w", err)
	}
	stopTimes, err := feed.GetStopTimes(c.db)
	if err != nil {
		return nil, fmt.Errorf("loading stop times: %w", err)
	}
	shapes, err := feed.GetRouteShapes(c.db)
	if err != nil {
		return nil, fmt.Errorf("loading shapes: %w", err)
	}
	return &FeedSnapshot{
		Stops:     stops,
		Trips:     trips,
		StopTimes: stopTimes,
		Shapes:    shapes,
	}, nil
}
