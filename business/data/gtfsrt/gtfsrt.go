// Package gtfsrt retrieves gtfs-realtime vehicle positions and converts them
// to feed records
package gtfsrt

import (
	"log"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"github.com/ciotlosm/neary/business/data/feed"
	"github.com/ciotlosm/neary/foundation/httpclient"
)

// metersPerSecondToKmh converts the feed's speed unit to the km/h the
// arrival engine expects
const metersPerSecondToKmh = 3.6

/*
GetVehiclePositions retrieves gtfs-realtime vehicle positions and loads them
into feed.Vehicle records. Any changes to the GTFS-realtime protocol or
generated code can be handled here and not elsewhere in the program.
*/
func GetVehiclePositions(log *log.Logger, url string) ([]feed.Vehicle, error) {
	gtfsResponseBytes, err := httpclient.GetBytes(url)
	if err != nil {
		return nil, err
	}
	return parseVehiclePositions(log, gtfsResponseBytes, time.Now())
}

// parseVehiclePositions decodes a FeedMessage. Entities without a vehicle id
// or a position are logged and skipped; a missing timestamp defaults to now.
func parseVehiclePositions(log *log.Logger, gtfsResponseBytes []byte, now time.Time) ([]feed.Vehicle, error) {
	feedMessage := gtfsrtpb.FeedMessage{}
	err := proto.Unmarshal(gtfsResponseBytes, &feedMessage)
	if err != nil {
		log.Printf("Unable to unmarshal FeedMessage: %v\n", err)
		return nil, err
	}

	var vehicles []feed.Vehicle
	for _, entity := range feedMessage.Entity {
		if entity.Vehicle == nil {
			continue
		}
		vehicle := entity.Vehicle
		vehicleDescriptor := vehicle.Vehicle
		if vehicleDescriptor == nil || vehicleDescriptor.Id == nil {
			log.Printf("Vehicle entity missing vehicle identifier, %v\n", entity.Id)
			continue
		}
		if vehicle.Position == nil {
			log.Printf("Vehicle entity %s missing position\n", *vehicleDescriptor.Id)
			continue
		}

		record := feed.Vehicle{
			VehicleId: *vehicleDescriptor.Id,
			Latitude:  float64(vehicle.Position.GetLatitude()),
			Longitude: float64(vehicle.Position.GetLongitude()),
			Timestamp: now,
		}
		if vehicleDescriptor.Label != nil {
			record.Label = *vehicleDescriptor.Label
		}
		if vehicle.Position.Speed != nil {
			record.Speed = float64(*vehicle.Position.Speed) * metersPerSecondToKmh
		}
		if trip := vehicle.Trip; trip != nil {
			record.TripId = trip.TripId
			record.RouteId = trip.RouteId
		}
		if vehicle.Timestamp != nil {
			record.Timestamp = time.Unix(int64(*vehicle.Timestamp), 0)
		}

		vehicles = append(vehicles, record)
	}
	return vehicles, nil
}
