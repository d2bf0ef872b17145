package feed

import (
	"fmt"
	"time"

	"github.com/ciotlosm/neary/foundation/database"
	"github.com/jmoiron/sqlx"
)

// RecordVehiclePositions saves a batch of vehicle position reports
func RecordVehiclePositions(db *sqlx.DB, vehicles []*Vehicle) error {
	statementString := "insert into vehicle_position ( " +
		"vehicle_id, " +
		"label, " +
		"latitude, " +
		"longitude, " +
		"speed, " +
		"timestamp, " +
		"route_id, " +
		"trip_id) " +
		"values (" +
		":vehicle_id, " +
		":label, " +
		":latitude, " +
		":longitude, " +
		":speed, " +
		":timestamp, " +
		":route_id, " +
		":trip_id)"
	statementString = db.Rebind(statementString)
	_, err := db.NamedExec(statementString, vehicles)
	return err
}

// GetStops retrieves all stops keyed by stop id
func GetStops(db *sqlx.DB) (map[string]Stop, error) {
	query := "select stop_id, stop_name, latitude, longitude from stop"
	var rows []Stop
	err := db.Select(&rows, query)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve stops. query:%s error: %w", query, err)
	}
	results := make(map[string]Stop, len(rows))
	for _, stop := range rows {
		results[stop.StopId] = stop
	}
	return results, nil
}

// GetTrips retrieves trips for serviceIds keyed by trip id.
// With no serviceIds every trip is returned.
func GetTrips(db *sqlx.DB, serviceIds []string) (map[string]Trip, error) {
	query := "select trip_id, route_id, service_id, shape_id from trip"
	var rows *sqlx.Rows
	var err error
	if len(serviceIds) > 0 {
		rows, err = database.PrepareNamedQueryRowsFromMap(
			query+" where service_id in (:service_ids)", db, map[string]interface{}{
				"service_ids": serviceIds,
			})
	} else {
		rows, err = db.Queryx(query)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve trips. query:%s error: %w", query, err)
	}
	results := make(map[string]Trip)
	for rows.Next() {
		trip := Trip{}
		err = rows.StructScan(&trip)
		if err != nil {
			return nil, err
		}
		results[trip.TripId] = trip
	}
	return results, nil
}

// GetStopTimes retrieves every scheduled stop time ordered by trip and stop sequence
func GetStopTimes(db *sqlx.DB) ([]StopTime, error) {
	query := "select trip_id, stop_id, stop_sequence from stop_time order by trip_id, stop_sequence"
	var results []StopTime
	err := db.Select(&results, query)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve stop times. query:%s error: %w", query, err)
	}
	return results, nil
}

// GetRouteShapes loads all shape points and assembles them into RouteShapes
// keyed by shape id
func GetRouteShapes(db *sqlx.DB) (map[string]*RouteShape, error) {
	query := "select shape_id, latitude, longitude, sequence from shape order by shape_id, sequence"
	var rows []ShapePoint
	err := db.Select(&rows, query)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve shape points. query:%s error: %w", query, err)
	}

	pointsByShapeId := make(map[string][]ShapePoint)
	for _, point := range rows {
		pointsByShapeId[point.ShapeId] = append(pointsByShapeId[point.ShapeId], point)
	}
	results := make(map[string]*RouteShape, len(pointsByShapeId))
	for shapeId, points := range pointsByShapeId {
		results[shapeId] = BuildRouteShape(shapeId, points)
	}
	return results, nil
}

// GetActiveServiceIds retrieves the service ids running on the service day
// that at falls on, after holiday substitution by serviceCalendar
func GetActiveServiceIds(db *sqlx.DB, serviceCalendar *ServiceCalendar, at time.Time) ([]string, error) {
	column, err := weekdayColumn(serviceCalendar.ServiceDayOf(at))
	if err != nil {
		return nil, err
	}
	query := "select service_id from calendar where " + column + " = 1 " +
		"and start_date <= :at and end_date >= :at"
	rows, err := database.PrepareNamedQueryRowsFromMap(query, db, map[string]interface{}{
		"at": at,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve active service ids. query:%s error: %w", query, err)
	}
	var serviceIds []string
	for rows.Next() {
		var serviceId string
		err = rows.Scan(&serviceId)
		if err != nil {
			return nil, err
		}
		serviceIds = append(serviceIds, serviceId)
	}
	return serviceIds, nil
}

// weekdayColumn maps a weekday to its calendar table column.
// Column names are fixed here so the query string is never built from input.
func weekdayColumn(day time.Weekday) (string, error) {
	switch day {
	case time.Monday:
		return "monday", nil
	case time.Tuesday:
		return "tuesday", nil
	case time.Wednesday:
		return "wednesday", nil
	case time.Thursday:
		return "thursday", nil
	case time.Friday:
		return "friday", nil
	case time.Saturday:
		return "saturday", nil
	case time.Sunday:
		return "sunday", nil
	}
	return "", fmt.Errorf("no calendar column for weekday %d", day)
}
