package feed

import (
	"log"

	"github.com/go-playground/validator/v10"
)

var vehicleValidator = validator.New()

// ValidateVehicle checks a vehicle record against the validate tags on Vehicle.
// The arrival engine does not defend against malformed coordinates, so every
// record must pass through here before it reaches the engine.
func ValidateVehicle(vehicle *Vehicle) error {
	return vehicleValidator.Struct(vehicle)
}

// FilterValidVehicles drops vehicle records that fail validation, logging each
// dropped record once per batch
func FilterValidVehicles(log *log.Logger, vehicles []Vehicle) []Vehicle {
	results := make([]Vehicle, 0, len(vehicles))
	for i := range vehicles {
		if err := ValidateVehicle(&vehicles[i]); err != nil {
			log.Printf("dropping invalid vehicle record id:%q error:%v", vehicles[i].VehicleId, err)
			continue
		}
		results = append(results, vehicles[i])
	}
	return results
}
