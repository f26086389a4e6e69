package counter

import "trafficsense/internal/models"

// VehicleClasses is the fixed set of detector labels counted as vehicles.
var VehicleClasses = map[string]struct{}{
	"car":        {},
	"truck":      {},
	"bus":        {},
	"motorcycle": {},
}

// IsVehicle reports whether label belongs to VehicleClasses.
func IsVehicle(label string) bool {
	_, ok := VehicleClasses[label]
	return ok
}

// CountVehicles returns how many detections carry a vehicle label. No detections count as 0.
func CountVehicles(detections []models.Detection) int {
	count := 0
	for _, d := range detections {
		if IsVehicle(d.Label) {
			count++
		}
	}
	return count
}
