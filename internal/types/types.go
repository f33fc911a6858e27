// README: Shared identifiers, coordinates, and enums used across modules.
package types

// ID is an opaque document identifier assigned by the stores.
type ID string

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Category identifies what kind of errand an order is.
type Category string

const (
	CategoryTaxi     Category = "taxi"
	CategoryFood     Category = "food"
	CategoryPharmacy Category = "pharmacy"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryTaxi, CategoryFood, CategoryPharmacy:
		return true
	}
	return false
}

// VehicleType is the courier's vehicle class; pricing multipliers key off it.
type VehicleType string

const (
	VehicleMotorcycle VehicleType = "motorcycle"
	VehicleToktok     VehicleType = "toktok"
	VehicleCar        VehicleType = "car"
)

func (v VehicleType) Valid() bool {
	switch v {
	case VehicleMotorcycle, VehicleToktok, VehicleCar:
		return true
	}
	return false
}
