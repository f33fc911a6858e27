// README: Fare table definition; constants are loaded once at process start.
package pricing

import "mashwar/internal/types"

type Table struct {
	BasePrice             float64
	PricePerKm            float64
	MinPrice              float64
	SameVillagePrice      float64
	DeliveryBasePrice     float64
	FoodOutsidePricePerKm float64
	Multipliers           map[types.VehicleType]float64
	Currency              string
}
