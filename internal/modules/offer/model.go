// README: Courier price offers bid on open orders.
package offer

import (
	"time"

	"mashwar/internal/types"
)

// Offer is a courier's bid on an order. Offers are immutable once appended;
// the customer picks one and the order side records the winner.
type Offer struct {
	ID           types.ID    `json:"id"`
	OrderID      types.ID    `json:"order_id"`
	DriverID     types.ID    `json:"driver_id"`
	DriverName   string      `json:"driver_name"`
	DriverPhone  string      `json:"driver_phone"`
	DriverPhoto  string      `json:"driver_photo,omitempty"`
	DriverRating float64     `json:"driver_rating"`
	Price        types.Money `json:"price"`
	CreatedAt    time.Time   `json:"created_at"`
}
