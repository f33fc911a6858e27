// README: Order aggregate and status definitions.
package order

import (
	"time"

	"mashwar/internal/types"
)

type Status string

const (
	StatusWaitingForOffers Status = "waiting_for_offers"
	StatusAccepted         Status = "accepted"
	StatusActiveDelivery   Status = "active_delivery"
	StatusDelivered        Status = "delivered"
	StatusDeliveredRated   Status = "delivered_rated"
	StatusCancelled        Status = "cancelled"
)

// AllowedTransitions represents the order state flow (diagram) as code.
// delivered_rated and cancelled are terminal.
var AllowedTransitions = map[Status][]Status{
	StatusWaitingForOffers: {StatusAccepted, StatusCancelled},
	StatusAccepted:         {StatusActiveDelivery, StatusCancelled},
	StatusActiveDelivery:   {StatusDelivered, StatusCancelled},
	StatusDelivered:        {StatusDeliveredRated},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// Place is a pickup or dropoff location. VillageName ties it into the
// location graph for pricing; Address is the free text the customer sees.
type Place struct {
	Address     string      `json:"address"`
	Point       types.Point `json:"point"`
	VillageName string      `json:"village_name,omitempty"`
}

// CartItem is one line of a food order's cart.
type CartItem struct {
	ID       types.ID    `json:"id"`
	Name     string      `json:"name"`
	Price    types.Money `json:"price"`
	Quantity int         `json:"quantity"`
}

// DriverInfo is the winning courier, denormalised from the accepted offer.
type DriverInfo struct {
	ID    types.ID `json:"id"`
	Name  string   `json:"name"`
	Phone string   `json:"phone"`
	Photo string   `json:"photo,omitempty"`
}

// Order is the aggregate. Driver is nil exactly while the order has no
// accepted courier; Price and DistanceKm never change after the order
// leaves waiting_for_offers.
type Order struct {
	ID            types.ID          `json:"id"`
	CustomerID    types.ID          `json:"customer_id"`
	CustomerPhone string            `json:"customer_phone"`
	Category      types.Category    `json:"category"`
	Status        Status            `json:"status"`
	StatusVersion int               `json:"status_version"`
	Pickup        *Place            `json:"pickup,omitempty"`
	Dropoff       Place             `json:"dropoff"`
	Vehicle       types.VehicleType `json:"vehicle,omitempty"`
	Price         types.Money       `json:"price"`
	DistanceKm    float64           `json:"distance_km"`
	Driver        *DriverInfo       `json:"driver,omitempty"`

	PickupNotes  string `json:"pickup_notes,omitempty"`
	DropoffNotes string `json:"dropoff_notes,omitempty"`

	RestaurantID   types.ID   `json:"restaurant_id,omitempty"`
	RestaurantName string     `json:"restaurant_name,omitempty"`
	FoodItems      []CartItem `json:"food_items,omitempty"`

	PrescriptionImage string `json:"prescription_image,omitempty"`
	CustomNote        string `json:"custom_note,omitempty"`

	Rating   int    `json:"rating,omitempty"`
	Feedback string `json:"feedback,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	RatedAt     *time.Time `json:"rated_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

// clone returns a deep copy so store readers never alias stored state.
func (o *Order) clone() *Order {
	c := *o
	if o.Pickup != nil {
		p := *o.Pickup
		c.Pickup = &p
	}
	if o.Driver != nil {
		d := *o.Driver
		c.Driver = &d
	}
	if o.FoodItems != nil {
		c.FoodItems = append([]CartItem(nil), o.FoodItems...)
	}
	c.AcceptedAt = copyTime(o.AcceptedAt)
	c.DeliveredAt = copyTime(o.DeliveredAt)
	c.RatedAt = copyTime(o.RatedAt)
	c.CancelledAt = copyTime(o.CancelledAt)
	return &c
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
