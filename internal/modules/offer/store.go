// README: Offer store port; memory and Postgres implementations.
package offer

import (
	"context"

	"mashwar/internal/types"
)

// Store is the persistence port for offers. ListByOrder returns offers in
// receipt order, which is also the display order.
type Store interface {
	// Append assigns an ID, persists the offer, and returns the ID.
	Append(ctx context.Context, o *Offer) (types.ID, error)
	Get(ctx context.Context, id types.ID) (*Offer, error)
	ListByOrder(ctx context.Context, orderID types.ID) ([]Offer, error)
	// OrderIDs lists the distinct order ids that still have offers stored.
	OrderIDs(ctx context.Context) ([]types.ID, error)
	// DeleteByOrder removes all offers for an order and reports how many.
	DeleteByOrder(ctx context.Context, orderID types.ID) (int64, error)
	// Watch emits the order's current offer list after every change, starting
	// with the current list. The channel closes when ctx ends.
	Watch(ctx context.Context, orderID types.ID) (<-chan []Offer, error)
}
