// README: Order store port; the service depends on these semantics only.
package order

import (
	"context"

	"mashwar/internal/types"
)

// Filter narrows List and Watch result sets. Zero fields match everything;
// set fields are ANDed. Results come back in creation order.
type Filter struct {
	ID         types.ID
	Statuses   []Status
	CustomerID types.ID
	DriverID   types.ID
}

// Patch carries the field writes that ride along a status transition.
// ClearDriver wins over Driver when both are set.
type Patch struct {
	Driver      *DriverInfo
	ClearDriver bool
	Price       *types.Money
	Rating      *int
	Feedback    *string
}

// Store is the persistence port for orders.
//
// UpdateStatus is the compare-and-swap primitive: it applies `to`, bumps the
// version, stamps the matching status timestamp, and applies the patch only
// if the stored (status, version) still equal (from, version). It reports
// false, with nothing written, when the precondition fails or the order is
// missing; concurrent callers therefore get exactly one winner.
type Store interface {
	Put(ctx context.Context, o *Order) (types.ID, error)
	Get(ctx context.Context, id types.ID) (*Order, error)
	List(ctx context.Context, f Filter) ([]Order, error)
	UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, p Patch) (bool, error)
	// Watch emits the filter's current result set after every relevant
	// change, starting with the current set. The channel closes when ctx
	// ends.
	Watch(ctx context.Context, f Filter) (<-chan []Order, error)
}

func (f Filter) matches(o *Order) bool {
	if f.ID != "" && o.ID != f.ID {
		return false
	}
	if f.CustomerID != "" && o.CustomerID != f.CustomerID {
		return false
	}
	if f.DriverID != "" && (o.Driver == nil || o.Driver.ID != f.DriverID) {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if o.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
