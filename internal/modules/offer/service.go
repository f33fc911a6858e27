// README: Offer service: submission gate, listing, live feed, purge sweep.
package offer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"mashwar/internal/observability"
	"mashwar/internal/types"
)

var (
	ErrValidation  = errors.New("invalid offer")
	ErrNotFound    = errors.New("offer not found")
	ErrOrderClosed = errors.New("order no longer accepting offers")
)

// OrderGate answers whether an order is still open for offers. The order
// module implements it; a missing order surfaces as that module's not-found
// error.
type OrderGate interface {
	AcceptsOffers(ctx context.Context, orderID types.ID) (bool, error)
}

type Service struct {
	store  Store
	orders OrderGate
	logger *slog.Logger
}

func NewService(store Store, orders OrderGate, logger *slog.Logger) *Service {
	return &Service{store: store, orders: orders, logger: logger}
}

type SubmitRequest struct {
	OrderID      types.ID
	DriverID     types.ID
	DriverName   string
	DriverPhone  string
	DriverPhoto  string
	DriverRating float64
	Price        types.Money
}

// Submit appends a courier's offer if the order still takes offers. The gate
// check and the append are not atomic: an offer racing the order's closure
// may still land, which is harmless because promotion re-checks the order
// state under its own compare-and-swap and the purge sweep removes strays.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*Offer, error) {
	if req.OrderID == "" || req.DriverID == "" || req.DriverName == "" || req.DriverPhone == "" {
		return nil, ErrValidation
	}
	if req.Price.Amount <= 0 {
		return nil, ErrValidation
	}

	open, err := s.orders.AcceptsOffers(ctx, req.OrderID)
	if err != nil {
		return nil, fmt.Errorf("order gate: %w", err)
	}
	if !open {
		observability.OffersRejectedClosed.Inc()
		return nil, ErrOrderClosed
	}

	o := &Offer{
		OrderID:      req.OrderID,
		DriverID:     req.DriverID,
		DriverName:   req.DriverName,
		DriverPhone:  req.DriverPhone,
		DriverPhoto:  req.DriverPhoto,
		DriverRating: req.DriverRating,
		Price:        req.Price,
		CreatedAt:    time.Now(),
	}
	if _, err := s.store.Append(ctx, o); err != nil {
		return nil, err
	}
	observability.OffersSubmitted.Inc()
	s.logger.Debug("offer submitted", "order_id", o.OrderID, "driver_id", o.DriverID, "price", o.Price.Amount)
	return o, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Offer, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListByOrder(ctx context.Context, orderID types.ID) ([]Offer, error) {
	return s.store.ListByOrder(ctx, orderID)
}

func (s *Service) Watch(ctx context.Context, orderID types.ID) (<-chan []Offer, error) {
	return s.store.Watch(ctx, orderID)
}

// PurgeClosed removes offers whose order has left the offering window.
// Orders the gate cannot resolve are skipped, not deleted.
func (s *Service) PurgeClosed(ctx context.Context) (int64, error) {
	ids, err := s.store.OrderIDs(ctx)
	if err != nil {
		return 0, err
	}

	var removed int64
	var errs []error
	for _, id := range ids {
		open, err := s.orders.AcceptsOffers(ctx, id)
		if err != nil {
			errs = append(errs, fmt.Errorf("order %s: %w", id, err))
			continue
		}
		if open {
			continue
		}
		n, err := s.store.DeleteByOrder(ctx, id)
		if err != nil {
			errs = append(errs, fmt.Errorf("order %s: %w", id, err))
			continue
		}
		removed += n
	}
	return removed, errors.Join(errs...)
}
