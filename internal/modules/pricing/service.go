// README: Pricing service computes fare estimates from the configured table.
package pricing

import (
	"errors"
	"fmt"
	"math"

	"mashwar/internal/config"
	"mashwar/internal/modules/location"
	"mashwar/internal/types"
)

var (
	ErrInvalidDistance = errors.New("invalid distance")
	ErrUnknownCategory = errors.New("unknown order category")
)

type Service struct {
	table Table
}

// NewService validates the configured fare table. An invalid table is a
// startup failure: orders must never be priced off a half-loaded table.
func NewService(cfg config.PricingConfig) (*Service, error) {
	t := Table{
		BasePrice:             cfg.BasePrice,
		PricePerKm:            cfg.PricePerKm,
		MinPrice:              cfg.MinPrice,
		SameVillagePrice:      cfg.SameVillagePrice,
		DeliveryBasePrice:     cfg.DeliveryBasePrice,
		FoodOutsidePricePerKm: cfg.FoodOutsidePricePerKm,
		Multipliers:           make(map[types.VehicleType]float64, len(cfg.Multipliers)),
		Currency:              cfg.Currency,
	}
	if t.Currency == "" {
		t.Currency = "EGP"
	}

	constants := map[string]float64{
		"base price":          t.BasePrice,
		"price per km":        t.PricePerKm,
		"min price":           t.MinPrice,
		"same-village price":  t.SameVillagePrice,
		"delivery base price": t.DeliveryBasePrice,
		"food outside per km": t.FoodOutsidePricePerKm,
	}
	for name, v := range constants {
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("pricing table: %s must be a positive number, got %v", name, v)
		}
	}
	for veh, m := range cfg.Multipliers {
		if m <= 0 || math.IsNaN(m) || math.IsInf(m, 0) {
			return nil, fmt.Errorf("pricing table: multiplier for %q must be a positive number, got %v", veh, m)
		}
		t.Multipliers[types.VehicleType(veh)] = m
	}

	return &Service{table: t}, nil
}

// Estimate prices an order at creation time. Rules are evaluated in
// precedence order: flat same-village fees first (they ignore distance
// entirely), then the distance-dependent formulas. A negative or
// non-finite distance on a distance-dependent path is rejected, never
// treated as zero.
//
// pickupVillage is nil when the pickup is not a known village (pharmacy
// reference point, free-text restaurant address). The food same-village
// check compares the pickup address string against the dropoff village
// name, which is how restaurant addresses are recorded in this market.
func (s *Service) Estimate(cat types.Category, veh types.VehicleType, pickupVillage *location.Village, pickupAddress string, dropoff location.Village, distanceKm float64) (types.Money, error) {
	switch cat {
	case types.CategoryTaxi:
		if s.FlatRoute(cat, pickupVillage, pickupAddress, dropoff) {
			return s.money(s.table.SameVillagePrice), nil
		}
		if err := validDistance(distanceKm); err != nil {
			return types.Money{}, err
		}
		fare := (s.table.BasePrice + distanceKm*s.table.PricePerKm) * s.multiplier(veh)
		return s.money(math.Max(s.table.MinPrice, fare)), nil

	case types.CategoryFood:
		if s.FlatRoute(cat, pickupVillage, pickupAddress, dropoff) {
			return s.money(s.table.SameVillagePrice), nil
		}
		if err := validDistance(distanceKm); err != nil {
			return types.Money{}, err
		}
		// Cross-village food rides have no minimum fare.
		return s.money(distanceKm * s.table.FoodOutsidePricePerKm), nil

	case types.CategoryPharmacy:
		if err := validDistance(distanceKm); err != nil {
			return types.Money{}, err
		}
		fare := (s.table.DeliveryBasePrice + distanceKm*s.table.PricePerKm) * s.multiplier(veh)
		return s.money(math.Max(s.table.DeliveryBasePrice, fare)), nil
	}
	return types.Money{}, fmt.Errorf("%w: %q", ErrUnknownCategory, cat)
}

// FlatRoute reports whether the category's same-village flat fee applies,
// in which case no road distance is needed to price the order.
func (s *Service) FlatRoute(cat types.Category, pickupVillage *location.Village, pickupAddress string, dropoff location.Village) bool {
	switch cat {
	case types.CategoryTaxi:
		return pickupVillage != nil && pickupVillage.ID == dropoff.ID
	case types.CategoryFood:
		return pickupAddress == dropoff.Name
	}
	return false
}

// Currency reports the table's currency so callers can denominate
// pass-through totals consistently.
func (s *Service) Currency() string {
	return s.table.Currency
}

func (s *Service) multiplier(veh types.VehicleType) float64 {
	if m, ok := s.table.Multipliers[veh]; ok {
		return m
	}
	return 1
}

func (s *Service) money(v float64) types.Money {
	return types.Money{Amount: int64(math.Round(v)), Currency: s.table.Currency}
}

func validDistance(d float64) error {
	if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return fmt.Errorf("%w: %f", ErrInvalidDistance, d)
	}
	return nil
}
