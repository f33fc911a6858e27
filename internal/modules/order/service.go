// README: Order service: creation, pricing, offer acceptance, lifecycle transitions.
package order

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"mashwar/internal/maps"
	"mashwar/internal/modules/location"
	"mashwar/internal/modules/offer"
	"mashwar/internal/observability"
	"mashwar/internal/types"
)

var (
	ErrValidation          = errors.New("invalid order request")
	ErrNotFound            = errors.New("order not found")
	ErrConflict            = errors.New("order state conflict")
	ErrDistanceUnavailable = errors.New("road distance unavailable")
)

const notifyTimeout = 5 * time.Second

// Estimator prices orders. The pricing module implements it.
type Estimator interface {
	Estimate(cat types.Category, veh types.VehicleType, pickupVillage *location.Village, pickupAddress string, dropoff location.Village, distanceKm float64) (types.Money, error)
	FlatRoute(cat types.Category, pickupVillage *location.Village, pickupAddress string, dropoff location.Village) bool
	Currency() string
}

// RoadOracle resolves road distance between two points. The maps package
// implements it.
type RoadOracle interface {
	RoadDistance(ctx context.Context, origin, dest types.Point) (maps.RouteEstimate, error)
}

// Notifier delivers operator notifications. Failures are logged, never
// propagated to the customer.
type Notifier interface {
	Notify(ctx context.Context, summary string) error
}

type Service struct {
	store          Store
	graph          *location.Graph
	pricer         Estimator
	oracle         RoadOracle
	notifier       Notifier
	pharmacyPickup types.Point
	logger         *slog.Logger
}

func NewService(store Store, graph *location.Graph, pricer Estimator, oracle RoadOracle, notifier Notifier, pharmacyPickup types.Point, logger *slog.Logger) *Service {
	return &Service{
		store:          store,
		graph:          graph,
		pricer:         pricer,
		oracle:         oracle,
		notifier:       notifier,
		pharmacyPickup: pharmacyPickup,
		logger:         logger,
	}
}

type TaxiRequest struct {
	CustomerID    types.ID
	CustomerPhone string
	Pickup        Place
	Dropoff       Place
	Vehicle       types.VehicleType
	PickupNotes   string
	DropoffNotes  string
}

type FoodRequest struct {
	CustomerID     types.ID
	CustomerPhone  string
	RestaurantID   types.ID
	RestaurantName string
	Restaurant     Place
	Dropoff        Place
	Items          []CartItem
	// Total, when set, is the menu checkout's precomputed bill and is stored
	// verbatim; no estimate is computed.
	Total        *types.Money
	DropoffNotes string
}

type PharmacyRequest struct {
	CustomerID        types.ID
	CustomerPhone     string
	Dropoff           Place
	PrescriptionImage string
	CustomNote        string
	DropoffNotes      string
}

type CustomRestaurantRequest struct {
	CustomerID     types.ID
	CustomerPhone  string
	RestaurantName string
	Restaurant     Place
	Dropoff        Place
	CustomNote     string
	DropoffNotes   string
}

func (s *Service) CreateTaxi(ctx context.Context, req TaxiRequest) (*Order, error) {
	if req.CustomerID == "" || req.CustomerPhone == "" || !req.Vehicle.Valid() {
		return nil, ErrValidation
	}
	if req.Pickup.VillageName == "" || req.Dropoff.VillageName == "" {
		return nil, ErrValidation
	}
	pickupVillage, ok := s.graph.VillageByName(req.Pickup.VillageName)
	if !ok {
		return nil, ErrValidation
	}
	pickup := req.Pickup
	if pickup.Point == (types.Point{}) {
		pickup.Point = pickupVillage.Center
	}

	o := &Order{
		CustomerID:    req.CustomerID,
		CustomerPhone: req.CustomerPhone,
		Category:      types.CategoryTaxi,
		Pickup:        &pickup,
		Dropoff:       req.Dropoff,
		Vehicle:       req.Vehicle,
		PickupNotes:   req.PickupNotes,
		DropoffNotes:  req.DropoffNotes,
	}
	return s.create(ctx, o, &pickupVillage, pickup.Address, nil)
}

func (s *Service) CreateFood(ctx context.Context, req FoodRequest) (*Order, error) {
	if req.CustomerID == "" || req.CustomerPhone == "" || req.RestaurantName == "" {
		return nil, ErrValidation
	}
	if req.Dropoff.VillageName == "" || len(req.Items) == 0 {
		return nil, ErrValidation
	}
	seen := make(map[types.ID]bool, len(req.Items))
	for _, it := range req.Items {
		if it.ID == "" || it.Quantity <= 0 || seen[it.ID] {
			return nil, ErrValidation
		}
		seen[it.ID] = true
	}
	if req.Total != nil && req.Total.Amount <= 0 {
		return nil, ErrValidation
	}

	pickup := req.Restaurant
	o := &Order{
		CustomerID:     req.CustomerID,
		CustomerPhone:  req.CustomerPhone,
		Category:       types.CategoryFood,
		Pickup:         &pickup,
		Dropoff:        req.Dropoff,
		Vehicle:        types.VehicleMotorcycle,
		RestaurantID:   req.RestaurantID,
		RestaurantName: req.RestaurantName,
		FoodItems:      append([]CartItem(nil), req.Items...),
		DropoffNotes:   req.DropoffNotes,
	}
	return s.create(ctx, o, nil, pickup.Address, req.Total)
}

func (s *Service) CreatePharmacy(ctx context.Context, req PharmacyRequest) (*Order, error) {
	if req.CustomerID == "" || req.CustomerPhone == "" || req.Dropoff.VillageName == "" {
		return nil, ErrValidation
	}
	if req.PrescriptionImage == "" && req.CustomNote == "" {
		return nil, ErrValidation
	}

	// Pharmacy orders originate at the configured reference pharmacy, not a
	// customer-supplied pickup, so Pickup stays nil.
	o := &Order{
		CustomerID:        req.CustomerID,
		CustomerPhone:     req.CustomerPhone,
		Category:          types.CategoryPharmacy,
		Dropoff:           req.Dropoff,
		Vehicle:           types.VehicleMotorcycle,
		PrescriptionImage: req.PrescriptionImage,
		CustomNote:        req.CustomNote,
		DropoffNotes:      req.DropoffNotes,
	}
	return s.create(ctx, o, nil, "", nil)
}

func (s *Service) CreateCustomRestaurant(ctx context.Context, req CustomRestaurantRequest) (*Order, error) {
	if req.CustomerID == "" || req.CustomerPhone == "" || req.RestaurantName == "" {
		return nil, ErrValidation
	}
	if req.Dropoff.VillageName == "" {
		return nil, ErrValidation
	}

	pickup := req.Restaurant
	o := &Order{
		CustomerID:     req.CustomerID,
		CustomerPhone:  req.CustomerPhone,
		Category:       types.CategoryFood,
		Pickup:         &pickup,
		Dropoff:        req.Dropoff,
		Vehicle:        types.VehicleMotorcycle,
		RestaurantName: req.RestaurantName,
		CustomNote:     req.CustomNote,
		DropoffNotes:   req.DropoffNotes,
	}
	return s.create(ctx, o, nil, pickup.Address, nil)
}

// create runs the shared tail of every creation path: resolve the dropoff
// village, fetch road distance unless a flat fare applies, price, persist,
// notify. Nothing is persisted when the oracle fails.
func (s *Service) create(ctx context.Context, o *Order, pickupVillage *location.Village, pickupAddress string, total *types.Money) (*Order, error) {
	dropoff, ok := s.graph.VillageByName(o.Dropoff.VillageName)
	if !ok {
		return nil, ErrValidation
	}
	if o.Dropoff.Point == (types.Point{}) {
		o.Dropoff.Point = dropoff.Center
	}

	if !s.pricer.FlatRoute(o.Category, pickupVillage, pickupAddress, dropoff) {
		origin := s.pharmacyPickup
		if o.Pickup != nil {
			origin = o.Pickup.Point
		}
		est, err := s.oracle.RoadDistance(ctx, origin, o.Dropoff.Point)
		if err != nil {
			if errors.Is(err, maps.ErrUnavailable) {
				s.logger.Warn("road distance lookup failed", "category", o.Category, "error", err)
				return nil, ErrDistanceUnavailable
			}
			return nil, err
		}
		o.DistanceKm = est.DistanceKm
	}

	if total != nil {
		o.Price = *total
		if o.Price.Currency == "" {
			o.Price.Currency = s.pricer.Currency()
		}
	} else {
		price, err := s.pricer.Estimate(o.Category, o.Vehicle, pickupVillage, pickupAddress, dropoff, o.DistanceKm)
		if err != nil {
			return nil, err
		}
		o.Price = price
	}

	o.Status = StatusWaitingForOffers
	o.StatusVersion = 0
	o.CreatedAt = time.Now()

	id, err := s.store.Put(ctx, o)
	if err != nil {
		return nil, err
	}
	o.ID = id

	observability.OrdersCreated.WithLabelValues(string(o.Category)).Inc()
	s.logger.Info("order created",
		"order_id", o.ID, "category", o.Category, "customer_id", o.CustomerID,
		"price", o.Price.Amount, "distance_km", o.DistanceKm)
	s.notify(ctx, creationSummary(o))
	return o, nil
}

// AcceptOffer promotes one courier offer to the winning bid. Concurrent
// accepts race on the store's conditional update; exactly one wins and the
// rest get ErrConflict.
func (s *Service) AcceptOffer(ctx context.Context, orderID types.ID, off offer.Offer) (*Order, error) {
	if off.OrderID != orderID || off.DriverID == "" || off.Price.Amount <= 0 {
		return nil, ErrValidation
	}
	o, err := s.store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, StatusAccepted) {
		return nil, ErrConflict
	}

	price := off.Price
	patch := Patch{
		Driver: &DriverInfo{
			ID:    off.DriverID,
			Name:  off.DriverName,
			Phone: off.DriverPhone,
			Photo: off.DriverPhoto,
		},
		Price: &price,
	}
	ok, err := s.store.UpdateStatus(ctx, o.ID, o.Status, StatusAccepted, o.StatusVersion, patch)
	if err != nil {
		return nil, err
	}
	if !ok {
		observability.TransitionConflicts.Inc()
		return nil, ErrConflict
	}
	observability.OrderTransitions.WithLabelValues(string(StatusAccepted)).Inc()
	s.logger.Info("offer accepted", "order_id", o.ID, "driver_id", off.DriverID, "price", off.Price.Amount)

	updated, err := s.store.Get(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, acceptanceSummary(updated))
	return updated, nil
}

// StartDelivery moves an accepted order into the single in-progress state.
// Only the assigned courier may start it.
func (s *Service) StartDelivery(ctx context.Context, orderID, driverID types.ID) error {
	o, err := s.store.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if o.Driver == nil || o.Driver.ID != driverID {
		return ErrValidation
	}
	if !CanTransition(o.Status, StatusActiveDelivery) {
		return ErrConflict
	}
	ok, err := s.store.UpdateStatus(ctx, o.ID, o.Status, StatusActiveDelivery, o.StatusVersion, Patch{})
	if err != nil {
		return err
	}
	if !ok {
		observability.TransitionConflicts.Inc()
		return ErrConflict
	}
	observability.OrderTransitions.WithLabelValues(string(StatusActiveDelivery)).Inc()
	s.logger.Info("delivery started", "order_id", o.ID, "driver_id", driverID)
	return nil
}

func (s *Service) MarkDelivered(ctx context.Context, orderID, driverID types.ID) error {
	o, err := s.store.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if o.Driver == nil || o.Driver.ID != driverID {
		return ErrValidation
	}
	if !CanTransition(o.Status, StatusDelivered) {
		return ErrConflict
	}
	ok, err := s.store.UpdateStatus(ctx, o.ID, o.Status, StatusDelivered, o.StatusVersion, Patch{})
	if err != nil {
		return err
	}
	if !ok {
		observability.TransitionConflicts.Inc()
		return ErrConflict
	}
	observability.OrderTransitions.WithLabelValues(string(StatusDelivered)).Inc()
	s.logger.Info("order delivered", "order_id", o.ID, "driver_id", driverID)
	return nil
}

// Cancel ends the order from any pre-delivered state and clears the driver
// fields, keeping the driver-presence invariant intact.
func (s *Service) Cancel(ctx context.Context, orderID types.ID) error {
	o, err := s.store.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if !CanTransition(o.Status, StatusCancelled) {
		return ErrConflict
	}
	ok, err := s.store.UpdateStatus(ctx, o.ID, o.Status, StatusCancelled, o.StatusVersion, Patch{ClearDriver: true})
	if err != nil {
		return err
	}
	if !ok {
		observability.TransitionConflicts.Inc()
		return ErrConflict
	}
	observability.OrderTransitions.WithLabelValues(string(StatusCancelled)).Inc()
	s.logger.Info("order cancelled", "order_id", o.ID, "from", o.Status)
	return nil
}

// Rate records the customer's rating exactly once; the transition out of
// delivered makes a second rating lose its conditional update.
func (s *Service) Rate(ctx context.Context, orderID types.ID, rating int, feedback string) (*Order, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrValidation
	}
	o, err := s.store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, StatusDeliveredRated) {
		return nil, ErrConflict
	}
	ok, err := s.store.UpdateStatus(ctx, o.ID, o.Status, StatusDeliveredRated, o.StatusVersion, Patch{Rating: &rating, Feedback: &feedback})
	if err != nil {
		return nil, err
	}
	if !ok {
		observability.TransitionConflicts.Inc()
		return nil, ErrConflict
	}
	observability.OrderTransitions.WithLabelValues(string(StatusDeliveredRated)).Inc()
	s.logger.Info("order rated", "order_id", o.ID, "rating", rating)
	return s.store.Get(ctx, o.ID)
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Order, error) {
	return s.store.Get(ctx, id)
}

// ListOpen returns orders couriers can still bid on.
func (s *Service) ListOpen(ctx context.Context) ([]Order, error) {
	return s.store.List(ctx, Filter{Statuses: []Status{StatusWaitingForOffers}})
}

func (s *Service) ListByCustomer(ctx context.Context, customerID types.ID) ([]Order, error) {
	return s.store.List(ctx, Filter{CustomerID: customerID})
}

// AcceptsOffers is the offer module's gate: only waiting orders take bids.
func (s *Service) AcceptsOffers(ctx context.Context, id types.ID) (bool, error) {
	o, err := s.store.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return o.Status == StatusWaitingForOffers, nil
}

func (s *Service) WatchOpen(ctx context.Context) (<-chan []Order, error) {
	return s.store.Watch(ctx, Filter{Statuses: []Status{StatusWaitingForOffers}})
}

func (s *Service) WatchOrder(ctx context.Context, id types.ID) (<-chan []Order, error) {
	return s.store.Watch(ctx, Filter{ID: id})
}

// notify sends the operator summary without holding up the request. The
// notification rides a detached context so request cancellation cannot yank
// an in-flight send.
func (s *Service) notify(ctx context.Context, summary string) {
	if s.notifier == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
		defer cancel()
		if err := s.notifier.Notify(ctx, summary); err != nil {
			observability.NotifyFailures.Inc()
			s.logger.Warn("operator notification failed", "error", err)
		}
	}()
}
