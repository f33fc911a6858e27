// README: Order service tests (state machine, creation, pricing wiring, lifecycle).
package order

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"mashwar/internal/config"
	"mashwar/internal/maps"
	"mashwar/internal/modules/location"
	"mashwar/internal/modules/offer"
	"mashwar/internal/modules/pricing"
	"mashwar/internal/types"
)

// TestCanTransition verifies the state machine transition table.
func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		// happy-path forward transitions
		{StatusWaitingForOffers, StatusAccepted, true},
		{StatusAccepted, StatusActiveDelivery, true},
		{StatusActiveDelivery, StatusDelivered, true},
		{StatusDelivered, StatusDeliveredRated, true},
		// customer cancel from every pre-delivered state
		{StatusWaitingForOffers, StatusCancelled, true},
		{StatusAccepted, StatusCancelled, true},
		{StatusActiveDelivery, StatusCancelled, true},
		// delivered orders can only be rated, never cancelled
		{StatusDelivered, StatusCancelled, false},
		// invalid: terminal states have no outgoing transitions
		{StatusDeliveredRated, StatusWaitingForOffers, false},
		{StatusDeliveredRated, StatusCancelled, false},
		{StatusCancelled, StatusWaitingForOffers, false},
		{StatusCancelled, StatusAccepted, false},
		// invalid: skipping states
		{StatusWaitingForOffers, StatusActiveDelivery, false},
		{StatusWaitingForOffers, StatusDelivered, false},
		{StatusAccepted, StatusDelivered, false},
		{StatusAccepted, StatusDeliveredRated, false},
		// invalid: moving backwards
		{StatusAccepted, StatusWaitingForOffers, false},
		{StatusDelivered, StatusActiveDelivery, false},
	}
	for _, tc := range cases {
		got := CanTransition(tc.from, tc.to)
		if got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

type fakeOracle struct {
	est   maps.RouteEstimate
	err   error
	calls int
}

func (f *fakeOracle) RoadDistance(ctx context.Context, origin, dest types.Point) (maps.RouteEstimate, error) {
	f.calls++
	if f.err != nil {
		return maps.RouteEstimate{}, f.err
	}
	return f.est, nil
}

const (
	villageA = "Kafr El Sheikh Atia"
	villageB = "Meet El Amel"
)

func testGraph(t *testing.T) *location.Graph {
	t.Helper()
	g, err := location.NewGraph([]location.District{{
		ID:   "d1",
		Name: "Meet Ghamr",
		Villages: []location.Village{
			{ID: "v1", Name: villageA, Center: types.Point{Lat: 30.72, Lng: 31.25}},
			{ID: "v2", Name: villageB, Center: types.Point{Lat: 30.70, Lng: 31.28}},
		},
	}})
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	return g
}

func newTestService(t *testing.T, oracle RoadOracle) *Service {
	t.Helper()
	pricer, err := pricing.NewService(config.PricingConfig{
		BasePrice:             10,
		PricePerKm:            3,
		MinPrice:              15,
		SameVillagePrice:      20,
		DeliveryBasePrice:     20,
		FoodOutsidePricePerKm: 5,
		Multipliers:           map[string]float64{"motorcycle": 1.0, "toktok": 1.0, "car": 1.2},
		Currency:              "EGP",
	})
	if err != nil {
		t.Fatalf("pricing service: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pharmacy := types.Point{Lat: 30.71, Lng: 31.26}
	return NewService(NewMemoryStore(), testGraph(t), pricer, oracle, nil, pharmacy, logger)
}

func taxiRequest() TaxiRequest {
	return TaxiRequest{
		CustomerID:    "c1",
		CustomerPhone: "+20100000001",
		Pickup:        Place{VillageName: villageA},
		Dropoff:       Place{VillageName: villageB},
		Vehicle:       types.VehicleCar,
	}
}

func mustCreateTaxi(t *testing.T, svc *Service) *Order {
	t.Helper()
	o, err := svc.CreateTaxi(context.Background(), taxiRequest())
	if err != nil {
		t.Fatalf("create taxi: %v", err)
	}
	return o
}

func testOffer(orderID, driverID types.ID, price int64) offer.Offer {
	return offer.Offer{
		ID:          types.ID("of_" + driverID),
		OrderID:     orderID,
		DriverID:    driverID,
		DriverName:  "Ahmed",
		DriverPhone: "+20111111111",
		Price:       types.Money{Amount: price, Currency: "EGP"},
	}
}

func assertStatus(t *testing.T, svc *Service, orderID types.ID, want Status) {
	t.Helper()
	o, err := svc.Get(context.Background(), orderID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if o.Status != want {
		t.Fatalf("expected status %s, got %s", want, o.Status)
	}
}

func TestOrderFlowHappyPath(t *testing.T) {
	svc := newTestService(t, &fakeOracle{est: maps.RouteEstimate{DistanceKm: 10}})
	ctx := context.Background()

	o := mustCreateTaxi(t, svc)
	assertStatus(t, svc, o.ID, StatusWaitingForOffers)
	// (10 + 10*3) * 1.2 = 48
	if o.Price.Amount != 48 {
		t.Fatalf("expected estimate 48, got %d", o.Price.Amount)
	}

	accepted, err := svc.AcceptOffer(ctx, o.ID, testOffer(o.ID, "d1", 45))
	if err != nil {
		t.Fatalf("accept offer: %v", err)
	}
	assertStatus(t, svc, o.ID, StatusAccepted)
	if accepted.Driver == nil || accepted.Driver.ID != "d1" {
		t.Fatalf("expected driver d1, got %+v", accepted.Driver)
	}
	if accepted.Price.Amount != 45 {
		t.Fatalf("expected price fixed to offer 45, got %d", accepted.Price.Amount)
	}
	if accepted.AcceptedAt == nil {
		t.Fatal("expected accepted_at to be stamped")
	}

	if err := svc.StartDelivery(ctx, o.ID, "d1"); err != nil {
		t.Fatalf("start delivery: %v", err)
	}
	assertStatus(t, svc, o.ID, StatusActiveDelivery)

	if err := svc.MarkDelivered(ctx, o.ID, "d1"); err != nil {
		t.Fatalf("mark delivered: %v", err)
	}
	assertStatus(t, svc, o.ID, StatusDelivered)

	rated, err := svc.Rate(ctx, o.ID, 5, "fast and friendly")
	if err != nil {
		t.Fatalf("rate: %v", err)
	}
	if rated.Status != StatusDeliveredRated || rated.Rating != 5 || rated.Feedback != "fast and friendly" {
		t.Fatalf("unexpected rated order: %+v", rated)
	}
	if rated.DeliveredAt == nil || rated.RatedAt == nil {
		t.Fatal("expected delivered_at and rated_at to be stamped")
	}
}

func TestCreateTaxiSameVillageSkipsOracle(t *testing.T) {
	oracle := &fakeOracle{err: maps.ErrUnavailable}
	svc := newTestService(t, oracle)

	req := taxiRequest()
	req.Dropoff = Place{VillageName: villageA}
	o, err := svc.CreateTaxi(context.Background(), req)
	if err != nil {
		t.Fatalf("create same-village taxi: %v", err)
	}
	if o.Price.Amount != 20 {
		t.Fatalf("expected flat fare 20, got %d", o.Price.Amount)
	}
	if o.DistanceKm != 0 {
		t.Fatalf("expected zero distance on flat fare, got %f", o.DistanceKm)
	}
	if oracle.calls != 0 {
		t.Fatalf("oracle consulted %d times on a flat-fare order", oracle.calls)
	}
}

func TestCreateOracleFailureBlocksDistanceOrders(t *testing.T) {
	svc := newTestService(t, &fakeOracle{err: maps.ErrUnavailable})
	ctx := context.Background()

	if _, err := svc.CreateTaxi(ctx, taxiRequest()); err != ErrDistanceUnavailable {
		t.Fatalf("expected ErrDistanceUnavailable, got %v", err)
	}
	open, err := svc.ListOpen(ctx)
	if err != nil {
		t.Fatalf("list open: %v", err)
	}
	if len(open) != 0 {
		t.Fatalf("expected nothing persisted after oracle failure, got %d orders", len(open))
	}
}

func TestCreateFood(t *testing.T) {
	svc := newTestService(t, &fakeOracle{est: maps.RouteEstimate{DistanceKm: 6}})
	ctx := context.Background()

	base := FoodRequest{
		CustomerID:     "c1",
		CustomerPhone:  "+20100000001",
		RestaurantID:   "r1",
		RestaurantName: "Koshary El Amel",
		Restaurant:     Place{Address: "26th July St", Point: types.Point{Lat: 30.705, Lng: 31.27}},
		Dropoff:        Place{VillageName: villageB},
		Items:          []CartItem{{ID: "i1", Name: "koshary", Price: types.Money{Amount: 40, Currency: "EGP"}, Quantity: 2}},
	}

	t.Run("cross village priced per km", func(t *testing.T) {
		o, err := svc.CreateFood(ctx, base)
		if err != nil {
			t.Fatalf("create food: %v", err)
		}
		// 6 * 5 = 30
		if o.Price.Amount != 30 {
			t.Fatalf("expected 30, got %d", o.Price.Amount)
		}
		if o.Vehicle != types.VehicleMotorcycle {
			t.Fatalf("expected motorcycle, got %s", o.Vehicle)
		}
		if len(o.FoodItems) != 1 || o.FoodItems[0].Quantity != 2 {
			t.Fatalf("cart not persisted: %+v", o.FoodItems)
		}
	})

	t.Run("restaurant inside dropoff village gets flat fare", func(t *testing.T) {
		req := base
		req.Restaurant.Address = villageB
		o, err := svc.CreateFood(ctx, req)
		if err != nil {
			t.Fatalf("create food: %v", err)
		}
		if o.Price.Amount != 20 {
			t.Fatalf("expected flat 20, got %d", o.Price.Amount)
		}
		if o.DistanceKm != 0 {
			t.Fatalf("expected zero distance, got %f", o.DistanceKm)
		}
	})

	t.Run("menu total passes through verbatim", func(t *testing.T) {
		req := base
		req.Total = &types.Money{Amount: 150, Currency: "EGP"}
		o, err := svc.CreateFood(ctx, req)
		if err != nil {
			t.Fatalf("create food: %v", err)
		}
		if o.Price.Amount != 150 {
			t.Fatalf("expected pass-through total 150, got %d", o.Price.Amount)
		}
	})
}

func TestCreatePharmacy(t *testing.T) {
	svc := newTestService(t, &fakeOracle{est: maps.RouteEstimate{DistanceKm: 2}})

	o, err := svc.CreatePharmacy(context.Background(), PharmacyRequest{
		CustomerID:        "c1",
		CustomerPhone:     "+20100000001",
		Dropoff:           Place{VillageName: villageB},
		PrescriptionImage: "rx/abc123.jpg",
	})
	if err != nil {
		t.Fatalf("create pharmacy: %v", err)
	}
	// max(20, (20 + 2*3) * 1.0) = 26
	if o.Price.Amount != 26 {
		t.Fatalf("expected 26, got %d", o.Price.Amount)
	}
	if o.Pickup != nil {
		t.Fatalf("pharmacy orders have no customer pickup, got %+v", o.Pickup)
	}
	if o.Vehicle != types.VehicleMotorcycle {
		t.Fatalf("expected motorcycle, got %s", o.Vehicle)
	}
}

func TestCreateCustomRestaurant(t *testing.T) {
	svc := newTestService(t, &fakeOracle{est: maps.RouteEstimate{DistanceKm: 4}})

	o, err := svc.CreateCustomRestaurant(context.Background(), CustomRestaurantRequest{
		CustomerID:     "c1",
		CustomerPhone:  "+20100000001",
		RestaurantName: "Am Hassan Grill",
		Restaurant:     Place{Address: "Market St", Point: types.Point{Lat: 30.73, Lng: 31.24}},
		Dropoff:        Place{VillageName: villageB},
		CustomNote:     "2 kofta plates",
	})
	if err != nil {
		t.Fatalf("create custom restaurant: %v", err)
	}
	if o.Category != types.CategoryFood {
		t.Fatalf("expected food category, got %s", o.Category)
	}
	// 4 * 5 = 20
	if o.Price.Amount != 20 {
		t.Fatalf("expected 20, got %d", o.Price.Amount)
	}
	if o.CustomNote != "2 kofta plates" {
		t.Fatalf("note not persisted: %q", o.CustomNote)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t, &fakeOracle{est: maps.RouteEstimate{DistanceKm: 5}})
	ctx := context.Background()

	cases := []struct {
		name   string
		create func() error
	}{
		{"taxi missing customer", func() error {
			req := taxiRequest()
			req.CustomerID = ""
			_, err := svc.CreateTaxi(ctx, req)
			return err
		}},
		{"taxi missing phone", func() error {
			req := taxiRequest()
			req.CustomerPhone = ""
			_, err := svc.CreateTaxi(ctx, req)
			return err
		}},
		{"taxi bad vehicle", func() error {
			req := taxiRequest()
			req.Vehicle = "rocket"
			_, err := svc.CreateTaxi(ctx, req)
			return err
		}},
		{"taxi unknown pickup village", func() error {
			req := taxiRequest()
			req.Pickup.VillageName = "Atlantis"
			_, err := svc.CreateTaxi(ctx, req)
			return err
		}},
		{"taxi unknown dropoff village", func() error {
			req := taxiRequest()
			req.Dropoff.VillageName = "Atlantis"
			_, err := svc.CreateTaxi(ctx, req)
			return err
		}},
		{"food empty cart", func() error {
			_, err := svc.CreateFood(ctx, FoodRequest{
				CustomerID: "c1", CustomerPhone: "+2010", RestaurantName: "R",
				Dropoff: Place{VillageName: villageB},
			})
			return err
		}},
		{"food zero quantity", func() error {
			_, err := svc.CreateFood(ctx, FoodRequest{
				CustomerID: "c1", CustomerPhone: "+2010", RestaurantName: "R",
				Dropoff: Place{VillageName: villageB},
				Items:   []CartItem{{ID: "i1", Name: "x", Quantity: 0}},
			})
			return err
		}},
		{"food duplicate item ids", func() error {
			_, err := svc.CreateFood(ctx, FoodRequest{
				CustomerID: "c1", CustomerPhone: "+2010", RestaurantName: "R",
				Dropoff: Place{VillageName: villageB},
				Items: []CartItem{
					{ID: "i1", Name: "x", Quantity: 1},
					{ID: "i1", Name: "y", Quantity: 1},
				},
			})
			return err
		}},
		{"food non-positive total", func() error {
			_, err := svc.CreateFood(ctx, FoodRequest{
				CustomerID: "c1", CustomerPhone: "+2010", RestaurantName: "R",
				Dropoff: Place{VillageName: villageB},
				Items:   []CartItem{{ID: "i1", Name: "x", Quantity: 1}},
				Total:   &types.Money{Amount: 0, Currency: "EGP"},
			})
			return err
		}},
		{"pharmacy without prescription or note", func() error {
			_, err := svc.CreatePharmacy(ctx, PharmacyRequest{
				CustomerID: "c1", CustomerPhone: "+2010",
				Dropoff: Place{VillageName: villageB},
			})
			return err
		}},
		{"custom restaurant without name", func() error {
			_, err := svc.CreateCustomRestaurant(ctx, CustomRestaurantRequest{
				CustomerID: "c1", CustomerPhone: "+2010",
				Dropoff: Place{VillageName: villageB},
			})
			return err
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.create(); err != ErrValidation {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestAcceptOfferValidation(t *testing.T) {
	svc := newTestService(t, &fakeOracle{est: maps.RouteEstimate{DistanceKm: 10}})
	ctx := context.Background()
	o := mustCreateTaxi(t, svc)

	t.Run("offer for another order", func(t *testing.T) {
		off := testOffer("someone-else", "d1", 40)
		if _, err := svc.AcceptOffer(ctx, o.ID, off); err != ErrValidation {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})
	t.Run("missing driver", func(t *testing.T) {
		off := testOffer(o.ID, "", 40)
		if _, err := svc.AcceptOffer(ctx, o.ID, off); err != ErrValidation {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})
	t.Run("non-positive price", func(t *testing.T) {
		off := testOffer(o.ID, "d1", 0)
		if _, err := svc.AcceptOffer(ctx, o.ID, off); err != ErrValidation {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})
	t.Run("unknown order", func(t *testing.T) {
		off := testOffer("missing", "d1", 40)
		if _, err := svc.AcceptOffer(ctx, "missing", off); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestCancelClearsDriver(t *testing.T) {
	svc := newTestService(t, &fakeOracle{est: maps.RouteEstimate{DistanceKm: 10}})
	ctx := context.Background()

	o := mustCreateTaxi(t, svc)
	if _, err := svc.AcceptOffer(ctx, o.ID, testOffer(o.ID, "d1", 45)); err != nil {
		t.Fatalf("accept offer: %v", err)
	}
	if err := svc.Cancel(ctx, o.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	got, err := svc.Get(ctx, o.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusCancelled {
		t.Fatalf("expected cancelled, got %s", got.Status)
	}
	if got.Driver != nil {
		t.Fatalf("expected driver cleared on cancel, got %+v", got.Driver)
	}
	if got.CancelledAt == nil {
		t.Fatal("expected cancelled_at to be stamped")
	}
}

func TestCancelledOrderIsClosed(t *testing.T) {
	svc := newTestService(t, &fakeOracle{est: maps.RouteEstimate{DistanceKm: 10}})
	ctx := context.Background()

	o := mustCreateTaxi(t, svc)
	if err := svc.Cancel(ctx, o.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if _, err := svc.AcceptOffer(ctx, o.ID, testOffer(o.ID, "d1", 45)); err != ErrConflict {
		t.Fatalf("accept after cancel: expected ErrConflict, got %v", err)
	}
	if err := svc.Cancel(ctx, o.ID); err != ErrConflict {
		t.Fatalf("double cancel: expected ErrConflict, got %v", err)
	}
	open, err := svc.AcceptsOffers(ctx, o.ID)
	if err != nil {
		t.Fatalf("accepts offers: %v", err)
	}
	if open {
		t.Fatal("cancelled order must not accept offers")
	}
}

func TestStartAndDeliverRequireAssignedCourier(t *testing.T) {
	svc := newTestService(t, &fakeOracle{est: maps.RouteEstimate{DistanceKm: 10}})
	ctx := context.Background()

	o := mustCreateTaxi(t, svc)
	if err := svc.StartDelivery(ctx, o.ID, "d1"); err != ErrValidation {
		t.Fatalf("start with no driver assigned: expected ErrValidation, got %v", err)
	}

	if _, err := svc.AcceptOffer(ctx, o.ID, testOffer(o.ID, "d1", 45)); err != nil {
		t.Fatalf("accept offer: %v", err)
	}
	if err := svc.StartDelivery(ctx, o.ID, "d2"); err != ErrValidation {
		t.Fatalf("start by wrong courier: expected ErrValidation, got %v", err)
	}
	if err := svc.StartDelivery(ctx, o.ID, "d1"); err != nil {
		t.Fatalf("start by assigned courier: %v", err)
	}
	if err := svc.MarkDelivered(ctx, o.ID, "d2"); err != ErrValidation {
		t.Fatalf("deliver by wrong courier: expected ErrValidation, got %v", err)
	}
	if err := svc.MarkDelivered(ctx, o.ID, "d1"); err != nil {
		t.Fatalf("deliver by assigned courier: %v", err)
	}
}

func TestRateOnlyFromDelivered(t *testing.T) {
	svc := newTestService(t, &fakeOracle{est: maps.RouteEstimate{DistanceKm: 10}})
	ctx := context.Background()

	o := mustCreateTaxi(t, svc)
	if _, err := svc.Rate(ctx, o.ID, 5, ""); err != ErrConflict {
		t.Fatalf("rate before delivery: expected ErrConflict, got %v", err)
	}
	if _, err := svc.Rate(ctx, o.ID, 0, ""); err != ErrValidation {
		t.Fatalf("rating 0: expected ErrValidation, got %v", err)
	}
	if _, err := svc.Rate(ctx, o.ID, 6, ""); err != ErrValidation {
		t.Fatalf("rating 6: expected ErrValidation, got %v", err)
	}

	if _, err := svc.AcceptOffer(ctx, o.ID, testOffer(o.ID, "d1", 45)); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if err := svc.StartDelivery(ctx, o.ID, "d1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := svc.MarkDelivered(ctx, o.ID, "d1"); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	if _, err := svc.Rate(ctx, o.ID, 4, "good"); err != nil {
		t.Fatalf("rate: %v", err)
	}
	if _, err := svc.Rate(ctx, o.ID, 1, "changed my mind"); err != ErrConflict {
		t.Fatalf("second rating: expected ErrConflict, got %v", err)
	}

	got, err := svc.Get(ctx, o.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Rating != 4 || got.Feedback != "good" {
		t.Fatalf("first rating must stick, got %d %q", got.Rating, got.Feedback)
	}
}

func TestListOpenAndByCustomer(t *testing.T) {
	svc := newTestService(t, &fakeOracle{est: maps.RouteEstimate{DistanceKm: 10}})
	ctx := context.Background()

	first := mustCreateTaxi(t, svc)
	mustCreateTaxi(t, svc)

	other := taxiRequest()
	other.CustomerID = "c2"
	if _, err := svc.CreateTaxi(ctx, other); err != nil {
		t.Fatalf("create for c2: %v", err)
	}

	if _, err := svc.AcceptOffer(ctx, first.ID, testOffer(first.ID, "d1", 45)); err != nil {
		t.Fatalf("accept: %v", err)
	}

	open, err := svc.ListOpen(ctx)
	if err != nil {
		t.Fatalf("list open: %v", err)
	}
	if len(open) != 2 {
		t.Fatalf("expected 2 open orders, got %d", len(open))
	}
	for _, o := range open {
		if o.Status != StatusWaitingForOffers {
			t.Fatalf("open list leaked status %s", o.Status)
		}
	}

	mine, err := svc.ListByCustomer(ctx, "c1")
	if err != nil {
		t.Fatalf("list by customer: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 orders for c1, got %d", len(mine))
	}
}

func TestWatchOrder(t *testing.T) {
	svc := newTestService(t, &fakeOracle{est: maps.RouteEstimate{DistanceKm: 10}})
	watchCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	o := mustCreateTaxi(t, svc)
	ch, err := svc.WatchOrder(watchCtx, o.ID)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	snap := recvOrders(t, ch)
	if len(snap) != 1 || snap[0].Status != StatusWaitingForOffers {
		t.Fatalf("unexpected initial snapshot: %+v", snap)
	}

	if _, err := svc.AcceptOffer(context.Background(), o.ID, testOffer(o.ID, "d1", 45)); err != nil {
		t.Fatalf("accept: %v", err)
	}
	snap = recvOrders(t, ch)
	if len(snap) != 1 || snap[0].Status != StatusAccepted {
		t.Fatalf("unexpected snapshot after accept: %+v", snap)
	}

	cancel()
	assertOrdersClosed(t, ch)
}

func recvOrders(t *testing.T, ch <-chan []Order) []Order {
	t.Helper()
	select {
	case snap, ok := <-ch:
		if !ok {
			t.Fatal("watch channel closed early")
		}
		return snap
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for watch snapshot")
	}
	return nil
}

func assertOrdersClosed(t *testing.T, ch <-chan []Order) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("watch channel not closed after cancel")
		}
	}
}

func TestSummaries(t *testing.T) {
	o := &Order{
		ID:            "ord1",
		CustomerPhone: "+20100000001",
		Category:      types.CategoryTaxi,
		Pickup:        &Place{VillageName: villageA},
		Dropoff:       Place{VillageName: villageB},
		Vehicle:       types.VehicleCar,
		Price:         types.Money{Amount: 48, Currency: "EGP"},
	}
	want := "new taxi order ord1: Kafr El Sheikh Atia -> Meet El Amel by car, 48 EGP, customer +20100000001"
	if got := creationSummary(o); got != want {
		t.Errorf("creationSummary() = %q, want %q", got, want)
	}

	o.Driver = &DriverInfo{ID: "d1", Name: "Ahmed", Phone: "+20111111111"}
	o.Price = types.Money{Amount: 45, Currency: "EGP"}
	want = "order ord1 accepted by Ahmed (+20111111111) for 45 EGP, customer +20100000001"
	if got := acceptanceSummary(o); got != want {
		t.Errorf("acceptanceSummary() = %q, want %q", got, want)
	}

	pharmacy := &Order{
		ID:            "ord2",
		CustomerPhone: "+20100000002",
		Category:      types.CategoryPharmacy,
		Dropoff:       Place{VillageName: villageB},
		Vehicle:       types.VehicleMotorcycle,
		Price:         types.Money{Amount: 26, Currency: "EGP"},
	}
	want = "new pharmacy order ord2: pharmacy -> Meet El Amel by motorcycle, 26 EGP, customer +20100000002"
	if got := creationSummary(pharmacy); got != want {
		t.Errorf("creationSummary() = %q, want %q", got, want)
	}
}
