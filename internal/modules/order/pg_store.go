// README: Order store backed by PostgreSQL with Redis change fanout.
package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"mashwar/internal/types"
)

const ordersChannel = "mashwar:orders"

// PGStore persists orders in Postgres. When a Redis client is configured,
// every write publishes the order id so Watch subscribers refresh without
// polling; without Redis, Watch falls back to a short polling ticker.
type PGStore struct {
	db        *pgxpool.Pool
	rdb       *redis.Client
	opTimeout time.Duration
}

func NewPGStore(db *pgxpool.Pool, rdb *redis.Client, opTimeout time.Duration) *PGStore {
	if opTimeout <= 0 {
		opTimeout = 5 * time.Second
	}
	return &PGStore{db: db, rdb: rdb, opTimeout: opTimeout}
}

func (s *PGStore) Put(ctx context.Context, o *Order) (types.ID, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if o.ID == "" {
		o.ID = types.ID(uuid.NewString())
	}

	var items []byte
	if len(o.FoodItems) > 0 {
		var err error
		items, err = json.Marshal(o.FoodItems)
		if err != nil {
			return "", fmt.Errorf("marshal food items: %w", err)
		}
	}

	var pickupAddr, pickupVillage *string
	var pickupLat, pickupLng *float64
	if o.Pickup != nil {
		pickupAddr = &o.Pickup.Address
		pickupVillage = &o.Pickup.VillageName
		pickupLat = &o.Pickup.Point.Lat
		pickupLng = &o.Pickup.Point.Lng
	}

	var driverID, driverName, driverPhone, driverPhoto *string
	if o.Driver != nil {
		id := string(o.Driver.ID)
		driverID = &id
		driverName = &o.Driver.Name
		driverPhone = &o.Driver.Phone
		driverPhoto = &o.Driver.Photo
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO orders (
			id, customer_id, customer_phone, category, status, status_version,
			pickup_address, pickup_lat, pickup_lng, pickup_village,
			dropoff_address, dropoff_lat, dropoff_lng, dropoff_village,
			vehicle, price, currency, distance_km,
			driver_id, driver_name, driver_phone, driver_photo,
			pickup_notes, dropoff_notes,
			restaurant_id, restaurant_name, food_items,
			prescription_image, custom_note,
			rating, feedback, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10,
			$11, $12, $13, $14,
			$15, $16, $17, $18,
			$19, $20, $21, $22,
			$23, $24,
			$25, $26, $27,
			$28, $29,
			$30, $31, $32
		)`,
		string(o.ID),
		string(o.CustomerID),
		o.CustomerPhone,
		string(o.Category),
		string(o.Status),
		o.StatusVersion,
		pickupAddr, pickupLat, pickupLng, pickupVillage,
		o.Dropoff.Address, o.Dropoff.Point.Lat, o.Dropoff.Point.Lng, o.Dropoff.VillageName,
		string(o.Vehicle),
		o.Price.Amount,
		o.Price.Currency,
		o.DistanceKm,
		driverID, driverName, driverPhone, driverPhoto,
		o.PickupNotes, o.DropoffNotes,
		string(o.RestaurantID), o.RestaurantName, items,
		o.PrescriptionImage, o.CustomNote,
		o.Rating, o.Feedback, o.CreatedAt,
	)
	if err != nil {
		return "", err
	}
	s.publish(ctx, o.ID)
	return o.ID, nil
}

const orderColumns = `
	id, customer_id, customer_phone, category, status, status_version,
	pickup_address, pickup_lat, pickup_lng, pickup_village,
	dropoff_address, dropoff_lat, dropoff_lng, dropoff_village,
	vehicle, price, currency, distance_km,
	driver_id, driver_name, driver_phone, driver_photo,
	pickup_notes, dropoff_notes,
	restaurant_id, restaurant_name, food_items,
	prescription_image, custom_note,
	rating, feedback,
	created_at, accepted_at, delivered_at, rated_at, cancelled_at`

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	row := s.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, string(id))
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *PGStore) List(ctx context.Context, f Filter) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	query := `SELECT ` + orderColumns + ` FROM orders`
	var where []string
	var args []any
	if f.ID != "" {
		args = append(args, string(f.ID))
		where = append(where, fmt.Sprintf("id = $%d", len(args)))
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, st := range f.Statuses {
			statuses[i] = string(st)
		}
		args = append(args, statuses)
		where = append(where, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if f.CustomerID != "" {
		args = append(args, string(f.CustomerID))
		where = append(where, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if f.DriverID != "" {
		args = append(args, string(f.DriverID))
		where = append(where, fmt.Sprintf("driver_id = $%d", len(args)))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, id"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (s *PGStore) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, p Patch) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	var driverID, driverName, driverPhone, driverPhoto *string
	if p.Driver != nil {
		v := string(p.Driver.ID)
		driverID = &v
		driverName = &p.Driver.Name
		driverPhone = &p.Driver.Phone
		driverPhoto = &p.Driver.Photo
	}
	var price *int64
	if p.Price != nil {
		price = &p.Price.Amount
	}

	tag, err := s.db.Exec(ctx, `
		UPDATE orders
		SET status = $1,
		    status_version = status_version + 1,
		    driver_id    = CASE WHEN $2 THEN NULL ELSE COALESCE($3, driver_id) END,
		    driver_name  = CASE WHEN $2 THEN NULL ELSE COALESCE($4, driver_name) END,
		    driver_phone = CASE WHEN $2 THEN NULL ELSE COALESCE($5, driver_phone) END,
		    driver_photo = CASE WHEN $2 THEN NULL ELSE COALESCE($6, driver_photo) END,
		    price    = COALESCE($7, price),
		    rating   = COALESCE($8, rating),
		    feedback = COALESCE($9, feedback),
		    accepted_at  = CASE WHEN $1 = 'accepted'        THEN NOW() ELSE accepted_at END,
		    delivered_at = CASE WHEN $1 = 'delivered'       THEN NOW() ELSE delivered_at END,
		    rated_at     = CASE WHEN $1 = 'delivered_rated' THEN NOW() ELSE rated_at END,
		    cancelled_at = CASE WHEN $1 = 'cancelled'       THEN NOW() ELSE cancelled_at END
		WHERE id = $10 AND status = $11 AND status_version = $12`,
		string(to),
		p.ClearDriver,
		driverID, driverName, driverPhone, driverPhoto,
		price, p.Rating, p.Feedback,
		string(id),
		string(from),
		version,
	)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() != 1 {
		return false, nil
	}
	s.publish(ctx, id)
	return true, nil
}

func (s *PGStore) Watch(ctx context.Context, f Filter) (<-chan []Order, error) {
	out := make(chan []Order, 1)
	go s.watchLoop(ctx, f, out)
	return out, nil
}

func (s *PGStore) watchLoop(ctx context.Context, f Filter, out chan []Order) {
	defer close(out)

	var last []Order
	send := func() {
		cur, err := s.List(ctx, f)
		if err != nil || reflect.DeepEqual(last, cur) {
			return
		}
		last = cur
		select {
		case out <- cur:
		default:
			select {
			case <-out:
			default:
			}
			select {
			case out <- cur:
			default:
			}
		}
	}
	send()

	if s.rdb != nil {
		sub := s.rdb.Subscribe(ctx, ordersChannel)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				send()
			}
		}
	}

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			send()
		}
	}
}

func (s *PGStore) publish(ctx context.Context, id types.ID) {
	if s.rdb == nil {
		return
	}
	_ = s.rdb.Publish(ctx, ordersChannel, string(id)).Err()
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var pickupAddr, pickupVillage sql.NullString
	var pickupLat, pickupLng sql.NullFloat64
	var driverID, driverName, driverPhone, driverPhoto sql.NullString
	var items []byte
	var acceptedAt, deliveredAt, ratedAt, cancelledAt sql.NullTime

	err := row.Scan(
		&o.ID, &o.CustomerID, &o.CustomerPhone, &o.Category, &o.Status, &o.StatusVersion,
		&pickupAddr, &pickupLat, &pickupLng, &pickupVillage,
		&o.Dropoff.Address, &o.Dropoff.Point.Lat, &o.Dropoff.Point.Lng, &o.Dropoff.VillageName,
		&o.Vehicle, &o.Price.Amount, &o.Price.Currency, &o.DistanceKm,
		&driverID, &driverName, &driverPhone, &driverPhoto,
		&o.PickupNotes, &o.DropoffNotes,
		&o.RestaurantID, &o.RestaurantName, &items,
		&o.PrescriptionImage, &o.CustomNote,
		&o.Rating, &o.Feedback,
		&o.CreatedAt, &acceptedAt, &deliveredAt, &ratedAt, &cancelledAt,
	)
	if err != nil {
		return nil, err
	}

	if pickupLat.Valid {
		o.Pickup = &Place{
			Address:     pickupAddr.String,
			Point:       types.Point{Lat: pickupLat.Float64, Lng: pickupLng.Float64},
			VillageName: pickupVillage.String,
		}
	}
	if driverID.Valid {
		o.Driver = &DriverInfo{
			ID:    types.ID(driverID.String),
			Name:  driverName.String,
			Phone: driverPhone.String,
			Photo: driverPhoto.String,
		}
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &o.FoodItems); err != nil {
			return nil, fmt.Errorf("unmarshal food items: %w", err)
		}
	}
	o.AcceptedAt = toTimePtr(acceptedAt)
	o.DeliveredAt = toTimePtr(deliveredAt)
	o.RatedAt = toTimePtr(ratedAt)
	o.CancelledAt = toTimePtr(cancelledAt)
	return &o, nil
}

func toTimePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
