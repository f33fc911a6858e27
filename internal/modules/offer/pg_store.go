// README: Offer store backed by PostgreSQL with Redis change fanout.
package offer

import (
	"context"
	"errors"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"mashwar/internal/types"
)

const offersChannel = "mashwar:offers"

// PGStore persists offers in Postgres. When a Redis client is configured,
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

func (s *PGStore) Append(ctx context.Context, o *Offer) (types.ID, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if o.ID == "" {
		o.ID = types.ID(uuid.NewString())
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO offers (
			id, order_id, driver_id, driver_name, driver_phone, driver_photo,
			driver_rating, price, currency, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		string(o.ID),
		string(o.OrderID),
		string(o.DriverID),
		o.DriverName,
		o.DriverPhone,
		o.DriverPhoto,
		o.DriverRating,
		o.Price.Amount,
		o.Price.Currency,
		o.CreatedAt,
	)
	if err != nil {
		return "", err
	}
	s.publish(ctx, o.OrderID)
	return o.ID, nil
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Offer, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	row := s.db.QueryRow(ctx, `
		SELECT id, order_id, driver_id, driver_name, driver_phone, driver_photo,
		       driver_rating, price, currency, created_at
		FROM offers
		WHERE id = $1`, string(id),
	)
	o, err := scanOffer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *PGStore) ListByOrder(ctx context.Context, orderID types.ID) ([]Offer, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	rows, err := s.db.Query(ctx, `
		SELECT id, order_id, driver_id, driver_name, driver_phone, driver_photo,
		       driver_rating, price, currency, created_at
		FROM offers
		WHERE order_id = $1
		ORDER BY seq`, string(orderID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (s *PGStore) OrderIDs(ctx context.Context) ([]types.ID, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	rows, err := s.db.Query(ctx, `SELECT DISTINCT order_id FROM offers`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.ID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, types.ID(id))
	}
	return out, rows.Err()
}

func (s *PGStore) DeleteByOrder(ctx context.Context, orderID types.ID) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	tag, err := s.db.Exec(ctx, `DELETE FROM offers WHERE order_id = $1`, string(orderID))
	if err != nil {
		return 0, err
	}
	if tag.RowsAffected() > 0 {
		s.publish(ctx, orderID)
	}
	return tag.RowsAffected(), nil
}

func (s *PGStore) Watch(ctx context.Context, orderID types.ID) (<-chan []Offer, error) {
	out := make(chan []Offer, 1)
	go s.watchLoop(ctx, orderID, out)
	return out, nil
}

func (s *PGStore) watchLoop(ctx context.Context, orderID types.ID, out chan []Offer) {
	defer close(out)

	var last []Offer
	send := func() {
		cur, err := s.ListByOrder(ctx, orderID)
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
		sub := s.rdb.Subscribe(ctx, offersChannel)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if msg.Payload == string(orderID) {
					send()
				}
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

func (s *PGStore) publish(ctx context.Context, orderID types.ID) {
	if s.rdb == nil {
		return
	}
	_ = s.rdb.Publish(ctx, offersChannel, string(orderID)).Err()
}

func scanOffer(row pgx.Row) (*Offer, error) {
	var o Offer
	err := row.Scan(
		&o.ID, &o.OrderID, &o.DriverID, &o.DriverName, &o.DriverPhone, &o.DriverPhoto,
		&o.DriverRating, &o.Price.Amount, &o.Price.Currency, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
