// README: In-memory order store; default wiring and the race-test harness.
package order

import (
	"context"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"mashwar/internal/types"
)

// MemoryStore keeps orders in a mutex-guarded map. UpdateStatus performs the
// compare-and-swap under the write lock, which gives concurrent transitions
// exactly one winner. Watch subscribers get coalescing buffer-1 channels.
type MemoryStore struct {
	mu       sync.RWMutex
	orders   map[types.ID]*Order
	watchers map[int]*orderWatcher
	nextSub  int
}

type orderWatcher struct {
	filter Filter
	ch     chan []Order
	last   []Order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders:   make(map[types.ID]*Order),
		watchers: make(map[int]*orderWatcher),
	}
}

func (m *MemoryStore) Put(ctx context.Context, o *Order) (types.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if o.ID == "" {
		o.ID = types.ID(uuid.NewString())
	}
	m.orders[o.ID] = o.clone()
	m.notifyLocked()
	return o.ID, nil
}

func (m *MemoryStore) Get(ctx context.Context, id types.ID) (*Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o.clone(), nil
}

func (m *MemoryStore) List(ctx context.Context, f Filter) ([]Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listLocked(f), nil
}

func (m *MemoryStore) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, p Patch) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok {
		return false, nil
	}
	if o.Status != from || o.StatusVersion != version {
		return false, nil
	}

	o.Status = to
	o.StatusVersion++
	switch {
	case p.ClearDriver:
		o.Driver = nil
	case p.Driver != nil:
		d := *p.Driver
		o.Driver = &d
	}
	if p.Price != nil {
		o.Price = *p.Price
	}
	if p.Rating != nil {
		o.Rating = *p.Rating
	}
	if p.Feedback != nil {
		o.Feedback = *p.Feedback
	}

	now := time.Now()
	switch to {
	case StatusAccepted:
		o.AcceptedAt = &now
	case StatusDelivered:
		o.DeliveredAt = &now
	case StatusDeliveredRated:
		o.RatedAt = &now
	case StatusCancelled:
		o.CancelledAt = &now
	}

	m.notifyLocked()
	return true, nil
}

func (m *MemoryStore) Watch(ctx context.Context, f Filter) (<-chan []Order, error) {
	m.mu.Lock()
	w := &orderWatcher{filter: f, ch: make(chan []Order, 1)}
	key := m.nextSub
	m.nextSub++
	m.watchers[key] = w
	w.last = m.listLocked(f)
	w.ch <- w.last
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.watchers, key)
		close(w.ch)
		m.mu.Unlock()
	}()

	return w.ch, nil
}

// listLocked snapshots the filter's result set in creation order.
// Callers hold at least the read lock.
func (m *MemoryStore) listLocked(f Filter) []Order {
	out := make([]Order, 0)
	for _, o := range m.orders {
		if f.matches(o) {
			out = append(out, *o.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// notifyLocked pushes a fresh snapshot to every watcher whose result set
// changed. Sends happen under the write lock so a close can never race a
// send; they never block because stale snapshots are dropped.
func (m *MemoryStore) notifyLocked() {
	for _, w := range m.watchers {
		cur := m.listLocked(w.filter)
		if reflect.DeepEqual(w.last, cur) {
			continue
		}
		w.last = cur
		select {
		case w.ch <- cur:
		default:
			select {
			case <-w.ch:
			default:
			}
			select {
			case w.ch <- cur:
			default:
			}
		}
	}
}
