// README: In-memory offer store; default wiring and test double.
package offer

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"mashwar/internal/types"
)

// MemoryStore keeps offers in a mutex-guarded map. Watch subscribers get
// coalescing buffer-1 channels: an undelivered snapshot is replaced by the
// next one, so a slow reader never blocks a writer.
type MemoryStore struct {
	mu       sync.RWMutex
	offers   map[types.ID]Offer
	byOrder  map[types.ID][]types.ID
	watchers map[int]*offerWatcher
	nextSub  int
}

type offerWatcher struct {
	orderID types.ID
	ch      chan []Offer
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		offers:   make(map[types.ID]Offer),
		byOrder:  make(map[types.ID][]types.ID),
		watchers: make(map[int]*offerWatcher),
	}
}

func (m *MemoryStore) Append(ctx context.Context, o *Offer) (types.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if o.ID == "" {
		o.ID = types.ID(uuid.NewString())
	}
	m.offers[o.ID] = *o
	m.byOrder[o.OrderID] = append(m.byOrder[o.OrderID], o.ID)
	m.notifyLocked(o.OrderID)
	return o.ID, nil
}

func (m *MemoryStore) Get(ctx context.Context, id types.ID) (*Offer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.offers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (m *MemoryStore) ListByOrder(ctx context.Context, orderID types.ID) ([]Offer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listLocked(orderID), nil
}

func (m *MemoryStore) OrderIDs(ctx context.Context) ([]types.ID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]types.ID, 0, len(m.byOrder))
	for id := range m.byOrder {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *MemoryStore) DeleteByOrder(ctx context.Context, orderID types.ID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := m.byOrder[orderID]
	for _, id := range ids {
		delete(m.offers, id)
	}
	delete(m.byOrder, orderID)
	if len(ids) > 0 {
		m.notifyLocked(orderID)
	}
	return int64(len(ids)), nil
}

func (m *MemoryStore) Watch(ctx context.Context, orderID types.ID) (<-chan []Offer, error) {
	m.mu.Lock()
	w := &offerWatcher{orderID: orderID, ch: make(chan []Offer, 1)}
	key := m.nextSub
	m.nextSub++
	m.watchers[key] = w
	w.ch <- m.listLocked(orderID)
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

// listLocked returns the offers for an order in receipt order.
// Callers hold at least the read lock.
func (m *MemoryStore) listLocked(orderID types.ID) []Offer {
	ids := m.byOrder[orderID]
	out := make([]Offer, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.offers[id])
	}
	return out
}

// notifyLocked pushes a fresh snapshot to every watcher of the order.
// Sends happen under the write lock so a close can never race a send;
// they never block because stale snapshots are dropped.
func (m *MemoryStore) notifyLocked(orderID types.ID) {
	var snap []Offer
	for _, w := range m.watchers {
		if w.orderID != orderID {
			continue
		}
		if snap == nil {
			snap = m.listLocked(orderID)
		}
		select {
		case w.ch <- snap:
		default:
			select {
			case <-w.ch:
			default:
			}
			select {
			case w.ch <- snap:
			default:
			}
		}
	}
}
