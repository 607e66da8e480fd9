package payment

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu     sync.Mutex
	orders map[string]Order
	tokens map[string]ExamToken // order id -> token
}

func NewInMemoryStore() Store {
	return &memoryStore{
		orders: map[string]Order{},
		tokens: map[string]ExamToken{},
	}
}

func (m *memoryStore) CreateOrder(_ context.Context, o Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o
	return nil
}

func (m *memoryStore) GetOrder(_ context.Context, id string) (Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return Order{}, ErrOrderNotFound
	}
	return o, nil
}

func (m *memoryStore) SetSnapToken(_ context.Context, id, snapToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	o.SnapToken = snapToken
	o.UpdatedAt = time.Now()
	m.orders[id] = o
	return nil
}

func (m *memoryStore) SettleOrder(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return false, ErrOrderNotFound
	}
	if o.Status != StatusPending {
		return false, nil
	}
	o.Status = StatusSettled
	o.UpdatedAt = time.Now()
	m.orders[id] = o
	return true, nil
}

func (m *memoryStore) FailOrder(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	if o.Status == StatusPending {
		o.Status = StatusFailed
		o.UpdatedAt = time.Now()
		m.orders[id] = o
	}
	return nil
}

func (m *memoryStore) CreateToken(_ context.Context, t ExamToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[t.OrderID] = t
	return nil
}

func (m *memoryStore) TokenForOrder(_ context.Context, orderID string) (ExamToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[orderID]
	if !ok {
		return ExamToken{}, ErrTokenNotFound
	}
	return t, nil
}
