package access

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu       sync.RWMutex
	rules    map[string]Status // dept|level -> status
	schedule map[string]struct{}
}

func NewInMemoryStore() Store {
	return &memoryStore{
		rules:    map[string]Status{},
		schedule: map[string]struct{}{},
	}
}

func ruleKey(department, level string) string { return department + "|" + level }

func (m *memoryStore) PutRule(_ context.Context, r Rule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules[ruleKey(r.Department, r.Level)] = r.Status
	return nil
}

func (m *memoryStore) DeleteRule(_ context.Context, department, level string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rules, ruleKey(department, level))
	return nil
}

func (m *memoryStore) RuleStatus(_ context.Context, department, level string) (Status, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.rules[ruleKey(department, level)]
	if !ok {
		return "", ErrNoRule
	}
	return s, nil
}

func (m *memoryStore) ReplaceSchedule(_ context.Context, matrics []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schedule = make(map[string]struct{}, len(matrics))
	for _, mt := range matrics {
		m.schedule[mt] = struct{}{}
	}
	return nil
}

func (m *memoryStore) IsScheduled(_ context.Context, matric string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.schedule[matric]
	return ok, nil
}
