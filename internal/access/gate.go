// Package access decides whether a student may currently log in or sit
// an exam. Three independent predicates, evaluated in a fixed order,
// each failing closed.
package access

import (
	"context"
	"errors"
	"sync"
)

type Status string

const (
	StatusAllowed Status = "allowed"
	StatusBlocked Status = "blocked"
)

// Rule maps a (department, level) pair to allowed/blocked. Last write
// wins; a pair with no rule is denied.
type Rule struct {
	Department string `json:"department"`
	Level      string `json:"level"`
	Status     Status `json:"status"`
}

// ErrNoRule means the (department, level) pair has never been granted
// or blocked. The gate treats it the same as blocked.
var ErrNoRule = errors.New("no access rule for department and level")

type Reason string

const (
	ReasonSessionInactive Reason = "session_inactive"
	ReasonGroupBlocked    Reason = "group_blocked"
	ReasonNotScheduled    Reason = "not_scheduled"
)

type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  Reason `json:"reason,omitempty"`
}

type Store interface {
	PutRule(ctx context.Context, r Rule) error
	DeleteRule(ctx context.Context, department, level string) error
	RuleStatus(ctx context.Context, department, level string) (Status, error)

	// ReplaceSchedule swaps the entire scheduled-student set.
	ReplaceSchedule(ctx context.Context, matrics []string) error
	IsScheduled(ctx context.Context, matric string) (bool, error)
}

// SessionControl is the process-wide exam-session flag. Explicitly
// owned and injected rather than a package global; state does not
// survive a restart.
type SessionControl struct {
	mu     sync.RWMutex
	active bool
}

func NewSessionControl() *SessionControl { return &SessionControl{} }

func (s *SessionControl) SetActive(v bool) {
	s.mu.Lock()
	s.active = v
	s.mu.Unlock()
}

func (s *SessionControl) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Gate evaluates session -> access-group -> schedule and reports the
// first failing predicate. Callers that want every failure reason call
// the sub-checks themselves.
type Gate struct {
	session *SessionControl
	store   Store
}

func NewGate(session *SessionControl, store Store) *Gate {
	return &Gate{session: session, store: store}
}

func (g *Gate) Check(ctx context.Context, matric, department, level string) (Decision, error) {
	if !g.session.Active() {
		return Decision{Reason: ReasonSessionInactive}, nil
	}

	allowed, err := g.GroupAllowed(ctx, department, level)
	if err != nil {
		return Decision{}, err
	}
	if !allowed {
		return Decision{Reason: ReasonGroupBlocked}, nil
	}

	scheduled, err := g.store.IsScheduled(ctx, matric)
	if err != nil {
		return Decision{}, err
	}
	if !scheduled {
		return Decision{Reason: ReasonNotScheduled}, nil
	}
	return Decision{Allowed: true}, nil
}

// GroupAllowed is the access-group sub-check. An absent rule denies.
func (g *Gate) GroupAllowed(ctx context.Context, department, level string) (bool, error) {
	status, err := g.store.RuleStatus(ctx, department, level)
	if err != nil {
		if errors.Is(err, ErrNoRule) {
			return false, nil
		}
		return false, err
	}
	return status == StatusAllowed, nil
}

// SessionActive is the session sub-check.
func (g *Gate) SessionActive() bool { return g.session.Active() }

// Scheduled is the schedule-membership sub-check.
func (g *Gate) Scheduled(ctx context.Context, matric string) (bool, error) {
	return g.store.IsScheduled(ctx, matric)
}
