package callback

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrEmptyState    = errors.New("state cannot be empty")
	ErrStateNotFound = errors.New("state not found")
)

// PendingSignIn is what the CLI remembers about an authorization URL it handed
// out, keyed by the URL's state parameter.
type PendingSignIn struct {
	RedirectURI string
	Scopes      []string
	CreatedAt   time.Time
}

type StateRepo interface {
	Upsert(state string, pending *PendingSignIn) error
	Get(state string) (*PendingSignIn, error)
	Delete(state string) error
}

// InMemoryStateRepo is a thread-safe in-memory StateRepo.
type InMemoryStateRepo struct {
	mu     sync.RWMutex
	states map[string]*PendingSignIn
}

func NewInMemoryStateRepo() *InMemoryStateRepo {
	return &InMemoryStateRepo{
		states: make(map[string]*PendingSignIn),
	}
}

func (r *InMemoryStateRepo) Upsert(state string, pending *PendingSignIn) error {
	if state == "" {
		return ErrEmptyState
	}
	if pending == nil {
		return errors.New("pending sign-in cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[state] = copyPending(pending)
	return nil
}

func (r *InMemoryStateRepo) Get(state string) (*PendingSignIn, error) {
	if state == "" {
		return nil, ErrEmptyState
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	pending, exists := r.states[state]
	if !exists {
		return nil, ErrStateNotFound
	}
	return copyPending(pending), nil
}

func (r *InMemoryStateRepo) Delete(state string) error {
	if state == "" {
		return ErrEmptyState
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, state)
	return nil
}

func copyPending(p *PendingSignIn) *PendingSignIn {
	c := *p
	c.Scopes = append([]string(nil), p.Scopes...)
	return &c
}
