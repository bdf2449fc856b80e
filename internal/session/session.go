// Package session holds the identity a client browses with. It replaces
// ad-hoc global storage with an explicit store that has a read/write/clear
// lifecycle and notifies subscribers of every change.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"hotel_front/internal/domain"
)

type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DisplayName is the author hint used when posting reviews.
func (s Session) DisplayName() string { return domain.AuthorOrAnonymous(s.Name) }

type EventKind string

const (
	Written EventKind = "session.written"
	Cleared EventKind = "session.cleared"
)

type Event struct {
	Kind    EventKind
	Session Session
}

// Store keeps sessions in a key-value cache.
type Store struct {
	cache domain.Cache
	ttl   time.Duration
	now   func() time.Time

	mu     sync.RWMutex
	subs   map[int]func(Event)
	nextID int
}

func NewStore(c domain.Cache, ttl time.Duration) *Store {
	return &Store{cache: c, ttl: ttl, now: time.Now, subs: make(map[int]func(Event))}
}

func key(id string) string { return "session:" + id }

// Write stores s, assigning an id when it has none, and publishes Written.
func (st *Store) Write(ctx context.Context, s Session) (Session, error) {
	s.ID = strings.TrimSpace(s.ID)
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	s.UpdatedAt = st.now().UTC()
	if err := st.cache.Set(ctx, key(s.ID), s, int(st.ttl.Seconds())); err != nil {
		return Session{}, fmt.Errorf("write session: %w", err)
	}
	st.publish(Event{Kind: Written, Session: s})
	return s, nil
}

func (st *Store) Read(ctx context.Context, id string) (Session, error) {
	if strings.TrimSpace(id) == "" {
		return Session{}, domain.ErrNotFound
	}
	var s Session
	ok, err := st.cache.Get(ctx, key(id), &s)
	if err != nil {
		return Session{}, fmt.Errorf("read session: %w", err)
	}
	if !ok {
		return Session{}, domain.ErrNotFound
	}
	return s, nil
}

// Clear removes the session and publishes Cleared even when it was
// already gone, so subscribers can drop whatever they hold for the id.
func (st *Store) Clear(ctx context.Context, id string) error {
	if err := st.cache.Del(ctx, key(id)); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	st.publish(Event{Kind: Cleared, Session: Session{ID: id}})
	return nil
}

// Subscribe registers fn for change events and returns its cancel func.
func (st *Store) Subscribe(fn func(Event)) func() {
	st.mu.Lock()
	defer st.mu.Unlock()
	id := st.nextID
	st.nextID++
	st.subs[id] = fn
	return func() {
		st.mu.Lock()
		defer st.mu.Unlock()
		delete(st.subs, id)
	}
}

func (st *Store) publish(e Event) {
	st.mu.RLock()
	fns := make([]func(Event), 0, len(st.subs))
	for _, fn := range st.subs {
		fns = append(fns, fn)
	}
	st.mu.RUnlock()

	for _, fn := range fns {
		fn(e)
	}
	log.Debug().Str("kind", string(e.Kind)).Str("session", e.Session.ID).Int("subscribers", len(fns)).Msg("session event")
}
