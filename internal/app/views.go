package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_front/internal/adapters/observability"
	"hotel_front/internal/domain"
	"hotel_front/internal/session"
)

// SessionReader looks up the session a view is bound to. *session.Store
// satisfies it.
type SessionReader interface {
	Read(ctx context.Context, id string) (session.Session, error)
}

// Views is the registry of mounted views keyed by session id.
type Views struct {
	client  domain.ReviewsClient
	timeout time.Duration
	workers int64
	opts    []AggregatorOption

	mu sync.Mutex
	m  map[string]*View
}

func NewViews(c domain.ReviewsClient, timeout time.Duration, workers int, opts ...AggregatorOption) *Views {
	if workers <= 0 {
		workers = 4
	}
	return &Views{client: c, timeout: timeout, workers: int64(workers), opts: opts, m: make(map[string]*View)}
}

// Mount returns the view of a session, creating it on first use. Every call
// counts as activity for Sweep.
func (vs *Views) Mount(sessionID string) *View {
	now := time.Now().UTC()
	vs.mu.Lock()
	defer vs.mu.Unlock()
	if v, ok := vs.m[sessionID]; ok {
		v.lastSeen = now
		return v
	}
	v := &View{
		SessionID:  sessionID,
		Aggregator: NewReviewAggregator(vs.client, vs.timeout, vs.opts...),
		Composers:  NewComposers(),
		MountedAt:  now,
		lastSeen:   now,
		workers:    vs.workers,
	}
	vs.m[sessionID] = v
	observability.SetMountedViews(len(vs.m))
	log.Debug().Str("session", sessionID).Msg("view mounted")
	return v
}

// Get returns a mounted view without creating one.
func (vs *Views) Get(sessionID string) (*View, bool) {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	v, ok := vs.m[sessionID]
	if ok {
		v.lastSeen = time.Now().UTC()
	}
	return v, ok
}

// Unmount discards the view and its aggregates.
func (vs *Views) Unmount(sessionID string) bool {
	return vs.release(sessionID, nil, time.Time{})
}

// release drops the view of sessionID. When want is set the view must still
// be that one, and when idleBefore is set it must not have been used since.
func (vs *Views) release(sessionID string, want *View, idleBefore time.Time) bool {
	vs.mu.Lock()
	v, ok := vs.m[sessionID]
	if ok && want != nil && v != want {
		ok = false
	}
	if ok && !idleBefore.IsZero() && !v.lastSeen.Before(idleBefore) {
		ok = false
	}
	if ok {
		delete(vs.m, sessionID)
	}
	n := len(vs.m)
	vs.mu.Unlock()
	if !ok {
		return false
	}
	v.Aggregator.Close()
	observability.SetMountedViews(n)
	log.Debug().Str("session", sessionID).Msg("view unmounted")
	return true
}

// Sweep unmounts views that have been idle for longer than idle, and views
// whose session no longer exists. Sessions expiring in the cache publish no
// event, so this is what releases them. A failed lookup keeps the view.
// Returns the number of views released.
func (vs *Views) Sweep(ctx context.Context, sessions SessionReader, idle time.Duration) int {
	var cutoff time.Time
	if idle > 0 {
		cutoff = time.Now().UTC().Add(-idle)
	}
	released := 0
	for _, v := range vs.snapshot() {
		if ctx.Err() != nil {
			break
		}
		if !cutoff.IsZero() && vs.release(v.SessionID, v, cutoff) {
			released++
			continue
		}
		if sessions == nil {
			continue
		}
		_, err := sessions.Read(ctx, v.SessionID)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrNotFound):
			if vs.release(v.SessionID, v, time.Time{}) {
				released++
			}
		default:
			log.Warn().Str("session", v.SessionID).Err(err).Msg("session lookup failed; keeping view")
		}
	}
	return released
}

func (vs *Views) Len() int {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	return len(vs.m)
}

func (vs *Views) snapshot() []*View {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	out := make([]*View, 0, len(vs.m))
	for _, v := range vs.m {
		out = append(out, v)
	}
	return out
}

// Reconcile retries pending reviews of every mounted view.
func (vs *Views) Reconcile(ctx context.Context) int {
	total := 0
	for _, v := range vs.snapshot() {
		if ctx.Err() != nil {
			break
		}
		total += v.Aggregator.Reconcile(ctx)
	}
	return total
}

// WatchSessions unmounts a session's view when the session is cleared.
// The returned func stops watching.
func (vs *Views) WatchSessions(s *session.Store) func() {
	return s.Subscribe(func(e session.Event) {
		if e.Kind == session.Cleared {
			vs.Unmount(e.Session.ID)
		}
	})
}
