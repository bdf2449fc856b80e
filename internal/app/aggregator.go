package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"hotel_front/internal/adapters/observability"
	"hotel_front/internal/domain"
)

// DefaultCallTimeout bounds every upstream call made by the aggregator.
const DefaultCallTimeout = 10 * time.Second

// ReviewAggregator owns the per-hotel count/average/list for one view.
// Network calls run outside the lock; each merge is a single critical
// section that swaps in a new AggregateState value.
type ReviewAggregator struct {
	client  domain.ReviewsClient
	timeout time.Duration
	now     func() time.Time
	newID   func() string

	mu     sync.Mutex
	states map[int64]domain.AggregateState
	loaded map[int64]bool
	closed bool

	reconciling sync.Mutex
}

type AggregatorOption func(*ReviewAggregator)

func WithClock(now func() time.Time) AggregatorOption {
	return func(a *ReviewAggregator) { a.now = now }
}

func WithIDGenerator(f func() string) AggregatorOption {
	return func(a *ReviewAggregator) { a.newID = f }
}

func NewReviewAggregator(c domain.ReviewsClient, timeout time.Duration, opts ...AggregatorOption) *ReviewAggregator {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	a := &ReviewAggregator{
		client:  c,
		timeout: timeout,
		now:     time.Now,
		newID:   uuid.NewString,
		states:  make(map[int64]domain.AggregateState),
		loaded:  make(map[int64]bool),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Ensure seeds the state for h the first time it is displayed and returns
// the current state otherwise.
func (a *ReviewAggregator) Ensure(h domain.Hotel) domain.AggregateState {
	a.mu.Lock()
	defer a.mu.Unlock()
	if st, ok := a.states[h.ID]; ok {
		return st
	}
	st := domain.Seed(h)
	if !a.closed {
		a.states[h.ID] = st
	}
	return st
}

// State returns the current snapshot for a hotel.
func (a *ReviewAggregator) State(hotelID int64) (domain.AggregateState, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	st, ok := a.states[hotelID]
	return st, ok
}

// Loaded reports whether LoadForHotel has completed for a hotel. A state
// that was only seeded, or only received local submissions, is not loaded.
func (a *ReviewAggregator) Loaded(hotelID int64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loaded[hotelID]
}

// LoadForHotel fetches the authoritative review list once. It never fails:
// any error yields the seed values with an empty list.
func (a *ReviewAggregator) LoadForHotel(ctx context.Context, h domain.Hotel) domain.AggregateState {
	cctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var st domain.AggregateState
	list, err := a.client.ListReviews(cctx, h.ID)
	if err != nil {
		log.Warn().Int64("hotel_id", h.ID).Err(err).Msg("reviews load failed; using seed values")
		observability.ObserveReviewLoad("seed")
		st = domain.Seed(h)
	} else {
		observability.ObserveReviewLoad("server")
		st = domain.FromServer(h, list)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.closed {
		a.states[h.ID] = st
		a.loaded[h.ID] = true
	}
	return st
}

// SubmitReview persists a review and folds it into the hotel's state. When
// the service call fails the review is folded anyway as a Pending entry, so
// the returned state always advances by exactly one rating.
func (a *ReviewAggregator) SubmitReview(ctx context.Context, hotelID int64, authorHint string, rating int, text string) (domain.AggregateState, domain.Entry) {
	author := domain.AuthorOrAnonymous(authorHint)
	rating = domain.CoerceRating(rating)

	cctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var e domain.Entry
	saved, err := a.client.SubmitReview(cctx, hotelID, domain.NewReview{UserName: author, Rating: rating, Text: text})
	if err != nil {
		log.Warn().Int64("hotel_id", hotelID).Err(err).Msg("review submit failed; keeping it as pending")
		now := a.now().UTC()
		e = domain.PendingEntry(domain.Review{
			LocalID:   a.newID(),
			HotelID:   hotelID,
			Author:    author,
			Rating:    rating,
			Text:      text,
			CreatedAt: &now,
		})
	} else {
		saved.HotelID = hotelID
		e = domain.ConfirmedEntry(saved)
	}
	observability.ObserveSubmission(string(e.Status))

	a.mu.Lock()
	defer a.mu.Unlock()
	st, ok := a.states[hotelID]
	if !ok {
		st = domain.AggregateState{HotelID: hotelID, Reviews: []domain.Entry{}}
	}
	st = st.Fold(e)
	if !a.closed {
		a.states[hotelID] = st
	}
	return st, st.Reviews[0]
}

// Reconcile retries every pending entry once. Successful retries replace
// the entry in place; count and average do not move. Returns the number of
// entries confirmed. Concurrent calls on the same aggregator are skipped.
func (a *ReviewAggregator) Reconcile(ctx context.Context) int {
	if !a.reconciling.TryLock() {
		return 0
	}
	defer a.reconciling.Unlock()

	confirmed := 0
	for _, e := range a.pending() {
		r := e.Review
		cctx, cancel := context.WithTimeout(ctx, a.timeout)
		saved, err := a.client.SubmitReview(cctx, r.HotelID, domain.NewReview{UserName: r.Author, Rating: r.Rating, Text: r.Text})
		cancel()
		if err != nil {
			observability.ObserveReconcile("failed")
			log.Debug().Int64("hotel_id", r.HotelID).Str("local_id", r.LocalID).Err(err).Msg("pending review still unconfirmed")
			if ctx.Err() != nil {
				break
			}
			continue
		}
		saved.HotelID = r.HotelID
		if a.confirm(r.HotelID, r.LocalID, saved) {
			observability.ObserveReconcile("confirmed")
			confirmed++
		}
	}
	return confirmed
}

// PendingCount is the number of entries across hotels awaiting the server.
func (a *ReviewAggregator) PendingCount() int {
	return len(a.pending())
}

// Close discards all state. Results of calls still in flight are dropped.
func (a *ReviewAggregator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	a.states = make(map[int64]domain.AggregateState)
	a.loaded = make(map[int64]bool)
}

// pending returns pending entries, oldest first, so retries keep the order
// in which they were written.
func (a *ReviewAggregator) pending() []domain.Entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []domain.Entry
	ids := make([]int64, 0, len(a.states))
	for id := range a.states {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		p := a.states[id].PendingEntries()
		for i := len(p) - 1; i >= 0; i-- {
			out = append(out, p[i])
		}
	}
	return out
}

func (a *ReviewAggregator) confirm(hotelID int64, localID string, r domain.Review) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return false
	}
	st, ok := a.states[hotelID]
	if !ok {
		return false
	}
	st, ok = st.Confirm(localID, r)
	if ok {
		a.states[hotelID] = st
	}
	return ok
}
