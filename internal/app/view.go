package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotel_front/internal/domain"
)

// View is the server-side counterpart of one client's hotel list screen.
// Its state lives only as long as the view is mounted.
type View struct {
	SessionID  string
	Aggregator *ReviewAggregator
	Composers  *Composers
	MountedAt  time.Time

	lastSeen time.Time // guarded by Views.mu
	workers  int64
}

// LoadAll seeds and then loads every hotel, with at most `workers` fetches
// in flight. Results come back in the order of hotels.
func (v *View) LoadAll(ctx context.Context, hotels []domain.Hotel) []domain.AggregateState {
	out := make([]domain.AggregateState, len(hotels))
	for i, h := range hotels {
		out[i] = v.Aggregator.Ensure(h)
	}

	sem := semaphore.NewWeighted(v.workers)
	var wg sync.WaitGroup
	for i, h := range hotels {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Warn().Err(err).Str("session", v.SessionID).Msg("view load interrupted")
			break
		}
		wg.Add(1)
		go func(i int, h domain.Hotel) {
			defer wg.Done()
			defer sem.Release(1)
			out[i] = v.Aggregator.LoadForHotel(ctx, h)
		}(i, h)
	}
	wg.Wait()
	return out
}

// Submit runs the composer through Submitting for one hotel and always
// returns it to Closed.
func (v *View) Submit(ctx context.Context, hotelID int64, authorHint string, override *Draft) (domain.AggregateState, domain.Entry, error) {
	d, err := v.Composers.Begin(hotelID, override)
	if err != nil {
		return domain.AggregateState{}, domain.Entry{}, err
	}
	defer v.Composers.Finish(hotelID)

	st, e := v.Aggregator.SubmitReview(ctx, hotelID, authorHint, d.Rating, d.Text)
	return st, e, nil
}

// Show returns the state of every hotel, fetching only those the view has
// not loaded yet. Loaded hotels keep their state, pending entries included.
// A hotel that was only seeded or submitted to is fetched and replaced.
func (v *View) Show(ctx context.Context, hotels []domain.Hotel) []domain.AggregateState {
	out := make([]domain.AggregateState, len(hotels))
	var fresh []domain.Hotel
	var at []int
	for i, h := range hotels {
		if v.Aggregator.Loaded(h.ID) {
			if st, ok := v.Aggregator.State(h.ID); ok {
				out[i] = st
				continue
			}
		}
		fresh = append(fresh, h)
		at = append(at, i)
	}
	if len(fresh) == 0 {
		return out
	}
	for j, st := range v.LoadAll(ctx, fresh) {
		out[at[j]] = st
	}
	return out
}
