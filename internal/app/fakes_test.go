package app_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"hotel_front/internal/domain"
)

// ---- fakes ----

type fakeClient struct {
	mu        sync.Mutex
	lists     map[int64][]domain.Review
	listErr   error
	submitErr error
	failNext  int // fail this many upcoming submits, then succeed
	block     bool
	submitted []domain.NewReview
	listCalls int
	nextID    int
}

func newFakeClient() *fakeClient { return &fakeClient{lists: map[int64][]domain.Review{}} }

func (f *fakeClient) ListReviews(ctx context.Context, hotelID int64) ([]domain.Review, error) {
	f.mu.Lock()
	f.listCalls++
	block, err := f.block, f.listErr
	list := append([]domain.Review(nil), f.lists[hotelID]...)
	f.mu.Unlock()
	if block {
		<-ctx.Done()
		return nil, fmt.Errorf("%w: %v", domain.ErrNetwork, ctx.Err())
	}
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (f *fakeClient) SubmitReview(ctx context.Context, hotelID int64, in domain.NewReview) (domain.Review, error) {
	f.mu.Lock()
	f.submitted = append(f.submitted, in)
	block := f.block
	var err error
	if f.failNext > 0 {
		f.failNext--
		err = errors.Join(domain.ErrRejected, errors.New("status 500"))
	} else if f.submitErr != nil {
		err = f.submitErr
	}
	f.nextID++
	id := fmt.Sprintf("srv-%d", f.nextID)
	f.mu.Unlock()
	if block {
		<-ctx.Done()
		return domain.Review{}, fmt.Errorf("%w: %v", domain.ErrNetwork, ctx.Err())
	}
	if err != nil {
		return domain.Review{}, err
	}
	return domain.Review{ID: &id, HotelID: hotelID, Author: in.UserName, Rating: in.Rating, Text: in.Text}, nil
}

func (f *fakeClient) submissions() []domain.NewReview {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.NewReview(nil), f.submitted...)
}

type fakeRepo struct {
	mu     sync.Mutex
	hotels map[int64]domain.Hotel
	lists  int
	err    error
}

func newFakeRepo(hs ...domain.Hotel) *fakeRepo {
	r := &fakeRepo{hotels: map[int64]domain.Hotel{}}
	for _, h := range hs {
		r.hotels[h.ID] = h
	}
	return r
}

func (r *fakeRepo) UpsertHotel(ctx context.Context, h domain.Hotel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.hotels[h.ID] = h
	return nil
}

func (r *fakeRepo) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.hotels[id]
	if !ok {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return h, nil
}

func (r *fakeRepo) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	out := make([]domain.Hotel, 0, len(r.hotels))
	for _, h := range r.hotels {
		out = append(out, h)
	}
	return out, nil
}

type fakeCache struct {
	store map[string]any
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.store == nil {
		return false, nil
	}
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *domain.Hotel:
		*d = v.(domain.Hotel)
	case *[]domain.Hotel:
		*d = v.([]domain.Hotel)
	}
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.dels = append(c.dels, key)
	delete(c.store, key)
	return nil
}
