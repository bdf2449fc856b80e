package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_front/internal/app"
	"hotel_front/internal/domain"
)

func TestGetHotel_CacheMissThenHit(t *testing.T) {
	repo := newFakeRepo(domain.Hotel{ID: 42, Name: "Grand Plaza Hotel"})
	cache := &fakeCache{}
	q := app.NewCatalogService(repo, cache, 10*time.Minute)

	// Miss (first time, populates cache)
	h, err := q.GetHotel(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "Grand Plaza Hotel", h.Name)

	// Mutate repo to ensure second read indeed comes from cache
	repo.hotels[42] = domain.Hotel{ID: 42, Name: "SHOULD NOT SEE THIS"}

	h2, err := q.GetHotel(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "Grand Plaza Hotel", h2.Name)
}

func TestGetHotel_NotFound(t *testing.T) {
	q := app.NewCatalogService(newFakeRepo(), &fakeCache{}, time.Minute)
	_, err := q.GetHotel(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListHotels_FiltersAndOrders(t *testing.T) {
	repo := newFakeRepo(
		domain.Hotel{ID: 3, PricePerNight: 10000, BaseRating: 4.3, Location: "Delhi"},
		domain.Hotel{ID: 1, PricePerNight: 20000, BaseRating: 4.8, Location: "Mumbai"},
		domain.Hotel{ID: 5, PricePerNight: 29000, BaseRating: 4.9, Location: "Jaipur"},
	)
	cache := &fakeCache{}
	q := app.NewCatalogService(repo, cache, time.Minute)

	all, err := q.ListHotels(context.Background(), domain.HotelsQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{1, 3, 5}, []int64{all[0].ID, all[1].ID, all[2].ID})

	out, err := q.ListHotels(context.Background(), domain.HotelsQuery{MaxPrice: 25000, MinRating: 4.5, Location: "Goa"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(1), out[0].ID)
	assert.Equal(t, "Goa", out[0].Location)

	// listing came from cache the second time
	assert.Equal(t, 1, repo.lists)
}

func TestListHotels_WithoutCache(t *testing.T) {
	repo := newFakeRepo(domain.Hotel{ID: 1})
	q := app.NewCatalogService(repo, nil, time.Minute)
	_, err := q.ListHotels(context.Background(), domain.HotelsQuery{})
	require.NoError(t, err)
	_, err = q.ListHotels(context.Background(), domain.HotelsQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.lists)
}
