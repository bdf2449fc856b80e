package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"hotel_front/internal/domain"
)

const hotelsKey = "hotels:all"

func hotelKey(id int64) string { return fmt.Sprintf("hotel:%d", id) }

// CatalogService serves hotel reference data through the cache.
type CatalogService struct {
	repo     domain.HotelRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewCatalogService(r domain.HotelRepository, c domain.Cache, ttl time.Duration) *CatalogService {
	return &CatalogService{repo: r, cache: c, cacheTTL: ttl}
}

func (s *CatalogService) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	key := hotelKey(id)
	var h domain.Hotel
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &h); ok {
			return h, nil
		}
	}
	h, err := s.repo.GetHotel(ctx, id)
	if err != nil {
		return domain.Hotel{}, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, h, int(s.cacheTTL.Seconds()))
	}
	return h, nil
}

// ListHotels returns the hotels passing q, ordered by id. Filtering happens
// here rather than in the repository so any catalog backend behaves alike.
func (s *CatalogService) ListHotels(ctx context.Context, q domain.HotelsQuery) ([]domain.Hotel, error) {
	all, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Hotel, 0, len(all))
	for _, h := range all {
		if !q.Matches(h) {
			continue
		}
		// searched location labels every result, as the listing page does
		if q.Location != "" {
			h.Location = q.Location
		}
		out = append(out, h)
	}
	return out, nil
}

func (s *CatalogService) all(ctx context.Context) ([]domain.Hotel, error) {
	var hs []domain.Hotel
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, hotelsKey, &hs); ok {
			return hs, nil
		}
	}
	hs, err := s.repo.ListHotels(ctx)
	if err != nil {
		return nil, err
	}
	// copy slice to avoid aliasing the repo's backing array
	cp := make([]domain.Hotel, len(hs))
	copy(cp, hs)
	sort.Slice(cp, func(i, j int) bool { return cp[i].ID < cp[j].ID })
	if s.cache != nil {
		_ = s.cache.Set(ctx, hotelsKey, cp, int(s.cacheTTL.Seconds()))
	}
	return cp, nil
}
