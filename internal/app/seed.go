package app

import (
	"context"
	"fmt"

	"hotel_front/internal/domain"
)

// SeedService writes catalog entries and evicts the cached copies.
type SeedService struct {
	repo  domain.HotelRepository
	cache domain.Cache
}

func NewSeedService(r domain.HotelRepository, cache domain.Cache) *SeedService {
	return &SeedService{repo: r, cache: cache}
}

func (s *SeedService) SeedHotel(ctx context.Context, h domain.Hotel) error {
	if h.ID <= 0 {
		return fmt.Errorf("seed hotel: invalid id %d", h.ID)
	}
	if h.BaseRating < 0 || h.BaseRating > domain.MaxRating {
		return fmt.Errorf("seed hotel %d: base rating %.2f out of range", h.ID, h.BaseRating)
	}
	if h.BaseReviewCount < 0 {
		return fmt.Errorf("seed hotel %d: negative review count", h.ID)
	}
	if err := s.repo.UpsertHotel(ctx, h); err != nil {
		return fmt.Errorf("upsert hotel %d: %w", h.ID, err)
	}
	// a changed hotel affects both the single entry and the full listing
	if s.cache != nil {
		_ = s.cache.Del(ctx, hotelKey(h.ID))
		_ = s.cache.Del(ctx, hotelsKey)
	}
	return nil
}
