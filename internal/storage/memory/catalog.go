// Package memory is an in-process hotel catalog used when no database is
// configured.
package memory

import (
	"context"
	"sort"
	"sync"

	"hotel_front/internal/domain"
)

type Catalog struct {
	mu     sync.RWMutex
	hotels map[int64]domain.Hotel
}

func NewCatalog(seed ...domain.Hotel) *Catalog {
	c := &Catalog{hotels: make(map[int64]domain.Hotel, len(seed))}
	for _, h := range seed {
		c.hotels[h.ID] = cloneHotel(h)
	}
	return c
}

func cloneHotel(h domain.Hotel) domain.Hotel {
	h.Amenities = append([]string(nil), h.Amenities...)
	return h
}

func (c *Catalog) UpsertHotel(ctx context.Context, h domain.Hotel) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hotels[h.ID] = cloneHotel(h)
	return nil
}

func (c *Catalog) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.hotels[id]
	if !ok {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return cloneHotel(h), nil
}

func (c *Catalog) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Hotel, 0, len(c.hotels))
	for _, h := range c.hotels {
		out = append(out, cloneHotel(h))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
