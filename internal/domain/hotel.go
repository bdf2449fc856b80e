package domain

// Hotel is catalog reference data. BaseRating and BaseReviewCount are the
// seed values shown before any live reviews are known.
type Hotel struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Location        string   `json:"location"`
	Description     string   `json:"description"`
	PricePerNight   int64    `json:"price"`
	BaseRating      float64  `json:"rating"`
	BaseReviewCount int      `json:"reviews"`
	Image           string   `json:"image"`
	Amenities       []string `json:"amenities"`
}

// HotelsQuery is the listing filter. Zero MaxPrice means no upper bound.
type HotelsQuery struct {
	Location  string
	MaxPrice  int64
	MinRating float64
}

// Matches reports whether h passes the price and rating filters.
func (q HotelsQuery) Matches(h Hotel) bool {
	if h.PricePerNight < 0 {
		return false
	}
	if q.MaxPrice > 0 && h.PricePerNight > q.MaxPrice {
		return false
	}
	return h.BaseRating >= q.MinRating
}
