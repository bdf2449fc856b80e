package reviewsapi

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"hotel_front/internal/domain"
)

// wireReview mirrors the reviews service DTO. Fields are loose because the
// service has emitted both string and numeric ids and zone-less timestamps.
type wireReview struct {
	ID        json.RawMessage `json:"id"`
	UserName  *string         `json:"userName"`
	Rating    *float64        `json:"rating"`
	Text      *string         `json:"text"`
	CreatedAt *string         `json:"createdAt"`
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999", // LocalDateTime.toString()
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

func parseTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

func rawID(raw json.RawMessage) *string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var s string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
	} else {
		s = string(raw)
	}
	if s == "" {
		return nil
	}
	return &s
}

func (w wireReview) toDomain(hotelID int64) domain.Review {
	r := domain.Review{
		ID:      rawID(w.ID),
		HotelID: hotelID,
		Rating:  domain.MinRating,
	}
	if w.UserName != nil {
		r.Author = domain.AuthorOrAnonymous(*w.UserName)
	} else {
		r.Author = domain.AnonymousAuthor
	}
	if w.Rating != nil {
		r.Rating = domain.RatingFromFloat(*w.Rating)
	}
	if w.Text != nil {
		r.Text = *w.Text
	}
	if w.CreatedAt != nil {
		r.CreatedAt = parseTime(*w.CreatedAt)
	}
	return r
}
