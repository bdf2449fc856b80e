package domain

import (
	"strings"
	"time"
)

const AnonymousAuthor = "Anonymous"

type Review struct {
	ID        *string    `json:"id,omitempty"`      // server identity, nil for optimistic entries
	LocalID   string     `json:"localId,omitempty"` // set on entries synthesized locally
	HotelID   int64      `json:"hotelId,omitempty"`
	Author    string     `json:"userName"`
	Rating    int        `json:"rating"`
	Text      string     `json:"text"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// NewReview is the submission payload sent to the reviews service.
type NewReview struct {
	UserName string `json:"userName"`
	Rating   int    `json:"rating"`
	Text     string `json:"text"`
}

// AuthorOrAnonymous trims hint and falls back to AnonymousAuthor.
func AuthorOrAnonymous(hint string) string {
	if s := strings.TrimSpace(hint); s != "" {
		return s
	}
	return AnonymousAuthor
}

type SyncStatus string

const (
	Confirmed SyncStatus = "confirmed"
	Pending   SyncStatus = "pending"
)

// Entry tags a review with whether the server has acknowledged it.
type Entry struct {
	Status SyncStatus `json:"status"`
	Review Review     `json:"review"`
}

func ConfirmedEntry(r Review) Entry { return Entry{Status: Confirmed, Review: r} }
func PendingEntry(r Review) Entry   { return Entry{Status: Pending, Review: r} }

func (e Entry) IsPending() bool { return e.Status == Pending }
