package app

import (
	"sync"

	"hotel_front/internal/domain"
)

type ComposerState int

const (
	ComposerClosed ComposerState = iota
	ComposerOpen
	ComposerSubmitting
)

func (s ComposerState) String() string {
	switch s {
	case ComposerOpen:
		return "open"
	case ComposerSubmitting:
		return "submitting"
	default:
		return "closed"
	}
}

// Draft is the pending compose input for one hotel.
type Draft struct {
	Rating int    `json:"rating"`
	Text   string `json:"text"`
}

func defaultDraft() Draft { return Draft{Rating: domain.DefaultRating} }

type composer struct {
	state ComposerState
	draft Draft
}

// Composers tracks the review composer of every hotel in a view:
// Closed -> Open -> Submitting -> Closed.
type Composers struct {
	mu sync.Mutex
	m  map[int64]*composer
}

func NewComposers() *Composers {
	return &Composers{m: make(map[int64]*composer)}
}

func (c *Composers) get(hotelID int64) *composer {
	cp, ok := c.m[hotelID]
	if !ok {
		cp = &composer{draft: defaultDraft()}
		c.m[hotelID] = cp
	}
	return cp
}

// State returns the composer state and draft of a hotel.
func (c *Composers) State(hotelID int64) (ComposerState, Draft) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := c.get(hotelID)
	return cp.state, cp.draft
}

// Toggle opens a closed composer or closes an open one. The draft survives
// a close so reopening shows what was typed.
func (c *Composers) Toggle(hotelID int64) (ComposerState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := c.get(hotelID)
	switch cp.state {
	case ComposerSubmitting:
		return cp.state, domain.ErrComposerBusy
	case ComposerOpen:
		cp.state = ComposerClosed
	default:
		cp.state = ComposerOpen
	}
	return cp.state, nil
}

// Edit replaces the draft of an open composer.
func (c *Composers) Edit(hotelID int64, d Draft) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := c.get(hotelID)
	switch cp.state {
	case ComposerSubmitting:
		return domain.ErrComposerBusy
	case ComposerClosed:
		return domain.ErrComposerClosed
	}
	cp.draft = d
	return nil
}

// Begin moves the composer to Submitting and returns the draft to send.
// A non-nil override is submitted directly, opening the composer
// implicitly; otherwise the composer must already be open.
func (c *Composers) Begin(hotelID int64, override *Draft) (Draft, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := c.get(hotelID)
	if cp.state == ComposerSubmitting {
		return Draft{}, domain.ErrComposerBusy
	}
	if override != nil {
		cp.draft = *override
	} else if cp.state != ComposerOpen {
		return Draft{}, domain.ErrComposerClosed
	}
	cp.state = ComposerSubmitting
	return cp.draft, nil
}

// Finish clears the draft and closes the composer, whatever the outcome
// of the submission was.
func (c *Composers) Finish(hotelID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := c.get(hotelID)
	cp.state = ComposerClosed
	cp.draft = defaultDraft()
}
