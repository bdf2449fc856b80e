package domain

// AggregateState is the per-hotel review summary. Values are treated as
// immutable snapshots: every update returns a new state with its own
// Reviews slice.
type AggregateState struct {
	HotelID int64   `json:"hotelId"`
	Count   int     `json:"count"`
	Average float64 `json:"average"`
	Reviews []Entry `json:"reviews"`
}

// Seed builds the state shown before live reviews are known.
func Seed(h Hotel) AggregateState {
	count := h.BaseReviewCount
	if count < 0 {
		count = 0
	}
	return AggregateState{HotelID: h.ID, Count: count, Average: h.BaseRating, Reviews: []Entry{}}
}

// FromServer replaces the seed with an authoritative list. An empty list
// keeps the seed rating as the average with a zero count.
func FromServer(h Hotel, list []Review) AggregateState {
	st := AggregateState{HotelID: h.ID, Count: len(list), Average: h.BaseRating, Reviews: make([]Entry, 0, len(list))}
	sum := 0
	for _, r := range list {
		r.Rating = ClampRating(r.Rating)
		sum += r.Rating
		st.Reviews = append(st.Reviews, ConfirmedEntry(r))
	}
	if st.Count > 0 {
		st.Average = float64(sum) / float64(st.Count)
	}
	return st
}

// Fold adds one rating to the running mean and prepends e.
func (s AggregateState) Fold(e Entry) AggregateState {
	e.Review.Rating = ClampRating(e.Review.Rating)
	n := s.Count + 1
	out := AggregateState{
		HotelID: s.HotelID,
		Count:   n,
		Average: (s.Average*float64(s.Count) + float64(e.Review.Rating)) / float64(n),
		Reviews: make([]Entry, 0, len(s.Reviews)+1),
	}
	out.Reviews = append(out.Reviews, e)
	out.Reviews = append(out.Reviews, s.Reviews...)
	return out
}

// Confirm swaps the pending entry with the given local id for a confirmed
// one. Count and Average are untouched because the rating was already
// folded in when the entry was created.
func (s AggregateState) Confirm(localID string, r Review) (AggregateState, bool) {
	for i, e := range s.Reviews {
		if !e.IsPending() || e.Review.LocalID != localID {
			continue
		}
		out := s
		out.Reviews = append([]Entry(nil), s.Reviews...)
		r.LocalID = localID
		r.Rating = e.Review.Rating
		out.Reviews[i] = ConfirmedEntry(r)
		return out, true
	}
	return s, false
}

// PendingEntries returns the entries not yet acknowledged by the server.
func (s AggregateState) PendingEntries() []Entry {
	var out []Entry
	for _, e := range s.Reviews {
		if e.IsPending() {
			out = append(out, e)
		}
	}
	return out
}
