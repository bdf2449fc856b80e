package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_front/internal/domain"
)

func review(rating int) domain.Review { return domain.Review{Author: "Ana", Rating: rating} }

func TestSeed(t *testing.T) {
	st := domain.Seed(domain.Hotel{ID: 2, BaseRating: 4.6, BaseReviewCount: 256})
	assert.Equal(t, 256, st.Count)
	assert.InDelta(t, 4.6, st.Average, 1e-9)
	assert.Empty(t, st.Reviews)
	assert.NotNil(t, st.Reviews)
}

func TestFromServer_AverageIsMean(t *testing.T) {
	h := domain.Hotel{ID: 1, BaseRating: 4.8, BaseReviewCount: 342}
	st := domain.FromServer(h, []domain.Review{review(5), review(3), review(4), review(1)})

	assert.Equal(t, 4, st.Count)
	assert.InDelta(t, 13.0/4.0, st.Average, 1e-9)
	for _, e := range st.Reviews {
		assert.Equal(t, domain.Confirmed, e.Status)
	}
}

func TestFromServer_EmptyKeepsSeedRating(t *testing.T) {
	st := domain.FromServer(domain.Hotel{ID: 1, BaseRating: 4.3, BaseReviewCount: 189}, nil)
	assert.Equal(t, 0, st.Count)
	assert.InDelta(t, 4.3, st.Average, 1e-9)
}

func TestFromServer_ClampsRatings(t *testing.T) {
	st := domain.FromServer(domain.Hotel{ID: 1}, []domain.Review{review(9), review(-2)})
	assert.InDelta(t, 3.0, st.Average, 1e-9)
	assert.Equal(t, 5, st.Reviews[0].Review.Rating)
	assert.Equal(t, 1, st.Reviews[1].Review.Rating)
}

func TestFold_IncrementalMeanAndPrepend(t *testing.T) {
	st := domain.AggregateState{HotelID: 7, Reviews: []domain.Entry{}}

	st1 := st.Fold(domain.ConfirmedEntry(domain.Review{Author: "a", Rating: 4}))
	assert.Equal(t, 1, st1.Count)
	assert.InDelta(t, 4.0, st1.Average, 1e-9)

	st2 := st1.Fold(domain.PendingEntry(domain.Review{Author: "b", Rating: 2, LocalID: "x"}))
	assert.Equal(t, 2, st2.Count)
	assert.InDelta(t, 3.0, st2.Average, 1e-9)
	require.Len(t, st2.Reviews, 2)
	assert.Equal(t, "b", st2.Reviews[0].Review.Author)
	assert.Equal(t, "a", st2.Reviews[1].Review.Author)

	// earlier snapshots are untouched
	assert.Len(t, st1.Reviews, 1)
	assert.Empty(t, st.Reviews)
}

func TestConfirm_ReplacesPendingWithoutRefold(t *testing.T) {
	st := domain.AggregateState{}.
		Fold(domain.PendingEntry(domain.Review{LocalID: "l1", Rating: 2})).
		Fold(domain.ConfirmedEntry(domain.Review{Rating: 4}))

	id := "srv-1"
	out, ok := st.Confirm("l1", domain.Review{ID: &id, Rating: 5})
	require.True(t, ok)
	assert.Equal(t, st.Count, out.Count)
	assert.InDelta(t, st.Average, out.Average, 1e-9)
	assert.Equal(t, domain.Confirmed, out.Reviews[1].Status)
	assert.Equal(t, 2, out.Reviews[1].Review.Rating)
	assert.Equal(t, "srv-1", *out.Reviews[1].Review.ID)
	assert.Empty(t, out.PendingEntries())
	assert.Len(t, st.PendingEntries(), 1)

	_, ok = out.Confirm("missing", domain.Review{})
	assert.False(t, ok)
}
