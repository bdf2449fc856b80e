package domain

import "context"

type HotelRepository interface {
	UpsertHotel(ctx context.Context, h Hotel) error
	GetHotel(ctx context.Context, id int64) (Hotel, error)
	ListHotels(ctx context.Context) ([]Hotel, error)
}

// ReviewsClient is the boundary to the upstream reviews service.
type ReviewsClient interface {
	ListReviews(ctx context.Context, hotelID int64) ([]Review, error)
	SubmitReview(ctx context.Context, hotelID int64, in NewReview) (Review, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
