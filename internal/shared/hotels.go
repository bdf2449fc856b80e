package shared

import "hotel_front/internal/domain"

// DefaultHotels is the catalog loaded by the seeder and served from memory
// when no database is configured.
var DefaultHotels = []domain.Hotel{
	{
		ID: 1, Name: "Grand Plaza Hotel", Location: "Mumbai",
		PricePerNight: 20000, BaseRating: 4.8, BaseReviewCount: 342,
		Image:       "/images/rooms/indoor-design-luxury-resort.jpg",
		Amenities:   []string{"WiFi", "Pool", "Spa", "Restaurant", "Gym"},
		Description: "Luxury hotel in the heart of the city with stunning views",
	},
	{
		ID: 2, Name: "Sunset Beach Resort", Location: "Goa",
		PricePerNight: 15000, BaseRating: 4.6, BaseReviewCount: 256,
		Image:       "/images/rooms/modern-studio-apartment-design-with-bedroom-living-space.jpg",
		Amenities:   []string{"WiFi", "Beach Access", "Pool", "Restaurant"},
		Description: "Beachfront resort perfect for a relaxing getaway",
	},
	{
		ID: 3, Name: "City Center Inn", Location: "Delhi",
		PricePerNight: 10000, BaseRating: 4.3, BaseReviewCount: 189,
		Image:       "/images/rooms/vojtech-bruzek-Yrxr3bsPdS0-unsplash.jpg",
		Amenities:   []string{"WiFi", "Parking", "Breakfast"},
		Description: "Comfortable accommodation in downtown area",
	},
	{
		ID: 4, Name: "Mountain View Lodge", Location: "Shimla",
		PricePerNight: 16000, BaseRating: 4.7, BaseReviewCount: 298,
		Image:       "/images/rooms/markus-spiske-g5ZIXjzRGds-unsplash.jpg",
		Amenities:   []string{"WiFi", "Mountain View", "Restaurant", "Fireplace"},
		Description: "Cozy lodge with breathtaking mountain scenery",
	},
	{
		ID: 5, Name: "Royal Palace Hotel", Location: "Jaipur",
		PricePerNight: 29000, BaseRating: 4.9, BaseReviewCount: 428,
		Image:       "/images/rooms/indoor-design-luxury-resort.jpg",
		Amenities:   []string{"WiFi", "Spa", "Pool", "Fine Dining", "Concierge"},
		Description: "Five-star luxury with world-class amenities",
	},
	{
		ID: 6, Name: "Budget Comfort Suites", Location: "Bangalore",
		PricePerNight: 6500, BaseRating: 4.1, BaseReviewCount: 156,
		Image:       "/images/rooms/vojtech-bruzek-Yrxr3bsPdS0-unsplash.jpg",
		Amenities:   []string{"WiFi", "Parking", "Breakfast"},
		Description: "Affordable and comfortable rooms for budget travelers",
	},
}
