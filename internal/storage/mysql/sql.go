package mysql

const upsertHotelSQL = `
INSERT INTO hotels
  (id, name, location, description, price_per_night, base_rating, base_review_count, image, amenities)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name              = VALUES(name),
  location          = VALUES(location),
  description       = VALUES(description),
  price_per_night   = VALUES(price_per_night),
  base_rating       = VALUES(base_rating),
  base_review_count = VALUES(base_review_count),
  image             = VALUES(image),
  amenities         = VALUES(amenities),
  updated_at        = CURRENT_TIMESTAMP
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const hotelColumns = `
  id, name, location, description, price_per_night,
  base_rating, base_review_count, image, amenities
`

const getHotelSQL = `SELECT` + hotelColumns + `FROM hotels WHERE id = ?`

const listHotelsSQL = `SELECT` + hotelColumns + `FROM hotels ORDER BY id`
