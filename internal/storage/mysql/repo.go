package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"hotel_front/internal/domain"
)

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertHotel(ctx context.Context, h domain.Hotel) error {
	amen := h.Amenities
	if amen == nil {
		amen = []string{}
	}
	amenJSON, err := json.Marshal(amen)
	if err != nil {
		return fmt.Errorf("marshal amenities: %w", err)
	}
	_, err = r.db.ExecContext(ctx, upsertHotelSQL,
		h.ID,
		h.Name,
		valStr(h.Location),
		valStr(h.Description),
		h.PricePerNight,
		h.BaseRating,
		h.BaseReviewCount,
		valStr(h.Image),
		string(amenJSON),
	)
	return err
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanHotel(s rowScanner) (domain.Hotel, error) {
	var h domain.Hotel
	var location, desc, image sql.NullString
	var amenities []byte
	if err := s.Scan(
		&h.ID,
		&h.Name,
		&location,
		&desc,
		&h.PricePerNight,
		&h.BaseRating,
		&h.BaseReviewCount,
		&image,
		&amenities,
	); err != nil {
		return domain.Hotel{}, err
	}
	h.Location = location.String
	h.Description = desc.String
	h.Image = image.String
	if len(amenities) > 0 {
		if err := json.Unmarshal(amenities, &h.Amenities); err != nil {
			log.Warn().Int64("hotel_id", h.ID).Err(err).Msg("corrupt amenities column; ignoring")
			h.Amenities = nil
		}
	}
	return h, nil
}

func (r *Repo) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	h, err := scanHotel(r.db.QueryRowContext(ctx, getHotelSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return h, err
}

func (r *Repo) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	rows, err := r.db.QueryContext(ctx, listHotelsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Hotel
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
