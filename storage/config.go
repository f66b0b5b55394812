package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/tanpawarit/luna-hotel-concierge/hotel"
)

type ConfigRepository struct {
	db bun.IDB
}

func NewConfigRepository(db bun.IDB) *ConfigRepository {
	return &ConfigRepository{db: db}
}

func (r *ConfigRepository) Get(ctx context.Context) (hotel.HotelConfig, error) {
	var cfg hotel.HotelConfig
	err := r.db.NewSelect().
		Model(&cfg).
		OrderExpr("updated_at DESC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return hotel.HotelConfig{}, hotel.ErrNotFound
	}
	if err != nil {
		return hotel.HotelConfig{}, fmt.Errorf("select hotel config: %w", err)
	}
	return cfg, nil
}

// Save replaces the singleton row.
func (r *ConfigRepository) Save(ctx context.Context, cfg *hotel.HotelConfig) error {
	if cfg.ID == "" {
		cfg.ID = newID()
	}
	cfg.UpdatedAt = nowUTC()
	if _, err := r.db.NewInsert().
		Model(cfg).
		On("CONFLICT (id) DO UPDATE").
		Set("hotel_name = EXCLUDED.hotel_name").
		Set("address = EXCLUDED.address").
		Set("timezone = EXCLUDED.timezone").
		Set("check_in_time = EXCLUDED.check_in_time").
		Set("check_out_time = EXCLUDED.check_out_time").
		Set("currency = EXCLUDED.currency").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx); err != nil {
		return fmt.Errorf("save hotel config: %w", err)
	}
	return nil
}
