package storage

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/tanpawarit/luna-hotel-concierge/hotel"
)

type RoomRepository struct {
	db bun.IDB
}

func NewRoomRepository(db bun.IDB) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) GetByID(ctx context.Context, id string) (hotel.Room, error) {
	var room hotel.Room
	if err := r.db.NewSelect().
		Model(&room).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx); err != nil {
		return hotel.Room{}, wrapNotFound(err, "room", id)
	}
	return room, nil
}

// ListAvailable returns rooms whose is_available flag is set, cheapest first.
func (r *RoomRepository) ListAvailable(ctx context.Context) ([]hotel.Room, error) {
	var rooms []hotel.Room
	if err := r.db.NewSelect().
		Model(&rooms).
		Where("is_available = ?", true).
		OrderExpr("price_per_night ASC, name ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("select available rooms: %w", err)
	}
	return rooms, nil
}

// Insert is used by seeding and tests; rooms are otherwise managed by the dashboard.
func (r *RoomRepository) Insert(ctx context.Context, room *hotel.Room) error {
	if room.ID == "" {
		room.ID = newID()
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = nowUTC()
	}
	if _, err := r.db.NewInsert().Model(room).Exec(ctx); err != nil {
		return fmt.Errorf("insert room %s: %w", room.Name, err)
	}
	return nil
}
