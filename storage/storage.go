package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/tanpawarit/luna-hotel-concierge/hotel"
)

// Repositories bundles the bun-backed implementations of the hotel repositories.
type Repositories struct {
	Guests       *GuestRepository
	Messages     *MessageRepository
	Rooms        *RoomRepository
	Reservations *ReservationRepository
	Config       *ConfigRepository
}

func New(db bun.IDB) *Repositories {
	return &Repositories{
		Guests:       NewGuestRepository(db),
		Messages:     NewMessageRepository(db),
		Rooms:        NewRoomRepository(db),
		Reservations: NewReservationRepository(db),
		Config:       NewConfigRepository(db),
	}
}

var (
	_ hotel.GuestRepository       = (*GuestRepository)(nil)
	_ hotel.MessageRepository     = (*MessageRepository)(nil)
	_ hotel.RoomRepository        = (*RoomRepository)(nil)
	_ hotel.ReservationRepository = (*ReservationRepository)(nil)
	_ hotel.ConfigRepository      = (*ConfigRepository)(nil)
)

func newID() string {
	return uuid.NewString()
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

func wrapNotFound(err error, what string, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", what, id, hotel.ErrNotFound)
	}
	return fmt.Errorf("load %s %s: %w", what, id, err)
}
