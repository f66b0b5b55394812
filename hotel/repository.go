package hotel

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidPhone = errors.New("invalid phone address")
)

// GuestRepository stores guests keyed by their unique phone.
type GuestRepository interface {
	// CreateIfAbsent atomically inserts a guest for phone unless one exists,
	// then returns the stored row. Concurrent callers observe the same guest.
	CreateIfAbsent(ctx context.Context, phone string, placeholderName string) (Guest, error)
	GetByID(ctx context.Context, id string) (Guest, error)
	UpdateContact(ctx context.Context, id string, name string, email *string) error
}

type MessageRepository interface {
	Insert(ctx context.Context, msg *Message) error
	// Latest returns up to limit messages for guestID, newest first.
	Latest(ctx context.Context, guestID string, limit int) ([]Message, error)
}

type RoomRepository interface {
	GetByID(ctx context.Context, id string) (Room, error)
	ListAvailable(ctx context.Context) ([]Room, error)
}

type ReservationRepository interface {
	Insert(ctx context.Context, r *Reservation) error
	// Overlapping lists non-cancelled reservations of roomID intersecting [checkIn, checkOut).
	Overlapping(ctx context.Context, roomID string, checkIn, checkOut Date) ([]Reservation, error)
	// DueReminders lists confirmed, unreminded reservations checking in on day,
	// with Guest and Room loaded.
	DueReminders(ctx context.Context, day Date) ([]Reservation, error)
	// MarkReminderSent flips reminder_sent for a confirmed reservation; it reports
	// false when the flag was already set.
	MarkReminderSent(ctx context.Context, id string) (bool, error)
}

type ConfigRepository interface {
	// Get returns the singleton configuration or ErrNotFound.
	Get(ctx context.Context) (HotelConfig, error)
}
