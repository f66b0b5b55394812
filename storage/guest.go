package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/uptrace/bun"

	"github.com/tanpawarit/luna-hotel-concierge/hotel"
)

type GuestRepository struct {
	db bun.IDB
}

func NewGuestRepository(db bun.IDB) *GuestRepository {
	return &GuestRepository{db: db}
}

// CreateIfAbsent relies on the unique phone constraint: the insert is a no-op when
// another delivery already created the guest, and the follow-up read returns the winner.
func (r *GuestRepository) CreateIfAbsent(ctx context.Context, phone string, placeholderName string) (hotel.Guest, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return hotel.Guest{}, hotel.ErrInvalidPhone
	}

	candidate := hotel.Guest{
		ID:        newID(),
		Name:      placeholderName,
		Phone:     phone,
		CreatedAt: nowUTC(),
	}
	if _, err := r.db.NewInsert().
		Model(&candidate).
		On("CONFLICT (phone) DO NOTHING").
		Exec(ctx); err != nil {
		return hotel.Guest{}, fmt.Errorf("insert guest phone=%s: %w", phone, err)
	}

	var guest hotel.Guest
	if err := r.db.NewSelect().
		Model(&guest).
		Where("phone = ?", phone).
		Limit(1).
		Scan(ctx); err != nil {
		return hotel.Guest{}, wrapNotFound(err, "guest phone", phone)
	}
	return guest, nil
}

func (r *GuestRepository) GetByID(ctx context.Context, id string) (hotel.Guest, error) {
	var guest hotel.Guest
	if err := r.db.NewSelect().
		Model(&guest).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx); err != nil {
		return hotel.Guest{}, wrapNotFound(err, "guest", id)
	}
	return guest, nil
}

// UpdateContact sets the guest name and, when email is non-nil, the email.
func (r *GuestRepository) UpdateContact(ctx context.Context, id string, name string, email *string) error {
	q := r.db.NewUpdate().
		Model((*hotel.Guest)(nil)).
		Set("name = ?", name).
		Where("id = ?", id)
	if email != nil {
		q = q.Set("email = ?", *email)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("update guest %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("guest %s: %w", id, hotel.ErrNotFound)
	}
	return nil
}
