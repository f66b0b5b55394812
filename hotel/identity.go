package hotel

import (
	"context"
	"fmt"
)

// IdentityResolver maps raw channel addresses to stable guest records.
type IdentityResolver struct {
	guests GuestRepository
}

func NewIdentityResolver(guests GuestRepository) *IdentityResolver {
	return &IdentityResolver{guests: guests}
}

// Resolve normalizes raw and returns its guest, creating one with the placeholder
// name on first contact. Creation goes through a conditional insert so duplicate
// first deliveries converge on one row.
func (r *IdentityResolver) Resolve(ctx context.Context, raw string) (Guest, error) {
	phone, err := NormalizePhone(raw)
	if err != nil {
		return Guest{}, err
	}

	guest, err := r.guests.CreateIfAbsent(ctx, phone, PlaceholderGuestName)
	if err != nil {
		return Guest{}, fmt.Errorf("resolve guest phone=%s: %w", phone, err)
	}
	return guest, nil
}
