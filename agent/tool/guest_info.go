package tool

import (
	"context"
	"errors"
	"strings"

	contractx "github.com/tanpawarit/luna-hotel-concierge/agent/contract"
	"github.com/tanpawarit/luna-hotel-concierge/hotel"
)

type UpdateGuestInfoOutput struct {
	Status string `json:"status"`
	Name   string `json:"name"`
}

func (r *Registry) updateGuestInfo(ctx context.Context, guest hotel.Guest, args contractx.UpdateGuestInfoArgs) (any, error) {
	name := strings.TrimSpace(args.Name)
	if name == "" {
		return nil, errors.New("name is required")
	}

	var email *string
	if args.Email != nil {
		if trimmed := strings.TrimSpace(*args.Email); trimmed != "" {
			email = &trimmed
		}
	}

	if err := r.guests.UpdateContact(ctx, guest.ID, name, email); err != nil {
		return nil, errors.New("could not update guest information")
	}
	return UpdateGuestInfoOutput{Status: "updated", Name: name}, nil
}
