package tool

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/luna-hotel-concierge/agent/contract"
	"github.com/tanpawarit/luna-hotel-concierge/hotel"
)

type CreateReservationOutput struct {
	ReservationID string  `json:"reservation_id"`
	RoomName      string  `json:"room_name"`
	CheckIn       string  `json:"check_in"`
	CheckOut      string  `json:"check_out"`
	Nights        int     `json:"nights"`
	TotalPrice    float64 `json:"total_price"`
	Status        string  `json:"status"`
}

func (r *Registry) createReservation(ctx context.Context, guest hotel.Guest, args contractx.CreateReservationArgs) (any, error) {
	in, out, msg := stayDates(args.CheckIn, args.CheckOut)
	if msg != "" {
		return nil, errors.New(msg)
	}

	room, err := r.rooms.GetByID(ctx, strings.TrimSpace(args.RoomID))
	if errors.Is(err, hotel.ErrNotFound) {
		return nil, errors.New("room not found")
	}
	if err != nil {
		return nil, errors.New("could not load room, please try again")
	}

	if r.policy.Overlap == OverlapReject {
		booked, err := r.reservations.Overlapping(ctx, room.ID, in, out)
		if err != nil {
			return nil, errors.New("could not check reservations, please try again")
		}
		if len(booked) > 0 {
			return nil, errors.New("room is already booked for those dates")
		}
	}

	nights := out.DaysSince(in)
	res := hotel.Reservation{
		RoomID:       room.ID,
		GuestID:      guest.ID,
		CheckInDate:  in,
		CheckOutDate: out,
		Status:       hotel.StatusConfirmed,
		TotalPrice:   r.policy.TotalPrice(room.PricePerNight, nights),
	}
	if err := r.reservations.Insert(ctx, &res); err != nil {
		log.Error().Err(err).
			Str("component", "tool").
			Str("guest_id", guest.ID).
			Str("room_id", room.ID).
			Msg("insert reservation failed")
		return nil, errors.New("could not create reservation, please try again")
	}

	return CreateReservationOutput{
		ReservationID: res.ID,
		RoomName:      room.Name,
		CheckIn:       in.String(),
		CheckOut:      out.String(),
		Nights:        nights,
		TotalPrice:    res.TotalPrice,
		Status:        string(res.Status),
	}, nil
}
