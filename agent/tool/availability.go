package tool

import (
	"context"
	"errors"

	"github.com/samber/lo"

	contractx "github.com/tanpawarit/luna-hotel-concierge/agent/contract"
	"github.com/tanpawarit/luna-hotel-concierge/hotel"
)

type RoomOption struct {
	RoomID        string   `json:"room_id"`
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	Capacity      int      `json:"capacity"`
	PricePerNight float64  `json:"price_per_night"`
	Amenities     []string `json:"amenities"`
}

type CheckAvailabilityOutput struct {
	CheckIn  string       `json:"check_in"`
	CheckOut string       `json:"check_out"`
	Nights   int          `json:"nights"`
	Rooms    []RoomOption `json:"rooms"`
}

func (r *Registry) checkAvailability(ctx context.Context, _ hotel.Guest, args contractx.CheckAvailabilityArgs) (any, error) {
	in, out, msg := stayDates(args.CheckIn, args.CheckOut)
	if msg != "" {
		return nil, errors.New(msg)
	}

	rooms, err := r.rooms.ListAvailable(ctx)
	if err != nil {
		return nil, errors.New("could not load rooms, please try again")
	}

	if r.policy.Availability == AvailabilityDateAware {
		free := make([]hotel.Room, 0, len(rooms))
		for _, room := range rooms {
			booked, err := r.reservations.Overlapping(ctx, room.ID, in, out)
			if err != nil {
				return nil, errors.New("could not check reservations, please try again")
			}
			if len(booked) == 0 {
				free = append(free, room)
			}
		}
		rooms = free
	}

	return CheckAvailabilityOutput{
		CheckIn:  in.String(),
		CheckOut: out.String(),
		Nights:   out.DaysSince(in),
		Rooms: lo.Map(rooms, func(room hotel.Room, _ int) RoomOption {
			return RoomOption{
				RoomID:        room.ID,
				Name:          room.Name,
				Type:          room.Type,
				Capacity:      room.Capacity,
				PricePerNight: room.PricePerNight,
				Amenities:     lo.Ternary(room.Amenities == nil, []string{}, room.Amenities),
			}
		}),
	}, nil
}
