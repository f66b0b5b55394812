package orchestratornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/luna-hotel-concierge/agent/contract"
	"github.com/tanpawarit/luna-hotel-concierge/hotel"
)

func RecordInbound(ctx context.Context, in *GraphState, messages contractx.MessageLog) (*GraphState, error) {
	if in == nil {
		return nil, ErrNilState
	}

	msg, err := messages.Append(ctx, in.Guest.ID, hotel.Inbound, in.Body, in.Guest.Phone)
	if err != nil {
		return nil, fmt.Errorf("record inbound: %w", err)
	}
	in.Inbound = msg
	return in, nil
}

// RecordOutbound persists the final reply. A failed write is logged; the guest
// still gets the reply.
func RecordOutbound(ctx context.Context, in *GraphState, messages contractx.MessageLog) (*GraphState, error) {
	if in == nil {
		return nil, ErrNilState
	}
	if in.Reply == "" {
		return nil, fmt.Errorf("%w: reply is empty", contractx.ErrValidation)
	}

	if _, err := messages.Append(ctx, in.Guest.ID, hotel.Outbound, in.Reply, in.Guest.Phone); err != nil {
		log.Error().Err(err).
			Str("component", "webhook").
			Str("guest_id", in.Guest.ID).
			Msg("record outbound message failed")
	}
	return in, nil
}
