package orchestratornode

import (
	"context"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/luna-hotel-concierge/agent/contract"
)

// ClaimDelivery marks repeated webhook deliveries. Store failures fail open so a
// flaky cache never drops a guest message.
func ClaimDelivery(ctx context.Context, in *GraphState, dedupe contractx.DeliveryDeduper) (*GraphState, error) {
	if in == nil {
		return nil, ErrNilState
	}
	if dedupe == nil || in.DeliveryID == "" {
		return in, nil
	}

	fresh, err := dedupe.Claim(ctx, in.DeliveryID)
	if err != nil {
		log.Warn().Err(err).
			Str("component", "webhook").
			Str("delivery_id", in.DeliveryID).
			Msg("delivery claim failed, processing anyway")
		return in, nil
	}
	in.Duplicate = !fresh
	return in, nil
}
