package orchestratornode

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	contractx "github.com/tanpawarit/luna-hotel-concierge/agent/contract"
	"github.com/tanpawarit/luna-hotel-concierge/hotel"
)

// BuildContext loads hotel configuration and the bounded history, then renders the
// model input. Configuration or history failures degrade to defaults and an empty
// window rather than failing the turn.
func BuildContext(
	ctx context.Context,
	in *GraphState,
	configs hotel.ConfigRepository,
	messages contractx.MessageLog,
	builder contractx.ContextBuilder,
	historyLimit int,
) (*GraphState, error) {
	if in == nil {
		return nil, ErrNilState
	}

	in.Config = loadConfig(ctx, configs)
	in.History = loadHistory(ctx, messages, in.Guest.ID, in.Inbound.ID, historyLimit)

	msgs, err := builder.Build(ctx, contractx.ContextInput{
		Config:  in.Config,
		Guest:   in.Guest,
		History: in.History,
		Inbound: in.Body,
	})
	if err != nil {
		return nil, fmt.Errorf("build context: %w", err)
	}
	in.Messages = msgs
	return in, nil
}

func loadConfig(ctx context.Context, configs hotel.ConfigRepository) hotel.HotelConfig {
	if configs == nil {
		return hotel.DefaultHotelConfig()
	}
	cfg, err := configs.Get(ctx)
	if err != nil {
		if !errors.Is(err, hotel.ErrNotFound) {
			log.Warn().Err(err).Str("component", "webhook").Msg("load hotel config failed, using defaults")
		}
		return hotel.DefaultHotelConfig()
	}
	return cfg.WithDefaults()
}

// loadHistory reads one extra turn so the just-recorded inbound message can be
// dropped without shrinking the window.
func loadHistory(ctx context.Context, messages contractx.MessageLog, guestID, inboundID string, limit int) []hotel.Message {
	if limit <= 0 {
		return nil
	}
	history, err := messages.RecentHistory(ctx, guestID, limit+1)
	if err != nil {
		log.Warn().Err(err).
			Str("component", "webhook").
			Str("guest_id", guestID).
			Msg("load history failed, continuing without it")
		return nil
	}

	history = lo.Reject(history, func(m hotel.Message, _ int) bool {
		return inboundID != "" && m.ID == inboundID
	})
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	return history
}
