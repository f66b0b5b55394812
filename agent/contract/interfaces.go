package contract

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"github.com/tanpawarit/luna-hotel-concierge/hotel"
)

type GuestResolver interface {
	Resolve(ctx context.Context, rawAddress string) (hotel.Guest, error)
}

// MessageLog is the per-guest conversation record.
type MessageLog interface {
	Append(ctx context.Context, guestID string, dir hotel.Direction, content string, phone string) (hotel.Message, error)
	RecentHistory(ctx context.Context, guestID string, limit int) ([]hotel.Message, error)
}

type Concierge interface {
	Run(ctx context.Context, req ConciergeRequest) (ConciergeResponse, error)
}

type ToolGateway interface {
	Infos() []*schema.ToolInfo
	Execute(ctx context.Context, guest hotel.Guest, call ToolCall) (ToolResult, error)
}

type ContextBuilder interface {
	Build(ctx context.Context, in ContextInput) ([]*schema.Message, error)
}

// DeliveryDeduper claims inbound delivery ids; Claim reports false for repeats.
type DeliveryDeduper interface {
	Claim(ctx context.Context, deliveryID string) (bool, error)
}
