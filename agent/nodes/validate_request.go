package orchestratornode

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/luna-hotel-concierge/agent/contract"
	"github.com/tanpawarit/luna-hotel-concierge/hotel"
)

var (
	ErrMissingSender  = fmt.Errorf("%w: sender address is missing", contractx.ErrValidation)
	ErrMissingMessage = fmt.Errorf("%w: message body is missing", contractx.ErrValidation)
	ErrNilState       = errors.New("graph state is nil")
)

type GraphInput struct {
	From       string
	Body       string
	DeliveryID string
}

type GraphOutput struct {
	Reply     string
	GuestID   string
	Duplicate bool
	Fallback  bool
}

type GraphState struct {
	From       string
	Body       string
	DeliveryID string
	Now        time.Time

	Duplicate bool

	Guest    hotel.Guest
	Inbound  hotel.Message
	Config   hotel.HotelConfig
	History  []hotel.Message
	Messages []*schema.Message

	Outcome contractx.ConciergeResponse
	Reply   string
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	from := strings.TrimSpace(in.From)
	if from == "" {
		return nil, ErrMissingSender
	}

	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, ErrMissingMessage
	}

	return &GraphState{
		From:       from,
		Body:       body,
		DeliveryID: strings.TrimSpace(in.DeliveryID),
		Now:        nowFn().UTC(),
	}, nil
}
