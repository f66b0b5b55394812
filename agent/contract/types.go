package contract

import (
	"encoding/json"

	"github.com/cloudwego/eino/schema"

	"github.com/tanpawarit/luna-hotel-concierge/hotel"
)

type ToolName string

const (
	ToolCheckAvailability ToolName = "check_availability"
	ToolCreateReservation ToolName = "create_reservation"
	ToolUpdateGuestInfo   ToolName = "update_guest_info"
)

// ToolNames lists every tool exposed to the completion service, in declaration order.
var ToolNames = []ToolName{
	ToolCheckAvailability,
	ToolCreateReservation,
	ToolUpdateGuestInfo,
}

func (n ToolName) Valid() bool {
	switch n {
	case ToolCheckAvailability, ToolCreateReservation, ToolUpdateGuestInfo:
		return true
	default:
		return false
	}
}

type CheckAvailabilityArgs struct {
	CheckIn  string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut string `json:"check_out" validate:"required,datetime=2006-01-02"`
}

type CreateReservationArgs struct {
	RoomID   string `json:"room_id" validate:"required"`
	CheckIn  string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut string `json:"check_out" validate:"required,datetime=2006-01-02"`
}

type UpdateGuestInfoArgs struct {
	Name  string  `json:"name" validate:"required,max=120"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
}

// ToolCall is one invocation requested by the model.
type ToolCall struct {
	ID        string   `json:"id"`
	Name      ToolName `json:"name"`
	Arguments string   `json:"arguments"`
}

func ToolCallFromSchema(call schema.ToolCall) ToolCall {
	return ToolCall{
		ID:        call.ID,
		Name:      ToolName(call.Function.Name),
		Arguments: call.Function.Arguments,
	}
}

// ToolResult is returned to the model as a tool turn. A non-empty Error is a
// tool-level failure the model can react to, not a Go error.
type ToolResult struct {
	Tool   ToolName `json:"tool"`
	CallID string   `json:"call_id,omitempty"`
	Result any      `json:"result,omitempty"`
	Error  string   `json:"error,omitempty"`
}

func (r ToolResult) Failed() bool {
	return r.Error != ""
}

// Content renders the tool turn body.
func (r ToolResult) Content() string {
	var payload any = map[string]any{"result": r.Result}
	if r.Failed() {
		payload = map[string]any{"error": r.Error}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return `{"error":"tool result could not be encoded"}`
	}
	return string(raw)
}

type ConciergeRequest struct {
	Guest    hotel.Guest
	Messages []*schema.Message
}

type ConciergeResponse struct {
	Reply      string
	Iterations int
	Fallback   bool
	ToolCalls  []ToolResult
}

// ContextInput is everything the context builder needs for one turn.
type ContextInput struct {
	Config  hotel.HotelConfig
	Guest   hotel.Guest
	History []hotel.Message
	Inbound string
}
