package tool

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/luna-hotel-concierge/agent/contract"
	"github.com/tanpawarit/luna-hotel-concierge/hotel"
)

// Executor runs one tool call for guest with the raw argument payload.
type Executor func(ctx context.Context, guest hotel.Guest, rawArgs string) (contractx.ToolResult, error)

// Registry exposes the tool schemas to the model and dispatches its calls.
type Registry struct {
	guests       hotel.GuestRepository
	rooms        hotel.RoomRepository
	reservations hotel.ReservationRepository
	policy       Policy

	executors map[contractx.ToolName]Executor
}

var _ contractx.ToolGateway = (*Registry)(nil)

func NewRegistry(
	guests hotel.GuestRepository,
	rooms hotel.RoomRepository,
	reservations hotel.ReservationRepository,
	policy Policy,
) (*Registry, error) {
	if guests == nil || rooms == nil || reservations == nil {
		return nil, errors.New("tool registry requires guest, room and reservation repositories")
	}
	policy, err := policy.Normalize()
	if err != nil {
		return nil, err
	}

	r := &Registry{
		guests:       guests,
		rooms:        rooms,
		reservations: reservations,
		policy:       policy,
	}
	r.executors = map[contractx.ToolName]Executor{
		contractx.ToolCheckAvailability: bind(contractx.ToolCheckAvailability, r.checkAvailability),
		contractx.ToolCreateReservation: bind(contractx.ToolCreateReservation, r.createReservation),
		contractx.ToolUpdateGuestInfo:   bind(contractx.ToolUpdateGuestInfo, r.updateGuestInfo),
	}
	return r, nil
}

func (r *Registry) Policy() Policy {
	return r.policy
}

func (r *Registry) Infos() []*schema.ToolInfo {
	return Infos()
}

// Execute runs call. Unknown tools and invalid arguments come back as tool
// errors; only an undecodable payload is returned as a Go error.
func (r *Registry) Execute(ctx context.Context, guest hotel.Guest, call contractx.ToolCall) (contractx.ToolResult, error) {
	exec, ok := r.executors[call.Name]
	if !ok {
		log.Warn().Str("component", "tool").Str("tool", string(call.Name)).Msg("model requested unknown tool")
		return contractx.ToolResult{
			Tool:   call.Name,
			CallID: call.ID,
			Error:  fmt.Sprintf("%s: %q", contractx.ErrUnknownTool, call.Name),
		}, nil
	}

	out, err := exec(ctx, guest, call.Arguments)
	if err != nil {
		return contractx.ToolResult{}, fmt.Errorf("tool=%s: %w", call.Name, err)
	}
	out.CallID = call.ID
	return out, nil
}

// bind adapts a typed handler into an Executor. Handler errors are tool errors.
func bind[T any](name contractx.ToolName, handler func(ctx context.Context, guest hotel.Guest, args T) (any, error)) Executor {
	return func(ctx context.Context, guest hotel.Guest, rawArgs string) (contractx.ToolResult, error) {
		args, argErr, err := decodeArgs[T](rawArgs)
		if err != nil {
			return contractx.ToolResult{}, err
		}
		if argErr != "" {
			return contractx.ToolResult{Tool: name, Error: argErr}, nil
		}

		result, err := handler(ctx, guest, args)
		if err != nil {
			log.Warn().Err(err).
				Str("component", "tool").
				Str("tool", string(name)).
				Str("guest_id", guest.ID).
				Msg("tool execution failed")
			return contractx.ToolResult{Tool: name, Error: err.Error()}, nil
		}
		return contractx.ToolResult{Tool: name, Result: result}, nil
	}
}

// Infos declares the three operations the model may call.
func Infos() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name: string(contractx.ToolCheckAvailability),
			Desc: "List rooms available for a stay. Use before offering or booking a room.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"check_in":  {Type: schema.String, Desc: "Check-in date, YYYY-MM-DD", Required: true},
				"check_out": {Type: schema.String, Desc: "Check-out date, YYYY-MM-DD", Required: true},
			}),
		},
		{
			Name: string(contractx.ToolCreateReservation),
			Desc: "Book a room for the current guest. Only call after the guest confirmed room and dates.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"room_id":   {Type: schema.String, Desc: "Room id returned by check_availability", Required: true},
				"check_in":  {Type: schema.String, Desc: "Check-in date, YYYY-MM-DD", Required: true},
				"check_out": {Type: schema.String, Desc: "Check-out date, YYYY-MM-DD", Required: true},
			}),
		},
		{
			Name: string(contractx.ToolUpdateGuestInfo),
			Desc: "Save the current guest's real name and, if given, email address.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"name":  {Type: schema.String, Desc: "Guest full name", Required: true},
				"email": {Type: schema.String, Desc: "Guest email address"},
			}),
		},
	}
}
