package concierge

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/luna-hotel-concierge/agent/contract"
	llmx "github.com/tanpawarit/luna-hotel-concierge/agent/llm"
)

const (
	DefaultFallbackReply = "I'm sorry, I couldn't finish that just now. Could you try again in a moment?"
	defaultCallTimeout   = 30 * time.Second
)

// Concierge drives the bounded request, execute, respond cycle with the chat model.
type Concierge struct {
	model         einomodel.ToolCallingChatModel
	tools         contractx.ToolGateway
	maxIterations int
	callTimeout   time.Duration
	fallbackReply string
}

var _ contractx.Concierge = (*Concierge)(nil)

type Option func(*Concierge)

// WithMaxIterations lowers the round-trip bound; values outside [1, 3] are ignored.
func WithMaxIterations(n int) Option {
	return func(c *Concierge) {
		if n > 0 && n <= llmx.MaxToolIterations {
			c.maxIterations = n
		}
	}
}

func WithCallTimeout(d time.Duration) Option {
	return func(c *Concierge) {
		if d > 0 {
			c.callTimeout = d
		}
	}
}

func WithFallbackReply(reply string) Option {
	return func(c *Concierge) {
		if strings.TrimSpace(reply) != "" {
			c.fallbackReply = strings.TrimSpace(reply)
		}
	}
}

func New(chatModel einomodel.ToolCallingChatModel, tools contractx.ToolGateway, opts ...Option) (*Concierge, error) {
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}
	if tools == nil {
		return nil, errors.New("tool gateway is required")
	}

	toolModel, err := chatModel.WithTools(tools.Infos())
	if err != nil {
		return nil, fmt.Errorf("%w: bind concierge tools: %v", contractx.ErrModelInvoke, err)
	}

	c := &Concierge{
		model:         toolModel,
		tools:         tools,
		maxIterations: llmx.MaxToolIterations,
		callTimeout:   defaultCallTimeout,
		fallbackReply: DefaultFallbackReply,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

func (c *Concierge) FallbackReply() string {
	return c.fallbackReply
}

// Run always yields a non-empty reply. Model failures, malformed tool payloads
// and exhausting the iteration bound all end in the fallback reply; the only
// error is an empty request.
func (c *Concierge) Run(ctx context.Context, req contractx.ConciergeRequest) (contractx.ConciergeResponse, error) {
	if len(req.Messages) == 0 {
		return contractx.ConciergeResponse{}, fmt.Errorf("%w: concierge request has no messages", contractx.ErrValidation)
	}

	logger := log.With().Str("component", "concierge").Str("guest_id", req.Guest.ID).Logger()
	msgs := slices.Clone(req.Messages)
	var out contractx.ConciergeResponse

	for iteration := 1; iteration <= c.maxIterations; iteration++ {
		out.Iterations = iteration

		resp, err := c.generate(ctx, msgs)
		if err != nil {
			logger.Warn().Err(err).Int("iteration", iteration).Msg("model call failed")
			return c.fallback(out), nil
		}

		if len(resp.ToolCalls) == 0 {
			reply := strings.TrimSpace(resp.Content)
			if reply == "" {
				logger.Warn().Int("iteration", iteration).Msg("model returned empty content")
				return c.fallback(out), nil
			}
			out.Reply = reply
			return out, nil
		}

		calls := withCallIDs(resp.ToolCalls, iteration)
		msgs = append(msgs, schema.AssistantMessage(resp.Content, calls))

		for _, call := range calls {
			result, err := c.tools.Execute(ctx, req.Guest, contractx.ToolCallFromSchema(call))
			if err != nil {
				logger.Warn().Err(err).
					Int("iteration", iteration).
					Str("tool", call.Function.Name).
					Msg("tool call aborted the loop")
				return c.fallback(out), nil
			}
			logger.Debug().
				Int("iteration", iteration).
				Str("tool", call.Function.Name).
				Bool("failed", result.Failed()).
				Msg("tool executed")

			out.ToolCalls = append(out.ToolCalls, result)
			msgs = append(msgs, schema.ToolMessage(result.Content(), call.ID))
		}
	}

	logger.Warn().Err(contractx.ErrIterationLimit).Int("iterations", out.Iterations).Msg("no final reply within bound")
	return c.fallback(out), nil
}

func (c *Concierge) generate(ctx context.Context, msgs []*schema.Message) (*schema.Message, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	resp, err := c.model.Generate(callCtx, msgs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: empty model response", contractx.ErrSchemaViolation)
	}
	return resp, nil
}

func (c *Concierge) fallback(out contractx.ConciergeResponse) contractx.ConciergeResponse {
	out.Reply = c.fallbackReply
	out.Fallback = true
	return out
}

// withCallIDs fills missing call ids so every tool turn can be correlated.
func withCallIDs(calls []schema.ToolCall, iteration int) []schema.ToolCall {
	out := slices.Clone(calls)
	for i := range out {
		if strings.TrimSpace(out[i].ID) == "" {
			out[i].ID = fmt.Sprintf("call_%d_%d", iteration, i)
		}
		if out[i].Type == "" {
			out[i].Type = "function"
		}
	}
	return out
}
