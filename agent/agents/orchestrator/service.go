package orchestrator

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/luna-hotel-concierge/agent/contract"
	nodex "github.com/tanpawarit/luna-hotel-concierge/agent/nodes"
	"github.com/tanpawarit/luna-hotel-concierge/hotel"
)

var (
	ErrMissingSender  = nodex.ErrMissingSender
	ErrMissingMessage = nodex.ErrMissingMessage
)

const (
	DefaultHistoryLimit = 15
	DefaultApologyReply = "I'm sorry, something went wrong on our side. Please try again in a few minutes."
)

type Config struct {
	HistoryLimit int    `split_words:"true" default:"15"`
	ApologyReply string `split_words:"true"`
}

// Inbound is one decoded channel message.
type Inbound struct {
	From       string
	Body       string
	DeliveryID string
}

type Reply struct {
	Text      string
	GuestID   string
	Duplicate bool
	Fallback  bool
}

type Orchestrator struct {
	identity  contractx.GuestResolver
	messages  contractx.MessageLog
	configs   hotel.ConfigRepository
	builder   contractx.ContextBuilder
	concierge contractx.Concierge
	dedupe    contractx.DeliveryDeduper

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	historyLimit int
	apologyReply string

	now func() time.Time
}

type Option func(*Orchestrator)

// WithDeliveryDeduper enables skipping of repeated webhook deliveries.
func WithDeliveryDeduper(d contractx.DeliveryDeduper) Option {
	return func(o *Orchestrator) {
		o.dedupe = d
	}
}

func New(
	identity contractx.GuestResolver,
	messages contractx.MessageLog,
	configs hotel.ConfigRepository,
	builder contractx.ContextBuilder,
	concierge contractx.Concierge,
	cfg Config,
	opts ...Option,
) (*Orchestrator, error) {
	if identity == nil {
		return nil, errors.New("guest resolver is required")
	}
	if messages == nil {
		return nil, errors.New("message log is required")
	}
	if builder == nil {
		return nil, errors.New("context builder is required")
	}
	if concierge == nil {
		return nil, errors.New("concierge is required")
	}

	historyLimit := cfg.HistoryLimit
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	apology := strings.TrimSpace(cfg.ApologyReply)
	if apology == "" {
		apology = DefaultApologyReply
	}

	o := &Orchestrator{
		identity:     identity,
		messages:     messages,
		configs:      configs,
		builder:      builder,
		concierge:    concierge,
		historyLimit: historyLimit,
		apologyReply: apology,
		now:          time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	graphRunner, err := o.compileHandleMessageGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// HandleMessage processes one inbound turn and returns the reply text.
func (o *Orchestrator) HandleMessage(ctx context.Context, from string, body string) (string, error) {
	reply, err := o.HandleInbound(ctx, Inbound{From: from, Body: body})
	if err != nil {
		return "", err
	}
	return reply.Text, nil
}

// HandleInbound returns an error only for validation failures. Any later failure
// becomes the apology reply so the channel always gets an answer.
func (o *Orchestrator) HandleInbound(ctx context.Context, in Inbound) (Reply, error) {
	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{
		From:       in.From,
		Body:       in.Body,
		DeliveryID: in.DeliveryID,
	})
	if err != nil {
		if errors.Is(err, ErrMissingSender) || errors.Is(err, ErrMissingMessage) {
			return Reply{}, err
		}
		log.Error().Err(err).
			Str("component", "webhook").
			Str("delivery_id", in.DeliveryID).
			Msg("inbound pipeline failed, sending apology")
		return Reply{Text: o.apologyReply, Fallback: true}, nil
	}

	return Reply{
		Text:      out.Reply,
		GuestID:   out.GuestID,
		Duplicate: out.Duplicate,
		Fallback:  out.Fallback,
	}, nil
}
