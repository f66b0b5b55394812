package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	"github.com/tanpawarit/luna-hotel-concierge/agent/agents/concierge"
	"github.com/tanpawarit/luna-hotel-concierge/agent/agents/orchestrator"
	llmx "github.com/tanpawarit/luna-hotel-concierge/agent/llm"
	promptx "github.com/tanpawarit/luna-hotel-concierge/agent/prompt"
	"github.com/tanpawarit/luna-hotel-concierge/agent/state"
	"github.com/tanpawarit/luna-hotel-concierge/agent/tool"
	"github.com/tanpawarit/luna-hotel-concierge/hotel"
	openrouterx "github.com/tanpawarit/luna-hotel-concierge/pkg/openrouter"
	postgresx "github.com/tanpawarit/luna-hotel-concierge/pkg/postgres"
	qstashx "github.com/tanpawarit/luna-hotel-concierge/pkg/qstash"
	twiliox "github.com/tanpawarit/luna-hotel-concierge/pkg/twilio"
	"github.com/tanpawarit/luna-hotel-concierge/reminder"
	"github.com/tanpawarit/luna-hotel-concierge/storage"
	httpx "github.com/tanpawarit/luna-hotel-concierge/transport/http"
)

// BookingConfig groups the BOOKING_* settings.
type BookingConfig struct {
	tool.Policy
	orchestrator.Config
}

// Store is an open database with its repositories.
type Store struct {
	DB    *bun.DB
	Repos *storage.Repositories
}

func OpenStore(ctx context.Context, cfg postgresx.Config) (*Store, error) {
	db, err := postgresx.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{DB: db, Repos: storage.New(db)}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

// Migrate creates the tables and indexes when they are missing.
func (s *Store) Migrate(ctx context.Context) error {
	return storage.CreateSchema(ctx, s.DB)
}

// NewOrchestrator assembles the inbound pipeline: identity, message log, tools,
// prompt builder and the bounded concierge loop. redisCfg is optional.
func NewOrchestrator(
	ctx context.Context,
	repos *storage.Repositories,
	llmCfg llmx.Config,
	booking BookingConfig,
	redisCfg state.UpstashRedisConfig,
) (*orchestrator.Orchestrator, error) {
	if err := llmCfg.Validate(); err != nil {
		return nil, err
	}

	orCfg := llmCfg.OpenRouter()
	chatModel, err := orCfg.New(ctx)
	if err != nil {
		return nil, err
	}

	registry, err := tool.NewRegistry(repos.Guests, repos.Rooms, repos.Reservations, booking.Policy)
	if err != nil {
		return nil, fmt.Errorf("build tool registry: %w", err)
	}

	loop, err := concierge.New(chatModel, registry,
		concierge.WithMaxIterations(llmCfg.Iterations()),
		concierge.WithCallTimeout(llmCfg.Timeout),
		concierge.WithFallbackReply(llmCfg.FallbackReply),
	)
	if err != nil {
		return nil, err
	}

	var opts []orchestrator.Option
	if redisCfg.Enabled() {
		dedupe, err := state.NewUpstashDeliveryStore(redisCfg)
		if err != nil {
			return nil, fmt.Errorf("build delivery store: %w", err)
		}
		opts = append(opts, orchestrator.WithDeliveryDeduper(dedupe))
	} else {
		log.Info().Str("component", "webhook").Msg("upstash redis not configured, delivery de-duplication disabled")
	}

	log.Info().
		Str("component", "webhook").
		Str("model", orCfg.Model).
		Int("max_iterations", llmCfg.Iterations()).
		Str("pricing_policy", string(registry.Policy().Pricing)).
		Str("overlap_policy", string(registry.Policy().Overlap)).
		Str("availability_mode", string(registry.Policy().Availability)).
		Msg("concierge ready")

	return orchestrator.New(
		hotel.NewIdentityResolver(repos.Guests),
		hotel.NewConversation(repos.Messages),
		repos.Config,
		promptx.NewBuilder(promptx.LoadPromptSet()),
		loop,
		booking.Config,
	)
}

// ProbeModel logs a warning when the configured model cannot be resolved.
func ProbeModel(ctx context.Context, llmCfg llmx.Config) {
	orCfg := llmCfg.OpenRouter()
	if err := openrouterx.ProbeModel(ctx, openrouterx.NewClient(orCfg), orCfg.Model); err != nil {
		log.Warn().Err(err).Str("component", "concierge").Str("model", orCfg.Model).Msg("model probe failed")
		return
	}
	log.Info().Str("component", "concierge").Str("model", orCfg.Model).Msg("model probe ok")
}

func NewReminderDispatcher(repos *storage.Repositories, twilioCfg twiliox.Config, cfg reminder.Config) (*reminder.Dispatcher, error) {
	sender, err := twiliox.NewClient(twilioCfg)
	if err != nil {
		return nil, fmt.Errorf("build twilio client: %w", err)
	}
	return reminder.New(repos.Reservations, repos.Config, sender, promptx.LoadPromptSet(), cfg)
}

func NewRouter(
	conversation httpx.ConversationHandler,
	reminders httpx.ReminderRunner,
	httpCfg httpx.Config,
	qstashCfg qstashx.Config,
) (http.Handler, error) {
	var opts []httpx.Option
	if qstashCfg.VerificationEnabled() {
		verifier, err := qstashx.NewVerifier(qstashCfg.CurrentSigningKey, qstashCfg.NextSigningKey)
		if err != nil {
			return nil, err
		}
		opts = append(opts, httpx.WithSignatureVerifier(verifier))
	} else {
		log.Warn().Str("component", "reminder").Msg("qstash signing keys not configured, reminder endpoint is unauthenticated")
	}

	handler := httpx.NewHandler(conversation, reminders, httpCfg.PublicURL, opts...)
	return httpx.NewRouter(handler, httpx.NewMiddleware(), httpCfg), nil
}

// ReminderDestination is the URL the scheduler should call.
func ReminderDestination(httpCfg httpx.Config, qstashCfg qstashx.Config) (string, error) {
	if qstashCfg.Destination != "" {
		return qstashCfg.Destination, nil
	}
	if httpCfg.PublicURL == "" {
		return "", errors.New("set QSTASH_DESTINATION or HTTP_PUBLIC_URL")
	}
	return httpx.ReminderURL(httpCfg.PublicURL), nil
}
