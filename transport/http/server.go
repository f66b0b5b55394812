package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/tanpawarit/luna-hotel-concierge/agent/agents/orchestrator"
	"github.com/tanpawarit/luna-hotel-concierge/reminder"
)

type Config struct {
	Addr            string        `split_words:"true" default:":8080"`
	ReadTimeout     time.Duration `split_words:"true" default:"15s"`
	WriteTimeout    time.Duration `split_words:"true" default:"90s"`
	ShutdownTimeout time.Duration `split_words:"true" default:"10s"`
	MaxBodyBytes    int64         `split_words:"true" default:"1048576"`
	// RateLimit is the sustained number of webhook requests per second allowed per sender.
	RateLimit float64 `split_words:"true" default:"1"`
	RateBurst int     `split_words:"true" default:"5"`
	// PublicURL is the externally visible base URL, used to match the subject of
	// signed scheduler deliveries.
	PublicURL string `envconfig:"PUBLIC_URL"`
}

// ConversationHandler answers one inbound guest message.
type ConversationHandler interface {
	HandleInbound(ctx context.Context, in orchestrator.Inbound) (orchestrator.Reply, error)
}

type ReminderRunner interface {
	Run(ctx context.Context) (reminder.Result, error)
}

type SignatureVerifier interface {
	Verify(signature string, body []byte, destination string) error
}

type Handler struct {
	conversation ConversationHandler
	reminders    ReminderRunner
	verifier     SignatureVerifier
	publicURL    string
}

type Option func(*Handler)

// WithSignatureVerifier requires signed requests on the reminder endpoint.
func WithSignatureVerifier(v SignatureVerifier) Option {
	return func(h *Handler) {
		h.verifier = v
	}
}

func NewHandler(conversation ConversationHandler, reminders ReminderRunner, publicURL string, opts ...Option) *Handler {
	h := &Handler{
		conversation: conversation,
		reminders:    reminders,
		publicURL:    publicURL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

func SetupRoutes(r *gin.Engine, h *Handler, m *Middleware, cfg Config) {
	r.Use(gin.Recovery())
	r.Use(RequestLogger())
	r.Use(RequestSizeLimiter(cfg.MaxBodyBytes))

	r.GET("/healthz", h.Health)

	r.POST("/webhooks/whatsapp", h.HandleWhatsApp(m.AllowSender(rate.Limit(cfg.RateLimit), cfg.RateBurst)))

	tasks := r.Group("/tasks")
	{
		tasks.POST("/reminders", h.SendReminders)
		tasks.GET("/reminders", h.SendReminders)
	}
}

func NewRouter(h *Handler, m *Middleware, cfg Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	SetupRoutes(r, h, m, cfg)
	return r
}

// Serve runs the router until ctx is cancelled, then drains in-flight requests.
func Serve(ctx context.Context, router http.Handler, cfg Config) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("component", "http").Str("addr", cfg.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	log.Info().Str("component", "http").Msg("shutting down http server")
	return srv.Shutdown(shutdownCtx)
}
