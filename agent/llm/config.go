package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/luna-hotel-concierge/agent/contract"
	openrouterx "github.com/tanpawarit/luna-hotel-concierge/pkg/openrouter"
)

// MaxToolIterations is the hard ceiling on model round trips per inbound message.
const MaxToolIterations = 3

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"openai/gpt-4o-mini"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"800"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.4"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	MaxIterations int    `envconfig:"MAX_ITERATIONS" split_words:"true" default:"3"`
	FallbackReply string `envconfig:"FALLBACK_REPLY" split_words:"true"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openrouter api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: model is required", contractx.ErrValidation)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: model timeout must be positive", contractx.ErrValidation)
	}
	return nil
}

// Iterations clamps the configured round trips to [1, MaxToolIterations].
func (c Config) Iterations() int {
	switch {
	case c.MaxIterations <= 0, c.MaxIterations > MaxToolIterations:
		return MaxToolIterations
	default:
		return c.MaxIterations
	}
}

func (c Config) OpenRouter() openrouterx.Config {
	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              strings.TrimSpace(c.Model),
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        c.Temperature,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
