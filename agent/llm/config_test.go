package llm

import (
	"errors"
	"testing"
	"time"

	contractx "github.com/tanpawarit/luna-hotel-concierge/agent/contract"
)

func TestIterationsNeverExceedsCeiling(t *testing.T) {
	t.Parallel()

	tests := map[int]int{-1: 3, 0: 3, 1: 1, 2: 2, 3: 3, 10: 3}
	for in, want := range tests {
		if got := (Config{MaxIterations: in}).Iterations(); got != want {
			t.Fatalf("Iterations(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	ok := Config{APIKey: "k", Model: "openai/gpt-4o-mini", Timeout: time.Second}
	if err := ok.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	missingKey := ok
	missingKey.APIKey = " "
	if err := missingKey.Validate(); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	cfg := ok.OpenRouter()
	if cfg.MaxCompletionToken == nil || cfg.Model != "openai/gpt-4o-mini" {
		t.Fatalf("unexpected openrouter config: %#v", cfg)
	}
}
