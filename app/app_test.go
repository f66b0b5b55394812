package app

import (
	"testing"

	"github.com/tanpawarit/luna-hotel-concierge/agent/tool"
	configx "github.com/tanpawarit/luna-hotel-concierge/pkg/config"
	qstashx "github.com/tanpawarit/luna-hotel-concierge/pkg/qstash"
	httpx "github.com/tanpawarit/luna-hotel-concierge/transport/http"
)

func TestBookingConfigFromEnv(t *testing.T) {
	t.Setenv("BOOKING_PRICING_POLICY", "per_night")
	t.Setenv("BOOKING_OVERLAP_POLICY", "reject")
	t.Setenv("BOOKING_HISTORY_LIMIT", "8")

	conf, err := configx.New[BookingConfig]("BOOKING")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if conf.Pricing != tool.PricingPerNight || conf.Overlap != tool.OverlapReject {
		t.Fatalf("unexpected policy: %#v", conf.Policy)
	}
	if conf.Availability != tool.AvailabilitySnapshot {
		t.Fatalf("Availability = %q, want default snapshot", conf.Availability)
	}
	if conf.HistoryLimit != 8 {
		t.Fatalf("HistoryLimit = %d, want 8", conf.HistoryLimit)
	}
}

func TestReminderDestination(t *testing.T) {
	t.Parallel()

	got, err := ReminderDestination(httpx.Config{PublicURL: "https://hotel.example.com/"}, qstashx.Config{})
	if err != nil {
		t.Fatalf("ReminderDestination() error = %v", err)
	}
	if got != "https://hotel.example.com/tasks/reminders" {
		t.Fatalf("ReminderDestination() = %q", got)
	}

	got, err = ReminderDestination(httpx.Config{PublicURL: "https://ignored"}, qstashx.Config{Destination: "https://cron.example.com/run"})
	if err != nil || got != "https://cron.example.com/run" {
		t.Fatalf("ReminderDestination() = %q, %v", got, err)
	}

	if _, err := ReminderDestination(httpx.Config{}, qstashx.Config{}); err == nil {
		t.Fatal("ReminderDestination() error = nil, want missing destination error")
	}
}
