package reminder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	promptx "github.com/tanpawarit/luna-hotel-concierge/agent/prompt"
	"github.com/tanpawarit/luna-hotel-concierge/hotel"
)

const defaultSendTimeout = 15 * time.Second

// Sender delivers one outbound message to a phone number.
type Sender interface {
	Send(ctx context.Context, to string, body string) (string, error)
}

type Renderer interface {
	RenderReminder(ctx context.Context, locale string, vars promptx.ReminderVars) (string, error)
}

type Config struct {
	// Timezone decides which calendar day is "tomorrow". Empty means UTC.
	Timezone    string        `split_words:"true"`
	Locale      string        `split_words:"true" default:"es"`
	SendTimeout time.Duration `split_words:"true" default:"15s"`
}

type Result struct {
	Day    hotel.Date
	Due    int
	Sent   int
	Failed int
}

// StatusLine is the plain-text summary returned to the scheduler.
func (r Result) StatusLine() string {
	if r.Due == 0 {
		return "No reminders to send"
	}
	if r.Failed > 0 {
		return fmt.Sprintf("Sent %d reminders (%d failed)", r.Sent, r.Failed)
	}
	return fmt.Sprintf("Sent %d reminders", r.Sent)
}

// Dispatcher sends the day-before check-in reminders.
type Dispatcher struct {
	reservations hotel.ReservationRepository
	configs      hotel.ConfigRepository
	sender       Sender
	renderer     Renderer

	location    *time.Location
	locale      string
	sendTimeout time.Duration
	now         func() time.Time
}

func New(
	reservations hotel.ReservationRepository,
	configs hotel.ConfigRepository,
	sender Sender,
	renderer Renderer,
	cfg Config,
) (*Dispatcher, error) {
	if reservations == nil {
		return nil, errors.New("reservation repository is required")
	}
	if sender == nil {
		return nil, errors.New("sender is required")
	}
	if renderer == nil {
		return nil, errors.New("renderer is required")
	}

	loc := time.UTC
	if tz := strings.TrimSpace(cfg.Timezone); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("load reminder timezone %q: %w", tz, err)
		}
		loc = l
	}

	locale := strings.TrimSpace(cfg.Locale)
	if locale == "" {
		locale = promptx.DefaultReminderLocale
	}
	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}

	return &Dispatcher{
		reservations: reservations,
		configs:      configs,
		sender:       sender,
		renderer:     renderer,
		location:     loc,
		locale:       locale,
		sendTimeout:  timeout,
		now:          time.Now,
	}, nil
}

// Run selects tomorrow's confirmed, unreminded reservations and sends one reminder
// each. A failed send leaves the reservation for the next run and the batch goes on.
// Only a failed selection or a cancelled context returns an error.
func (d *Dispatcher) Run(ctx context.Context) (Result, error) {
	day := hotel.DateOf(d.now().In(d.location)).AddDays(1)
	res := Result{Day: day}

	due, err := d.reservations.DueReminders(ctx, day)
	if err != nil {
		return res, fmt.Errorf("select due reminders for %s: %w", day, err)
	}
	res.Due = len(due)
	if len(due) == 0 {
		log.Info().Str("component", "reminder").Str("day", day.String()).Msg("no reminders due")
		return res, nil
	}

	cfg := d.loadConfig(ctx)
	for _, r := range due {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if d.dispatchOne(ctx, cfg, r) {
			res.Sent++
		} else {
			res.Failed++
		}
	}

	log.Info().
		Str("component", "reminder").
		Str("day", day.String()).
		Int("due", res.Due).
		Int("sent", res.Sent).
		Int("failed", res.Failed).
		Msg("reminder batch finished")
	return res, nil
}

func (d *Dispatcher) dispatchOne(ctx context.Context, cfg hotel.HotelConfig, r hotel.Reservation) bool {
	logger := log.With().Str("component", "reminder").Str("reservation_id", r.ID).Logger()

	if r.Guest == nil || r.Room == nil {
		logger.Error().Msg("reservation is missing guest or room, skipping")
		return false
	}

	body, err := d.renderer.RenderReminder(ctx, d.locale, promptx.ReminderVars{
		GuestName:   r.Guest.Name,
		HotelName:   cfg.HotelName,
		RoomName:    r.Room.Name,
		CheckInDate: r.CheckInDate.String(),
		CheckInTime: cfg.CheckInTime,
	})
	if err != nil {
		logger.Error().Err(err).Msg("render reminder failed")
		return false
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	sid, err := d.sender.Send(sendCtx, r.Guest.Phone, body)
	cancel()
	if err != nil {
		logger.Error().Err(err).Str("guest_id", r.GuestID).Msg("send reminder failed, will retry next run")
		return false
	}

	marked, err := d.reservations.MarkReminderSent(ctx, r.ID)
	switch {
	case err != nil:
		logger.Error().Err(err).Str("message_sid", sid).Msg("reminder sent but flag update failed")
	case !marked:
		logger.Warn().Str("message_sid", sid).Msg("reminder flag was already set")
	default:
		logger.Debug().Str("message_sid", sid).Msg("reminder sent")
	}
	return true
}

func (d *Dispatcher) loadConfig(ctx context.Context) hotel.HotelConfig {
	if d.configs == nil {
		return hotel.DefaultHotelConfig()
	}
	cfg, err := d.configs.Get(ctx)
	if err != nil {
		if !errors.Is(err, hotel.ErrNotFound) {
			log.Warn().Err(err).Str("component", "reminder").Msg("load hotel config failed, using defaults")
		}
		return hotel.DefaultHotelConfig()
	}
	return cfg.WithDefaults()
}
