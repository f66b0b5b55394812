package prompt

import (
	"context"
	"fmt"
	"strings"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

const DefaultReminderLocale = "es"

type ReminderVars struct {
	GuestName   string
	HotelName   string
	RoomName    string
	CheckInDate string
	CheckInTime string
}

// RenderReminder formats the pre-arrival reminder for locale, falling back to
// DefaultReminderLocale when the locale has no template.
func (p PromptSet) RenderReminder(ctx context.Context, locale string, vars ReminderVars) (string, error) {
	tpl, ok := p.Reminders[strings.ToLower(strings.TrimSpace(locale))]
	if !ok {
		tpl, ok = p.Reminders[DefaultReminderLocale]
	}
	if !ok || tpl == "" {
		return "", fmt.Errorf("no reminder template for locale %q", locale)
	}

	msgs, err := einoprompt.FromMessages(schema.FString, schema.UserMessage(tpl)).Format(ctx, map[string]any{
		"guest_name":    vars.GuestName,
		"hotel_name":    vars.HotelName,
		"room_name":     vars.RoomName,
		"check_in_date": vars.CheckInDate,
		"check_in_time": vars.CheckInTime,
	})
	if err != nil {
		return "", fmt.Errorf("render reminder: %w", err)
	}
	if len(msgs) == 0 {
		return "", fmt.Errorf("render reminder: empty output")
	}
	return strings.TrimSpace(msgs[0].Content), nil
}
