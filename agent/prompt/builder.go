package prompt

import (
	"context"
	"fmt"
	"strings"
	"time"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	"github.com/samber/lo"

	contractx "github.com/tanpawarit/luna-hotel-concierge/agent/contract"
	"github.com/tanpawarit/luna-hotel-concierge/hotel"
)

const (
	localDateTimeLayout = "Monday, 2 January 2006 15:04"
	nameRuleSlot        = "{name_rule}"
)

// Builder assembles the system preamble, the bounded history and the new inbound turn.
// History and inbound text go through message placeholders, never through the format string.
type Builder struct {
	prompts PromptSet
	now     func() time.Time
}

var _ contractx.ContextBuilder = (*Builder)(nil)

func NewBuilder(prompts PromptSet) *Builder {
	return &Builder{prompts: prompts, now: time.Now}
}

func (b *Builder) Build(ctx context.Context, in contractx.ContextInput) ([]*schema.Message, error) {
	cfg := in.Config.WithDefaults()
	local := b.now().In(cfg.Location())

	rule := b.prompts.NameKnown
	if in.Guest.HasPlaceholderName() {
		rule = b.prompts.NameUnknown
	}
	system := strings.Replace(b.prompts.Preamble, nameRuleSlot, rule, 1)

	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(system),
		schema.MessagesPlaceholder("history", true),
		schema.MessagesPlaceholder("inbound", false),
	)

	msgs, err := template.Format(ctx, map[string]any{
		"hotel_name":     cfg.HotelName,
		"address":        lo.CoalesceOrEmpty(strings.TrimSpace(cfg.Address), "not on file"),
		"local_datetime": local.Format(localDateTimeLayout),
		"local_date":     local.Format(hotel.DateLayout),
		"timezone":       local.Location().String(),
		"check_in_time":  cfg.CheckInTime,
		"check_out_time": cfg.CheckOutTime,
		"currency":       cfg.Currency,
		"guest_name":     in.Guest.Name,
		"history":        HistoryMessages(in.History),
		"inbound":        []*schema.Message{schema.UserMessage(in.Inbound)},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: format context: %v", contractx.ErrValidation, err)
	}
	return msgs, nil
}

// HistoryMessages maps stored turns to chat roles, dropping empty ones.
func HistoryMessages(history []hotel.Message) []*schema.Message {
	return lo.FilterMap(history, func(m hotel.Message, _ int) (*schema.Message, bool) {
		content := strings.TrimSpace(m.Content)
		if content == "" {
			return nil, false
		}
		switch m.Direction {
		case hotel.Inbound:
			return schema.UserMessage(content), true
		case hotel.Outbound:
			return schema.AssistantMessage(content, nil), true
		default:
			return nil, false
		}
	})
}
