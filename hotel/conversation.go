package hotel

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Conversation is the append-only turn log of every guest thread.
type Conversation struct {
	messages MessageRepository
	now      func() time.Time
}

func NewConversation(messages MessageRepository) *Conversation {
	return &Conversation{messages: messages, now: time.Now}
}

// Append inserts one turn. phone is the channel address at send time.
func (c *Conversation) Append(ctx context.Context, guestID string, dir Direction, content string, phone string) (Message, error) {
	if strings.TrimSpace(guestID) == "" {
		return Message{}, fmt.Errorf("append message: guest id is empty")
	}
	if dir != Inbound && dir != Outbound {
		return Message{}, fmt.Errorf("append message: invalid direction %q", dir)
	}

	msg := Message{
		GuestID:     guestID,
		PhoneNumber: phone,
		Direction:   dir,
		Content:     content,
		CreatedAt:   c.now().UTC(),
	}
	if err := c.messages.Insert(ctx, &msg); err != nil {
		return Message{}, fmt.Errorf("append %s message guest=%s: %w", dir, guestID, err)
	}
	return msg, nil
}

// RecentHistory returns at most limit of the newest turns, oldest first.
func (c *Conversation) RecentHistory(ctx context.Context, guestID string, limit int) ([]Message, error) {
	if limit <= 0 {
		return nil, nil
	}

	latest, err := c.messages.Latest(ctx, guestID, limit)
	if err != nil {
		return nil, fmt.Errorf("load history guest=%s: %w", guestID, err)
	}
	if len(latest) > limit {
		latest = latest[:limit]
	}

	history := slices.Clone(latest)
	slices.Reverse(history)
	slices.SortStableFunc(history, func(a, b Message) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return history, nil
}
