package storage

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/tanpawarit/luna-hotel-concierge/hotel"
)

type MessageRepository struct {
	db bun.IDB
}

func NewMessageRepository(db bun.IDB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Insert(ctx context.Context, msg *hotel.Message) error {
	if msg.ID == "" {
		msg.ID = newID()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = nowUTC()
	}
	if _, err := r.db.NewInsert().Model(msg).Exec(ctx); err != nil {
		return fmt.Errorf("insert message guest=%s: %w", msg.GuestID, err)
	}
	return nil
}

func (r *MessageRepository) Latest(ctx context.Context, guestID string, limit int) ([]hotel.Message, error) {
	if limit <= 0 {
		return nil, nil
	}

	var rows []hotel.Message
	if err := r.db.NewSelect().
		Model(&rows).
		Where("guest_id = ?", guestID).
		OrderExpr("created_at DESC").
		Limit(limit).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("select messages guest=%s: %w", guestID, err)
	}
	return rows, nil
}
