package storage

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/tanpawarit/luna-hotel-concierge/hotel"
)

// CreateSchema creates the hotel tables and their indexes when missing.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	tables := []struct {
		model       any
		foreignKeys []string
	}{
		{model: (*hotel.Guest)(nil)},
		{model: (*hotel.Room)(nil)},
		{model: (*hotel.HotelConfig)(nil)},
		{
			model: (*hotel.Reservation)(nil),
			foreignKeys: []string{
				`("guest_id") REFERENCES "guests" ("id") ON DELETE CASCADE`,
				`("room_id") REFERENCES "rooms" ("id") ON DELETE CASCADE`,
			},
		},
		{
			model: (*hotel.Message)(nil),
			foreignKeys: []string{
				`("guest_id") REFERENCES "guests" ("id") ON DELETE CASCADE`,
			},
		},
	}

	for _, table := range tables {
		q := db.NewCreateTable().Model(table.model).IfNotExists()
		for _, fk := range table.foreignKeys {
			q = q.ForeignKey(fk)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("create table %T: %w", table.model, err)
		}
	}

	indexes := []struct {
		model   any
		name    string
		columns []string
	}{
		{model: (*hotel.Message)(nil), name: "messages_guest_created_idx", columns: []string{"guest_id", "created_at"}},
		{model: (*hotel.Reservation)(nil), name: "reservations_check_in_idx", columns: []string{"check_in_date", "status", "reminder_sent"}},
		{model: (*hotel.Reservation)(nil), name: "reservations_room_idx", columns: []string{"room_id"}},
	}
	for _, idx := range indexes {
		if _, err := db.NewCreateIndex().
			Model(idx.model).
			Index(idx.name).
			Column(idx.columns...).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("create index %s: %w", idx.name, err)
		}
	}
	return nil
}
