package storage

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/tanpawarit/luna-hotel-concierge/hotel"
)

type ReservationRepository struct {
	db bun.IDB
}

func NewReservationRepository(db bun.IDB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) Insert(ctx context.Context, res *hotel.Reservation) error {
	if res.ID == "" {
		res.ID = newID()
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = nowUTC()
	}
	if res.Status == "" {
		res.Status = hotel.StatusPending
	}
	if _, err := r.db.NewInsert().
		Model(res).
		Exec(ctx); err != nil {
		return fmt.Errorf("insert reservation room=%s guest=%s: %w", res.RoomID, res.GuestID, err)
	}
	return nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id string) (hotel.Reservation, error) {
	var res hotel.Reservation
	if err := r.db.NewSelect().
		Model(&res).
		Where("reservation.id = ?", id).
		Limit(1).
		Scan(ctx); err != nil {
		return hotel.Reservation{}, wrapNotFound(err, "reservation", id)
	}
	return res, nil
}

func (r *ReservationRepository) Overlapping(ctx context.Context, roomID string, checkIn, checkOut hotel.Date) ([]hotel.Reservation, error) {
	var rows []hotel.Reservation
	if err := r.db.NewSelect().
		Model(&rows).
		Where("reservation.room_id = ?", roomID).
		Where("reservation.status != ?", hotel.StatusCancelled).
		Where("reservation.check_in_date < ?", checkOut).
		Where("reservation.check_out_date > ?", checkIn).
		OrderExpr("reservation.check_in_date ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("select overlapping reservations room=%s: %w", roomID, err)
	}
	return rows, nil
}

func (r *ReservationRepository) DueReminders(ctx context.Context, day hotel.Date) ([]hotel.Reservation, error) {
	var rows []hotel.Reservation
	if err := r.db.NewSelect().
		Model(&rows).
		Relation("Guest").
		Relation("Room").
		Where("reservation.check_in_date = ?", day).
		Where("reservation.status = ?", hotel.StatusConfirmed).
		Where("reservation.reminder_sent = ?", false).
		OrderExpr("reservation.created_at ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("select due reminders day=%s: %w", day, err)
	}
	return rows, nil
}

func (r *ReservationRepository) MarkReminderSent(ctx context.Context, id string) (bool, error) {
	res, err := r.db.NewUpdate().
		Model((*hotel.Reservation)(nil)).
		Set("reminder_sent = ?", true).
		Where("id = ?", id).
		Where("status = ?", hotel.StatusConfirmed).
		Where("reminder_sent = ?", false).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("mark reminder sent reservation=%s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark reminder sent reservation=%s: %w", id, err)
	}
	return n > 0, nil
}
