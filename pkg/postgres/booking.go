package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jkoskela/nakkikone/pkg/core/model"
)

// uniqueViolation is the PostgreSQL error code raised when an insert
// hits the booking_slot_occupancy constraint.
const uniqueViolation = "23505"

// CreateBooking records a claim on one slot. The whole check-and-insert
// runs in one transaction serialized per program by a row lock, so the
// overlap check always sees a consistent snapshot of the volunteer's
// other bookings. The unique constraint on (shift_id, slot_start)
// backstops the occupancy check: of concurrent inserts for the same
// slot exactly one commits, the rest surface model.ErrSlotTaken.
func (d *DB) CreateBooking(ctx context.Context, programID string, booking *model.Booking, slotEnd time.Time, requireDifferentTimes bool) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Serialize concurrent bookings of the same program.
	var lockedID string
	err = tx.QueryRow(ctx, `
		SELECT id FROM volunteer_program WHERE id = $1 FOR UPDATE
	`, programID).Scan(&lockedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrProgramNotFound
		}
		return fmt.Errorf("failed to lock program row: %w", err)
	}

	var occupied int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM booking WHERE shift_id = $1 AND slot_start = $2
	`, booking.ShiftID, booking.SlotStart.UTC()).Scan(&occupied)
	if err != nil {
		return fmt.Errorf("failed to check slot occupancy: %w", err)
	}
	if occupied > 0 {
		return model.ErrSlotTaken
	}

	if requireDifferentTimes {
		var overlapping int
		err = tx.QueryRow(ctx, `
			SELECT COUNT(*)
			FROM booking b
			JOIN shift s ON b.shift_id = s.id
			WHERE s.program_id = $1
			  AND b.volunteer_id = $2
			  AND b.slot_start < $4
			  AND b.slot_start + make_interval(secs => s.interval_seconds) > $3
		`, programID, booking.VolunteerID, booking.SlotStart.UTC(), slotEnd.UTC()).Scan(&overlapping)
		if err != nil {
			return fmt.Errorf("failed to check overlapping bookings: %w", err)
		}
		if overlapping > 0 {
			return model.ErrOverlappingBooking
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO booking (id, shift_id, slot_start, volunteer_id, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, booking.ID, booking.ShiftID, booking.SlotStart.UTC(),
		booking.VolunteerID, booking.Comment, booking.CreatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.ErrSlotTaken
		}
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetBooking retrieves a booking by id
func (d *DB) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	var b model.Booking
	err := d.pool.QueryRow(ctx, `
		SELECT id, shift_id, slot_start, volunteer_id, comment, created_at
		FROM booking
		WHERE id = $1
	`, id).Scan(&b.ID, &b.ShiftID, &b.SlotStart, &b.VolunteerID, &b.Comment, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to query booking: %w", err)
	}
	return &b, nil
}

// DeleteBooking removes a booking, reporting whether it existed
func (d *DB) DeleteBooking(ctx context.Context, id string) error {
	tag, err := d.pool.Exec(ctx, `DELETE FROM booking WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookingNotFound
	}
	return nil
}

// GetBookingsByShift retrieves the bookings of one shift ordered by
// slot start
func (d *DB) GetBookingsByShift(ctx context.Context, shiftID string) ([]model.Booking, error) {
	return d.queryBookings(ctx, `
		SELECT id, shift_id, slot_start, volunteer_id, comment, created_at
		FROM booking
		WHERE shift_id = $1
		ORDER BY slot_start, id
	`, shiftID)
}

// GetBookingsByProgram retrieves every booking under a program's shifts
func (d *DB) GetBookingsByProgram(ctx context.Context, programID string) ([]model.Booking, error) {
	return d.queryBookings(ctx, `
		SELECT b.id, b.shift_id, b.slot_start, b.volunteer_id, b.comment, b.created_at
		FROM booking b
		JOIN shift s ON b.shift_id = s.id
		WHERE s.program_id = $1
		ORDER BY b.slot_start, b.id
	`, programID)
}

// GetBookingsForVolunteer retrieves a volunteer's bookings across a
// program
func (d *DB) GetBookingsForVolunteer(ctx context.Context, programID, volunteerID string) ([]model.Booking, error) {
	return d.queryBookings(ctx, `
		SELECT b.id, b.shift_id, b.slot_start, b.volunteer_id, b.comment, b.created_at
		FROM booking b
		JOIN shift s ON b.shift_id = s.id
		WHERE s.program_id = $1 AND b.volunteer_id = $2
		ORDER BY b.slot_start, b.id
	`, programID, volunteerID)
}

func (d *DB) queryBookings(ctx context.Context, query string, args ...any) ([]model.Booking, error) {
	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.ShiftID, &b.SlotStart, &b.VolunteerID, &b.Comment, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookings: %w", err)
	}

	return bookings, nil
}
