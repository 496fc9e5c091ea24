package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jkoskela/nakkikone/pkg/core/model"
)

// InsertShifts inserts shift records in a batch within one transaction
func (d *DB) InsertShifts(ctx context.Context, shifts []model.Shift) error {
	if len(shifts) == 0 {
		return nil
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, s := range shifts {
		var responsibleID, chatChannel *string
		if s.ResponsibleID != "" {
			responsibleID = &s.ResponsibleID
		}
		if s.ChatChannel != "" {
			chatChannel = &s.ChatChannel
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO shift (
				id, program_id, task_type_id, start_time, end_time,
				interval_seconds, responsible_id, chat_channel, bookings_disabled
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, s.ID, s.ProgramID, s.TaskTypeID, s.Start.UTC(), s.End.UTC(),
			int64(s.Interval/time.Second), responsibleID, chatChannel, s.BookingsDisabled)
		if err != nil {
			return fmt.Errorf("failed to insert shift: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetShift retrieves a shift by id
func (d *DB) GetShift(ctx context.Context, id string) (*model.Shift, error) {
	row := d.pool.QueryRow(ctx, `
		SELECT id, program_id, task_type_id, start_time, end_time,
		       interval_seconds, responsible_id, chat_channel, bookings_disabled
		FROM shift
		WHERE id = $1
	`, id)

	shift, err := scanShift(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrShiftNotFound
		}
		return nil, fmt.Errorf("failed to query shift: %w", err)
	}
	return shift, nil
}

// GetShiftsByProgram retrieves the shifts of a program ordered by start
// time
func (d *DB) GetShiftsByProgram(ctx context.Context, programID string) ([]model.Shift, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, program_id, task_type_id, start_time, end_time,
		       interval_seconds, responsible_id, chat_channel, bookings_disabled
		FROM shift
		WHERE program_id = $1
		ORDER BY start_time, id
	`, programID)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()

	var shifts []model.Shift
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		shifts = append(shifts, *shift)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shifts: %w", err)
	}

	return shifts, nil
}

// UpdateShift updates a shift definition
func (d *DB) UpdateShift(ctx context.Context, shift *model.Shift) error {
	var responsibleID, chatChannel *string
	if shift.ResponsibleID != "" {
		responsibleID = &shift.ResponsibleID
	}
	if shift.ChatChannel != "" {
		chatChannel = &shift.ChatChannel
	}

	tag, err := d.pool.Exec(ctx, `
		UPDATE shift
		SET task_type_id = $2, start_time = $3, end_time = $4,
		    interval_seconds = $5, responsible_id = $6, chat_channel = $7,
		    bookings_disabled = $8
		WHERE id = $1
	`, shift.ID, shift.TaskTypeID, shift.Start.UTC(), shift.End.UTC(),
		int64(shift.Interval/time.Second), responsibleID, chatChannel, shift.BookingsDisabled)
	if err != nil {
		return fmt.Errorf("failed to update shift: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrShiftNotFound
	}
	return nil
}

// DeleteShift removes a shift; its bookings cascade in the schema
func (d *DB) DeleteShift(ctx context.Context, id string) error {
	tag, err := d.pool.Exec(ctx, `DELETE FROM shift WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete shift: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrShiftNotFound
	}
	return nil
}

func scanShift(row pgx.Row) (*model.Shift, error) {
	var s model.Shift
	var intervalSeconds int64
	var responsibleID, chatChannel *string
	err := row.Scan(&s.ID, &s.ProgramID, &s.TaskTypeID, &s.Start, &s.End,
		&intervalSeconds, &responsibleID, &chatChannel, &s.BookingsDisabled)
	if err != nil {
		return nil, err
	}
	s.Interval = time.Duration(intervalSeconds) * time.Second
	if responsibleID != nil {
		s.ResponsibleID = *responsibleID
	}
	if chatChannel != nil {
		s.ChatChannel = *chatChannel
	}
	return &s, nil
}
