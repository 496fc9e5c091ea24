package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jkoskela/nakkikone/pkg/core/model"
)

// InsertProgram inserts a new volunteer program record
func (d *DB) InsertProgram(ctx context.Context, program *model.Program) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO volunteer_program (
			id, event_id, enabled, info_text_fi, info_text_en,
			show_link_in_event, require_different_times, required_for_reservation,
			admin_ids, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, program.ID, program.EventID, program.Enabled,
		program.InfoText.FI, program.InfoText.EN,
		program.ShowLinkInEvent, program.RequireDifferentTimes, program.RequiredForReservation,
		program.AdminIDs, program.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert program: %w", err)
	}
	return nil
}

// GetProgram retrieves a volunteer program by id
func (d *DB) GetProgram(ctx context.Context, id string) (*model.Program, error) {
	return d.getProgram(ctx, `WHERE id = $1`, id)
}

// GetProgramByEvent retrieves the volunteer program of an event
func (d *DB) GetProgramByEvent(ctx context.Context, eventID string) (*model.Program, error) {
	return d.getProgram(ctx, `WHERE event_id = $1`, eventID)
}

func (d *DB) getProgram(ctx context.Context, where string, arg any) (*model.Program, error) {
	var p model.Program
	err := d.pool.QueryRow(ctx, `
		SELECT id, event_id, enabled, info_text_fi, info_text_en,
		       show_link_in_event, require_different_times, required_for_reservation,
		       admin_ids, created_at
		FROM volunteer_program `+where,
		arg,
	).Scan(&p.ID, &p.EventID, &p.Enabled, &p.InfoText.FI, &p.InfoText.EN,
		&p.ShowLinkInEvent, &p.RequireDifferentTimes, &p.RequiredForReservation,
		&p.AdminIDs, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrProgramNotFound
		}
		return nil, fmt.Errorf("failed to query program: %w", err)
	}
	return &p, nil
}

// UpdateProgram updates a program's configuration fields
func (d *DB) UpdateProgram(ctx context.Context, program *model.Program) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE volunteer_program
		SET enabled = $2, info_text_fi = $3, info_text_en = $4,
		    show_link_in_event = $5, require_different_times = $6,
		    required_for_reservation = $7, admin_ids = $8
		WHERE id = $1
	`, program.ID, program.Enabled, program.InfoText.FI, program.InfoText.EN,
		program.ShowLinkInEvent, program.RequireDifferentTimes,
		program.RequiredForReservation, program.AdminIDs)
	if err != nil {
		return fmt.Errorf("failed to update program: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProgramNotFound
	}
	return nil
}

// DeleteProgram removes a program; shifts and bookings cascade in the
// schema
func (d *DB) DeleteProgram(ctx context.Context, id string) error {
	tag, err := d.pool.Exec(ctx, `DELETE FROM volunteer_program WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete program: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProgramNotFound
	}
	return nil
}
