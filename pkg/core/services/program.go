package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jkoskela/nakkikone/pkg/core/model"
	"github.com/jkoskela/nakkikone/pkg/db"
)

// ConfigureParams carries the configuration of a volunteer program.
type ConfigureParams struct {
	EventID                string
	Enabled                bool
	InfoText               model.LocalizedText
	ShowLinkInEvent        bool
	RequireDifferentTimes  bool
	RequiredForReservation bool
	AdminIDs               []string
}

// ConfigureProgram creates the volunteer program of an event, or
// updates its configuration if one already exists. An event has exactly
// one program, so repeated calls for the same event reconfigure the
// existing aggregate instead of creating a second one.
func ConfigureProgram(ctx context.Context, store db.Store, logger *zap.Logger, params ConfigureParams) (*model.Program, error) {
	if params.EventID == "" {
		return nil, fmt.Errorf("event id must not be empty")
	}

	existing, err := store.GetProgramByEvent(ctx, params.EventID)
	if err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("failed to look up program for event %s: %w", params.EventID, err)
	}

	if existing != nil {
		existing.Enabled = params.Enabled
		existing.InfoText = params.InfoText
		existing.ShowLinkInEvent = params.ShowLinkInEvent
		existing.RequireDifferentTimes = params.RequireDifferentTimes
		existing.RequiredForReservation = params.RequiredForReservation
		existing.AdminIDs = params.AdminIDs

		if err := store.UpdateProgram(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to update program: %w", err)
		}

		logger.Info("Program reconfigured",
			zap.String("program_id", existing.ID),
			zap.String("event_id", existing.EventID),
			zap.Bool("enabled", existing.Enabled))
		return existing, nil
	}

	program := &model.Program{
		ID:                     uuid.New().String(),
		EventID:                params.EventID,
		Enabled:                params.Enabled,
		InfoText:               params.InfoText,
		ShowLinkInEvent:        params.ShowLinkInEvent,
		RequireDifferentTimes:  params.RequireDifferentTimes,
		RequiredForReservation: params.RequiredForReservation,
		AdminIDs:               params.AdminIDs,
		CreatedAt:              time.Now(),
	}

	if err := store.InsertProgram(ctx, program); err != nil {
		return nil, fmt.Errorf("failed to insert program: %w", err)
	}

	logger.Info("Program created",
		zap.String("program_id", program.ID),
		zap.String("event_id", program.EventID),
		zap.Bool("enabled", program.Enabled),
		zap.Int("admins", len(program.AdminIDs)))

	return program, nil
}

// SetEnabled toggles whether the program is open at all.
func SetEnabled(ctx context.Context, store db.Store, logger *zap.Logger, programID string, enabled bool) error {
	return updateProgram(ctx, store, logger, programID, "enabled", func(p *model.Program) {
		p.Enabled = enabled
	})
}

// SetRequireDifferentTimes toggles the no-overlap-per-volunteer policy.
// Turning the policy on does not retroactively validate bookings made
// while it was off; it is only consulted on subsequent Book calls.
func SetRequireDifferentTimes(ctx context.Context, store db.Store, logger *zap.Logger, programID string, value bool) error {
	return updateProgram(ctx, store, logger, programID, "require_different_times", func(p *model.Program) {
		p.RequireDifferentTimes = value
	})
}

// SetRequiredForReservation toggles whether ticket reservation is gated
// on holding a booking in this program.
func SetRequiredForReservation(ctx context.Context, store db.Store, logger *zap.Logger, programID string, value bool) error {
	return updateProgram(ctx, store, logger, programID, "required_for_reservation", func(p *model.Program) {
		p.RequiredForReservation = value
	})
}

// AddAdmin adds a volunteer to the program's responsible-admin set.
func AddAdmin(ctx context.Context, store db.Store, logger *zap.Logger, programID, volunteerID string) error {
	return updateProgram(ctx, store, logger, programID, "admins", func(p *model.Program) {
		if !p.IsAdmin(volunteerID) {
			p.AdminIDs = append(p.AdminIDs, volunteerID)
		}
	})
}

// RemoveAdmin removes a volunteer from the program's admin set.
func RemoveAdmin(ctx context.Context, store db.Store, logger *zap.Logger, programID, volunteerID string) error {
	return updateProgram(ctx, store, logger, programID, "admins", func(p *model.Program) {
		admins := p.AdminIDs[:0]
		for _, id := range p.AdminIDs {
			if id != volunteerID {
				admins = append(admins, id)
			}
		}
		p.AdminIDs = admins
	})
}

// DeleteProgram removes a program together with all of its shifts and
// bookings.
func DeleteProgram(ctx context.Context, store db.Store, logger *zap.Logger, programID string) error {
	if err := store.DeleteProgram(ctx, programID); err != nil {
		if isNotFound(err) {
			return model.ErrProgramNotFound
		}
		return fmt.Errorf("failed to delete program: %w", err)
	}
	logger.Info("Program deleted", zap.String("program_id", programID))
	return nil
}

func updateProgram(ctx context.Context, store db.Store, logger *zap.Logger, programID, field string, apply func(*model.Program)) error {
	program, err := store.GetProgram(ctx, programID)
	if err != nil {
		if isNotFound(err) {
			return model.ErrProgramNotFound
		}
		return fmt.Errorf("failed to load program: %w", err)
	}

	apply(program)

	if err := store.UpdateProgram(ctx, program); err != nil {
		return fmt.Errorf("failed to update program: %w", err)
	}

	logger.Info("Program updated",
		zap.String("program_id", programID),
		zap.String("field", field))
	return nil
}
