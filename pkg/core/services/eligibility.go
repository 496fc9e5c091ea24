package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jkoskela/nakkikone/pkg/core/model"
	"github.com/jkoskela/nakkikone/pkg/db"
)

// MemberHasQualifyingBooking tells an external privilege (ticket
// reservation) whether the volunteer clears the program's gate. When
// the program does not require a booking for reservation the gate is
// open for everyone and no booking lookup happens at all; otherwise the
// volunteer qualifies iff they hold at least one booking in the
// program.
func MemberHasQualifyingBooking(ctx context.Context, store db.Store, logger *zap.Logger, programID, volunteerID string) (bool, error) {
	program, err := store.GetProgram(ctx, programID)
	if err != nil {
		if isNotFound(err) {
			return false, model.ErrProgramNotFound
		}
		return false, fmt.Errorf("failed to load program: %w", err)
	}

	if !program.RequiredForReservation {
		return true, nil
	}

	bookings, err := store.GetBookingsForVolunteer(ctx, programID, volunteerID)
	if err != nil {
		return false, fmt.Errorf("failed to load bookings: %w", err)
	}

	qualifies := len(bookings) > 0
	logger.Debug("Eligibility checked",
		zap.String("program_id", programID),
		zap.String("volunteer_id", volunteerID),
		zap.Bool("qualifies", qualifies))

	return qualifies, nil
}
