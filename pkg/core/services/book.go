package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jkoskela/nakkikone/pkg/core/model"
	"github.com/jkoskela/nakkikone/pkg/core/slots"
	"github.com/jkoskela/nakkikone/pkg/db"
)

// BookParams carries a volunteer's request to claim one slot.
type BookParams struct {
	ProgramID   string
	ShiftID     string
	SlotStart   time.Time
	VolunteerID string
	Comment     string // optional
}

// Book claims a slot for a volunteer. The preconditions are checked in
// order: the shift must exist and be open, the slot start must align
// with the shift's slot sequence, the slot must be free, and when the
// program requires different times the volunteer must hold no
// overlapping booking anywhere in the program. The occupancy and
// overlap checks run inside the store's atomic unit, so concurrent
// calls for the same slot produce exactly one winner; the rest get
// model.ErrSlotTaken (no queueing, first committer wins).
func Book(ctx context.Context, store db.Store, catalog TaskTypeCatalog, directory VolunteerDirectory, logger *zap.Logger, params BookParams) (*model.Booking, error) {
	program, err := store.GetProgram(ctx, params.ProgramID)
	if err != nil {
		if isNotFound(err) {
			return nil, model.ErrProgramNotFound
		}
		return nil, fmt.Errorf("failed to load program: %w", err)
	}

	shift, err := store.GetShift(ctx, params.ShiftID)
	if err != nil {
		if isNotFound(err) {
			return nil, model.ErrShiftNotFound
		}
		return nil, fmt.Errorf("failed to load shift: %w", err)
	}
	if shift.ProgramID != program.ID {
		return nil, model.ErrShiftNotFound
	}

	if !program.Enabled || shift.BookingsDisabled {
		return nil, model.ErrShiftNotBookable
	}

	if !slots.Aligned(shift, params.SlotStart) {
		return nil, model.ErrInvalidSlot
	}

	taskType, err := catalog.GetTaskType(ctx, shift.TaskTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up task type %s: %w", shift.TaskTypeID, err)
	}
	if taskType.ActiveOnly {
		volunteer, err := directory.GetVolunteer(ctx, params.VolunteerID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up volunteer %s: %w", params.VolunteerID, err)
		}
		if !volunteer.Active {
			return nil, model.ErrNotPermitted
		}
	}

	booking := &model.Booking{
		ID:          uuid.New().String(),
		ShiftID:     shift.ID,
		SlotStart:   params.SlotStart,
		VolunteerID: params.VolunteerID,
		Comment:     params.Comment,
		CreatedAt:   time.Now(),
	}

	slotEnd := params.SlotStart.Add(shift.Interval)
	err = store.CreateBooking(ctx, program.ID, booking, slotEnd, program.RequireDifferentTimes)
	if err != nil {
		if errors.Is(err, model.ErrSlotTaken) || errors.Is(err, model.ErrOverlappingBooking) {
			logger.Info("Booking rejected",
				zap.String("shift_id", shift.ID),
				zap.Time("slot_start", params.SlotStart),
				zap.String("volunteer_id", params.VolunteerID),
				zap.String("reason", err.Error()))
			return nil, err
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	logger.Info("Slot booked",
		zap.String("booking_id", booking.ID),
		zap.String("shift_id", shift.ID),
		zap.Time("slot_start", booking.SlotStart),
		zap.Time("slot_end", slotEnd),
		zap.String("volunteer_id", booking.VolunteerID))

	return booking, nil
}

// Cancel removes a booking. Only the booking's owner, the shift's
// responsible volunteer or a program admin may cancel it. Cancelling an
// already-absent booking returns model.ErrBookingNotFound so callers
// treating cancel as best-effort can recognize the outcome.
func Cancel(ctx context.Context, store db.Store, logger *zap.Logger, bookingID, requestedBy string) error {
	booking, err := store.GetBooking(ctx, bookingID)
	if err != nil {
		if isNotFound(err) {
			return model.ErrBookingNotFound
		}
		return fmt.Errorf("failed to load booking: %w", err)
	}

	if booking.VolunteerID != requestedBy {
		allowed, err := canManageShift(ctx, store, booking.ShiftID, requestedBy)
		if err != nil {
			return err
		}
		if !allowed {
			return model.ErrNotPermitted
		}
	}

	if err := store.DeleteBooking(ctx, bookingID); err != nil {
		if isNotFound(err) {
			// Lost a race against another cancel; the booking is gone
			// either way.
			return model.ErrBookingNotFound
		}
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	logger.Info("Booking cancelled",
		zap.String("booking_id", bookingID),
		zap.String("shift_id", booking.ShiftID),
		zap.Time("slot_start", booking.SlotStart),
		zap.String("requested_by", requestedBy))

	return nil
}

// canManageShift reports whether the volunteer is the shift's
// responsible or an admin of the owning program.
func canManageShift(ctx context.Context, store db.Store, shiftID, volunteerID string) (bool, error) {
	shift, err := store.GetShift(ctx, shiftID)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load shift: %w", err)
	}
	if shift.ResponsibleID != "" && shift.ResponsibleID == volunteerID {
		return true, nil
	}

	program, err := store.GetProgram(ctx, shift.ProgramID)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load program: %w", err)
	}
	return program.IsAdmin(volunteerID), nil
}
