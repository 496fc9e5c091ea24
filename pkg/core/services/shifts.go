package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/jkoskela/nakkikone/pkg/core/model"
	"github.com/jkoskela/nakkikone/pkg/core/slots"
	"github.com/jkoskela/nakkikone/pkg/db"
)

// maxRecurringShifts bounds how many shifts one recurrence rule may
// expand into, so an open-ended rule cannot flood a program.
const maxRecurringShifts = 100

// AddShiftParams carries an organizer's shift definition.
type AddShiftParams struct {
	ProgramID     string
	TaskTypeID    string
	Start         time.Time
	End           time.Time
	Interval      time.Duration
	ResponsibleID string // optional
	ChatChannel   string // optional
}

// AddShift adds one shift to a program's catalog. The shift invariant
// (interval > 0, end > start) is enforced here so that slot generation
// never has to deal with an invalid definition.
func AddShift(ctx context.Context, store db.Store, catalog TaskTypeCatalog, logger *zap.Logger, params AddShiftParams) (*model.Shift, error) {
	shift, err := buildShift(ctx, store, catalog, params)
	if err != nil {
		return nil, err
	}

	if err := store.InsertShifts(ctx, []model.Shift{*shift}); err != nil {
		return nil, fmt.Errorf("failed to insert shift: %w", err)
	}

	logger.Info("Shift added",
		zap.String("shift_id", shift.ID),
		zap.String("program_id", shift.ProgramID),
		zap.String("task_type_id", shift.TaskTypeID),
		zap.Time("start", shift.Start),
		zap.Time("end", shift.End),
		zap.Duration("interval", shift.Interval))

	return shift, nil
}

// RecurringShiftParams describes one task repeated across several days
// of an event, for example an info desk shift every con day.
type RecurringShiftParams struct {
	ProgramID     string
	TaskTypeID    string
	Recurrence    string    // RRULE string; one occurrence per shift
	FirstStart    time.Time // start of the first occurrence
	Span          time.Duration
	Interval      time.Duration
	ResponsibleID string
	ChatChannel   string
}

// AddRecurringShifts expands a recurrence rule into one shift per
// occurrence and adds them all in one batch. Occurrences are taken from
// a one-year window starting at FirstStart.
func AddRecurringShifts(ctx context.Context, store db.Store, catalog TaskTypeCatalog, logger *zap.Logger, params RecurringShiftParams) ([]model.Shift, error) {
	rule, err := rrule.StrToRRule(params.Recurrence)
	if err != nil {
		return nil, fmt.Errorf("invalid recurrence rule: %w", err)
	}
	rule.DTStart(params.FirstStart)

	occurrences := rule.Between(params.FirstStart, params.FirstStart.AddDate(1, 0, 0), true)
	if len(occurrences) == 0 {
		return nil, fmt.Errorf("recurrence rule yields no occurrences")
	}
	if len(occurrences) > maxRecurringShifts {
		return nil, fmt.Errorf("recurrence rule yields %d occurrences, limit is %d", len(occurrences), maxRecurringShifts)
	}

	shifts := make([]model.Shift, 0, len(occurrences))
	for _, occurrence := range occurrences {
		shift, err := buildShift(ctx, store, catalog, AddShiftParams{
			ProgramID:     params.ProgramID,
			TaskTypeID:    params.TaskTypeID,
			Start:         occurrence,
			End:           occurrence.Add(params.Span),
			Interval:      params.Interval,
			ResponsibleID: params.ResponsibleID,
			ChatChannel:   params.ChatChannel,
		})
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, *shift)
	}

	if err := store.InsertShifts(ctx, shifts); err != nil {
		return nil, fmt.Errorf("failed to insert recurring shifts: %w", err)
	}

	logger.Info("Recurring shifts added",
		zap.String("program_id", params.ProgramID),
		zap.String("task_type_id", params.TaskTypeID),
		zap.Int("count", len(shifts)))

	return shifts, nil
}

// buildShift validates a shift definition against the program, the task
// type catalog and the shift invariant, and assigns it an id.
func buildShift(ctx context.Context, store db.Store, catalog TaskTypeCatalog, params AddShiftParams) (*model.Shift, error) {
	if _, err := store.GetProgram(ctx, params.ProgramID); err != nil {
		if isNotFound(err) {
			return nil, model.ErrProgramNotFound
		}
		return nil, fmt.Errorf("failed to load program: %w", err)
	}

	if _, err := catalog.GetTaskType(ctx, params.TaskTypeID); err != nil {
		return nil, fmt.Errorf("unknown task type %s: %w", params.TaskTypeID, err)
	}

	if params.Interval <= 0 {
		return nil, fmt.Errorf("shift interval must be positive, got %s", params.Interval)
	}
	if !params.End.After(params.Start) {
		return nil, fmt.Errorf("shift end %s must be after start %s", params.End, params.Start)
	}

	return &model.Shift{
		ID:            uuid.New().String(),
		ProgramID:     params.ProgramID,
		TaskTypeID:    params.TaskTypeID,
		Start:         params.Start,
		End:           params.End,
		Interval:      params.Interval,
		ResponsibleID: params.ResponsibleID,
		ChatChannel:   params.ChatChannel,
	}, nil
}

// RemoveShift deletes a shift and all bookings made on it.
func RemoveShift(ctx context.Context, store db.Store, logger *zap.Logger, shiftID string) error {
	if err := store.DeleteShift(ctx, shiftID); err != nil {
		if isNotFound(err) {
			return model.ErrShiftNotFound
		}
		return fmt.Errorf("failed to delete shift: %w", err)
	}
	logger.Info("Shift removed", zap.String("shift_id", shiftID))
	return nil
}

// UpdateShiftTimes re-times a shift. Slot identities are derived from
// the shift, so bookings whose slot start no longer aligns with the new
// timing are dropped together with the update.
func UpdateShiftTimes(ctx context.Context, store db.Store, logger *zap.Logger, shiftID string, start, end time.Time, interval time.Duration) (*model.Shift, error) {
	shift, err := store.GetShift(ctx, shiftID)
	if err != nil {
		if isNotFound(err) {
			return nil, model.ErrShiftNotFound
		}
		return nil, fmt.Errorf("failed to load shift: %w", err)
	}

	if interval <= 0 {
		return nil, fmt.Errorf("shift interval must be positive, got %s", interval)
	}
	if !end.After(start) {
		return nil, fmt.Errorf("shift end %s must be after start %s", end, start)
	}

	shift.Start = start
	shift.End = end
	shift.Interval = interval

	if err := store.UpdateShift(ctx, shift); err != nil {
		return nil, fmt.Errorf("failed to update shift: %w", err)
	}

	// The sweep below is not atomic with the update: a concurrent Book
	// that validated its slot against the old timing can still land
	// after this pass. Such a straggler is misaligned with the new grid
	// and gets removed by the next re-time of the shift.
	bookings, err := store.GetBookingsByShift(ctx, shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings of shift: %w", err)
	}

	dropped := 0
	for _, booking := range bookings {
		if slots.Aligned(shift, booking.SlotStart) {
			continue
		}
		if err := store.DeleteBooking(ctx, booking.ID); err != nil && !isNotFound(err) {
			return nil, fmt.Errorf("failed to drop stale booking %s: %w", booking.ID, err)
		}
		dropped++
	}

	logger.Info("Shift re-timed",
		zap.String("shift_id", shiftID),
		zap.Time("start", start),
		zap.Time("end", end),
		zap.Duration("interval", interval),
		zap.Int("stale_bookings_dropped", dropped))

	return shift, nil
}

// SetShiftResponsible reassigns the responsible volunteer of a shift.
// An empty volunteer id clears the assignment.
func SetShiftResponsible(ctx context.Context, store db.Store, logger *zap.Logger, shiftID, volunteerID string) error {
	shift, err := store.GetShift(ctx, shiftID)
	if err != nil {
		if isNotFound(err) {
			return model.ErrShiftNotFound
		}
		return fmt.Errorf("failed to load shift: %w", err)
	}

	shift.ResponsibleID = volunteerID
	if err := store.UpdateShift(ctx, shift); err != nil {
		return fmt.Errorf("failed to update shift: %w", err)
	}

	logger.Info("Shift responsible reassigned",
		zap.String("shift_id", shiftID),
		zap.String("responsible_id", volunteerID))
	return nil
}

// ShiftsManagedBy lists the shifts of a program the given volunteer can
// manage: all of them for a program admin, otherwise the ones they are
// responsible for.
func ShiftsManagedBy(ctx context.Context, store db.Store, logger *zap.Logger, programID, volunteerID string) ([]model.Shift, error) {
	program, err := store.GetProgram(ctx, programID)
	if err != nil {
		if isNotFound(err) {
			return nil, model.ErrProgramNotFound
		}
		return nil, fmt.Errorf("failed to load program: %w", err)
	}

	shifts, err := store.GetShiftsByProgram(ctx, programID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shifts: %w", err)
	}

	if program.IsAdmin(volunteerID) {
		return shifts, nil
	}

	var managed []model.Shift
	for _, shift := range shifts {
		if shift.ResponsibleID == volunteerID {
			managed = append(managed, shift)
		}
	}

	logger.Debug("Managed shifts resolved",
		zap.String("program_id", programID),
		zap.String("volunteer_id", volunteerID),
		zap.Int("count", len(managed)))

	return managed, nil
}

// AvailableSlots lists the still-unbooked slots of a shift in order.
func AvailableSlots(ctx context.Context, store db.Store, logger *zap.Logger, shiftID string) ([]model.Slot, error) {
	shift, err := store.GetShift(ctx, shiftID)
	if err != nil {
		if isNotFound(err) {
			return nil, model.ErrShiftNotFound
		}
		return nil, fmt.Errorf("failed to load shift: %w", err)
	}

	bookings, err := store.GetBookingsByShift(ctx, shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings of shift: %w", err)
	}

	taken := make(map[time.Time]bool, len(bookings))
	for _, booking := range bookings {
		taken[booking.SlotStart.UTC()] = true
	}

	var available []model.Slot
	for _, slot := range slots.Generate(shift) {
		if !taken[slot.Start.UTC()] {
			available = append(available, slot)
		}
	}

	logger.Debug("Available slots resolved",
		zap.String("shift_id", shiftID),
		zap.Int("available", len(available)),
		zap.Int("booked", len(bookings)))

	return available, nil
}
