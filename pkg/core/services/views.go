package services

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/jkoskela/nakkikone/pkg/core/model"
	"github.com/jkoskela/nakkikone/pkg/core/slots"
	"github.com/jkoskela/nakkikone/pkg/db"
)

// OccupancySlot is one slot of a shift together with who holds it, if
// anyone.
type OccupancySlot struct {
	Slot          model.Slot
	BookingID     string // empty when the slot is free
	VolunteerID   string
	VolunteerName string
	Comment       string
}

// Occupancy renders the full slot sequence of a shift with current
// holders, for availability views. Volunteer names are resolved through
// the directory; an unresolvable id leaves the name empty rather than
// failing the whole view.
func Occupancy(ctx context.Context, store db.Store, directory VolunteerDirectory, logger *zap.Logger, shiftID string) ([]OccupancySlot, error) {
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

	byStart := make(map[int64]model.Booking, len(bookings))
	for _, booking := range bookings {
		byStart[booking.SlotStart.Unix()] = booking
	}

	generated := slots.Generate(shift)
	view := make([]OccupancySlot, 0, len(generated))
	for _, slot := range generated {
		entry := OccupancySlot{Slot: slot}
		if booking, ok := byStart[slot.Start.Unix()]; ok {
			entry.BookingID = booking.ID
			entry.VolunteerID = booking.VolunteerID
			entry.Comment = booking.Comment
			if volunteer, err := directory.GetVolunteer(ctx, booking.VolunteerID); err == nil {
				entry.VolunteerName = volunteer.Name
			}
		}
		view = append(view, entry)
	}

	logger.Debug("Occupancy resolved",
		zap.String("shift_id", shiftID),
		zap.Int("slots", len(view)),
		zap.Int("booked", len(bookings)))

	return view, nil
}

// BookingsOf lists a volunteer's bookings across the whole program.
func BookingsOf(ctx context.Context, store db.Store, logger *zap.Logger, programID, volunteerID string) ([]model.Booking, error) {
	if _, err := store.GetProgram(ctx, programID); err != nil {
		if isNotFound(err) {
			return nil, model.ErrProgramNotFound
		}
		return nil, fmt.Errorf("failed to load program: %w", err)
	}

	bookings, err := store.GetBookingsForVolunteer(ctx, programID, volunteerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}
	return bookings, nil
}

// BookingsVisibleTo lists the program's bookings the given volunteer
// may see as an organizer: every booking for a program admin, the
// bookings of their own shifts for a responsible volunteer, nothing for
// anyone else.
func BookingsVisibleTo(ctx context.Context, store db.Store, logger *zap.Logger, programID, volunteerID string) ([]model.Booking, error) {
	program, err := store.GetProgram(ctx, programID)
	if err != nil {
		if isNotFound(err) {
			return nil, model.ErrProgramNotFound
		}
		return nil, fmt.Errorf("failed to load program: %w", err)
	}

	if program.IsAdmin(volunteerID) {
		bookings, err := store.GetBookingsByProgram(ctx, programID)
		if err != nil {
			return nil, fmt.Errorf("failed to load bookings: %w", err)
		}
		return bookings, nil
	}

	shifts, err := store.GetShiftsByProgram(ctx, programID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shifts: %w", err)
	}

	var visible []model.Booking
	for _, shift := range shifts {
		if shift.ResponsibleID != volunteerID {
			continue
		}
		bookings, err := store.GetBookingsByShift(ctx, shift.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load bookings of shift %s: %w", shift.ID, err)
		}
		visible = append(visible, bookings...)
	}

	logger.Debug("Visible bookings resolved",
		zap.String("program_id", programID),
		zap.String("volunteer_id", volunteerID),
		zap.Int("count", len(visible)))

	return visible, nil
}

// ResponsibleEntry maps one task-type label to the volunteers
// responsible for its shifts.
type ResponsibleEntry struct {
	TaskTypeID string
	TaskLabel  string
	Names      []string
}

// AllResponsibles groups the responsible volunteers of a program's
// shifts by task type, with labels rendered in the requested locale.
// Entries are sorted by label for stable display.
func AllResponsibles(ctx context.Context, store db.Store, catalog TaskTypeCatalog, directory VolunteerDirectory, logger *zap.Logger, programID string, locale model.Locale) ([]ResponsibleEntry, error) {
	if _, err := store.GetProgram(ctx, programID); err != nil {
		if isNotFound(err) {
			return nil, model.ErrProgramNotFound
		}
		return nil, fmt.Errorf("failed to load program: %w", err)
	}

	shifts, err := store.GetShiftsByProgram(ctx, programID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shifts: %w", err)
	}

	namesByTask := make(map[string][]string)
	seen := make(map[string]map[string]bool)
	for _, shift := range shifts {
		if shift.ResponsibleID == "" {
			continue
		}
		if seen[shift.TaskTypeID] == nil {
			seen[shift.TaskTypeID] = make(map[string]bool)
		}
		if seen[shift.TaskTypeID][shift.ResponsibleID] {
			continue
		}
		seen[shift.TaskTypeID][shift.ResponsibleID] = true

		name := shift.ResponsibleID
		if volunteer, err := directory.GetVolunteer(ctx, shift.ResponsibleID); err == nil {
			name = volunteer.Name
		}
		namesByTask[shift.TaskTypeID] = append(namesByTask[shift.TaskTypeID], name)
	}

	entries := make([]ResponsibleEntry, 0, len(namesByTask))
	for taskTypeID, names := range namesByTask {
		label := taskTypeID
		if taskType, err := catalog.GetTaskType(ctx, taskTypeID); err == nil {
			label = taskType.Name.In(locale)
		}
		sort.Strings(names)
		entries = append(entries, ResponsibleEntry{
			TaskTypeID: taskTypeID,
			TaskLabel:  label,
			Names:      names,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].TaskLabel < entries[j].TaskLabel
	})

	logger.Debug("Responsibles resolved",
		zap.String("program_id", programID),
		zap.Int("task_types", len(entries)))

	return entries, nil
}
