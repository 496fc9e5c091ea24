package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkoskela/nakkikone/pkg/core/model"
)

func TestAddShift_Validation(t *testing.T) {
	f := newFixture()
	program := f.addProgram(t, ConfigureParams{Enabled: true})

	tests := []struct {
		name   string
		mutate func(*AddShiftParams)
	}{
		{"zero interval", func(p *AddShiftParams) { p.Interval = 0 }},
		{"negative interval", func(p *AddShiftParams) { p.Interval = -time.Hour }},
		{"end before start", func(p *AddShiftParams) { p.End = p.Start.Add(-time.Hour) }},
		{"end equals start", func(p *AddShiftParams) { p.End = p.Start }},
		{"unknown task type", func(p *AddShiftParams) { p.TaskTypeID = "nope" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := eveningShift(program.ID)
			tt.mutate(&params)
			_, err := AddShift(context.Background(), f.store, f.catalog, f.logger, params)
			assert.Error(t, err)
		})
	}

	params := eveningShift(program.ID)
	params.ProgramID = "missing"
	_, err := AddShift(context.Background(), f.store, f.catalog, f.logger, params)
	assert.ErrorIs(t, err, model.ErrProgramNotFound)
}

func TestAddRecurringShifts_ExpandsRule(t *testing.T) {
	f := newFixture()
	program := f.addProgram(t, ConfigureParams{Enabled: true})

	firstStart := time.Date(2026, 9, 4, 10, 0, 0, 0, time.UTC)
	shifts, err := AddRecurringShifts(context.Background(), f.store, f.catalog, f.logger, RecurringShiftParams{
		ProgramID:  program.ID,
		TaskTypeID: "info",
		Recurrence: "FREQ=DAILY;COUNT=3",
		FirstStart: firstStart,
		Span:       8 * time.Hour,
		Interval:   2 * time.Hour,
	})
	require.NoError(t, err)
	require.Len(t, shifts, 3)

	for i, shift := range shifts {
		expected := firstStart.AddDate(0, 0, i)
		assert.Equal(t, expected, shift.Start)
		assert.Equal(t, expected.Add(8*time.Hour), shift.End)
		assert.Equal(t, 2*time.Hour, shift.Interval)
	}

	stored, err := f.store.GetShiftsByProgram(context.Background(), program.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestAddRecurringShifts_RejectsBadRules(t *testing.T) {
	f := newFixture()
	program := f.addProgram(t, ConfigureParams{Enabled: true})

	base := RecurringShiftParams{
		ProgramID:  program.ID,
		TaskTypeID: "info",
		FirstStart: time.Date(2026, 9, 4, 10, 0, 0, 0, time.UTC),
		Span:       4 * time.Hour,
		Interval:   time.Hour,
	}

	params := base
	params.Recurrence = "NOT_A_RULE"
	_, err := AddRecurringShifts(context.Background(), f.store, f.catalog, f.logger, params)
	assert.ErrorContains(t, err, "invalid recurrence rule")

	params = base
	params.Recurrence = "FREQ=HOURLY" // open-ended rule blows past the expansion cap
	_, err = AddRecurringShifts(context.Background(), f.store, f.catalog, f.logger, params)
	assert.ErrorContains(t, err, "limit")

	// nothing was persisted by the failed expansions
	stored, err := f.store.GetShiftsByProgram(context.Background(), program.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestRemoveShift_CascadesToBookings(t *testing.T) {
	f := newFixture()
	program := f.addProgram(t, ConfigureParams{Enabled: true})
	shift := f.addShift(t, eveningShift(program.ID))
	booking := f.book(t, BookParams{ProgramID: program.ID, ShiftID: shift.ID, SlotStart: shift.Start, VolunteerID: "vol-1"})

	require.NoError(t, RemoveShift(context.Background(), f.store, f.logger, shift.ID))

	_, err := f.store.GetBooking(context.Background(), booking.ID)
	assert.ErrorIs(t, err, model.ErrBookingNotFound)

	err = RemoveShift(context.Background(), f.store, f.logger, shift.ID)
	assert.ErrorIs(t, err, model.ErrShiftNotFound)
}

func TestUpdateShiftTimes_DropsMisalignedBookingsOnly(t *testing.T) {
	f := newFixture()
	program := f.addProgram(t, ConfigureParams{Enabled: true})
	shift := f.addShift(t, eveningShift(program.ID))

	// 18:00 and 20:00 slots
	dropped := f.book(t, BookParams{ProgramID: program.ID, ShiftID: shift.ID, SlotStart: shift.Start, VolunteerID: "vol-1"})
	kept := f.book(t, BookParams{ProgramID: program.ID, ShiftID: shift.ID, SlotStart: shift.Start.Add(2 * time.Hour), VolunteerID: "vol-2"})

	// shrink the shift to 19:00-22:00; 18:00 falls off the grid, 20:00 stays on it
	updated, err := UpdateShiftTimes(context.Background(), f.store, f.logger, shift.ID,
		shift.Start.Add(time.Hour), shift.End, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, shift.Start.Add(time.Hour), updated.Start)

	_, err = f.store.GetBooking(context.Background(), dropped.ID)
	assert.ErrorIs(t, err, model.ErrBookingNotFound)

	_, err = f.store.GetBooking(context.Background(), kept.ID)
	assert.NoError(t, err)
}

func TestUpdateShiftTimes_InvalidTiming(t *testing.T) {
	f := newFixture()
	program := f.addProgram(t, ConfigureParams{Enabled: true})
	shift := f.addShift(t, eveningShift(program.ID))

	_, err := UpdateShiftTimes(context.Background(), f.store, f.logger, shift.ID, shift.Start, shift.Start, time.Hour)
	assert.Error(t, err)

	_, err = UpdateShiftTimes(context.Background(), f.store, f.logger, shift.ID, shift.Start, shift.End, 0)
	assert.Error(t, err)

	_, err = UpdateShiftTimes(context.Background(), f.store, f.logger, "missing", shift.Start, shift.End, time.Hour)
	assert.ErrorIs(t, err, model.ErrShiftNotFound)
}

func TestSetShiftResponsible(t *testing.T) {
	f := newFixture()
	program := f.addProgram(t, ConfigureParams{Enabled: true})
	shift := f.addShift(t, eveningShift(program.ID))

	require.NoError(t, SetShiftResponsible(context.Background(), f.store, f.logger, shift.ID, "vol-2"))
	stored, err := f.store.GetShift(context.Background(), shift.ID)
	require.NoError(t, err)
	assert.Equal(t, "vol-2", stored.ResponsibleID)

	// clearing the assignment
	require.NoError(t, SetShiftResponsible(context.Background(), f.store, f.logger, shift.ID, ""))
	stored, err = f.store.GetShift(context.Background(), shift.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.ResponsibleID)
}

func TestShiftsManagedBy(t *testing.T) {
	f := newFixture()
	program := f.addProgram(t, ConfigureParams{Enabled: true, AdminIDs: []string{"admin-1"}})

	owned := eveningShift(program.ID)
	owned.ResponsibleID = "vol-2"
	ownedShift := f.addShift(t, owned)

	other := eveningShift(program.ID)
	other.Start = other.Start.AddDate(0, 0, 1)
	other.End = other.End.AddDate(0, 0, 1)
	f.addShift(t, other)

	managed, err := ShiftsManagedBy(context.Background(), f.store, f.logger, program.ID, "admin-1")
	require.NoError(t, err)
	assert.Len(t, managed, 2)

	managed, err = ShiftsManagedBy(context.Background(), f.store, f.logger, program.ID, "vol-2")
	require.NoError(t, err)
	require.Len(t, managed, 1)
	assert.Equal(t, ownedShift.ID, managed[0].ID)

	managed, err = ShiftsManagedBy(context.Background(), f.store, f.logger, program.ID, "vol-1")
	require.NoError(t, err)
	assert.Empty(t, managed)
}

func TestAvailableSlots_ShrinksAsSlotsFill(t *testing.T) {
	f := newFixture()
	program := f.addProgram(t, ConfigureParams{Enabled: true})
	shift := f.addShift(t, eveningShift(program.ID))

	available, err := AvailableSlots(context.Background(), f.store, f.logger, shift.ID)
	require.NoError(t, err)
	require.Len(t, available, 4)

	f.book(t, BookParams{ProgramID: program.ID, ShiftID: shift.ID, SlotStart: shift.Start.Add(time.Hour), VolunteerID: "vol-1"})

	available, err = AvailableSlots(context.Background(), f.store, f.logger, shift.ID)
	require.NoError(t, err)
	require.Len(t, available, 3)
	for _, slot := range available {
		assert.NotEqual(t, shift.Start.Add(time.Hour), slot.Start)
	}
}
