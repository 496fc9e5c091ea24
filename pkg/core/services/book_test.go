package services

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkoskela/nakkikone/pkg/core/model"
	"github.com/jkoskela/nakkikone/pkg/core/slots"
)

func TestBook_HappyPath(t *testing.T) {
	f := newFixture()
	program := f.addProgram(t, ConfigureParams{Enabled: true})
	shift := f.addShift(t, eveningShift(program.ID))

	booking := f.book(t, BookParams{
		ProgramID:   program.ID,
		ShiftID:     shift.ID,
		SlotStart:   shift.Start,
		VolunteerID: "vol-1",
		Comment:     "voin jäädä pidempään",
	})

	assert.Equal(t, shift.ID, booking.ShiftID)
	assert.Equal(t, "vol-1", booking.VolunteerID)
	assert.False(t, booking.CreatedAt.IsZero())

	stored, err := f.store.GetBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.SlotStart, stored.SlotStart)
}

func TestBook_SlotTaken(t *testing.T) {
	f := newFixture()
	program := f.addProgram(t, ConfigureParams{Enabled: true})
	shift := f.addShift(t, eveningShift(program.ID))

	f.book(t, BookParams{ProgramID: program.ID, ShiftID: shift.ID, SlotStart: shift.Start, VolunteerID: "vol-1"})

	_, err := Book(context.Background(), f.store, f.catalog, f.directory, f.logger, BookParams{
		ProgramID:   program.ID,
		ShiftID:     shift.ID,
		SlotStart:   shift.Start,
		VolunteerID: "vol-2",
	})
	assert.ErrorIs(t, err, model.ErrSlotTaken)
}

func TestBook_ConcurrentClaimsHaveOneWinner(t *testing.T) {
	f := newFixture()
	program := f.addProgram(t, ConfigureParams{Enabled: true})
	shift := f.addShift(t, eveningShift(program.ID))

	const contenders = 16
	results := make(chan error, contenders)
	var wg sync.WaitGroup
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := Book(context.Background(), f.store, f.catalog, f.directory, f.logger, BookParams{
				ProgramID:   program.ID,
				ShiftID:     shift.ID,
				SlotStart:   shift.Start,
				VolunteerID: "vol-1",
			})
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	winners, losers := 0, 0
	for err := range results {
		if err == nil {
			winners++
		} else {
			require.ErrorIs(t, err, model.ErrSlotTaken)
			losers++
		}
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, contenders-1, losers)
}

func TestBook_MisalignedSlotStart(t *testing.T) {
	f := newFixture()
	program := f.addProgram(t, ConfigureParams{Enabled: true})
	shift := f.addShift(t, eveningShift(program.ID))

	for _, slotStart := range []time.Time{
		shift.Start.Add(30 * time.Minute), // off the grid
		shift.Start.Add(-time.Hour),       // before the shift
		shift.End,                         // first start past the span
	} {
		_, err := Book(context.Background(), f.store, f.catalog, f.directory, f.logger, BookParams{
			ProgramID:   program.ID,
			ShiftID:     shift.ID,
			SlotStart:   slotStart,
			VolunteerID: "vol-1",
		})
		assert.ErrorIs(t, err, model.ErrInvalidSlot, "slot start %s", slotStart)
	}
}

func TestBook_DisabledProgramOrShift(t *testing.T) {
	f := newFixture()
	program := f.addProgram(t, ConfigureParams{Enabled: false})
	shift := f.addShift(t, eveningShift(program.ID))

	_, err := Book(context.Background(), f.store, f.catalog, f.directory, f.logger, BookParams{
		ProgramID: program.ID, ShiftID: shift.ID, SlotStart: shift.Start, VolunteerID: "vol-1",
	})
	assert.ErrorIs(t, err, model.ErrShiftNotBookable)

	program2 := f.addProgram(t, ConfigureParams{EventID: "event-2", Enabled: true})
	shift2 := f.addShift(t, eveningShift(program2.ID))
	shift2.BookingsDisabled = true
	require.NoError(t, f.store.UpdateShift(context.Background(), shift2))

	_, err = Book(context.Background(), f.store, f.catalog, f.directory, f.logger, BookParams{
		ProgramID: program2.ID, ShiftID: shift2.ID, SlotStart: shift2.Start, VolunteerID: "vol-1",
	})
	assert.ErrorIs(t, err, model.ErrShiftNotBookable)
}

func TestBook_ShiftOfAnotherProgram(t *testing.T) {
	f := newFixture()
	program := f.addProgram(t, ConfigureParams{Enabled: true})
	other := f.addProgram(t, ConfigureParams{EventID: "event-2", Enabled: true})
	shift := f.addShift(t, eveningShift(other.ID))

	_, err := Book(context.Background(), f.store, f.catalog, f.directory, f.logger, BookParams{
		ProgramID: program.ID, ShiftID: shift.ID, SlotStart: shift.Start, VolunteerID: "vol-1",
	})
	assert.ErrorIs(t, err, model.ErrShiftNotFound)
}

func TestBook_ActiveOnlyTaskRejectsPassiveMember(t *testing.T) {
	f := newFixture()
	program := f.addProgram(t, ConfigureParams{Enabled: true})
	params := eveningShift(program.ID)
	params.TaskTypeID = "door"
	shift := f.addShift(t, params)

	_, err := Book(context.Background(), f.store, f.catalog, f.directory, f.logger, BookParams{
		ProgramID: program.ID, ShiftID: shift.ID, SlotStart: shift.Start, VolunteerID: "passive",
	})
	assert.ErrorIs(t, err, model.ErrNotPermitted)

	f.book(t, BookParams{ProgramID: program.ID, ShiftID: shift.ID, SlotStart: shift.Start, VolunteerID: "vol-1"})
}

func TestBook_OverlapAcrossShiftsWithDifferentIntervals(t *testing.T) {
	f := newFixture()
	program := f.addProgram(t, ConfigureParams{Enabled: true, RequireDifferentTimes: true})

	hourly := f.addShift(t, eveningShift(program.ID))

	// a second shift over the same evening with two-hour slots
	twoHourly := f.addShift(t, AddShiftParams{
		ProgramID:  program.ID,
		TaskTypeID: "info",
		Start:      time.Date(2026, 9, 4, 18, 0, 0, 0, time.UTC),
		End:        time.Date(2026, 9, 4, 22, 0, 0, 0, time.UTC),
		Interval:   2 * time.Hour,
	})

	// 19:00-20:00 on the hourly shift
	f.book(t, BookParams{
		ProgramID:   program.ID,
		ShiftID:     hourly.ID,
		SlotStart:   hourly.Start.Add(time.Hour),
		VolunteerID: "vol-1",
	})

	// 18:00-20:00 on the two-hourly shift covers 19:00-20:00
	_, err := Book(context.Background(), f.store, f.catalog, f.directory, f.logger, BookParams{
		ProgramID:   program.ID,
		ShiftID:     twoHourly.ID,
		SlotStart:   twoHourly.Start,
		VolunteerID: "vol-1",
	})
	assert.ErrorIs(t, err, model.ErrOverlappingBooking)

	// 20:00-22:00 only touches at the boundary and is fine
	f.book(t, BookParams{
		ProgramID:   program.ID,
		ShiftID:     twoHourly.ID,
		SlotStart:   twoHourly.Start.Add(2 * time.Hour),
		VolunteerID: "vol-1",
	})

	// another volunteer is not affected
	f.book(t, BookParams{
		ProgramID:   program.ID,
		ShiftID:     twoHourly.ID,
		SlotStart:   twoHourly.Start,
		VolunteerID: "vol-2",
	})
}

func TestBook_OverlapPolicyIsNotRetroactive(t *testing.T) {
	f := newFixture()
	program := f.addProgram(t, ConfigureParams{Enabled: true})
	shiftA := f.addShift(t, eveningShift(program.ID))
	paramsB := eveningShift(program.ID)
	paramsB.TaskTypeID = "info"
	shiftB := f.addShift(t, paramsB)

	// two overlapping bookings while the policy is off
	f.book(t, BookParams{ProgramID: program.ID, ShiftID: shiftA.ID, SlotStart: shiftA.Start, VolunteerID: "vol-1"})
	f.book(t, BookParams{ProgramID: program.ID, ShiftID: shiftB.ID, SlotStart: shiftB.Start, VolunteerID: "vol-1"})

	require.NoError(t, SetRequireDifferentTimes(context.Background(), f.store, f.logger, program.ID, true))

	// the existing pair stays, only new overlaps are rejected
	bookings, err := f.store.GetBookingsForVolunteer(context.Background(), program.ID, "vol-1")
	require.NoError(t, err)
	assert.Len(t, bookings, 2)

	_, err = Book(context.Background(), f.store, f.catalog, f.directory, f.logger, BookParams{
		ProgramID:   program.ID,
		ShiftID:     shiftA.ID,
		SlotStart:   shiftA.Start.Add(time.Hour),
		VolunteerID: "vol-2",
	})
	require.NoError(t, err)

	_, err = Book(context.Background(), f.store, f.catalog, f.directory, f.logger, BookParams{
		ProgramID:   program.ID,
		ShiftID:     shiftB.ID,
		SlotStart:   shiftB.Start.Add(time.Hour),
		VolunteerID: "vol-2",
	})
	assert.ErrorIs(t, err, model.ErrOverlappingBooking)
}

// TestBook_NoOverlapHoldsUnderRandomBookCancel drives a long seeded
// sequence of book and cancel calls over shifts with mixed intervals
// and asserts after every successful booking that no volunteer holds
// two bookings whose slot intervals overlap.
func TestBook_NoOverlapHoldsUnderRandomBookCancel(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	program := f.addProgram(t, ConfigureParams{Enabled: true, RequireDifferentTimes: true})

	base := time.Date(2026, 9, 4, 10, 0, 0, 0, time.UTC)
	intervals := []time.Duration{
		30 * time.Minute, time.Hour, 90 * time.Minute,
		2 * time.Hour, time.Hour, 30 * time.Minute,
	}
	shifts := make([]*model.Shift, 0, len(intervals))
	for i, interval := range intervals {
		taskType := "bar"
		if i%2 == 1 {
			taskType = "info"
		}
		shifts = append(shifts, f.addShift(t, AddShiftParams{
			ProgramID:  program.ID,
			TaskTypeID: taskType,
			Start:      base,
			End:        base.Add(12 * time.Hour),
			Interval:   interval,
		}))
	}

	volunteers := []string{"vol-1", "vol-2"}

	assertNoOverlapPerVolunteer := func(t *testing.T, op int) {
		t.Helper()
		for _, volunteer := range volunteers {
			bookings, err := f.store.GetBookingsForVolunteer(ctx, program.ID, volunteer)
			require.NoError(t, err)

			ends := make([]time.Time, len(bookings))
			for i, booking := range bookings {
				shift, err := f.store.GetShift(ctx, booking.ShiftID)
				require.NoError(t, err)
				ends[i] = booking.SlotStart.Add(shift.Interval)
			}
			for i := range bookings {
				for j := i + 1; j < len(bookings); j++ {
					require.False(t,
						slots.Overlaps(bookings[i].SlotStart, ends[i], bookings[j].SlotStart, ends[j]),
						"op %d: %s holds overlapping bookings %s and %s",
						op, volunteer, bookings[i].ID, bookings[j].ID)
				}
			}
		}
	}

	rng := rand.New(rand.NewSource(42))
	var live []string
	owners := make(map[string]string)

	for op := 0; op < 2000; op++ {
		if len(live) > 0 && rng.Intn(3) == 0 {
			i := rng.Intn(len(live))
			bookingID := live[i]
			require.NoError(t, Cancel(ctx, f.store, f.logger, bookingID, owners[bookingID]))
			delete(owners, bookingID)
			live[i] = live[len(live)-1]
			live = live[:len(live)-1]
			continue
		}

		shift := shifts[rng.Intn(len(shifts))]
		slotCount := int(shift.End.Sub(shift.Start) / shift.Interval)
		slotStart := shift.Start.Add(time.Duration(rng.Intn(slotCount)) * shift.Interval)
		volunteer := volunteers[rng.Intn(len(volunteers))]

		booking, err := Book(ctx, f.store, f.catalog, f.directory, f.logger, BookParams{
			ProgramID:   program.ID,
			ShiftID:     shift.ID,
			SlotStart:   slotStart,
			VolunteerID: volunteer,
		})
		if err != nil {
			require.True(t,
				errors.Is(err, model.ErrSlotTaken) || errors.Is(err, model.ErrOverlappingBooking),
				"op %d: unexpected rejection %v", op, err)
			continue
		}

		live = append(live, booking.ID)
		owners[booking.ID] = volunteer
		assertNoOverlapPerVolunteer(t, op)
	}
}

func TestCancel_OwnerAndRebooking(t *testing.T) {
	f := newFixture()
	program := f.addProgram(t, ConfigureParams{Enabled: true})
	shift := f.addShift(t, eveningShift(program.ID))

	first := f.book(t, BookParams{ProgramID: program.ID, ShiftID: shift.ID, SlotStart: shift.Start, VolunteerID: "vol-1"})
	require.NoError(t, Cancel(context.Background(), f.store, f.logger, first.ID, "vol-1"))

	second := f.book(t, BookParams{ProgramID: program.ID, ShiftID: shift.ID, SlotStart: shift.Start, VolunteerID: "vol-2"})
	assert.NotEqual(t, first.ID, second.ID)
	assert.False(t, second.CreatedAt.Before(first.CreatedAt))
}

func TestCancel_Permissions(t *testing.T) {
	f := newFixture()
	program := f.addProgram(t, ConfigureParams{Enabled: true, AdminIDs: []string{"admin-1"}})
	params := eveningShift(program.ID)
	params.ResponsibleID = "vol-2"
	shift := f.addShift(t, params)

	bookSlot := func(t *testing.T, slotStart time.Time) *model.Booking {
		return f.book(t, BookParams{ProgramID: program.ID, ShiftID: shift.ID, SlotStart: slotStart, VolunteerID: "vol-1"})
	}

	booking := bookSlot(t, shift.Start)
	err := Cancel(context.Background(), f.store, f.logger, booking.ID, "stranger")
	assert.ErrorIs(t, err, model.ErrNotPermitted)

	// shift responsible may cancel
	require.NoError(t, Cancel(context.Background(), f.store, f.logger, booking.ID, "vol-2"))

	// program admin may cancel
	booking = bookSlot(t, shift.Start.Add(time.Hour))
	require.NoError(t, Cancel(context.Background(), f.store, f.logger, booking.ID, "admin-1"))
}

func TestCancel_AbsentBooking(t *testing.T) {
	f := newFixture()
	err := Cancel(context.Background(), f.store, f.logger, "missing", "vol-1")
	assert.ErrorIs(t, err, model.ErrBookingNotFound)
}

func TestMemberHasQualifyingBooking(t *testing.T) {
	f := newFixture()
	program := f.addProgram(t, ConfigureParams{Enabled: true, RequiredForReservation: true})
	shift := f.addShift(t, eveningShift(program.ID))

	qualifies, err := MemberHasQualifyingBooking(context.Background(), f.store, f.logger, program.ID, "vol-1")
	require.NoError(t, err)
	assert.False(t, qualifies)

	f.book(t, BookParams{ProgramID: program.ID, ShiftID: shift.ID, SlotStart: shift.Start, VolunteerID: "vol-1"})

	qualifies, err = MemberHasQualifyingBooking(context.Background(), f.store, f.logger, program.ID, "vol-1")
	require.NoError(t, err)
	assert.True(t, qualifies)
}

func TestMemberHasQualifyingBooking_GateOpenWhenNotRequired(t *testing.T) {
	f := newFixture()
	program := f.addProgram(t, ConfigureParams{Enabled: true})

	// no booking, but the program does not gate reservation
	qualifies, err := MemberHasQualifyingBooking(context.Background(), f.store, f.logger, program.ID, "vol-1")
	require.NoError(t, err)
	assert.True(t, qualifies)

	_, err = MemberHasQualifyingBooking(context.Background(), f.store, f.logger, "missing", "vol-1")
	assert.ErrorIs(t, err, model.ErrProgramNotFound)
}
