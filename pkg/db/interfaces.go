// Package db defines the storage interfaces of the booking core and an
// in-memory implementation of them. The production implementation over
// PostgreSQL lives in pkg/postgres.
package db

import (
	"context"
	"time"

	"github.com/jkoskela/nakkikone/pkg/core/model"
)

// ProgramStore defines the interface for volunteer program records.
type ProgramStore interface {
	InsertProgram(ctx context.Context, program *model.Program) error
	GetProgram(ctx context.Context, id string) (*model.Program, error)
	GetProgramByEvent(ctx context.Context, eventID string) (*model.Program, error)
	UpdateProgram(ctx context.Context, program *model.Program) error
	// DeleteProgram removes a program and cascades to its shifts and
	// bookings. Returns model.ErrProgramNotFound if absent.
	DeleteProgram(ctx context.Context, id string) error
}

// ShiftStore defines the interface for shift records.
type ShiftStore interface {
	InsertShifts(ctx context.Context, shifts []model.Shift) error
	GetShift(ctx context.Context, id string) (*model.Shift, error)
	GetShiftsByProgram(ctx context.Context, programID string) ([]model.Shift, error)
	UpdateShift(ctx context.Context, shift *model.Shift) error
	// DeleteShift removes a shift and cascades to its bookings.
	// Returns model.ErrShiftNotFound if absent.
	DeleteShift(ctx context.Context, id string) error
}

// BookingStore defines the interface for booking records.
type BookingStore interface {
	// CreateBooking records a volunteer's claim on the slot
	// [booking.SlotStart, slotEnd) of booking.ShiftID. The occupancy
	// check and the insert form a single atomic unit: of concurrent
	// calls for the same slot exactly one succeeds, the rest get
	// model.ErrSlotTaken. When requireDifferentTimes is set, the same
	// unit also verifies against a consistent snapshot that the
	// volunteer holds no overlapping booking anywhere in the program,
	// returning model.ErrOverlappingBooking otherwise.
	CreateBooking(ctx context.Context, programID string, booking *model.Booking, slotEnd time.Time, requireDifferentTimes bool) error
	GetBooking(ctx context.Context, id string) (*model.Booking, error)
	// DeleteBooking returns model.ErrBookingNotFound if the booking is
	// already absent, so callers can treat cancel as best-effort while
	// the API still signals the distinction.
	DeleteBooking(ctx context.Context, id string) error
	GetBookingsByShift(ctx context.Context, shiftID string) ([]model.Booking, error)
	GetBookingsByProgram(ctx context.Context, programID string) ([]model.Booking, error)
	GetBookingsForVolunteer(ctx context.Context, programID, volunteerID string) ([]model.Booking, error)
}

// Store combines all storage interfaces of the booking core.
type Store interface {
	ProgramStore
	ShiftStore
	BookingStore
}
