package model

// Error is a discriminated, recoverable booking-domain error. All of
// these are expected outcomes returned to the caller; only storage
// failures propagate as plain wrapped errors.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches on the code so callers can use errors.Is against the
// sentinels below even when an error has been wrapped with context.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

var (
	// ErrProgramNotFound - no volunteer program exists for the id or event
	ErrProgramNotFound = &Error{
		Code:    "PROGRAM_NOT_FOUND",
		Message: "volunteer program not found",
	}

	// ErrShiftNotFound - the referenced shift does not exist in the program
	ErrShiftNotFound = &Error{
		Code:    "SHIFT_NOT_FOUND",
		Message: "shift not found",
	}

	// ErrBookingNotFound - the referenced booking does not exist
	ErrBookingNotFound = &Error{
		Code:    "BOOKING_NOT_FOUND",
		Message: "booking not found",
	}

	// ErrShiftNotBookable - bookings are disabled for the shift or program
	ErrShiftNotBookable = &Error{
		Code:    "SHIFT_NOT_BOOKABLE",
		Message: "shift is not open for bookings",
	}

	// ErrInvalidSlot - the slot start does not align with the shift's
	// generated slot sequence
	ErrInvalidSlot = &Error{
		Code:    "INVALID_SLOT",
		Message: "slot start does not match any slot of the shift",
	}

	// ErrSlotTaken - the slot is already occupied, or the caller lost the
	// race for it
	ErrSlotTaken = &Error{
		Code:    "SLOT_TAKEN",
		Message: "slot is already booked",
	}

	// ErrOverlappingBooking - the volunteer already holds a booking whose
	// slot overlaps the requested one
	ErrOverlappingBooking = &Error{
		Code:    "OVERLAPPING_BOOKING",
		Message: "volunteer already has a booking at an overlapping time",
	}

	// ErrNotPermitted - the acting volunteer may not perform the operation
	ErrNotPermitted = &Error{
		Code:    "NOT_PERMITTED",
		Message: "not permitted to perform this operation",
	}
)
