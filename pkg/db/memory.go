package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jkoskela/nakkikone/pkg/core/model"
	"github.com/jkoskela/nakkikone/pkg/core/slots"
)

// MemoryStore is an in-process Store used by tests and by dev mode
// runs without a database. A single mutex serializes every mutation,
// so CreateBooking's occupancy and overlap checks run inside the same
// critical section as the insert, giving the same at-most-one-winner
// guarantee as the transactional PostgreSQL store.
type MemoryStore struct {
	mu       sync.Mutex
	programs map[string]model.Program
	shifts   map[string]model.Shift
	bookings map[string]model.Booking
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		programs: make(map[string]model.Program),
		shifts:   make(map[string]model.Shift),
		bookings: make(map[string]model.Booking),
	}
}

func (s *MemoryStore) InsertProgram(ctx context.Context, program *model.Program) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.programs[program.ID] = *program
	return nil
}

func (s *MemoryStore) GetProgram(ctx context.Context, id string) (*model.Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	program, ok := s.programs[id]
	if !ok {
		return nil, model.ErrProgramNotFound
	}
	return &program, nil
}

func (s *MemoryStore) GetProgramByEvent(ctx context.Context, eventID string) (*model.Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, program := range s.programs {
		if program.EventID == eventID {
			p := program
			return &p, nil
		}
	}
	return nil, model.ErrProgramNotFound
}

func (s *MemoryStore) UpdateProgram(ctx context.Context, program *model.Program) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.programs[program.ID]; !ok {
		return model.ErrProgramNotFound
	}
	s.programs[program.ID] = *program
	return nil
}

func (s *MemoryStore) DeleteProgram(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.programs[id]; !ok {
		return model.ErrProgramNotFound
	}
	delete(s.programs, id)
	for shiftID, shift := range s.shifts {
		if shift.ProgramID != id {
			continue
		}
		delete(s.shifts, shiftID)
		s.deleteBookingsOfShift(shiftID)
	}
	return nil
}

func (s *MemoryStore) InsertShifts(ctx context.Context, shifts []model.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, shift := range shifts {
		s.shifts[shift.ID] = shift
	}
	return nil
}

func (s *MemoryStore) GetShift(ctx context.Context, id string) (*model.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	shift, ok := s.shifts[id]
	if !ok {
		return nil, model.ErrShiftNotFound
	}
	return &shift, nil
}

func (s *MemoryStore) GetShiftsByProgram(ctx context.Context, programID string) ([]model.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.Shift
	for _, shift := range s.shifts {
		if shift.ProgramID == programID {
			result = append(result, shift)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Start.Equal(result[j].Start) {
			return result[i].Start.Before(result[j].Start)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (s *MemoryStore) UpdateShift(ctx context.Context, shift *model.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shifts[shift.ID]; !ok {
		return model.ErrShiftNotFound
	}
	s.shifts[shift.ID] = *shift
	return nil
}

func (s *MemoryStore) DeleteShift(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shifts[id]; !ok {
		return model.ErrShiftNotFound
	}
	delete(s.shifts, id)
	s.deleteBookingsOfShift(id)
	return nil
}

// deleteBookingsOfShift must be called with the mutex held.
func (s *MemoryStore) deleteBookingsOfShift(shiftID string) {
	for bookingID, booking := range s.bookings {
		if booking.ShiftID == shiftID {
			delete(s.bookings, bookingID)
		}
	}
}

func (s *MemoryStore) CreateBooking(ctx context.Context, programID string, booking *model.Booking, slotEnd time.Time, requireDifferentTimes bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.bookings {
		if existing.ShiftID == booking.ShiftID && existing.SlotStart.Equal(booking.SlotStart) {
			return model.ErrSlotTaken
		}
	}

	if requireDifferentTimes {
		for _, existing := range s.bookings {
			if existing.VolunteerID != booking.VolunteerID {
				continue
			}
			shift, ok := s.shifts[existing.ShiftID]
			if !ok || shift.ProgramID != programID {
				continue
			}
			existingEnd := existing.SlotStart.Add(shift.Interval)
			if slots.Overlaps(booking.SlotStart, slotEnd, existing.SlotStart, existingEnd) {
				return model.ErrOverlappingBooking
			}
		}
	}

	s.bookings[booking.ID] = *booking
	return nil
}

func (s *MemoryStore) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	booking, ok := s.bookings[id]
	if !ok {
		return nil, model.ErrBookingNotFound
	}
	return &booking, nil
}

func (s *MemoryStore) DeleteBooking(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[id]; !ok {
		return model.ErrBookingNotFound
	}
	delete(s.bookings, id)
	return nil
}

func (s *MemoryStore) GetBookingsByShift(ctx context.Context, shiftID string) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.Booking
	for _, booking := range s.bookings {
		if booking.ShiftID == shiftID {
			result = append(result, booking)
		}
	}
	sortBookings(result)
	return result, nil
}

func (s *MemoryStore) GetBookingsByProgram(ctx context.Context, programID string) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.Booking
	for _, booking := range s.bookings {
		if shift, ok := s.shifts[booking.ShiftID]; ok && shift.ProgramID == programID {
			result = append(result, booking)
		}
	}
	sortBookings(result)
	return result, nil
}

func (s *MemoryStore) GetBookingsForVolunteer(ctx context.Context, programID, volunteerID string) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.Booking
	for _, booking := range s.bookings {
		if booking.VolunteerID != volunteerID {
			continue
		}
		if shift, ok := s.shifts[booking.ShiftID]; ok && shift.ProgramID == programID {
			result = append(result, booking)
		}
	}
	sortBookings(result)
	return result, nil
}

func sortBookings(bookings []model.Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		if !bookings[i].SlotStart.Equal(bookings[j].SlotStart) {
			return bookings[i].SlotStart.Before(bookings[j].SlotStart)
		}
		return bookings[i].ID < bookings[j].ID
	})
}
