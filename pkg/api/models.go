package api

import (
	"time"

	"github.com/jkoskela/nakkikone/pkg/core/model"
	"github.com/jkoskela/nakkikone/pkg/core/services"
)

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type InfoTextRequest struct {
	FI string `json:"fi"`
	EN string `json:"en"`
}

type ConfigureProgramRequest struct {
	EventID                string          `json:"event_id"`
	Enabled                bool            `json:"enabled"`
	InfoText               InfoTextRequest `json:"info_text"`
	ShowLinkInEvent        bool            `json:"show_link_in_event"`
	RequireDifferentTimes  bool            `json:"require_different_times"`
	RequiredForReservation bool            `json:"required_for_reservation"`
	AdminIDs               []string        `json:"admin_ids"`
}

type ProgramResponse struct {
	ProgramID              string          `json:"program_id"`
	EventID                string          `json:"event_id"`
	Enabled                bool            `json:"enabled"`
	InfoText               InfoTextRequest `json:"info_text"`
	ShowLinkInEvent        bool            `json:"show_link_in_event"`
	RequireDifferentTimes  bool            `json:"require_different_times"`
	RequiredForReservation bool            `json:"required_for_reservation"`
	AdminIDs               []string        `json:"admin_ids"`
}

type AddShiftRequest struct {
	TaskTypeID      string    `json:"task_type_id"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	IntervalMinutes int       `json:"interval_minutes"`
	ResponsibleID   string    `json:"responsible_id,omitempty"`
	ChatChannel     string    `json:"chat_channel,omitempty"`
	// Recurrence expands the definition into one shift per occurrence;
	// Start/End then describe the first occurrence.
	Recurrence string `json:"recurrence,omitempty"`
}

type ShiftResponse struct {
	ShiftID          string    `json:"shift_id"`
	ProgramID        string    `json:"program_id"`
	TaskTypeID       string    `json:"task_type_id"`
	Start            time.Time `json:"start"`
	End              time.Time `json:"end"`
	IntervalMinutes  int       `json:"interval_minutes"`
	ResponsibleID    string    `json:"responsible_id,omitempty"`
	ChatChannel      string    `json:"chat_channel,omitempty"`
	BookingsDisabled bool      `json:"bookings_disabled"`
}

type UpdateShiftTimesRequest struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	IntervalMinutes int       `json:"interval_minutes"`
}

type SlotResponse struct {
	ShiftID string    `json:"shift_id"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

type OccupancySlotResponse struct {
	Slot          SlotResponse `json:"slot"`
	BookingID     string       `json:"booking_id,omitempty"`
	VolunteerID   string       `json:"volunteer_id,omitempty"`
	VolunteerName string       `json:"volunteer_name,omitempty"`
	Comment       string       `json:"comment,omitempty"`
}

type BookRequest struct {
	SlotStart   time.Time `json:"slot_start"`
	VolunteerID string    `json:"volunteer_id"`
	Comment     string    `json:"comment,omitempty"`
}

type BookingResponse struct {
	BookingID   string    `json:"booking_id"`
	ShiftID     string    `json:"shift_id"`
	SlotStart   time.Time `json:"slot_start"`
	VolunteerID string    `json:"volunteer_id"`
	Comment     string    `json:"comment,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type CancelRequest struct {
	RequestedBy string `json:"requested_by"`
}

type EligibilityResponse struct {
	VolunteerID string `json:"volunteer_id"`
	Qualifies   bool   `json:"qualifies"`
}

type ResponsibleEntryResponse struct {
	TaskTypeID string   `json:"task_type_id"`
	TaskLabel  string   `json:"task_label"`
	Names      []string `json:"names"`
}

func programToResponse(p *model.Program) ProgramResponse {
	return ProgramResponse{
		ProgramID:              p.ID,
		EventID:                p.EventID,
		Enabled:                p.Enabled,
		InfoText:               InfoTextRequest{FI: p.InfoText.FI, EN: p.InfoText.EN},
		ShowLinkInEvent:        p.ShowLinkInEvent,
		RequireDifferentTimes:  p.RequireDifferentTimes,
		RequiredForReservation: p.RequiredForReservation,
		AdminIDs:               p.AdminIDs,
	}
}

func shiftToResponse(s *model.Shift) ShiftResponse {
	return ShiftResponse{
		ShiftID:          s.ID,
		ProgramID:        s.ProgramID,
		TaskTypeID:       s.TaskTypeID,
		Start:            s.Start,
		End:              s.End,
		IntervalMinutes:  int(s.Interval.Minutes()),
		ResponsibleID:    s.ResponsibleID,
		ChatChannel:      s.ChatChannel,
		BookingsDisabled: s.BookingsDisabled,
	}
}

func slotToResponse(s model.Slot) SlotResponse {
	return SlotResponse{ShiftID: s.ShiftID, Start: s.Start, End: s.End}
}

func bookingToResponse(b *model.Booking) BookingResponse {
	return BookingResponse{
		BookingID:   b.ID,
		ShiftID:     b.ShiftID,
		SlotStart:   b.SlotStart,
		VolunteerID: b.VolunteerID,
		Comment:     b.Comment,
		CreatedAt:   b.CreatedAt,
	}
}

func occupancyToResponse(entries []services.OccupancySlot) []OccupancySlotResponse {
	out := make([]OccupancySlotResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, OccupancySlotResponse{
			Slot:          slotToResponse(entry.Slot),
			BookingID:     entry.BookingID,
			VolunteerID:   entry.VolunteerID,
			VolunteerName: entry.VolunteerName,
			Comment:       entry.Comment,
		})
	}
	return out
}
