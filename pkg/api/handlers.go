// Package api exposes the booking core over a thin JSON API. Authn and
// localization of error messages are the caller's concern; this layer
// only guarantees the discriminated reason codes.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jkoskela/nakkikone/pkg/core/model"
	"github.com/jkoskela/nakkikone/pkg/core/services"
	"github.com/jkoskela/nakkikone/pkg/db"
)

// Handler holds the dependencies shared by all endpoints
type Handler struct {
	store     db.Store
	catalog   services.TaskTypeCatalog
	directory services.VolunteerDirectory
	logger    *zap.Logger
}

// NewHandler creates the endpoint set over the given store and
// collaborators
func NewHandler(store db.Store, catalog services.TaskTypeCatalog, directory services.VolunteerDirectory, logger *zap.Logger) *Handler {
	return &Handler{
		store:     store,
		catalog:   catalog,
		directory: directory,
		logger:    logger,
	}
}

func (h *Handler) ConfigureProgram(w http.ResponseWriter, r *http.Request) {
	var req ConfigureProgramRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid JSON body")
		return
	}
	if req.EventID == "" {
		h.badRequest(w, "event_id is required")
		return
	}

	program, err := services.ConfigureProgram(r.Context(), h.store, h.logger, services.ConfigureParams{
		EventID:                req.EventID,
		Enabled:                req.Enabled,
		InfoText:               model.LocalizedText{FI: req.InfoText.FI, EN: req.InfoText.EN},
		ShowLinkInEvent:        req.ShowLinkInEvent,
		RequireDifferentTimes:  req.RequireDifferentTimes,
		RequiredForReservation: req.RequiredForReservation,
		AdminIDs:               req.AdminIDs,
	})
	if err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, programToResponse(program))
}

func (h *Handler) GetProgram(w http.ResponseWriter, r *http.Request) {
	program, err := h.store.GetProgram(r.Context(), chi.URLParam(r, "programID"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, programToResponse(program))
}

func (h *Handler) DeleteProgram(w http.ResponseWriter, r *http.Request) {
	if err := services.DeleteProgram(r.Context(), h.store, h.logger, chi.URLParam(r, "programID")); err != nil {
		h.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddShift(w http.ResponseWriter, r *http.Request) {
	programID := chi.URLParam(r, "programID")

	var req AddShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid JSON body")
		return
	}
	if req.TaskTypeID == "" {
		h.badRequest(w, "task_type_id is required")
		return
	}
	if req.IntervalMinutes <= 0 {
		h.badRequest(w, "interval_minutes must be positive")
		return
	}

	interval := time.Duration(req.IntervalMinutes) * time.Minute

	if req.Recurrence != "" {
		shifts, err := services.AddRecurringShifts(r.Context(), h.store, h.catalog, h.logger, services.RecurringShiftParams{
			ProgramID:     programID,
			TaskTypeID:    req.TaskTypeID,
			Recurrence:    req.Recurrence,
			FirstStart:    req.Start,
			Span:          req.End.Sub(req.Start),
			Interval:      interval,
			ResponsibleID: req.ResponsibleID,
			ChatChannel:   req.ChatChannel,
		})
		if err != nil {
			h.handleError(w, err)
			return
		}
		out := make([]ShiftResponse, 0, len(shifts))
		for i := range shifts {
			out = append(out, shiftToResponse(&shifts[i]))
		}
		writeJSON(w, http.StatusCreated, out)
		return
	}

	shift, err := services.AddShift(r.Context(), h.store, h.catalog, h.logger, services.AddShiftParams{
		ProgramID:     programID,
		TaskTypeID:    req.TaskTypeID,
		Start:         req.Start,
		End:           req.End,
		Interval:      interval,
		ResponsibleID: req.ResponsibleID,
		ChatChannel:   req.ChatChannel,
	})
	if err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, shiftToResponse(shift))
}

func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	programID := chi.URLParam(r, "programID")

	var (
		shifts []model.Shift
		err    error
	)
	if managedBy := r.URL.Query().Get("managed_by"); managedBy != "" {
		shifts, err = services.ShiftsManagedBy(r.Context(), h.store, h.logger, programID, managedBy)
	} else {
		if _, err = h.store.GetProgram(r.Context(), programID); err == nil {
			shifts, err = h.store.GetShiftsByProgram(r.Context(), programID)
		}
	}
	if err != nil {
		h.handleError(w, err)
		return
	}

	out := make([]ShiftResponse, 0, len(shifts))
	for i := range shifts {
		out = append(out, shiftToResponse(&shifts[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) RemoveShift(w http.ResponseWriter, r *http.Request) {
	if err := services.RemoveShift(r.Context(), h.store, h.logger, chi.URLParam(r, "shiftID")); err != nil {
		h.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UpdateShiftTimes(w http.ResponseWriter, r *http.Request) {
	var req UpdateShiftTimesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid JSON body")
		return
	}
	if req.IntervalMinutes <= 0 {
		h.badRequest(w, "interval_minutes must be positive")
		return
	}

	shift, err := services.UpdateShiftTimes(r.Context(), h.store, h.logger,
		chi.URLParam(r, "shiftID"), req.Start, req.End,
		time.Duration(req.IntervalMinutes)*time.Minute)
	if err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, shiftToResponse(shift))
}

func (h *Handler) AvailableSlots(w http.ResponseWriter, r *http.Request) {
	available, err := services.AvailableSlots(r.Context(), h.store, h.logger, chi.URLParam(r, "shiftID"))
	if err != nil {
		h.handleError(w, err)
		return
	}

	out := make([]SlotResponse, 0, len(available))
	for _, slot := range available {
		out = append(out, slotToResponse(slot))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) Occupancy(w http.ResponseWriter, r *http.Request) {
	view, err := services.Occupancy(r.Context(), h.store, h.directory, h.logger, chi.URLParam(r, "shiftID"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, occupancyToResponse(view))
}

func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid JSON body")
		return
	}
	if req.VolunteerID == "" {
		h.badRequest(w, "volunteer_id is required")
		return
	}

	booking, err := services.Book(r.Context(), h.store, h.catalog, h.directory, h.logger, services.BookParams{
		ProgramID:   chi.URLParam(r, "programID"),
		ShiftID:     chi.URLParam(r, "shiftID"),
		SlotStart:   req.SlotStart,
		VolunteerID: req.VolunteerID,
		Comment:     req.Comment,
	})
	if err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, bookingToResponse(booking))
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid JSON body")
		return
	}
	if req.RequestedBy == "" {
		h.badRequest(w, "requested_by is required")
		return
	}

	if err := services.Cancel(r.Context(), h.store, h.logger, chi.URLParam(r, "bookingID"), req.RequestedBy); err != nil {
		h.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) BookingsOf(w http.ResponseWriter, r *http.Request) {
	bookings, err := services.BookingsOf(r.Context(), h.store, h.logger,
		chi.URLParam(r, "programID"), chi.URLParam(r, "volunteerID"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingsToResponse(bookings))
}

func (h *Handler) VisibleBookings(w http.ResponseWriter, r *http.Request) {
	visibleTo := r.URL.Query().Get("visible_to")
	if visibleTo == "" {
		h.badRequest(w, "visible_to is required")
		return
	}

	bookings, err := services.BookingsVisibleTo(r.Context(), h.store, h.logger,
		chi.URLParam(r, "programID"), visibleTo)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingsToResponse(bookings))
}

func (h *Handler) Eligibility(w http.ResponseWriter, r *http.Request) {
	volunteerID := chi.URLParam(r, "volunteerID")
	qualifies, err := services.MemberHasQualifyingBooking(r.Context(), h.store, h.logger,
		chi.URLParam(r, "programID"), volunteerID)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, EligibilityResponse{
		VolunteerID: volunteerID,
		Qualifies:   qualifies,
	})
}

func (h *Handler) Responsibles(w http.ResponseWriter, r *http.Request) {
	locale := model.Locale(r.URL.Query().Get("locale"))
	if locale == "" {
		locale = model.LocaleFI
	}
	if !locale.IsValid() {
		h.badRequest(w, "unsupported locale")
		return
	}

	entries, err := services.AllResponsibles(r.Context(), h.store, h.catalog, h.directory, h.logger,
		chi.URLParam(r, "programID"), locale)
	if err != nil {
		h.handleError(w, err)
		return
	}

	out := make([]ResponsibleEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, ResponsibleEntryResponse{
			TaskTypeID: entry.TaskTypeID,
			TaskLabel:  entry.TaskLabel,
			Names:      entry.Names,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func bookingsToResponse(bookings []model.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, bookingToResponse(&bookings[i]))
	}
	return out
}
