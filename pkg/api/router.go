package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the route tree for the booking API
func NewRouter(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Route("/programs", func(r chi.Router) {
		r.Post("/", h.ConfigureProgram)

		r.Route("/{programID}", func(r chi.Router) {
			r.Get("/", h.GetProgram)
			r.Delete("/", h.DeleteProgram)

			r.Post("/shifts", h.AddShift)
			r.Get("/shifts", h.ListShifts)
			r.Post("/shifts/{shiftID}/bookings", h.Book)

			r.Get("/bookings", h.VisibleBookings)
			r.Get("/volunteers/{volunteerID}/bookings", h.BookingsOf)
			r.Get("/volunteers/{volunteerID}/eligibility", h.Eligibility)
			r.Get("/responsibles", h.Responsibles)
		})
	})

	r.Route("/shifts/{shiftID}", func(r chi.Router) {
		r.Delete("/", h.RemoveShift)
		r.Put("/times", h.UpdateShiftTimes)
		r.Get("/slots", h.AvailableSlots)
		r.Get("/occupancy", h.Occupancy)
	})

	r.Post("/bookings/{bookingID}/cancel", h.Cancel)

	return r
}
