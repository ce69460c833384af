package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Commands
	mux.Handle("GET /api/v1/commands", chain(http.HandlerFunc(h.ListCommands)))
	mux.Handle("POST /api/v1/commands", chain(http.HandlerFunc(h.SubmitCommand)))
	mux.Handle("GET /api/v1/commands/{id}", chain(http.HandlerFunc(h.GetCommand)))
	mux.Handle("POST /api/v1/commands/{id}/confirm", chain(http.HandlerFunc(h.ConfirmCommand)))
	mux.Handle("POST /api/v1/commands/{id}/cancel", chain(http.HandlerFunc(h.CancelCommand)))

	// Queue
	mux.Handle("GET /api/v1/queue/stats", chain(http.HandlerFunc(h.QueueStats)))

	// Schedules
	mux.Handle("GET /api/v1/schedules", chain(http.HandlerFunc(h.ListSchedules)))
	mux.Handle("POST /api/v1/schedules", chain(http.HandlerFunc(h.CreateSchedule)))
	mux.Handle("GET /api/v1/schedules/{id}", chain(http.HandlerFunc(h.GetSchedule)))
	mux.Handle("PUT /api/v1/schedules/{id}", chain(http.HandlerFunc(h.UpdateSchedule)))
	mux.Handle("DELETE /api/v1/schedules/{id}", chain(http.HandlerFunc(h.DeleteSchedule)))
	mux.Handle("PUT /api/v1/schedules/{id}/enabled", chain(http.HandlerFunc(h.SetScheduleEnabled)))
}
