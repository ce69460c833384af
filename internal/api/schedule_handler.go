package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Tradomata/internal/domain"
	"github.com/shaiso/Tradomata/internal/repo"
	"github.com/shaiso/Tradomata/internal/scheduler"
)

// ListSchedules возвращает список schedules с фильтрацией.
// GET /api/v1/schedules?enabled=...&limit=...&offset=...
func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	if h.scheduleRepo == nil {
		Unavailable(w, "schedule store is not configured")
		return
	}

	filter := repo.ScheduleFilter{Limit: 50}

	if enabledStr := r.URL.Query().Get("enabled"); enabledStr != "" {
		enabled := enabledStr == "true"
		filter.Enabled = &enabled
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		filter.Limit = parseIntOr(limitStr, 50)
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		filter.Offset = parseIntOr(offsetStr, 0)
	}

	schedules, err := h.scheduleRepo.List(r.Context(), filter)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]ScheduleResponse, len(schedules))
	for i := range schedules {
		result[i] = ScheduleFromDomain(&schedules[i])
	}

	List(w, result, len(result))
}

// CreateSchedule создаёт новый schedule.
// POST /api/v1/schedules
func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	if h.scheduleRepo == nil {
		Unavailable(w, "schedule store is not configured")
		return
	}

	var req CreateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	// Валидация
	if req.Name == "" {
		BadRequest(w, "name is required")
		return
	}
	if req.CommandText == "" {
		BadRequest(w, "command_text is required")
		return
	}
	if req.CronExpr == "" && req.IntervalSec <= 0 {
		BadRequest(w, "either cron_expr or interval_sec is required")
		return
	}
	if req.CronExpr != "" {
		if err := scheduler.ValidateCronExpr(req.CronExpr); err != nil {
			BadRequest(w, err.Error())
			return
		}
	}

	timezone := req.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	now := time.Now()
	schedule := &domain.Schedule{
		ID:          uuid.New(),
		Name:        req.Name,
		CommandText: req.CommandText,
		Priority:    req.Priority,
		CronExpr:    req.CronExpr,
		IntervalSec: req.IntervalSec,
		Timezone:    timezone,
		Enabled:     req.Enabled,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	nextDue, err := scheduler.CalculateInitialNextDue(schedule)
	if err != nil {
		BadRequest(w, err.Error())
		return
	}
	schedule.NextDueAt = &nextDue

	if err := h.scheduleRepo.Create(r.Context(), schedule); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	Created(w, ScheduleFromDomain(schedule))
}

// GetSchedule возвращает schedule по ID.
// GET /api/v1/schedules/{id}
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	if h.scheduleRepo == nil {
		Unavailable(w, "schedule store is not configured")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid schedule id")
		return
	}

	schedule, err := h.scheduleRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "schedule not found") {
		return
	}

	Success(w, ScheduleFromDomain(schedule))
}

// UpdateSchedule обновляет schedule.
// PUT /api/v1/schedules/{id}
func (h *Handler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	if h.scheduleRepo == nil {
		Unavailable(w, "schedule store is not configured")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid schedule id")
		return
	}

	var req UpdateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	schedule, err := h.scheduleRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "schedule not found") {
		return
	}

	if req.Name != nil {
		schedule.Name = *req.Name
	}
	if req.CommandText != nil {
		schedule.CommandText = *req.CommandText
	}
	if req.Priority != nil {
		schedule.Priority = *req.Priority
	}
	if req.CronExpr != nil {
		if *req.CronExpr != "" {
			if err := scheduler.ValidateCronExpr(*req.CronExpr); err != nil {
				BadRequest(w, err.Error())
				return
			}
		}
		schedule.CronExpr = *req.CronExpr
	}
	if req.IntervalSec != nil {
		schedule.IntervalSec = *req.IntervalSec
	}
	if req.Timezone != nil {
		schedule.Timezone = *req.Timezone
	}

	// Смена расписания сдвигает следующее срабатывание
	if req.CronExpr != nil || req.IntervalSec != nil || req.Timezone != nil {
		nextDue, err := scheduler.CalculateInitialNextDue(schedule)
		if err != nil {
			BadRequest(w, err.Error())
			return
		}
		schedule.NextDueAt = &nextDue
	}

	schedule.UpdatedAt = time.Now()

	if err := h.scheduleRepo.Update(r.Context(), schedule); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	Success(w, ScheduleFromDomain(schedule))
}

// DeleteSchedule удаляет schedule.
// DELETE /api/v1/schedules/{id}
func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	if h.scheduleRepo == nil {
		Unavailable(w, "schedule store is not configured")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid schedule id")
		return
	}

	if err := h.scheduleRepo.Delete(r.Context(), id); err != nil {
		HandleRepoError(w, h.logger, err, "schedule not found")
		return
	}

	NoContent(w)
}

// SetScheduleEnabled включает или выключает schedule.
// PUT /api/v1/schedules/{id}/enabled
func (h *Handler) SetScheduleEnabled(w http.ResponseWriter, r *http.Request) {
	if h.scheduleRepo == nil {
		Unavailable(w, "schedule store is not configured")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid schedule id")
		return
	}

	var req SetEnabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if err := h.scheduleRepo.SetEnabled(r.Context(), id, req.Enabled); err != nil {
		HandleRepoError(w, h.logger, err, "schedule not found")
		return
	}

	// Возвращаем обновлённый schedule
	schedule, err := h.scheduleRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "schedule not found") {
		return
	}

	Success(w, ScheduleFromDomain(schedule))
}
