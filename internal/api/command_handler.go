package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shaiso/Tradomata/internal/domain"
	"github.com/shaiso/Tradomata/internal/orchestrator"
	"github.com/shaiso/Tradomata/internal/repo"
)

// SubmitCommand принимает новую команду.
// POST /api/v1/commands
func (h *Handler) SubmitCommand(w http.ResponseWriter, r *http.Request) {
	var req SubmitCommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		BadRequest(w, "text is required")
		return
	}

	submitReq := orchestrator.SubmitRequest{
		Text:     req.Text,
		Source:   "api",
		Priority: req.Priority,
	}
	if req.ID != nil {
		submitReq.ID = *req.ID
	}

	cmd, err := h.orch.Submit(r.Context(), submitReq)
	if HandleEngineError(w, h.logger, err, "command not found") {
		return
	}

	Accepted(w, CommandFromDomain(cmd))
}

// GetCommand возвращает команду по ID.
// GET /api/v1/commands/{id}
func (h *Handler) GetCommand(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid command id")
		return
	}

	cmd, err := h.orch.Get(r.Context(), id)
	if HandleEngineError(w, h.logger, err, "command not found") {
		return
	}

	Success(w, CommandFromDomain(cmd))
}

// ConfirmCommand подтверждает команду в окне подтверждения.
// POST /api/v1/commands/{id}/confirm
func (h *Handler) ConfirmCommand(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid command id")
		return
	}

	cmd, err := h.orch.Confirm(r.Context(), id)
	if HandleEngineError(w, h.logger, err, "command not found") {
		return
	}

	Success(w, CommandFromDomain(cmd))
}

// CancelCommand отменяет команду.
// POST /api/v1/commands/{id}/cancel
func (h *Handler) CancelCommand(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid command id")
		return
	}

	cmd, err := h.orch.Cancel(r.Context(), id)
	if HandleEngineError(w, h.logger, err, "command not found") {
		return
	}

	Success(w, CommandFromDomain(cmd))
}

// ListCommands возвращает список команд из журнала.
// GET /api/v1/commands?status=...&source=...&limit=...&offset=...
func (h *Handler) ListCommands(w http.ResponseWriter, r *http.Request) {
	if h.commandRepo == nil {
		Unavailable(w, "command journal is not configured")
		return
	}

	filter := repo.CommandFilter{Limit: 50}

	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = domain.CommandStatus(status)
	}
	if source := r.URL.Query().Get("source"); source != "" {
		filter.Source = source
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		filter.Limit = parseIntOr(limitStr, 50)
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		filter.Offset = parseIntOr(offsetStr, 0)
	}

	commands, err := h.commandRepo.List(r.Context(), filter)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]CommandResponse, len(commands))
	for i := range commands {
		result[i] = CommandFromDomain(&commands[i])
	}

	List(w, result, len(result))
}

// QueueStats возвращает статистику приоритетной очереди.
// GET /api/v1/queue/stats
func (h *Handler) QueueStats(w http.ResponseWriter, r *http.Request) {
	Success(w, QueueStatsFromDomain(h.orch.QueueStats()))
}

// parseIntOr парсит строку в int с дефолтным значением.
func parseIntOr(s string, defaultVal int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return n
}
