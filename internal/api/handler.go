package api

import (
	"log/slog"

	"github.com/shaiso/Tradomata/internal/orchestrator"
	"github.com/shaiso/Tradomata/internal/repo"
)

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	orch         *orchestrator.Orchestrator
	commandRepo  *repo.CommandRepo
	scheduleRepo *repo.ScheduleRepo
	logger       *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	// Orchestrator — движок команд (обязателен).
	Orchestrator *orchestrator.Orchestrator

	// CommandRepo — журнал команд для листинга (опционален).
	CommandRepo *repo.CommandRepo

	// ScheduleRepo — хранилище расписаний (опционален).
	ScheduleRepo *repo.ScheduleRepo

	Logger *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		orch:         cfg.Orchestrator,
		commandRepo:  cfg.CommandRepo,
		scheduleRepo: cfg.ScheduleRepo,
		logger:       cfg.Logger,
	}
}
