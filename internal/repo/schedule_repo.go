package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Tradomata/internal/domain"
)

// ScheduleRepo — репозиторий для работы с расписаниями команд.
type ScheduleRepo struct {
	pool *pgxpool.Pool
}

// NewScheduleRepo создаёт новый ScheduleRepo.
func NewScheduleRepo(pool *pgxpool.Pool) *ScheduleRepo {
	return &ScheduleRepo{pool: pool}
}

// Create создаёт новое расписание.
func (r *ScheduleRepo) Create(ctx context.Context, schedule *domain.Schedule) error {
	query := `
		INSERT INTO schedules (id, name, command_text, priority, cron_expr, interval_sec,
		                       timezone, enabled, next_due_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.pool.Exec(ctx, query,
		schedule.ID,
		nullString(schedule.Name),
		schedule.CommandText,
		schedule.Priority,
		nullString(schedule.CronExpr),
		nullInt(schedule.IntervalSec),
		schedule.Timezone,
		schedule.Enabled,
		schedule.NextDueAt,
		schedule.CreatedAt,
		schedule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert schedule: %w", err)
	}
	return nil
}

// GetByID возвращает расписание по ID.
func (r *ScheduleRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Schedule, error) {
	query := `
		SELECT id, name, command_text, priority, cron_expr, interval_sec, timezone,
		       enabled, next_due_at, last_run_at, last_command_id, created_at, updated_at
		FROM schedules
		WHERE id = $1
	`
	return r.scanSchedule(r.pool.QueryRow(ctx, query, id))
}

// List возвращает список расписаний с фильтрацией.
func (r *ScheduleRepo) List(ctx context.Context, filter ScheduleFilter) ([]domain.Schedule, error) {
	query := `
		SELECT id, name, command_text, priority, cron_expr, interval_sec, timezone,
		       enabled, next_due_at, last_run_at, last_command_id, created_at, updated_at
		FROM schedules
		WHERE ($1::boolean IS NULL OR enabled = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query,
		filter.Enabled,
		filter.Limit,
		filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	var schedules []domain.Schedule
	for rows.Next() {
		schedule, err := r.scanScheduleFromRows(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, *schedule)
	}
	return schedules, rows.Err()
}

// ListDue возвращает расписания, готовые к выполнению.
func (r *ScheduleRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]domain.Schedule, error) {
	query := `
		SELECT id, name, command_text, priority, cron_expr, interval_sec, timezone,
		       enabled, next_due_at, last_run_at, last_command_id, created_at, updated_at
		FROM schedules
		WHERE enabled = true
		  AND next_due_at IS NOT NULL
		  AND next_due_at <= $1
		ORDER BY next_due_at ASC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list due schedules: %w", err)
	}
	defer rows.Close()

	var schedules []domain.Schedule
	for rows.Next() {
		schedule, err := r.scanScheduleFromRows(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, *schedule)
	}
	return schedules, rows.Err()
}

// Update обновляет расписание.
func (r *ScheduleRepo) Update(ctx context.Context, schedule *domain.Schedule) error {
	query := `
		UPDATE schedules
		SET name = $2, command_text = $3, priority = $4, cron_expr = $5,
		    interval_sec = $6, timezone = $7, enabled = $8, next_due_at = $9,
		    last_run_at = $10, last_command_id = $11, updated_at = $12
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		schedule.ID,
		nullString(schedule.Name),
		schedule.CommandText,
		schedule.Priority,
		nullString(schedule.CronExpr),
		nullInt(schedule.IntervalSec),
		schedule.Timezone,
		schedule.Enabled,
		schedule.NextDueAt,
		schedule.LastRunAt,
		schedule.LastCommandID,
		schedule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete удаляет расписание.
func (r *ScheduleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetEnabled включает/выключает расписание.
func (r *ScheduleRepo) SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE schedules SET enabled = $2, updated_at = NOW() WHERE id = $1
	`, id, enabled)
	if err != nil {
		return fmt.Errorf("set enabled: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Helpers ---

// ScheduleFilter — параметры фильтрации расписаний.
type ScheduleFilter struct {
	Enabled *bool
	Limit   int
	Offset  int
}

func (r *ScheduleRepo) scanSchedule(row pgx.Row) (*domain.Schedule, error) {
	var s domain.Schedule
	var name, cronExpr *string
	var intervalSec *int

	err := row.Scan(
		&s.ID,
		&name,
		&s.CommandText,
		&s.Priority,
		&cronExpr,
		&intervalSec,
		&s.Timezone,
		&s.Enabled,
		&s.NextDueAt,
		&s.LastRunAt,
		&s.LastCommandID,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan schedule: %w", err)
	}

	if name != nil {
		s.Name = *name
	}
	if cronExpr != nil {
		s.CronExpr = *cronExpr
	}
	if intervalSec != nil {
		s.IntervalSec = *intervalSec
	}

	return &s, nil
}

func (r *ScheduleRepo) scanScheduleFromRows(rows pgx.Rows) (*domain.Schedule, error) {
	var s domain.Schedule
	var name, cronExpr *string
	var intervalSec *int

	err := rows.Scan(
		&s.ID,
		&name,
		&s.CommandText,
		&s.Priority,
		&cronExpr,
		&intervalSec,
		&s.Timezone,
		&s.Enabled,
		&s.NextDueAt,
		&s.LastRunAt,
		&s.LastCommandID,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan schedule: %w", err)
	}

	if name != nil {
		s.Name = *name
	}
	if cronExpr != nil {
		s.CronExpr = *cronExpr
	}
	if intervalSec != nil {
		s.IntervalSec = *intervalSec
	}

	return &s, nil
}
