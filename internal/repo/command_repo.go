package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Tradomata/internal/domain"
)

// CommandRepo — репозиторий для работы с командами.
// Хранит журнал команд: каждый переход жизненного цикла фиксируется
// через Update, так что после рестарта видна последняя стадия.
type CommandRepo struct {
	pool *pgxpool.Pool
}

// NewCommandRepo создаёт новый CommandRepo.
func NewCommandRepo(pool *pgxpool.Pool) *CommandRepo {
	return &CommandRepo{pool: pool}
}

// Create создаёт новую команду.
func (r *CommandRepo) Create(ctx context.Context, cmd *domain.Command) error {
	intentJSON, validationJSON, executionJSON, failureJSON, err := marshalCommandBlobs(cmd)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO commands (id, text, source, priority, status, intent, validation,
		                      execution, failure, cancel_reason, created_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = r.pool.Exec(ctx, query,
		cmd.ID,
		cmd.Text,
		nullString(cmd.Source),
		cmd.Priority,
		cmd.Status,
		intentJSON,
		validationJSON,
		executionJSON,
		failureJSON,
		nullString(string(cmd.CancelReason)),
		cmd.CreatedAt,
		cmd.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert command: %w", err)
	}
	return nil
}

// GetByID возвращает команду по ID.
func (r *CommandRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Command, error) {
	query := `
		SELECT id, text, source, priority, status, intent, validation,
		       execution, failure, cancel_reason, created_at, finished_at
		FROM commands
		WHERE id = $1
	`
	return scanCommand(r.pool.QueryRow(ctx, query, id))
}

// List возвращает список команд с фильтрацией.
func (r *CommandRepo) List(ctx context.Context, filter CommandFilter) ([]domain.Command, error) {
	query := `
		SELECT id, text, source, priority, status, intent, validation,
		       execution, failure, cancel_reason, created_at, finished_at
		FROM commands
		WHERE ($1::text IS NULL OR status = $1)
		  AND ($2::text IS NULL OR source = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query,
		nullString(string(filter.Status)),
		nullString(filter.Source),
		filter.Limit,
		filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list commands: %w", err)
	}
	defer rows.Close()

	var commands []domain.Command
	for rows.Next() {
		cmd, err := scanCommandFromRows(rows)
		if err != nil {
			return nil, err
		}
		commands = append(commands, *cmd)
	}
	return commands, rows.Err()
}

// Update обновляет команду.
func (r *CommandRepo) Update(ctx context.Context, cmd *domain.Command) error {
	intentJSON, validationJSON, executionJSON, failureJSON, err := marshalCommandBlobs(cmd)
	if err != nil {
		return err
	}

	query := `
		UPDATE commands
		SET priority = $2, status = $3, intent = $4, validation = $5,
		    execution = $6, failure = $7, cancel_reason = $8, finished_at = $9
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		cmd.ID,
		cmd.Priority,
		cmd.Status,
		intentJSON,
		validationJSON,
		executionJSON,
		failureJSON,
		nullString(string(cmd.CancelReason)),
		cmd.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("update command: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Helpers ---

// CommandFilter — параметры фильтрации команд.
type CommandFilter struct {
	Status domain.CommandStatus
	Source string
	Limit  int
	Offset int
}

// marshalCommandBlobs сериализует опциональные части команды в jsonb.
func marshalCommandBlobs(cmd *domain.Command) (intent, validation, execution, failure []byte, err error) {
	if cmd.Intent != nil {
		if intent, err = json.Marshal(cmd.Intent); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("marshal intent: %w", err)
		}
	}
	if cmd.Validation != nil {
		if validation, err = json.Marshal(cmd.Validation); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("marshal validation: %w", err)
		}
	}
	if cmd.Execution != nil {
		if execution, err = json.Marshal(cmd.Execution); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("marshal execution: %w", err)
		}
	}
	if cmd.Failure != nil {
		if failure, err = json.Marshal(cmd.Failure); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("marshal failure: %w", err)
		}
	}
	return intent, validation, execution, failure, nil
}

func scanCommand(row pgx.Row) (*domain.Command, error) {
	var cmd domain.Command
	var source, cancelReason *string
	var intentJSON, validationJSON, executionJSON, failureJSON []byte

	err := row.Scan(
		&cmd.ID,
		&cmd.Text,
		&source,
		&cmd.Priority,
		&cmd.Status,
		&intentJSON,
		&validationJSON,
		&executionJSON,
		&failureJSON,
		&cancelReason,
		&cmd.CreatedAt,
		&cmd.FinishedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan command: %w", err)
	}

	return hydrateCommand(&cmd, source, cancelReason, intentJSON, validationJSON, executionJSON, failureJSON)
}

func scanCommandFromRows(rows pgx.Rows) (*domain.Command, error) {
	var cmd domain.Command
	var source, cancelReason *string
	var intentJSON, validationJSON, executionJSON, failureJSON []byte

	err := rows.Scan(
		&cmd.ID,
		&cmd.Text,
		&source,
		&cmd.Priority,
		&cmd.Status,
		&intentJSON,
		&validationJSON,
		&executionJSON,
		&failureJSON,
		&cancelReason,
		&cmd.CreatedAt,
		&cmd.FinishedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan command: %w", err)
	}

	return hydrateCommand(&cmd, source, cancelReason, intentJSON, validationJSON, executionJSON, failureJSON)
}

// hydrateCommand восстанавливает опциональные поля из jsonb.
func hydrateCommand(cmd *domain.Command, source, cancelReason *string, intentJSON, validationJSON, executionJSON, failureJSON []byte) (*domain.Command, error) {
	if source != nil {
		cmd.Source = *source
	}
	if cancelReason != nil {
		cmd.CancelReason = domain.CancelReason(*cancelReason)
	}

	if intentJSON != nil {
		cmd.Intent = &domain.Intent{}
		if err := json.Unmarshal(intentJSON, cmd.Intent); err != nil {
			return nil, fmt.Errorf("unmarshal intent: %w", err)
		}
	}
	if validationJSON != nil {
		cmd.Validation = &domain.ValidationResult{}
		if err := json.Unmarshal(validationJSON, cmd.Validation); err != nil {
			return nil, fmt.Errorf("unmarshal validation: %w", err)
		}
	}
	if executionJSON != nil {
		cmd.Execution = &domain.ExecutionReport{}
		if err := json.Unmarshal(executionJSON, cmd.Execution); err != nil {
			return nil, fmt.Errorf("unmarshal execution: %w", err)
		}
	}
	if failureJSON != nil {
		cmd.Failure = &domain.Failure{}
		if err := json.Unmarshal(failureJSON, cmd.Failure); err != nil {
			return nil, fmt.Errorf("unmarshal failure: %w", err)
		}
	}

	return cmd, nil
}

// nullString возвращает nil для пустой строки (для NULL в БД).
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// nullInt возвращает nil для нулевого int.
func nullInt(i int) *int {
	if i == 0 {
		return nil
	}
	return &i
}
