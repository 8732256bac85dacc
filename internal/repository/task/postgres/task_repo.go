package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"teamCalendar/internal/logger"
	"teamCalendar/internal/models/task"
	repo "teamCalendar/internal/repository"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const taskColumns = `uuid,
				title,
				description,
				date,
				start_time,
				end_time,
				all_day,
				color,
				assignee_ids,
				resource_id,
				priority,
				repeat,
				completed,
				completed_at,
				created_by,
				created_at,
				updated_at,
				version`

type Storage struct {
	pool       *pgxpool.Pool
	connString string
}

// Option настраивает пул соединений, нулевые значения игнорируются
type Option func(*pgxpool.Config)

func WithMaxConns(n int) Option {
	return func(c *pgxpool.Config) {
		if n > 0 {
			c.MaxConns = int32(n)
		}
	}
}

func WithMinConns(n int) Option {
	return func(c *pgxpool.Config) {
		if n > 0 {
			c.MinConns = int32(n)
		}
	}
}

func WithIdleTimeout(d time.Duration) Option {
	return func(c *pgxpool.Config) {
		if d > 0 {
			c.MaxConnIdleTime = d
		}
	}
}

// New создаёт пул и ждёт, пока база начнёт отвечать на ping
func New(ctx context.Context, connString string, opts ...Option) (*Storage, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Repository: Ошибка загрузки конфига", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnIdleTime = time.Minute * 5
	for _, opt := range opts {
		opt(config)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)
	err = backoff.RetryNotify(func() error {
		return pool.Ping(ctx)
	}, policy, func(err error, next time.Duration) {
		logger.Warn("Repository: PostgreSQL не отвечает, повтор", zap.Error(err), zap.Duration("next", next))
	})
	if err != nil {
		pool.Close()
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное создание подключения к PostgreSQL")
	return &Storage{pool: pool, connString: connString}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
}

// Pool нужен publisher'у присутствия, он пишет в ту же базу
func (s *Storage) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	err := s.pool.Ping(ctx)
	if err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	logger.Debug("Repository: Соединение стабильно")
	return nil
}

func slow(start time.Time, limit time.Duration, op string) {
	if elapsed := time.Since(start); elapsed > limit {
		logger.Warn("Repository: Медленный запрос", zap.String("op", op), zap.Duration("ms", elapsed))
	}
}

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()

	query := `INSERT INTO tasks
				(uuid, title, description, date, start_time, end_time, all_day, color,
				 assignee_ids, resource_id, priority, repeat, completed, completed_at, created_by, version)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, 0)
				RETURNING created_at, version`

	err := s.pool.QueryRow(ctx, query,
		taskToCreate.UUID,
		taskToCreate.Title,
		taskToCreate.Description,
		taskToCreate.Date,
		taskToCreate.StartTime,
		taskToCreate.EndTime,
		taskToCreate.AllDay,
		taskToCreate.Color,
		taskToCreate.AssigneeIDs,
		taskToCreate.ResourceID,
		taskToCreate.Priority,
		taskToCreate.Repeat,
		taskToCreate.Completed,
		taskToCreate.CompletedAt,
		taskToCreate.CreatedBy,
	).Scan(&taskToCreate.CreatedAt, &taskToCreate.Version)

	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}

	slow(start, time.Millisecond*50, "create")
	return nil
}

func (s *Storage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	start := time.Now()

	query := `UPDATE tasks
			SET title = $1,
				description = $2,
				date = $3,
				start_time = $4,
				end_time = $5,
				all_day = $6,
				color = $7,
				assignee_ids = $8,
				resource_id = $9,
				priority = $10,
				repeat = $11,
				completed = $12,
				completed_at = $13,
				version = version + 1,
				updated_at = NOW()
			WHERE uuid = $14 AND version = $15
			RETURNING updated_at, version`

	err := s.pool.QueryRow(ctx, query,
		taskToUpdate.Title,
		taskToUpdate.Description,
		taskToUpdate.Date,
		taskToUpdate.StartTime,
		taskToUpdate.EndTime,
		taskToUpdate.AllDay,
		taskToUpdate.Color,
		taskToUpdate.AssigneeIDs,
		taskToUpdate.ResourceID,
		taskToUpdate.Priority,
		taskToUpdate.Repeat,
		taskToUpdate.Completed,
		taskToUpdate.CompletedAt,
		taskToUpdate.UUID,
		taskToUpdate.Version,
	).Scan(&taskToUpdate.UpdatedAt, &taskToUpdate.Version)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s.missingOrConflict(ctx, taskToUpdate)
		}
		logger.Error("Repository: Не удалось обновить задачу", err)
		return fmt.Errorf("обновление задачи: %w", err)
	}

	slow(start, time.Millisecond*100, "update")
	return nil
}

// missingOrConflict различает удалённую задачу и устаревшую версию
func (s *Storage) missingOrConflict(ctx context.Context, t *task.Task) error {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tasks WHERE uuid = $1)`, t.UUID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("проверка существования задачи: %w", err)
	}
	if !exists {
		return repo.ErrNotFound
	}
	logger.Warn("Repository: Конфликт версий при обновлении задачи",
		zap.String("task_id", t.UUID.String()),
		zap.Int("expected_version", t.Version))
	return repo.ErrVersionConflict
}

func (s *Storage) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	start := time.Now()

	query := `SELECT ` + taskColumns + `
				FROM tasks
				WHERE uuid = $1`

	t, err := scanTask(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	slow(start, time.Millisecond*100, "get")
	return t, nil
}

// List - все задачи, упорядоченные по дате и времени начала
func (s *Storage) List(ctx context.Context) ([]*task.Task, error) {
	start := time.Now()

	query := `SELECT ` + taskColumns + `
				FROM tasks
				ORDER BY date, all_day DESC, start_time, created_at`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Error("Repository: Ошибка сканирования задачи", err)
			return nil, fmt.Errorf("сканирование задачи: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	slow(start, time.Millisecond*50+time.Millisecond*time.Duration(len(tasks)), "list")
	return tasks, nil
}

// полное удаление из БД
func (s *Storage) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()

	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE uuid = $1`, id)
	if err != nil {
		logger.Error("Repository: Полное удаление задачи", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("полное удаление: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	slow(start, time.Millisecond*100, "delete")
	return nil
}

func scanTask(row pgx.Row) (*task.Task, error) {
	t := &task.Task{}
	err := row.Scan(
		&t.UUID,
		&t.Title,
		&t.Description,
		&t.Date,
		&t.StartTime,
		&t.EndTime,
		&t.AllDay,
		&t.Color,
		&t.AssigneeIDs,
		&t.ResourceID,
		&t.Priority,
		&t.Repeat,
		&t.Completed,
		&t.CompletedAt,
		&t.CreatedBy,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.Version,
	)
	if err != nil {
		return nil, err
	}
	t.Date = task.Day(t.Date)
	return t, nil
}
