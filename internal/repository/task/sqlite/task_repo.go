// Package sqlite - файловое хранилище задач для запуска без PostgreSQL.
// Один процесс на файл, второй получает repository.ErrLocked.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"teamCalendar/internal/logger"
	"teamCalendar/internal/models/task"
	repo "teamCalendar/internal/repository"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

const taskColumns = `uuid, title, description, date, start_time, end_time, all_day, color,
	assignee_ids, resource_id, priority, repeat, completed, completed_at, created_by,
	created_at, updated_at, version`

type Storage struct {
	db   *sql.DB
	lock *flock.Flock
}

func Open(ctx context.Context, path string) (*Storage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("создание каталога данных: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("захват блокировки: %w", err)
	}
	if !locked {
		logger.Warn("Repository: Файл базы занят другим процессом", zap.String("path", path))
		return nil, repo.ErrLocked
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("открытие базы: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("проверка соединения: %w", err)
	}

	goose.SetLogger(zap.NewStdLog(logger.Logger))
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("диалект миграций: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		db.Close()
		_ = lock.Unlock()
		logger.Error("Repository: Не удалось применить миграции SQLite", err)
		return nil, fmt.Errorf("применение миграций: %w", err)
	}

	logger.Info("Repository: Открыта база SQLite", zap.String("path", path))
	return &Storage{db: db, lock: lock}, nil
}

func (s *Storage) Close() error {
	err := s.db.Close()
	if uerr := s.lock.Unlock(); err == nil {
		err = uerr
	}
	logger.Info("Repository: База SQLite закрыта")
	return err
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Storage) Create(ctx context.Context, t *task.Task) error {
	assignees, err := json.Marshal(t.AssigneeIDs)
	if err != nil {
		return fmt.Errorf("сериализация исполнителей: %w", err)
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, 0)`,
		t.UUID.String(),
		t.Title,
		t.Description,
		task.FormatDay(t.Date),
		t.StartTime,
		t.EndTime,
		t.AllDay,
		string(t.Color),
		string(assignees),
		t.ResourceID,
		string(t.Priority),
		string(t.Repeat),
		t.Completed,
		formatTime(t.CompletedAt),
		t.CreatedBy,
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err)
		return fmt.Errorf("добавление задачи: %w", err)
	}

	t.CreatedAt = now
	t.Version = 0
	return nil
}

func (s *Storage) Update(ctx context.Context, t *task.Task) error {
	assignees, err := json.Marshal(t.AssigneeIDs)
	if err != nil {
		return fmt.Errorf("сериализация исполнителей: %w", err)
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `UPDATE tasks
		SET title = ?, description = ?, date = ?, start_time = ?, end_time = ?, all_day = ?,
			color = ?, assignee_ids = ?, resource_id = ?, priority = ?, repeat = ?,
			completed = ?, completed_at = ?, updated_at = ?, version = version + 1
		WHERE uuid = ? AND version = ?`,
		t.Title,
		t.Description,
		task.FormatDay(t.Date),
		t.StartTime,
		t.EndTime,
		t.AllDay,
		string(t.Color),
		string(assignees),
		t.ResourceID,
		string(t.Priority),
		string(t.Repeat),
		t.Completed,
		formatTime(t.CompletedAt),
		now.Format(time.RFC3339Nano),
		t.UUID.String(),
		t.Version,
	)
	if err != nil {
		logger.Error("Repository: Не удалось обновить задачу", err)
		return fmt.Errorf("обновление задачи: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("обновление задачи: %w", err)
	}
	if n == 0 {
		if _, err := s.GetByID(ctx, t.UUID); err != nil {
			return err
		}
		logger.Warn("Repository: Конфликт версий при обновлении задачи",
			zap.String("task_id", t.UUID.String()),
			zap.Int("expected_version", t.Version))
		return repo.ErrVersionConflict
	}

	t.UpdatedAt = &now
	t.Version++
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE uuid = ?`, id.String())
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err)
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return t, nil
}

func (s *Storage) List(ctx context.Context) ([]*task.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks
		ORDER BY date, all_day DESC, start_time, created_at`)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err)
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
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}
	return tasks, nil
}

func (s *Storage) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE uuid = ?`, id.String())
	if err != nil {
		logger.Error("Repository: Полное удаление задачи", err)
		return fmt.Errorf("полное удаление: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("полное удаление: %w", err)
	}
	if n == 0 {
		return repo.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*task.Task, error) {
	var (
		t                              task.Task
		id, date, assignees, createdAt string
		color, priority, repeat        string
		completedAt, updatedAt         sql.NullString
	)
	err := row.Scan(
		&id, &t.Title, &t.Description, &date, &t.StartTime, &t.EndTime, &t.AllDay, &color,
		&assignees, &t.ResourceID, &priority, &repeat, &t.Completed, &completedAt, &t.CreatedBy,
		&createdAt, &updatedAt, &t.Version,
	)
	if err != nil {
		return nil, err
	}

	if t.UUID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("uuid %q: %w", id, err)
	}
	if t.Date, err = task.ParseDay(date); err != nil {
		return nil, fmt.Errorf("дата %q: %w", date, err)
	}
	if err := json.Unmarshal([]byte(assignees), &t.AssigneeIDs); err != nil {
		return nil, fmt.Errorf("исполнители: %w", err)
	}
	if t.AssigneeIDs == nil {
		t.AssigneeIDs = []string{}
	}
	if t.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("created_at %q: %w", createdAt, err)
	}
	t.Color = task.Color(color)
	t.Priority = task.Priority(priority)
	t.Repeat = task.Repeat(repeat)
	t.CompletedAt = parseTime(completedAt)
	t.UpdatedAt = parseTime(updatedAt)
	return &t, nil
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil
	}
	return &t
}
