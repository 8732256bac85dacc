package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"teamCalendar/internal/calendar"
	"teamCalendar/internal/logger"
	"teamCalendar/internal/models/task"
	rep "teamCalendar/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// здесь происходит проверка ошибок бизнес-логики

type RepoType string

const (
	DBType       RepoType = "postgres"
	SQLiteType   RepoType = "sqlite"
	InMemoryType RepoType = "inmemory"
)

type TaskService struct {
	repo      TaskRepository
	people    PeopleDirectory
	resources []calendar.Resource
	observers []TaskObserver
	RepoType  RepoType
	Now       func() time.Time
}

// NewTaskService: people и resources могут быть nil, тогда исполнители и ресурсы не проверяются
func NewTaskService(repo TaskRepository, repoType RepoType, people PeopleDirectory, resources []calendar.Resource) *TaskService {
	return &TaskService{
		repo:      repo,
		people:    people,
		resources: resources,
		RepoType:  repoType,
		Now:       time.Now,
	}
}

func (s *TaskService) Subscribe(o TaskObserver) {
	s.observers = append(s.observers, o)
}

func (s *TaskService) emit(ctx context.Context, kind EventKind, t *task.Task) {
	ev := TaskEvent{Kind: kind, Task: t.Clone()}
	for _, o := range s.observers {
		o.TaskChanged(ctx, ev)
	}
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		logger.Error("Service: Хранилище недоступно", err, zap.String("repo", string(s.RepoType)))
		return fmt.Errorf("проверка здоровья сервиса: %w", err)
	}
	return nil
}

func (s *TaskService) CreateTask(ctx context.Context, opts ...task.TaskOption) (*task.Task, error) {
	t := &task.Task{UUID: uuid.New()}
	task.Apply(t, opts...)
	t.Normalize()

	if err := s.check(ctx, t); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, t); err != nil {
		logger.Error("Service: Не удалось создать задачу", err)
		return nil, fmt.Errorf("создание задачи: %w", err)
	}

	logger.Info("Service: Задача создана",
		zap.String("task_id", t.UUID.String()),
		zap.String("date", task.FormatDay(t.Date)),
		zap.Strings("assignees", t.AssigneeIDs))
	s.emit(ctx, EventCreated, t)
	return t, nil
}

// TaskFilter - пустые поля не ограничивают выборку
type TaskFilter struct {
	AssigneeID string
	From, To   time.Time
}

func (s *TaskService) GetTasks(ctx context.Context, filter TaskFilter) ([]*task.Task, error) {
	tasks, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}

	tasks = calendar.FilterByAssignee(tasks, filter.AssigneeID)
	if !filter.From.IsZero() || !filter.To.IsZero() {
		from, to := filter.From, filter.To
		if to.IsZero() {
			to = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
		}
		tasks = calendar.InRange(tasks, from, to)
	}
	return tasks, nil
}

func (s *TaskService) GetTaskByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.String("target_id", id.String()))
		}
		return nil, fromRepo(nil, id.String(), "получение задачи", err)
	}
	return t, nil
}

// UpdateTask применяет частичные изменения. Если среди опций есть WithVersion,
// запись пройдёт только при совпадении версии.
func (s *TaskService) UpdateTask(ctx context.Context, id uuid.UUID, opts ...task.TaskOption) (*task.Task, error) {
	t, err := s.GetTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}
	prevDate := t.Date
	prevCompleted, prevCompletedAt := t.Completed, t.CompletedAt

	task.Apply(t, opts...)
	t.Normalize()
	// повторное завершение перезаписало бы completed_at
	if prevCompleted && t.Completed && t.CompletedAt != prevCompletedAt {
		return nil, alreadyCompleted(id, prevCompletedAt)
	}
	if err := s.check(ctx, t); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, fromRepo(t, id.String(), "обновление задачи", err)
	}

	kind := EventUpdated
	switch {
	case !prevCompleted && t.Completed:
		kind = EventCompleted
	case !task.SameDay(prevDate, t.Date):
		kind = EventMoved
	}
	logger.Info("Service: Задача обновлена", zap.String("task_id", id.String()), zap.Int("version", t.Version))
	s.emit(ctx, kind, t)
	return t, nil
}

// DeleteTask удаляет задачу безвозвратно
func (s *TaskService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	t, err := s.GetTaskByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fromRepo(t, id.String(), "удаление задачи", err)
	}

	logger.Info("Service: Задача удалена", zap.String("task_id", id.String()))
	s.emit(ctx, EventDeleted, t)
	return nil
}

func (s *TaskService) CompleteTask(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	t, err := s.GetTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Completed {
		return nil, alreadyCompleted(id, t.CompletedAt)
	}

	task.Apply(t, task.WithCompleted(true, s.Now()))
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, fromRepo(t, id.String(), "завершение задачи", err)
	}

	logger.Info("Service: Задача выполнена", zap.String("task_id", id.String()))
	s.emit(ctx, EventCompleted, t)
	return t, nil
}

func alreadyCompleted(id uuid.UUID, at *time.Time) *BusinessError {
	return NewBusinessError(CodeAlreadyCompleted,
		fmt.Sprintf("Задача %s уже выполнена", id),
		ToDetail("id", id.String()),
		ToDetail("completed_at", at))
}

// MoveTask переносит задачу на другой день (drag-and-drop).
// Перенос в тот же день ничего не записывает и возвращает moved=false.
func (s *TaskService) MoveTask(ctx context.Context, id uuid.UUID, day time.Time) (*task.Task, bool, error) {
	if day.IsZero() {
		return nil, false, NewValidationError("date", "обязательное поле")
	}

	t, err := s.GetTaskByID(ctx, id)
	if err != nil {
		return nil, false, err
	}

	target, moved := calendar.Drop(t, day)
	if !moved {
		logger.Debug("Service: Задача уже в этом дне", zap.String("task_id", id.String()))
		return t, false, nil
	}

	task.Apply(t, task.WithDate(target))
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, false, fromRepo(t, id.String(), "перенос задачи", err)
	}

	logger.Info("Service: Задача перенесена",
		zap.String("task_id", id.String()),
		zap.String("date", task.FormatDay(target)))
	s.emit(ctx, EventMoved, t)
	return t, true, nil
}

// check - проверка полей модели, исполнителей и ресурса
func (s *TaskService) check(ctx context.Context, t *task.Task) error {
	if err := t.Validate(); err != nil {
		return fromValidation(err)
	}

	if s.people != nil {
		for _, id := range t.AssigneeIDs {
			if _, err := s.people.Get(ctx, id); err != nil {
				if errors.Is(err, rep.ErrNotFound) {
					return NewValidationError("assignee_ids", fmt.Sprintf("неизвестный сотрудник %q", id))
				}
				return fmt.Errorf("проверка исполнителя: %w", err)
			}
		}
	}

	if t.ResourceID != "" && s.resources != nil {
		known := slices.ContainsFunc(s.resources, func(r calendar.Resource) bool { return r.ID == t.ResourceID })
		if !known {
			return NewValidationError("resource_id", fmt.Sprintf("неизвестный ресурс %q", t.ResourceID))
		}
	}
	return nil
}
