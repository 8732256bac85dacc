package service

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"teamCalendar/internal/logger"
	"teamCalendar/internal/models/notification"
	"teamCalendar/internal/models/task"
	"teamCalendar/internal/notify"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type NotificationService struct {
	tasks  TaskLister
	people PeopleDirectory
	inbox  *notify.Inbox

	// mtx сериализует Sync: обработчики и воркер вызывают его одновременно
	mtx    sync.Mutex
	known  map[uuid.UUID]struct{}
	seeded bool

	Now func() time.Time
}

func NewNotificationService(tasks TaskLister, people PeopleDirectory, inbox *notify.Inbox) *NotificationService {
	return &NotificationService{
		tasks:  tasks,
		people: people,
		inbox:  inbox,
		known:  make(map[uuid.UUID]struct{}),
		Now:    time.Now,
	}
}

// Sync сверяет задачи с последним снимком: новые задачи дают new_task
// исполнителям кроме автора, вчерашние невыполненные дают late_task.
// Первый вызов только запоминает снимок и новых уведомлений не создаёт.
func (s *NotificationService) Sync(ctx context.Context) (int, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("получение задач: %w", err)
	}
	people, err := s.people.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("получение сотрудников: %w", err)
	}
	everyone := make([]string, 0, len(people))
	for _, p := range people {
		everyone = append(everyone, p.ID)
	}

	now := s.Now()
	added := 0

	if s.seeded {
		byID := make(map[uuid.UUID]*task.Task, len(tasks))
		for _, t := range tasks {
			byID[t.UUID] = t
		}
		for _, n := range notify.NewTasks(s.known, tasks, now) {
			t := byID[n.TaskID]
			for _, r := range t.AssigneeIDs {
				if r == t.CreatedBy {
					continue
				}
				added += s.inbox.Push(r, n)
			}
		}
	}

	s.known = make(map[uuid.UUID]struct{}, len(tasks))
	for _, t := range tasks {
		s.known[t.UUID] = struct{}{}
	}
	s.seeded = true

	for _, r := range everyone {
		mine := []*task.Task{}
		for _, t := range tasks {
			if slices.Contains(recipients(t, everyone), r) {
				mine = append(mine, t)
			}
		}
		notes := notify.LateTasks(mine, now, s.inbox.Emitted(r, notification.TypeLateTask))
		added += s.inbox.Push(r, notes...)
	}

	if added > 0 {
		logger.Info("Service: Новые уведомления", zap.Int("count", added))
	}
	return added, nil
}

// recipients - исполнители задачи, а если их нет - вся команда
func recipients(t *task.Task, everyone []string) []string {
	if len(t.AssigneeIDs) == 0 {
		return everyone
	}
	return t.AssigneeIDs
}

// TaskChanged реагирует на изменения задач из TaskService
func (s *NotificationService) TaskChanged(ctx context.Context, ev TaskEvent) {
	switch ev.Kind {
	case EventDeleted:
		s.inbox.Drop(ev.Task.UUID)
	case EventMoved, EventCompleted:
		s.inbox.Forget(ev.Task.UUID)
	}

	if _, err := s.Sync(ctx); err != nil {
		logger.Error("Service: Не удалось пересчитать уведомления", err, zap.String("task_id", ev.Task.UUID.String()))
	}
}

func (s *NotificationService) List(ctx context.Context, recipient string) []notification.Notification {
	return s.inbox.List(recipient)
}

func (s *NotificationService) Dismiss(ctx context.Context, recipient string, id uuid.UUID) error {
	if !s.inbox.Dismiss(recipient, id) {
		return NewNotFound(ResourceNotification, id.String())
	}
	return nil
}

func (s *NotificationService) Clear(ctx context.Context, recipient string) {
	s.inbox.Clear(recipient)
}
