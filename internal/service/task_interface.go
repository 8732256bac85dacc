package service

import (
	"context"

	"teamCalendar/internal/models/person"
	"teamCalendar/internal/models/task"
	"teamCalendar/internal/presence"

	"github.com/google/uuid"
)

type TaskRepository interface {
	HealthCheck(context.Context) error
	Create(context.Context, *task.Task) error
	Update(context.Context, *task.Task) error
	GetByID(context.Context, uuid.UUID) (*task.Task, error)
	List(context.Context) ([]*task.Task, error)
	Delete(context.Context, uuid.UUID) error
}

// TaskLister - достаточно для построения календаря и уведомлений
type TaskLister interface {
	List(context.Context) ([]*task.Task, error)
}

type PeopleDirectory interface {
	List(context.Context) ([]person.Person, error)
	Get(context.Context, string) (person.Person, error)
}

type PresencePublisher interface {
	Publish(context.Context, person.Presence) error
}

type PresenceReader interface {
	Get(personID string) (person.Presence, bool)
	Snapshot() map[string]person.Presence
	OnAnyChange(cb presence.Callback) func()
}

type EventKind string

const (
	EventCreated   EventKind = "created"
	EventUpdated   EventKind = "updated"
	EventMoved     EventKind = "moved"
	EventCompleted EventKind = "completed"
	EventDeleted   EventKind = "deleted"
)

type TaskEvent struct {
	Kind EventKind
	Task *task.Task
}

// TaskObserver получает событие после каждого успешного изменения задачи
type TaskObserver interface {
	TaskChanged(ctx context.Context, ev TaskEvent)
}
