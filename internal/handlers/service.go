package handlers

import (
	"context"
	"time"

	"teamCalendar/internal/calendar"
	"teamCalendar/internal/models/notification"
	"teamCalendar/internal/models/person"
	"teamCalendar/internal/models/session"
	"teamCalendar/internal/models/task"
	"teamCalendar/internal/presence"
	"teamCalendar/internal/service"

	"github.com/google/uuid"
)

type TaskService interface {
	HealthCheck(ctx context.Context) error
	CreateTask(ctx context.Context, opts ...task.TaskOption) (*task.Task, error)
	GetTasks(ctx context.Context, filter service.TaskFilter) ([]*task.Task, error)
	GetTaskByID(ctx context.Context, id uuid.UUID) (*task.Task, error)
	UpdateTask(ctx context.Context, id uuid.UUID, opts ...task.TaskOption) (*task.Task, error)
	DeleteTask(ctx context.Context, id uuid.UUID) error
	CompleteTask(ctx context.Context, id uuid.UUID) (*task.Task, error)
	MoveTask(ctx context.Context, id uuid.UUID, day time.Time) (*task.Task, bool, error)
}

type CalendarService interface {
	Board(ctx context.Context, q service.BoardQuery) (*service.CalendarBoard, error)
	Navigate(ctx context.Context, current time.Time, view calendar.View, direction string) (time.Time, error)
}

type PeopleService interface {
	ListPeople(ctx context.Context) ([]person.Person, error)
	GetPresence(ctx context.Context, id string) (person.Presence, error)
	Visible(ctx context.Context, viewer person.Person, personID string) bool
	VisiblePresence(ctx context.Context, viewer person.Person) ([]person.Presence, error)
	Watch(cb presence.Callback) func()
}

type SessionService interface {
	Open(ctx context.Context, personID string) (session.Session, person.Person, error)
	Resolve(ctx context.Context, token uuid.UUID) (session.Session, person.Person, error)
	Close(ctx context.Context, token uuid.UUID) error
}

type NotificationService interface {
	List(ctx context.Context, recipient string) []notification.Notification
	Dismiss(ctx context.Context, recipient string, id uuid.UUID) error
	Clear(ctx context.Context, recipient string)
}

var (
	_ TaskService         = (*service.TaskService)(nil)
	_ CalendarService     = (*service.CalendarService)(nil)
	_ PeopleService       = (*service.PeopleService)(nil)
	_ SessionService      = (*service.SessionService)(nil)
	_ NotificationService = (*service.NotificationService)(nil)
)
