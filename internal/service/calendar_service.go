package service

import (
	"context"
	"fmt"
	"time"

	"teamCalendar/internal/calendar"
	"teamCalendar/internal/logger"
	"teamCalendar/internal/models/person"
	"teamCalendar/internal/models/task"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("teamCalendar/internal/service")

type CalendarSettings struct {
	SlotHeight float64
	Resources  []calendar.Resource
}

type CalendarService struct {
	tasks    TaskLister
	people   PeopleDirectory
	presence PresenceReader
	settings CalendarSettings
	Now      func() time.Time
}

func NewCalendarService(tasks TaskLister, people PeopleDirectory, presence PresenceReader, settings CalendarSettings) *CalendarService {
	return &CalendarService{
		tasks:    tasks,
		people:   people,
		presence: presence,
		settings: settings,
		Now:      time.Now,
	}
}

type BoardQuery struct {
	Date   time.Time
	View   calendar.View
	UserID string
}

// CalendarBoard - сетка вида и каталог для подстановки имён исполнителей
type CalendarBoard struct {
	calendar.Board
	People []person.Person
}

// Board загружает задачи и каталог параллельно и строит проекцию вида
func (s *CalendarService) Board(ctx context.Context, q BoardQuery) (*CalendarBoard, error) {
	ctx, span := tracer.Start(ctx, "CalendarService.Board")
	defer span.End()

	now := s.Now()
	if q.Date.IsZero() {
		q.Date = now
	}
	span.SetAttributes(
		attribute.String("calendar.view", string(q.View)),
		attribute.String("calendar.date", task.FormatDay(q.Date)),
		attribute.String("calendar.user", q.UserID),
	)

	var (
		tasks  []*task.Task
		people []person.Person
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tasks, err = s.tasks.List(gctx)
		if err != nil {
			return fmt.Errorf("получение задач: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		people, err = s.people.List(gctx)
		if err != nil {
			return fmt.Errorf("получение сотрудников: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("Service: Не удалось построить календарь", err)
		return nil, err
	}

	if q.UserID != "" && !hasPerson(people, q.UserID) {
		return nil, NewNotFound(ResourcePerson, q.UserID)
	}
	for i := range people {
		p, _ := s.presence.Get(people[i].ID)
		people[i].IsOnline = p.Online()
	}

	board := calendar.Build(tasks, calendar.State{
		CurrentDate:    q.Date,
		View:           q.View,
		SelectedUserID: q.UserID,
		Today:          now,
		SlotHeight:     s.settings.SlotHeight,
		Resources:      s.settings.Resources,
	})

	logger.Debug("Service: Календарь построен",
		zap.String("view", string(board.View)),
		zap.String("label", board.Label),
		zap.Int("tasks", len(tasks)))
	return &CalendarBoard{Board: board, People: people}, nil
}

// Navigate: direction - prev, next или today
func (s *CalendarService) Navigate(ctx context.Context, current time.Time, view calendar.View, direction string) (time.Time, error) {
	if direction == "today" {
		return task.Day(s.Now()), nil
	}
	dir, err := calendar.ParseDirection(direction)
	if err != nil {
		return time.Time{}, NewValidationError("direction", err.Error())
	}
	if current.IsZero() {
		current = s.Now()
	}
	return task.Day(calendar.Navigate(task.Day(current), view, dir)), nil
}

func (s *CalendarService) Resources() []calendar.Resource {
	if len(s.settings.Resources) == 0 {
		return calendar.DefaultResources
	}
	return s.settings.Resources
}

func hasPerson(people []person.Person, id string) bool {
	for _, p := range people {
		if p.ID == id {
			return true
		}
	}
	return false
}
