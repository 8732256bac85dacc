package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"teamCalendar/internal/models/person"
	"teamCalendar/internal/presence"
	rep "teamCalendar/internal/repository"
)

type PeopleService struct {
	people   PeopleDirectory
	presence PresenceReader
}

func NewPeopleService(people PeopleDirectory, presence PresenceReader) *PeopleService {
	return &PeopleService{people: people, presence: presence}
}

// ListPeople - каталог с текущими статусами
func (s *PeopleService) ListPeople(ctx context.Context) ([]person.Person, error) {
	people, err := s.people.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение сотрудников: %w", err)
	}
	for i := range people {
		p, _ := s.presence.Get(people[i].ID)
		people[i].IsOnline = p.Online()
	}
	return people, nil
}

func (s *PeopleService) GetPerson(ctx context.Context, id string) (person.Person, error) {
	p, err := s.people.Get(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return person.Person{}, NewNotFound(ResourcePerson, id)
		}
		return person.Person{}, fmt.Errorf("получение сотрудника: %w", err)
	}
	pr, _ := s.presence.Get(id)
	p.IsOnline = pr.Online()
	return p, nil
}

func (s *PeopleService) GetPresence(ctx context.Context, id string) (person.Presence, error) {
	if _, err := s.GetPerson(ctx, id); err != nil {
		return person.Presence{}, err
	}
	pr, _ := s.presence.Get(id)
	return pr, nil
}

// Visible: администратор видит статусы всех, остальные - только сотрудников из каталога
func (s *PeopleService) Visible(ctx context.Context, viewer person.Person, personID string) bool {
	if viewer.IsAdmin {
		return true
	}
	_, err := s.people.Get(ctx, personID)
	return err == nil
}

// VisiblePresence - текущие статусы, доступные viewer
func (s *PeopleService) VisiblePresence(ctx context.Context, viewer person.Person) ([]person.Presence, error) {
	if viewer.IsAdmin {
		res := []person.Presence{}
		for _, p := range s.presence.Snapshot() {
			res = append(res, p)
		}
		slices.SortFunc(res, func(a, b person.Presence) int { return strings.Compare(a.PersonID, b.PersonID) })
		return res, nil
	}

	people, err := s.people.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение сотрудников: %w", err)
	}
	res := make([]person.Presence, 0, len(people))
	for _, p := range people {
		pr, _ := s.presence.Get(p.ID)
		res = append(res, pr)
	}
	return res, nil
}

// Watch подписывает cb на изменения статусов, возвращает отписку
func (s *PeopleService) Watch(cb presence.Callback) func() {
	return s.presence.OnAnyChange(cb)
}
