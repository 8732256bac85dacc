package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"teamCalendar/internal/logger"
	"teamCalendar/internal/models/person"
	"teamCalendar/internal/models/session"
	rep "teamCalendar/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionService открывает и закрывает сессии и по ним ведёт присутствие
type SessionService struct {
	people   PeopleDirectory
	presence PresencePublisher
	ttl      time.Duration

	mtx      sync.Mutex
	sessions map[uuid.UUID]session.Session

	Now func() time.Time
}

func NewSessionService(people PeopleDirectory, presence PresencePublisher, ttl time.Duration) *SessionService {
	return &SessionService{
		people:   people,
		presence: presence,
		ttl:      ttl,
		sessions: make(map[uuid.UUID]session.Session),
		Now:      time.Now,
	}
}

func (s *SessionService) Open(ctx context.Context, personID string) (session.Session, person.Person, error) {
	p, err := s.people.Get(ctx, personID)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return session.Session{}, person.Person{}, NewNotFound(ResourcePerson, personID)
		}
		return session.Session{}, person.Person{}, fmt.Errorf("поиск сотрудника: %w", err)
	}

	now := s.Now()
	sess := session.Session{
		Token:    uuid.New(),
		PersonID: personID,
		OpenedAt: now,
		LastSeen: now,
	}

	s.mtx.Lock()
	s.sessions[sess.Token] = sess
	s.mtx.Unlock()

	logger.Info("Service: Открыта сессия", zap.String("person_id", personID))
	s.publish(ctx, personID, person.StateOnline, now)
	return sess, p, nil
}

// Resolve находит сессию по токену и продлевает её
func (s *SessionService) Resolve(ctx context.Context, token uuid.UUID) (session.Session, person.Person, error) {
	now := s.Now()

	s.mtx.Lock()
	sess, ok := s.sessions[token]
	if ok && sess.Expired(now, s.ttl) {
		ok = false
	}
	if ok {
		sess.LastSeen = now
		s.sessions[token] = sess
	}
	s.mtx.Unlock()

	if !ok {
		return session.Session{}, person.Person{}, NewUnauthorized("Сессия не найдена или истекла")
	}

	p, err := s.people.Get(ctx, sess.PersonID)
	if err != nil {
		return session.Session{}, person.Person{}, NewUnauthorized("Сотрудник сессии больше не в каталоге")
	}
	return sess, p, nil
}

func (s *SessionService) Close(ctx context.Context, token uuid.UUID) error {
	s.mtx.Lock()
	sess, ok := s.sessions[token]
	if ok {
		delete(s.sessions, token)
	}
	last := ok && !s.hasSessionLocked(sess.PersonID)
	s.mtx.Unlock()

	if !ok {
		return NewNotFound(ResourceSession, token.String())
	}

	logger.Info("Service: Сессия закрыта", zap.String("person_id", sess.PersonID))
	if last {
		s.publish(ctx, sess.PersonID, person.StateOffline, s.Now())
	}
	return nil
}

// Reap закрывает сессии без активности дольше ttl. Возвращает число закрытых.
func (s *SessionService) Reap(ctx context.Context) int {
	now := s.Now()

	s.mtx.Lock()
	var expired []session.Session
	for token, sess := range s.sessions {
		if sess.Expired(now, s.ttl) {
			expired = append(expired, sess)
			delete(s.sessions, token)
		}
	}
	offline := map[string]struct{}{}
	for _, sess := range expired {
		if !s.hasSessionLocked(sess.PersonID) {
			offline[sess.PersonID] = struct{}{}
		}
	}
	s.mtx.Unlock()

	for id := range offline {
		s.publish(ctx, id, person.StateOffline, now)
	}
	if len(expired) > 0 {
		logger.Info("Service: Истёкшие сессии закрыты", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// CloseAll вызывается при остановке: все сотрудники этого экземпляра уходят в offline
func (s *SessionService) CloseAll(ctx context.Context) {
	s.mtx.Lock()
	ids := map[string]struct{}{}
	for _, sess := range s.sessions {
		ids[sess.PersonID] = struct{}{}
	}
	clear(s.sessions)
	s.mtx.Unlock()

	now := s.Now()
	for id := range ids {
		s.publish(ctx, id, person.StateOffline, now)
	}
}

func (s *SessionService) hasSessionLocked(personID string) bool {
	for _, sess := range s.sessions {
		if sess.PersonID == personID {
			return true
		}
	}
	return false
}

func (s *SessionService) publish(ctx context.Context, personID string, state person.State, at time.Time) {
	err := s.presence.Publish(ctx, person.Presence{PersonID: personID, State: state, LastChanged: at})
	if err != nil {
		logger.Error("Service: Не удалось обновить присутствие", err, zap.String("person_id", personID))
	}
}
