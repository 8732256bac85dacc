// Package presence хранит онлайн-статусы сотрудников и рассылает изменения подписчикам.
package presence

import (
	"context"
	"maps"
	"slices"
	"sync"

	"teamCalendar/internal/logger"
	"teamCalendar/internal/models/person"

	"go.uber.org/zap"
)

type Callback func(person.Presence)

// Sink - внешнее хранилище статусов (например, PostgreSQL + NOTIFY)
type Sink interface {
	Publish(ctx context.Context, p person.Presence) error
}

type subscription struct {
	id       int
	personID string
	cb       Callback
}

type Hub struct {
	mtx   sync.RWMutex
	state map[string]person.Presence
	subs  []subscription
	next  int
	sink  Sink
}

// NewHub создаёт хаб; sink может быть nil, тогда статусы живут только в памяти
func NewHub(sink Sink) *Hub {
	return &Hub{
		state: make(map[string]person.Presence),
		sink:  sink,
	}
}

// Publish применяет статус локально и отправляет его во внешнее хранилище
func (h *Hub) Publish(ctx context.Context, p person.Presence) error {
	h.Apply(p)
	if h.sink == nil {
		return nil
	}
	if err := h.sink.Publish(ctx, p); err != nil {
		logger.Error("Presence: Не удалось опубликовать статус", err, zap.String("person_id", p.PersonID))
		return err
	}
	return nil
}

// Apply записывает статус. Устаревшие записи отбрасываются, подписчики
// вызываются только при смене состояния и вне блокировки.
func (h *Hub) Apply(p person.Presence) bool {
	h.mtx.Lock()
	prev, ok := h.state[p.PersonID]
	if ok && p.LastChanged.Before(prev.LastChanged) {
		h.mtx.Unlock()
		return false
	}
	h.state[p.PersonID] = p
	if ok && prev.State == p.State {
		h.mtx.Unlock()
		return false
	}

	var callbacks []Callback
	for _, s := range h.subs {
		if s.personID == "" || s.personID == p.PersonID {
			callbacks = append(callbacks, s.cb)
		}
	}
	h.mtx.Unlock()

	logger.Debug("Presence: Статус изменён", zap.String("person_id", p.PersonID), zap.String("state", string(p.State)))
	for _, cb := range callbacks {
		cb(p)
	}
	return true
}

// Get возвращает статус; неизвестный сотрудник считается offline
func (h *Hub) Get(personID string) (person.Presence, bool) {
	h.mtx.RLock()
	defer h.mtx.RUnlock()

	p, ok := h.state[personID]
	if !ok {
		return person.Presence{PersonID: personID, State: person.StateOffline}, false
	}
	return p, true
}

func (h *Hub) Snapshot() map[string]person.Presence {
	h.mtx.RLock()
	defer h.mtx.RUnlock()
	return maps.Clone(h.state)
}

// OnPresenceChange подписывает cb на изменения одного сотрудника.
// Возвращает функцию отписки.
func (h *Hub) OnPresenceChange(personID string, cb Callback) func() {
	return h.subscribe(personID, cb)
}

// OnAnyChange подписывает cb на изменения всех сотрудников
func (h *Hub) OnAnyChange(cb Callback) func() {
	return h.subscribe("", cb)
}

func (h *Hub) subscribe(personID string, cb Callback) func() {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	h.next++
	id := h.next
	h.subs = append(h.subs, subscription{id: id, personID: personID, cb: cb})

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mtx.Lock()
			defer h.mtx.Unlock()
			h.subs = slices.DeleteFunc(h.subs, func(s subscription) bool { return s.id == id })
		})
	}
}
