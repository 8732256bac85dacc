package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"teamCalendar/internal/logger"
	"teamCalendar/internal/middleware"
	"teamCalendar/internal/models/person"
	"teamCalendar/internal/service"

	"go.uber.org/zap"
)

type PeopleHandler struct {
	PeopleService PeopleService
	// KeepAlive - период комментариев-пингов в SSE
	KeepAlive time.Duration
}

func NewPeopleHandler(peopleService PeopleService) PeopleHandler {
	return PeopleHandler{
		PeopleService: peopleService,
		KeepAlive:     30 * time.Second,
	}
}

func (s *PeopleHandler) ListPeople(w http.ResponseWriter, r *http.Request) {
	people, err := s.PeopleService.ListPeople(r.Context())
	if err != nil {
		handleServiceError(w, r, err, "list_people")
		return
	}
	responseWithBody(w, http.StatusOK, people)
}

// GetPresence: администратор видит любого, остальные - только коллег из каталога
func (s *PeopleHandler) GetPresence(w http.ResponseWriter, r *http.Request) {
	viewer, _ := middleware.CurrentPerson(r.Context())
	id := r.PathValue("id")

	if !s.PeopleService.Visible(r.Context(), viewer, id) {
		handleBusinessError(w, service.NewForbidden("Статус этого сотрудника недоступен"))
		return
	}

	p, err := s.PeopleService.GetPresence(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "get_presence")
		return
	}
	responseWithBody(w, http.StatusOK, p)
}

// PresenceStream отдаёт статусы через Server-Sent Events: сначала текущий
// снимок, затем изменения по мере поступления.
func (s *PeopleHandler) PresenceStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer, _ := middleware.CurrentPerson(ctx)
	rc := http.NewResponseController(w)

	initial, err := s.PeopleService.VisiblePresence(ctx, viewer)
	if err != nil {
		handleServiceError(w, r, err, "presence_stream")
		return
	}

	updates := make(chan person.Presence, 64)
	stop := s.PeopleService.Watch(func(p person.Presence) {
		select {
		case updates <- p:
		default:
			logger.Warn("HTTP: Клиент SSE не успевает, статус пропущен",
				zap.String("viewer", viewer.ID),
				zap.String("person_id", p.PersonID))
		}
	})
	defer stop()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	for _, p := range initial {
		if err := writeEvent(w, "presence", p); err != nil {
			return
		}
	}
	if err := rc.Flush(); err != nil {
		logger.Error("HTTP: Стриминг не поддерживается", err)
		return
	}

	logger.Info("HTTP: Клиент подписан на статусы", zap.String("viewer", viewer.ID))

	period := s.KeepAlive
	if period <= 0 {
		period = 30 * time.Second
	}
	keepAlive := time.NewTicker(period)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("HTTP: Клиент отписан от статусов", zap.String("viewer", viewer.ID))
			return
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		case p := <-updates:
			if !s.PeopleService.Visible(ctx, viewer, p.PersonID) {
				continue
			}
			if err := writeEvent(w, "presence", p); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, event string, data any) error {
	body, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, body)
	return err
}
