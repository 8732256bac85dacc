package handlers

import (
	"net/http"
	"time"

	"teamCalendar/internal/handlers/dto"
	"teamCalendar/internal/middleware"
)

type NotificationHandler struct {
	NotificationService NotificationService
	Now                 func() time.Time
}

func NewNotificationHandler(notificationService NotificationService) NotificationHandler {
	return NotificationHandler{
		NotificationService: notificationService,
		Now:                 time.Now,
	}
}

func (s *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.CurrentPerson(r.Context())
	notes := s.NotificationService.List(r.Context(), p.ID)
	responseWithBody(w, http.StatusOK, dto.FromNotificationList(notes, s.Now()))
}

func (s *NotificationHandler) DismissNotification(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, _ := middleware.CurrentPerson(r.Context())

	if err := s.NotificationService.Dismiss(r.Context(), p.ID, id); err != nil {
		handleServiceError(w, r, err, "dismiss_notification")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *NotificationHandler) ClearNotifications(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.CurrentPerson(r.Context())
	s.NotificationService.Clear(r.Context(), p.ID)
	w.WriteHeader(http.StatusNoContent)
}
