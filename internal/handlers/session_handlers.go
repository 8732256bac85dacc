package handlers

import (
	"net/http"

	"teamCalendar/internal/handlers/dto"
	"teamCalendar/internal/logger"
	"teamCalendar/internal/middleware"
	"teamCalendar/internal/service"

	"go.uber.org/zap"
)

type SessionHandler struct {
	SessionService SessionService
}

func NewSessionHandler(sessionService SessionService) SessionHandler {
	return SessionHandler{SessionService: sessionService}
}

// OpenSession: POST /sessions {person_id}. Пароли не проверяются, достаточно id из каталога.
func (s *SessionHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	var request dto.OpenSessionRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if request.PersonID == "" {
		handleBusinessError(w, service.NewValidationError("person_id", "обязательное поле"))
		return
	}

	sess, p, err := s.SessionService.Open(r.Context(), request.PersonID)
	if err != nil {
		handleServiceError(w, r, err, "open_session")
		return
	}

	logger.Info("HTTP_OUT: Сессия открыта", zap.String("person_id", p.ID))
	responseWithBody(w, http.StatusCreated, dto.FromSession(sess, p))
}

// Heartbeat продлевает сессию; сама проверка токена уже сделана в Authenticate
func (s *SessionHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.CurrentSession(r.Context())
	p, _ := middleware.CurrentPerson(r.Context())
	responseWithBody(w, http.StatusOK, dto.FromSession(sess, p))
}

func (s *SessionHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.CurrentSession(r.Context())

	if err := s.SessionService.Close(r.Context(), sess.Token); err != nil {
		handleServiceError(w, r, err, "close_session")
		return
	}

	logger.Info("HTTP_OUT: Сессия закрыта", zap.String("person_id", sess.PersonID))
	w.WriteHeader(http.StatusNoContent)
}
