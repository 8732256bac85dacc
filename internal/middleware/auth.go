package middleware

import (
	"context"
	"net/http"
	"strings"

	"teamCalendar/internal/logger"
	"teamCalendar/internal/models/person"
	"teamCalendar/internal/models/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	sessionKey contextKey = "session"
	personKey  contextKey = "person"
)

type SessionResolver interface {
	Resolve(ctx context.Context, token uuid.UUID) (session.Session, person.Person, error)
}

// WithSession кладёт сессию и её владельца в контекст
func WithSession(ctx context.Context, s session.Session, p person.Person) context.Context {
	ctx = context.WithValue(ctx, sessionKey, s)
	return context.WithValue(ctx, personKey, p)
}

func CurrentSession(ctx context.Context) (session.Session, bool) {
	s, ok := ctx.Value(sessionKey).(session.Session)
	return s, ok
}

func CurrentPerson(ctx context.Context) (person.Person, bool) {
	p, ok := ctx.Value(personKey).(person.Person)
	return p, ok
}

// sessionToken: Authorization: Bearer <token>, X-Session-Token или ?token=
// (EventSource в браузере не умеет ставить заголовки)
func sessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if h := r.Header.Get("X-Session-Token"); h != "" {
		return h
	}
	return r.URL.Query().Get("token")
}

func resolve(resolver SessionResolver, r *http.Request) (*http.Request, bool) {
	raw := sessionToken(r)
	if raw == "" {
		return r, false
	}
	token, err := uuid.Parse(raw)
	if err != nil {
		return r, false
	}
	s, p, err := resolver.Resolve(r.Context(), token)
	if err != nil {
		return r, false
	}
	return r.WithContext(WithSession(r.Context(), s, p)), true
}

// Authenticate пропускает только запросы с действующей сессией
func Authenticate(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r, ok := resolve(resolver, r)
			if !ok {
				logger.Warn("HTTP: Запрос без действующей сессии",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.String("path", r.URL.Path),
					zap.String("client_ip", r.RemoteAddr))

				writeJSON(w, http.StatusUnauthorized, map[string]any{
					"error":      "UNAUTHORIZED",
					"message":    "Требуется сессия",
					"request_id": GetRequestID(r.Context()),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Identify подставляет сессию, если она есть, но не требует её
func Identify(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r, _ = resolve(resolver, r)
			next.ServeHTTP(w, r)
		})
	}
}
