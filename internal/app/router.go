package app

import (
	"net/http"

	"teamCalendar/internal/handlers"
	"teamCalendar/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

func (a *App) routes() *chi.Mux {
	// без SDK спаны не записываются, но trace_id из traceparent попадает в логи
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	taskHandler := handlers.NewTaskHandler(a.tasks, a.people)
	calendarHandler := handlers.NewCalendarHandler(a.calendar)
	peopleHandler := handlers.NewPeopleHandler(a.people)
	sessionHandler := handlers.NewSessionHandler(a.sessions)
	notificationHandler := handlers.NewNotificationHandler(a.notifications)

	authenticate := middleware.Authenticate(a.sessions)
	timeout := middleware.Timeout(a.config.Server.RequestTimeout)

	r := chi.NewRouter()

	r.Use(otelhttp.NewMiddleware("team-calendar",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		})))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-Session-Token"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.RateLimit(a.config.Server.RateLimit))

	// SSE живёт дольше любого таймаута запроса
	r.With(authenticate).Get("/presence/stream", peopleHandler.PresenceStream) // GET /presence/stream

	r.Group(func(r chi.Router) {
		r.Use(timeout)

		r.Get("/health", taskHandler.HealthCheck)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.OpenSession) // POST /sessions

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Post("/heartbeat", sessionHandler.Heartbeat) // POST /sessions/heartbeat
				r.Delete("/", sessionHandler.CloseSession)     // DELETE /sessions
			})
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Use(middleware.Identify(a.sessions))

			r.Get("/", taskHandler.GetTasks)  // GET /tasks
			r.Post("/", taskHandler.PostTask) // POST /tasks

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", taskHandler.GetTaskByID)   // GET /tasks/{id}
				r.Patch("/", taskHandler.PatchTask)   // PATCH /tasks/{id}
				r.Delete("/", taskHandler.DeleteTask) // DELETE /tasks/{id}

				r.Post("/complete", taskHandler.CompleteTask) // POST /tasks/{id}/complete
				r.Post("/move", taskHandler.MoveTask)         // POST /tasks/{id}/move
			})
		})

		r.Route("/calendar", func(r chi.Router) {
			r.Get("/", calendarHandler.GetCalendar)      // GET /calendar
			r.Get("/navigate", calendarHandler.Navigate) // GET /calendar/navigate
		})

		r.Route("/people", func(r chi.Router) {
			r.Get("/", peopleHandler.ListPeople) // GET /people
			r.With(authenticate).Get("/{id}/presence", peopleHandler.GetPresence)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Use(authenticate)

			r.Get("/", notificationHandler.ListNotifications)          // GET /notifications
			r.Delete("/", notificationHandler.ClearNotifications)      // DELETE /notifications
			r.Delete("/{id}", notificationHandler.DismissNotification) // DELETE /notifications/{id}
		})
	})

	return r
}
