package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"teamCalendar/internal/calendar"
	"teamCalendar/internal/config"
	"teamCalendar/internal/logger"
	"teamCalendar/internal/notify"
	"teamCalendar/internal/presence"
	"teamCalendar/internal/presence/pgnotify"
	"teamCalendar/internal/repository/people/yamlfile"
	"teamCalendar/internal/repository/task/inmemory"
	"teamCalendar/internal/repository/task/postgres"
	"teamCalendar/internal/repository/task/sqlite"
	"teamCalendar/internal/service"
	"teamCalendar/internal/worker"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config     *config.Config
	server     *http.Server
	router     *chi.Mux
	repository service.TaskRepository // интерфейс!
	repoType   service.RepoType
	hub        *presence.Hub
	listener   *pgnotify.Listener

	tasks         *service.TaskService
	sessions      *service.SessionService
	people        *service.PeopleService
	notifications *service.NotificationService
	calendar      *service.CalendarService

	lateWorker *worker.LateTaskWorker
	reaper     *worker.SessionReaper
	shutdowns  []func() // функции для graceful shutdown
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) (*App, error) {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return nil, fmt.Errorf("инициализация логгера: %w", err)
	}
	if err := logger.SetLevel(a.config.Logging.Level); err != nil {
		logger.Warn("App: Неизвестный уровень логирования", zap.String("level", a.config.Logging.Level))
	}

	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	if err := a.initRepository(ctx); err != nil {
		a.Shutdown()
		return nil, err
	}

	directory, err := yamlfile.Load(a.config.Directory.Path)
	if err != nil {
		a.Shutdown()
		return nil, fmt.Errorf("загрузка справочника сотрудников: %w", err)
	}

	if err := a.initPresence(ctx); err != nil {
		a.Shutdown()
		return nil, err
	}

	resources := a.config.Calendar.Resources
	if len(resources) == 0 {
		resources = calendar.DefaultResources
	}
	a.tasks = service.NewTaskService(a.repository, a.repoType, directory, resources)
	a.sessions = service.NewSessionService(directory, a.hub, a.config.Workers.SessionTTL)
	a.people = service.NewPeopleService(directory, a.hub)
	a.notifications = service.NewNotificationService(a.repository, directory, notify.NewInbox())
	a.calendar = service.NewCalendarService(a.repository, directory, a.hub, service.CalendarSettings{
		SlotHeight: a.config.Calendar.SlotHeight,
		Resources:  resources,
	})
	a.tasks.Subscribe(a.notifications)

	// снимок задач до старта сервера: задачи, созданные после него, дадут new_task
	if _, err := a.notifications.Sync(ctx); err != nil {
		a.Shutdown()
		return nil, fmt.Errorf("начальный снимок уведомлений: %w", err)
	}

	a.lateWorker = worker.NewLateTaskWorker(a.notifications, &a.config.Workers.LateInterval)
	a.reaper = worker.NewSessionReaper(a.sessions, &a.config.Workers.ReapInterval)

	a.router = a.routes()
	a.server = &http.Server{
		Addr:              a.config.GetServerAddr(),
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("App: Приложение инициализировано",
		zap.String("repository", string(a.repoType)),
		zap.String("addr", a.server.Addr))
	return a, nil
}

func (a *App) initRepository(ctx context.Context) error {
	a.repoType = service.RepoType(a.config.Repository.Type)

	switch a.repoType {
	case service.DBType:
		db := a.config.Database
		storage, err := postgres.New(ctx, db.URL,
			postgres.WithMaxConns(db.MaxConnections),
			postgres.WithMinConns(db.MinConnections),
			postgres.WithIdleTimeout(db.IdleTimeout),
		)
		if err != nil {
			return fmt.Errorf("подключение к PostgreSQL: %w", err)
		}
		a.shutdowns = append(a.shutdowns, storage.Close)

		if err := storage.Migrate(ctx); err != nil {
			return fmt.Errorf("миграции PostgreSQL: %w", err)
		}
		a.repository = storage

	case service.SQLiteType:
		storage, err := sqlite.Open(ctx, a.config.SQLite.Path)
		if err != nil {
			return fmt.Errorf("открытие SQLite: %w", err)
		}
		a.shutdowns = append(a.shutdowns, func() {
			if err := storage.Close(); err != nil {
				logger.Error("App: Ошибка закрытия SQLite", err)
			}
		})
		a.repository = storage

	default:
		a.repoType = service.InMemoryType
		a.repository = inmemory.NewTaskStorage()
	}
	return nil
}

// initPresence: с PostgreSQL статусы разделяются между экземплярами через LISTEN/NOTIFY,
// иначе хаб живёт только в памяти процесса
func (a *App) initPresence(ctx context.Context) error {
	storage, ok := a.repository.(*postgres.Storage)
	if !ok {
		a.hub = presence.NewHub(nil)
		return nil
	}

	publisher := pgnotify.NewPublisher(storage.Pool())
	a.hub = presence.NewHub(publisher)

	saved, err := publisher.Load(ctx)
	if err != nil {
		return fmt.Errorf("загрузка статусов: %w", err)
	}
	for _, p := range saved {
		a.hub.Apply(p)
	}
	a.listener = pgnotify.NewListener(a.config.Database.URL, a.hub)
	return nil
}

// ApplyConfig применяет то, что можно поменять без перезапуска
func (a *App) ApplyConfig(cfg *config.Config) {
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		logger.Warn("App: Неизвестный уровень логирования", zap.String("level", cfg.Logging.Level))
		return
	}
	logger.Info("App: Уровень логирования обновлён", zap.String("level", cfg.Logging.Level))
}

// Run блокирует до отмены ctx или падения одной из частей
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Server started", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http сервер: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		a.lateWorker.Start(gctx)
		return nil
	})

	g.Go(func() error {
		a.reaper.Start(gctx)
		return nil
	})

	if a.listener != nil {
		g.Go(func() error {
			return a.listener.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("App: Остановка сервера...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// клиенты должны увидеть коллег offline до закрытия хранилища
		a.sessions.CloseAll(shutdownCtx)

		if err := a.server.Shutdown(shutdownCtx); err != nil {
			logger.Error("App: Ошибка остановки сервера", err)
			return err
		}
		return nil
	})

	err := g.Wait()
	a.Shutdown()
	return err
}

// Shutdown вызывает функции освобождения ресурсов в обратном порядке
func (a *App) Shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}
