package worker

import (
	"context"
	"time"

	"teamCalendar/internal/logger"

	"go.uber.org/zap"
)

type Reaper interface {
	Reap(ctx context.Context) int
}

// SessionReaper закрывает сессии, клиенты которых пропали без DELETE /sessions
type SessionReaper struct {
	sessions Reaper
	interval time.Duration
}

func NewSessionReaper(sessions Reaper, interval *time.Duration) *SessionReaper {
	intervalToSet := 30 * time.Second
	if interval != nil && *interval > 0 {
		intervalToSet = *interval
	}
	return &SessionReaper{
		sessions: sessions,
		interval: intervalToSet,
	}
}

func (w *SessionReaper) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if closed := w.sessions.Reap(ctx); closed > 0 {
				logger.Info("Worker: Закрыты неактивные сессии", zap.Int("count", closed))
			}
		case <-ctx.Done():
			logger.Info("Worker: Очистка сессий останавливается")
			return
		}
	}
}
