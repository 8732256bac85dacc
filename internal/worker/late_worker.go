package worker

import (
	"context"
	"time"

	"teamCalendar/internal/logger"

	"go.uber.org/zap"
)

type Syncer interface {
	Sync(ctx context.Context) (int, error)
}

// LateTaskWorker периодически пересчитывает уведомления: задача становится
// просроченной со сменой дня, без всяких изменений в хранилище.
type LateTaskWorker struct {
	notes    Syncer
	interval time.Duration
}

// NewLateTaskWorker: interval == nil - раз в минуту
func NewLateTaskWorker(notes Syncer, interval *time.Duration) *LateTaskWorker {
	intervalToSet := time.Minute
	if interval != nil && *interval > 0 {
		intervalToSet = *interval
	}
	return &LateTaskWorker{
		notes:    notes,
		interval: intervalToSet,
	}
}

// Start блокирует до отмены ctx; первая проверка выполняется сразу
func (w *LateTaskWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.Check(ctx)
	for {
		select {
		case <-ticker.C:
			w.Check(ctx)
		case <-ctx.Done():
			logger.Info("Worker: Проверка просроченных задач останавливается")
			return
		}
	}
}

func (w *LateTaskWorker) Check(ctx context.Context) {
	start := time.Now()

	added, err := w.notes.Sync(ctx)
	if err != nil {
		logger.Warn("Worker: Ошибка пересчёта уведомлений", zap.Error(err))
		return
	}

	logger.Debug("Worker: Завершение проверки задач",
		zap.Duration("ms", time.Since(start)),
		zap.Int("notifications", added))
}
