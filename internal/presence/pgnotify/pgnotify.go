// Package pgnotify переносит статусы присутствия между экземплярами сервиса
// через таблицу presence и LISTEN/NOTIFY в PostgreSQL.
package pgnotify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"teamCalendar/internal/logger"
	"teamCalendar/internal/models/person"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const Channel = "presence"

type Publisher struct {
	pool *pgxpool.Pool
}

func NewPublisher(pool *pgxpool.Pool) *Publisher {
	return &Publisher{pool: pool}
}

// Publish сохраняет статус и оповещает слушателей в одной транзакции
func (p *Publisher) Publish(ctx context.Context, pr person.Presence) error {
	payload, err := json.Marshal(pr)
	if err != nil {
		return fmt.Errorf("сериализация статуса: %w", err)
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("начало транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `INSERT INTO presence (person_id, state, last_changed)
			VALUES ($1, $2, $3)
			ON CONFLICT (person_id) DO UPDATE
			SET state = EXCLUDED.state, last_changed = EXCLUDED.last_changed
			WHERE presence.last_changed <= EXCLUDED.last_changed`,
		pr.PersonID, string(pr.State), pr.LastChanged)
	if err != nil {
		return fmt.Errorf("сохранение статуса: %w", err)
	}

	if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, Channel, string(payload)); err != nil {
		return fmt.Errorf("pg_notify: %w", err)
	}

	return tx.Commit(ctx)
}

// Load читает последние сохранённые статусы
func (p *Publisher) Load(ctx context.Context) ([]person.Presence, error) {
	rows, err := p.pool.Query(ctx, `SELECT person_id, state, last_changed FROM presence`)
	if err != nil {
		return nil, fmt.Errorf("чтение статусов: %w", err)
	}
	defer rows.Close()

	res := []person.Presence{}
	for rows.Next() {
		var pr person.Presence
		var state string
		if err := rows.Scan(&pr.PersonID, &state, &pr.LastChanged); err != nil {
			return nil, fmt.Errorf("сканирование статуса: %w", err)
		}
		pr.State = person.State(state)
		res = append(res, pr)
	}
	return res, rows.Err()
}

// Applier - получатель статусов (presence.Hub)
type Applier interface {
	Apply(person.Presence) bool
}

type Listener struct {
	connString string
	target     Applier
}

func NewListener(connString string, target Applier) *Listener {
	return &Listener{connString: connString, target: target}
}

// Run слушает канал до отмены контекста. Переподключения выполняет lib/pq.
func (l *Listener) Run(ctx context.Context) error {
	listener := pq.NewListener(l.connString, 10*time.Second, time.Minute,
		func(ev pq.ListenerEventType, err error) {
			switch ev {
			case pq.ListenerEventConnectionAttemptFailed, pq.ListenerEventDisconnected:
				logger.Warn("Presence: Потеряно соединение LISTEN", zap.Error(err))
			case pq.ListenerEventReconnected:
				logger.Info("Presence: Соединение LISTEN восстановлено")
			}
		})
	defer listener.Close()

	if err := listener.Listen(Channel); err != nil {
		logger.Error("Presence: Не удалось подписаться на канал", err, zap.String("channel", Channel))
		return fmt.Errorf("listen %s: %w", Channel, err)
	}
	logger.Info("Presence: Подписка на канал", zap.String("channel", Channel))

	ping := time.NewTicker(90 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Presence: Остановка слушателя")
			return nil
		case n := <-listener.Notify:
			// nil приходит после переподключения, события за время разрыва потеряны
			if n == nil {
				continue
			}
			var pr person.Presence
			if err := json.Unmarshal([]byte(n.Extra), &pr); err != nil {
				logger.Warn("Presence: Некорректное уведомление", zap.Error(err), zap.String("payload", n.Extra))
				continue
			}
			l.target.Apply(pr)
		case <-ping.C:
			go func() {
				if err := listener.Ping(); err != nil {
					logger.Warn("Presence: Ping LISTEN не прошёл", zap.Error(err))
				}
			}()
		}
	}
}
