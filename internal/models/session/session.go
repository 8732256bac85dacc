package session

import (
	"time"

	"github.com/google/uuid"
)

// Session - подключение сотрудника; пока есть хоть одна сессия, он online
type Session struct {
	Token    uuid.UUID `json:"token"`
	PersonID string    `json:"person_id"`
	OpenedAt time.Time `json:"opened_at"`
	LastSeen time.Time `json:"last_seen"`
}

func (s Session) Expired(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(s.LastSeen) > ttl
}
