package notification

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeNewTask  Type = "new_task"
	TypeLateTask Type = "late_task"
)

// Notification живёт только в памяти процесса
type Notification struct {
	ID          uuid.UUID `json:"id"`
	Type        Type      `json:"type"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
	TaskID      uuid.UUID `json:"task_id"`
	RecipientID string    `json:"recipient_id"`
}
