package task

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

type Task struct {
	UUID        uuid.UUID  `json:"uuid" db:"uuid"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Date        time.Time  `json:"date" db:"date"`
	StartTime   string     `json:"start_time" db:"start_time"`
	EndTime     string     `json:"end_time" db:"end_time"`
	AllDay      bool       `json:"all_day" db:"all_day"`
	Color       Color      `json:"color" db:"color"`
	AssigneeIDs []string   `json:"assignee_ids" db:"assignee_ids"`
	ResourceID  string     `json:"resource_id,omitempty" db:"resource_id"`
	Priority    Priority   `json:"priority" db:"priority"`
	Repeat      Repeat     `json:"repeat" db:"repeat"`
	Completed   bool       `json:"completed" db:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at,omitempty"`
	CreatedBy   string     `json:"created_by,omitempty" db:"created_by"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty" db:"updated_at,omitempty"`
	Version     int        `json:"version" db:"version"`
}

type Color string
type Priority string
type Repeat string

const (
	ColorBlue   Color = "blue"
	ColorRed    Color = "red"
	ColorPurple Color = "purple"
	ColorGreen  Color = "green"
	ColorOrange Color = "orange"
	ColorYellow Color = "yellow"
)

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

const (
	RepeatNone    Repeat = "none"
	RepeatDaily   Repeat = "daily"
	RepeatWeekly  Repeat = "weekly"
	RepeatMonthly Repeat = "monthly"
)

func (c Color) Valid() bool {
	switch c {
	case ColorBlue, ColorRed, ColorPurple, ColorGreen, ColorOrange, ColorYellow:
		return true
	}
	return false
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func (r Repeat) Valid() bool {
	switch r {
	case RepeatNone, RepeatDaily, RepeatWeekly, RepeatMonthly:
		return true
	}
	return false
}

// Normalize приводит задачу к каноническому виду: дата без времени,
// значения по умолчанию, у задачи на весь день нет времени начала и конца.
func (t *Task) Normalize() {
	if !t.Date.IsZero() {
		t.Date = Day(t.Date)
	}
	if t.AllDay {
		t.StartTime = ""
		t.EndTime = ""
	}
	if t.Color == "" {
		t.Color = ColorBlue
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.Repeat == "" {
		t.Repeat = RepeatNone
	}
	if t.AssigneeIDs == nil {
		t.AssigneeIDs = []string{}
	}
}

func (t *Task) IsAssignedTo(personID string) bool {
	return slices.Contains(t.AssigneeIDs, personID)
}

// Clone возвращает глубокую копию, хранилища не отдают наружу свои указатели
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	c.AssigneeIDs = slices.Clone(t.AssigneeIDs)
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		c.CompletedAt = &at
	}
	if t.UpdatedAt != nil {
		at := *t.UpdatedAt
		c.UpdatedAt = &at
	}
	return &c
}
