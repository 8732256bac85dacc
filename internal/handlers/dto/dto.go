package dto

import (
	"time"

	"teamCalendar/internal/calendar"
	"teamCalendar/internal/models/notification"
	"teamCalendar/internal/models/person"
	"teamCalendar/internal/models/session"
	"teamCalendar/internal/models/task"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

type CreateTaskRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	AllDay      bool     `json:"all_day"`
	Color       string   `json:"color"`
	AssigneeIDs []string `json:"assignee_ids"`
	ResourceID  string   `json:"resource_id"`
	Priority    string   `json:"priority"`
	Repeat      string   `json:"repeat"`
}

// UpdateTaskRequest - частичное обновление, nil означает "не менять"
type UpdateTaskRequest struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Date        *string   `json:"date,omitempty"`
	StartTime   *string   `json:"start_time,omitempty"`
	EndTime     *string   `json:"end_time,omitempty"`
	AllDay      *bool     `json:"all_day,omitempty"`
	Color       *string   `json:"color,omitempty"`
	AssigneeIDs *[]string `json:"assignee_ids,omitempty"`
	ResourceID  *string   `json:"resource_id,omitempty"`
	Priority    *string   `json:"priority,omitempty"`
	Repeat      *string   `json:"repeat,omitempty"`
	Completed   *bool     `json:"completed,omitempty"`
	Version     *int      `json:"version,omitempty"`
}

type MoveTaskRequest struct {
	Date string `json:"date"`
}

type TaskResponse struct {
	UUID          uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Date          string     `json:"date"`
	StartTime     string     `json:"start_time,omitempty"`
	EndTime       string     `json:"end_time,omitempty"`
	AllDay        bool       `json:"all_day"`
	Color         string     `json:"color"`
	AssigneeIDs   []string   `json:"assignee_ids"`
	AssigneeNames []string   `json:"assignee_names"`
	ResourceID    string     `json:"resource_id,omitempty"`
	Priority      string     `json:"priority"`
	Repeat        string     `json:"repeat"`
	Completed     bool       `json:"completed"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedBy     string     `json:"created_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
	Version       int        `json:"version"`
}

// Names - справочник id -> имя для подстановки исполнителей
type Names map[string]string

func NamesOf(people []person.Person) Names {
	res := make(Names, len(people))
	for _, p := range people {
		res[p.ID] = p.Name
	}
	return res
}

// resolve возвращает имена исполнителей; неизвестный id выводится как есть
func (n Names) resolve(ids []string) []string {
	res := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := n[id]; ok {
			res = append(res, name)
			continue
		}
		res = append(res, id)
	}
	return res
}

func FromTask(t *task.Task, names Names) TaskResponse {
	return TaskResponse{
		UUID:          t.UUID,
		Title:         t.Title,
		Description:   t.Description,
		Date:          task.FormatDay(t.Date),
		StartTime:     t.StartTime,
		EndTime:       t.EndTime,
		AllDay:        t.AllDay,
		Color:         string(t.Color),
		AssigneeIDs:   t.AssigneeIDs,
		AssigneeNames: names.resolve(t.AssigneeIDs),
		ResourceID:    t.ResourceID,
		Priority:      string(t.Priority),
		Repeat:        string(t.Repeat),
		Completed:     t.Completed,
		CompletedAt:   t.CompletedAt,
		CreatedBy:     t.CreatedBy,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		Version:       t.Version,
	}
}

func FromTaskList(tasks []*task.Task, names Names) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t, names)
	}
	return result
}

type MoveResponse struct {
	Task  TaskResponse `json:"task"`
	Moved bool         `json:"moved"`
}

type CalendarResponse struct {
	calendar.Board
	People []person.Person `json:"people"`
}

type NavigateResponse struct {
	Date  string `json:"date"`
	View  string `json:"view"`
	Label string `json:"label"`
}

type OpenSessionRequest struct {
	PersonID string `json:"person_id"`
}

type SessionResponse struct {
	Token    uuid.UUID     `json:"token"`
	Person   person.Person `json:"person"`
	OpenedAt time.Time     `json:"opened_at"`
	LastSeen time.Time     `json:"last_seen"`
}

func FromSession(s session.Session, p person.Person) SessionResponse {
	return SessionResponse{
		Token:    s.Token,
		Person:   p,
		OpenedAt: s.OpenedAt,
		LastSeen: s.LastSeen,
	}
}

type NotificationResponse struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	TimeAgo   string    `json:"time_ago"`
	TaskID    uuid.UUID `json:"task_id"`
}

func FromNotification(n notification.Notification, now time.Time) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      string(n.Type),
		Message:   n.Message,
		Timestamp: n.Timestamp,
		TimeAgo:   humanize.RelTime(n.Timestamp, now, "ago", "from now"),
		TaskID:    n.TaskID,
	}
}

func FromNotificationList(notes []notification.Notification, now time.Time) []NotificationResponse {
	result := make([]NotificationResponse, len(notes))
	for i, n := range notes {
		result[i] = FromNotification(n, now)
	}
	return result
}
