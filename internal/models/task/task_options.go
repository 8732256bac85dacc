package task

import (
	"slices"
	"time"
)

// TaskOption изменяет задачу; nil-опции пропускаются при применении
type TaskOption func(*Task)

func Apply(t *Task, options ...TaskOption) {
	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}
}

func WithTitle(title string) TaskOption {
	return func(task *Task) {
		task.Title = title
	}
}

func WithDescription(description string) TaskOption {
	return func(task *Task) {
		task.Description = description
	}
}

func WithDate(date time.Time) TaskOption {
	if date.IsZero() {
		return nil
	}
	return func(task *Task) {
		task.Date = Day(date)
	}
}

func WithTimes(start, end string) TaskOption {
	return func(task *Task) {
		task.StartTime = start
		task.EndTime = end
	}
}

func WithStartTime(start string) TaskOption {
	return func(task *Task) {
		task.StartTime = start
	}
}

func WithEndTime(end string) TaskOption {
	return func(task *Task) {
		task.EndTime = end
	}
}

func WithAllDay(allDay bool) TaskOption {
	return func(task *Task) {
		task.AllDay = allDay
		if allDay {
			task.StartTime = ""
			task.EndTime = ""
		}
	}
}

func WithColor(color Color) TaskOption {
	if color == "" {
		return nil
	}
	return func(task *Task) {
		task.Color = color
	}
}

func WithAssignees(ids []string) TaskOption {
	return func(task *Task) {
		task.AssigneeIDs = dedup(ids)
	}
}

func WithResource(resourceID string) TaskOption {
	return func(task *Task) {
		task.ResourceID = resourceID
	}
}

func WithPriority(priority Priority) TaskOption {
	if priority == "" {
		return nil
	}
	return func(task *Task) {
		task.Priority = priority
	}
}

func WithRepeat(repeat Repeat) TaskOption {
	if repeat == "" {
		return nil
	}
	return func(task *Task) {
		task.Repeat = repeat
	}
}

func WithCreatedBy(personID string) TaskOption {
	return func(task *Task) {
		task.CreatedBy = personID
	}
}

func WithCompleted(completed bool, at time.Time) TaskOption {
	return func(task *Task) {
		task.Completed = completed
		if completed {
			task.CompletedAt = &at
		} else {
			task.CompletedAt = nil
		}
	}
}

// WithVersion задаёт ожидаемую версию: хранилище откажет в записи, если задачу уже изменили
func WithVersion(version int) TaskOption {
	return func(task *Task) {
		task.Version = version
	}
}

func dedup(ids []string) []string {
	res := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || slices.Contains(res, id) {
			continue
		}
		res = append(res, id)
	}
	return res
}
