// Package notify выводит уведомления о новых и просроченных задачах
// и хранит их в памяти процесса.
package notify

import (
	"fmt"
	"time"

	"teamCalendar/internal/models/notification"
	"teamCalendar/internal/models/task"

	"github.com/google/uuid"
)

// NewTasks - задачи из tasks, которых не было в known. Порядок сохраняется.
func NewTasks(known map[uuid.UUID]struct{}, tasks []*task.Task, now time.Time) []notification.Notification {
	res := []notification.Notification{}
	for _, t := range tasks {
		if _, ok := known[t.UUID]; ok {
			continue
		}
		res = append(res, notification.Notification{
			ID:        uuid.New(),
			Type:      notification.TypeNewTask,
			Message:   fmt.Sprintf("New task: %s", t.Title),
			Timestamp: now,
			TaskID:    t.UUID,
		})
	}
	return res
}

// IsLate - задача датирована вчерашним днём и не выполнена
func IsLate(t *task.Task, now time.Time) bool {
	yesterday := task.Day(now).AddDate(0, 0, -1)
	return !t.Completed && task.Day(t.Date).Equal(yesterday)
}

// LateTasks возвращает по одному late_task на каждую просроченную задачу,
// которой ещё нет в emitted
func LateTasks(tasks []*task.Task, now time.Time, emitted map[uuid.UUID]struct{}) []notification.Notification {
	res := []notification.Notification{}
	for _, t := range tasks {
		if !IsLate(t, now) {
			continue
		}
		if _, ok := emitted[t.UUID]; ok {
			continue
		}
		res = append(res, notification.Notification{
			ID:        uuid.New(),
			Type:      notification.TypeLateTask,
			Message:   fmt.Sprintf("Task is late: %s", t.Title),
			Timestamp: now,
			TaskID:    t.UUID,
		})
	}
	return res
}
