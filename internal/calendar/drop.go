package calendar

import (
	"time"

	"teamCalendar/internal/models/task"
)

// Drop решает, что делать с задачей, брошенной на ячейку target.
// Возвращает новую дату и false, если задача уже в этом дне и обновлять нечего.
func Drop(t *task.Task, target time.Time) (time.Time, bool) {
	day := task.Day(target)
	if task.Day(t.Date).Equal(day) {
		return day, false
	}
	return day, true
}
