package calendar

import (
	"time"

	"teamCalendar/internal/models/task"
)

// EventsForDay возвращает задачи, дата которых совпадает с day с точностью до дня.
// Порядок входного списка сохраняется.
func EventsForDay(tasks []*task.Task, day time.Time) []*task.Task {
	target := task.Day(day)
	res := []*task.Task{}
	for _, t := range tasks {
		if task.Day(t.Date).Equal(target) {
			res = append(res, t)
		}
	}
	return res
}

// InRange - задачи с датой в [from, to] включительно
func InRange(tasks []*task.Task, from, to time.Time) []*task.Task {
	from, to = task.Day(from), task.Day(to)
	res := []*task.Task{}
	for _, t := range tasks {
		d := task.Day(t.Date)
		if d.Before(from) || d.After(to) {
			continue
		}
		res = append(res, t)
	}
	return res
}

// FilterByAssignee оставляет задачи выбранного человека; пустой id - без фильтра
func FilterByAssignee(tasks []*task.Task, personID string) []*task.Task {
	if personID == "" {
		return tasks
	}
	res := []*task.Task{}
	for _, t := range tasks {
		if t.IsAssignedTo(personID) {
			res = append(res, t)
		}
	}
	return res
}

// Partition делит задачи дня на задачи на весь день и задачи со временем
func Partition(tasks []*task.Task) (allDay, timed []*task.Task) {
	allDay, timed = []*task.Task{}, []*task.Task{}
	for _, t := range tasks {
		if t.AllDay {
			allDay = append(allDay, t)
		} else {
			timed = append(timed, t)
		}
	}
	return allDay, timed
}
