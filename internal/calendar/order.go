package calendar

import (
	"slices"
	"strings"
	"time"

	"teamCalendar/internal/models/task"
)

// compareInDay: сначала задачи на весь день (между собой без порядка),
// затем задачи со временем по возрастанию "HH:MM"
func compareInDay(a, b *task.Task) int {
	switch {
	case a.AllDay && b.AllDay:
		return 0
	case a.AllDay:
		return -1
	case b.AllDay:
		return 1
	}
	return strings.Compare(a.StartTime, b.StartTime)
}

// SortDay возвращает отсортированную копию, исходный срез не меняется
func SortDay(tasks []*task.Task) []*task.Task {
	res := slices.Clone(tasks)
	slices.SortStableFunc(res, compareInDay)
	return res
}

type DayGroup struct {
	Date  time.Time    `json:"date"`
	Tasks []*task.Task `json:"tasks"`
}

// Agenda группирует задачи текущей недели по дням для вида list.
// Дни без задач не попадают в результат.
func Agenda(tasks []*task.Task, current time.Time) []DayGroup {
	groups := []DayGroup{}
	for _, day := range WeekDays(current) {
		dayTasks := EventsForDay(tasks, day)
		if len(dayTasks) == 0 {
			continue
		}
		groups = append(groups, DayGroup{Date: day, Tasks: SortDay(dayTasks)})
	}
	return groups
}

// Timeline - задачи недели одной лентой в хронологическом порядке
func Timeline(tasks []*task.Task, current time.Time) []*task.Task {
	res := []*task.Task{}
	for _, g := range Agenda(tasks, current) {
		res = append(res, g.Tasks...)
	}
	return res
}
