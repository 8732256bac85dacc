package calendar

import (
	"time"

	"teamCalendar/internal/models/task"
)

type Resource struct {
	ID    string `json:"id" mapstructure:"id"`
	Name  string `json:"name" mapstructure:"name"`
	Color string `json:"color" mapstructure:"color"`
}

var DefaultResources = []Resource{
	{ID: "room-a", Name: "Conference Room A", Color: "blue"},
	{ID: "room-b", Name: "Conference Room B", Color: "green"},
	{ID: "john", Name: "John Smith", Color: "purple"},
	{ID: "jane", Name: "Jane Doe", Color: "red"},
}

// Distribute раскладывает задачи дня со временем по ресурсам. Задача с
// явным ResourceID попадает к своему ресурсу, остальные распределяются
// по индексу: eventIndex % len(resources). Задачи на весь день не учитываются.
// Результат выровнен по индексам resources.
func Distribute(resources []Resource, tasks []*task.Task, day time.Time) [][]*task.Task {
	lanes := make([][]*task.Task, len(resources))
	for i := range lanes {
		lanes[i] = []*task.Task{}
	}
	if len(resources) == 0 {
		return lanes
	}

	index := make(map[string]int, len(resources))
	for i, r := range resources {
		index[r.ID] = i
	}

	_, timed := Partition(EventsForDay(tasks, day))
	unbound := 0
	for _, t := range timed {
		if i, ok := index[t.ResourceID]; ok && t.ResourceID != "" {
			lanes[i] = append(lanes[i], t)
			continue
		}
		i := unbound % len(resources)
		lanes[i] = append(lanes[i], t)
		unbound++
	}
	return lanes
}
