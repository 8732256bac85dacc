package calendar

import (
	"time"

	"teamCalendar/internal/models/task"
)

const (
	SlotMinutes       = 30
	DefaultSlotHeight = 30.0
	SlotsPerDay       = 24 * 60 / SlotMinutes
)

type Placement struct {
	Task      *task.Task `json:"task"`
	StartSlot float64    `json:"start_slot"`
	EndSlot   float64    `json:"end_slot"`
	Top       float64    `json:"top"`
	Height    float64    `json:"height"`
	Clamped   bool       `json:"clamped,omitempty"`
}

// SlotIndex - номер получасового слота; для времени вне сетки дробный (09:15 -> 18.5)
func SlotIndex(clock string) (float64, error) {
	minutes, err := task.ParseClock(clock)
	if err != nil {
		return 0, err
	}
	return float64(minutes) / SlotMinutes, nil
}

// Position размещает задачу со временем на сетке слотов. Нулевая или
// перевёрнутая длительность (старые записи) растягивается до одного слота.
func Position(t *task.Task, slotHeight float64) (Placement, error) {
	if slotHeight <= 0 {
		slotHeight = DefaultSlotHeight
	}
	start, err := SlotIndex(t.StartTime)
	if err != nil {
		return Placement{}, err
	}
	end, err := SlotIndex(t.EndTime)
	if err != nil {
		return Placement{}, err
	}

	p := Placement{Task: t, StartSlot: start, EndSlot: end}
	if end <= start {
		p.EndSlot = min(start+1, SlotsPerDay)
		p.Clamped = true
	}
	p.Top = p.StartSlot * slotHeight
	p.Height = (p.EndSlot - p.StartSlot) * slotHeight
	return p, nil
}

type DayColumn struct {
	Date    time.Time    `json:"date"`
	IsToday bool         `json:"is_today"`
	AllDay  []*task.Task `json:"all_day"`
	Timed   []Placement  `json:"timed"`
	// Skipped - задачи со временем, которое не удалось разобрать
	Skipped []*task.Task `json:"skipped,omitempty"`
}

// LayoutDay собирает колонку дня для видов week/day
func LayoutDay(tasks []*task.Task, day, today time.Time, slotHeight float64) DayColumn {
	allDay, timed := Partition(EventsForDay(tasks, day))
	col := DayColumn{
		Date:    task.Day(day),
		IsToday: task.SameDay(day, today),
		AllDay:  allDay,
		Timed:   make([]Placement, 0, len(timed)),
	}
	for _, t := range SortDay(timed) {
		p, err := Position(t, slotHeight)
		if err != nil {
			col.Skipped = append(col.Skipped, t)
			continue
		}
		col.Timed = append(col.Timed, p)
	}
	return col
}
