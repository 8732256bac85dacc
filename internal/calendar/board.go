package calendar

import (
	"time"

	"teamCalendar/internal/models/task"
)

// State - состояние экрана, приходит с каждым запросом
type State struct {
	CurrentDate    time.Time
	View           View
	SelectedUserID string
	Today          time.Time
	SlotHeight     float64
	Resources      []Resource
}

type MonthDay struct {
	MonthCell
	IsToday bool         `json:"is_today"`
	Tasks   []*task.Task `json:"tasks"`
}

type ResourceDay struct {
	Date  time.Time   `json:"date"`
	Tasks []Placement `json:"tasks"`
}

type ResourceRow struct {
	Resource Resource      `json:"resource"`
	Days     []ResourceDay `json:"days"`
}

// Board - готовая к отрисовке проекция задач для одного вида.
// Заполнено только поле, соответствующее View.
type Board struct {
	View      View          `json:"view"`
	Label     string        `json:"label"`
	Date      time.Time     `json:"date"`
	From      time.Time     `json:"from"`
	To        time.Time     `json:"to"`
	Month     []MonthDay    `json:"month,omitempty"`
	Columns   []DayColumn   `json:"columns,omitempty"`
	Agenda    []DayGroup    `json:"agenda,omitempty"`
	Timeline  []*task.Task  `json:"timeline,omitempty"`
	Resources []ResourceRow `json:"resources,omitempty"`
}

func Build(tasks []*task.Task, st State) Board {
	view := st.View
	if view == "" {
		view = DefaultView
	}
	current := task.Day(st.CurrentDate)
	from, to := VisibleRange(current, view)
	visible := InRange(FilterByAssignee(tasks, st.SelectedUserID), from, to)

	b := Board{
		View:  view,
		Label: RangeLabel(current, view),
		Date:  current,
		From:  from,
		To:    to,
	}

	switch view {
	case ViewMonth:
		for _, cell := range MonthGrid(current) {
			b.Month = append(b.Month, MonthDay{
				MonthCell: cell,
				IsToday:   task.SameDay(cell.Date, st.Today),
				Tasks:     EventsForDay(visible, cell.Date),
			})
		}
	case ViewDay:
		b.Columns = []DayColumn{LayoutDay(visible, current, st.Today, st.SlotHeight)}
	case ViewWeek:
		for _, day := range WeekDays(current) {
			b.Columns = append(b.Columns, LayoutDay(visible, day, st.Today, st.SlotHeight))
		}
	case ViewList:
		b.Agenda = Agenda(visible, current)
	case ViewTimeline:
		b.Timeline = Timeline(visible, current)
	case ViewResources:
		b.Resources = buildResources(visible, current, st)
	}
	return b
}

func buildResources(tasks []*task.Task, current time.Time, st State) []ResourceRow {
	resources := st.Resources
	if len(resources) == 0 {
		resources = DefaultResources
	}
	rows := make([]ResourceRow, len(resources))
	for i, r := range resources {
		rows[i] = ResourceRow{Resource: r}
	}

	for _, day := range WeekDays(current) {
		lanes := Distribute(resources, tasks, day)
		for i, lane := range lanes {
			rd := ResourceDay{Date: day, Tasks: []Placement{}}
			for _, t := range lane {
				if p, err := Position(t, st.SlotHeight); err == nil {
					rd.Tasks = append(rd.Tasks, p)
				}
			}
			rows[i].Days = append(rows[i].Days, rd)
		}
	}
	return rows
}
