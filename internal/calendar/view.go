// Package calendar содержит view-model календаря: навигацию по датам,
// подписи диапазонов, раскладку задач по дням, слотам и ресурсам.
// Все функции чистые и не обращаются к хранилищам.
package calendar

import (
	"fmt"
	"time"

	"teamCalendar/internal/models/task"
)

type View string

const (
	ViewMonth     View = "month"
	ViewWeek      View = "week"
	ViewDay       View = "day"
	ViewList      View = "list"
	ViewResources View = "resources"
	ViewTimeline  View = "timeline"
)

const DefaultView = ViewWeek

func ParseView(s string) (View, error) {
	if s == "" {
		return DefaultView, nil
	}
	v := View(s)
	switch v {
	case ViewMonth, ViewWeek, ViewDay, ViewList, ViewResources, ViewTimeline:
		return v, nil
	}
	return "", fmt.Errorf("неизвестный вид календаря %q", s)
}

// weekly - виды, которые показывают неделю целиком
func (v View) weekly() bool {
	return v == ViewWeek || v == ViewList || v == ViewResources || v == ViewTimeline
}

type Direction int

const (
	Prev Direction = -1
	Next Direction = 1
)

func ParseDirection(s string) (Direction, error) {
	switch s {
	case "prev":
		return Prev, nil
	case "next":
		return Next, nil
	}
	return 0, fmt.Errorf("неизвестное направление %q", s)
}

// Navigate сдвигает текущую дату на одну единицу вида.
// Переполнение дня месяца нормализуется как в AddDate: 31 января + месяц = 3 марта.
func Navigate(current time.Time, view View, dir Direction) time.Time {
	step := int(dir)
	switch view {
	case ViewMonth:
		return current.AddDate(0, step, 0)
	case ViewDay:
		return current.AddDate(0, 0, step)
	default:
		return current.AddDate(0, 0, 7*step)
	}
}

// WeekStart - воскресенье, на которое приходится или которому предшествует day
func WeekStart(day time.Time) time.Time {
	d := task.Day(day)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

func WeekDays(day time.Time) []time.Time {
	start := WeekStart(day)
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// RangeLabel - заголовок над сеткой календаря (локаль en-US)
func RangeLabel(current time.Time, view View) string {
	d := task.Day(current)
	switch {
	case view == ViewMonth:
		return d.Format("January 2006")
	case view == ViewDay:
		return d.Format("Monday, January 2, 2006")
	case view.weekly():
		start := WeekStart(d)
		end := start.AddDate(0, 0, 6)
		return start.Format("Jan 2") + " – " + end.Format("Jan 2, 2006")
	}
	return ""
}

// VisibleRange - первый и последний день (включительно), которые показывает вид
func VisibleRange(current time.Time, view View) (time.Time, time.Time) {
	d := task.Day(current)
	switch {
	case view == ViewMonth:
		grid := MonthGrid(d)
		return grid[0].Date, grid[len(grid)-1].Date
	case view == ViewDay:
		return d, d
	default:
		start := WeekStart(d)
		return start, start.AddDate(0, 0, 6)
	}
}

type MonthCell struct {
	Date           time.Time `json:"date"`
	InCurrentMonth bool      `json:"in_current_month"`
}

const monthCells = 42 // 6 недель по 7 дней

// MonthGrid строит сетку месяца, начиная с воскресенья перед первым числом
func MonthGrid(current time.Time) []MonthCell {
	first := time.Date(current.Year(), current.Month(), 1, 0, 0, 0, 0, time.UTC)
	start := WeekStart(first)

	cells := make([]MonthCell, monthCells)
	for i := range cells {
		date := start.AddDate(0, 0, i)
		cells[i] = MonthCell{
			Date:           date,
			InCurrentMonth: date.Month() == first.Month(),
		}
	}
	return cells
}
