package task

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const DayLayout = "2006-01-02"

// Day отбрасывает время суток. Год, месяц и день берутся в локации самого
// значения, результат всегда полночь UTC, чтобы даты из разных источников
// сравнивались через Equal.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}

func FormatDay(t time.Time) string {
	return Day(t).Format(DayLayout)
}

// ParseDay принимает "2006-01-02" и полные ISO-строки со временем
func ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("пустая дата")
	}
	if t, err := time.Parse(DayLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("неверный формат даты %q: %w", s, err)
	}
	return Day(t), nil
}

// ParseClock разбирает "HH:MM" и возвращает минуты от начала суток
func ParseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(hh) != 2 || len(mm) != 2 {
		return 0, fmt.Errorf("время %q должно быть в формате HH:MM", s)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("неверный час в %q", s)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("неверные минуты в %q", s)
	}
	return hour*60 + minute, nil
}
