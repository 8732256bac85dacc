package task

import "fmt"

type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("поле '%s': %s", e.Field, e.Reason)
}

// Validate проверяет уже нормализованную задачу
func (t *Task) Validate() error {
	if t.Title == "" {
		return &FieldError{Field: "title", Reason: "название не может быть пустым"}
	}
	if t.Date.IsZero() {
		return &FieldError{Field: "date", Reason: "дата должна быть задана"}
	}
	if !t.Color.Valid() {
		return &FieldError{Field: "color", Reason: fmt.Sprintf("неизвестный цвет %q", t.Color)}
	}
	if !t.Priority.Valid() {
		return &FieldError{Field: "priority", Reason: fmt.Sprintf("неизвестный приоритет %q", t.Priority)}
	}
	if !t.Repeat.Valid() {
		return &FieldError{Field: "repeat", Reason: fmt.Sprintf("неизвестный повтор %q", t.Repeat)}
	}
	if t.AllDay {
		return nil
	}

	start, err := ParseClock(t.StartTime)
	if err != nil {
		return &FieldError{Field: "start_time", Reason: err.Error()}
	}
	end, err := ParseClock(t.EndTime)
	if err != nil {
		return &FieldError{Field: "end_time", Reason: err.Error()}
	}
	if end <= start {
		return &FieldError{Field: "end_time", Reason: "время окончания должно быть позже времени начала"}
	}
	return nil
}
