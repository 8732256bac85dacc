package handlers

import (
	"net/http"
	"time"

	"teamCalendar/internal/calendar"
	"teamCalendar/internal/handlers/dto"
	"teamCalendar/internal/logger"
	"teamCalendar/internal/models/task"
	"teamCalendar/internal/service"

	"go.uber.org/zap"
)

type CalendarHandler struct {
	CalendarService CalendarService
}

func NewCalendarHandler(calendarService CalendarService) CalendarHandler {
	return CalendarHandler{CalendarService: calendarService}
}

// query разбирает date и view; при ошибке ответ уже записан
func (s *CalendarHandler) query(w http.ResponseWriter, r *http.Request) (time.Time, calendar.View, bool) {
	q := r.URL.Query()

	day, err := parseDay("date", q.Get("date"))
	if err != nil {
		handleBusinessError(w, err)
		return time.Time{}, "", false
	}
	view, err := calendar.ParseView(q.Get("view"))
	if err != nil {
		handleBusinessError(w, service.NewValidationError("view", err.Error()))
		return time.Time{}, "", false
	}
	return day, view, true
}

// GetCalendar: GET /calendar?date=&view=&user=
func (s *CalendarHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	day, view, ok := s.query(w, r)
	if !ok {
		return
	}

	board, err := s.CalendarService.Board(r.Context(), service.BoardQuery{
		Date:   day,
		View:   view,
		UserID: r.URL.Query().Get("user"),
	})
	if err != nil {
		handleServiceError(w, r, err, "calendar_board")
		return
	}

	logger.Info("HTTP_OUT: Календарь построен",
		zap.String("view", string(board.View)),
		zap.Duration("ms", time.Since(start)))

	responseWithBody(w, http.StatusOK, dto.CalendarResponse{Board: board.Board, People: board.People})
}

// Navigate: GET /calendar/navigate?date=&view=&direction=
func (s *CalendarHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	day, view, ok := s.query(w, r)
	if !ok {
		return
	}

	next, err := s.CalendarService.Navigate(r.Context(), day, view, r.URL.Query().Get("direction"))
	if err != nil {
		handleServiceError(w, r, err, "calendar_navigate")
		return
	}

	responseWithBody(w, http.StatusOK, dto.NavigateResponse{
		Date:  task.FormatDay(next),
		View:  string(view),
		Label: calendar.RangeLabel(next, view),
	})
}
