package handlers

import (
	"net/http"
	"time"

	"teamCalendar/internal/handlers/dto"
	"teamCalendar/internal/logger"
	"teamCalendar/internal/middleware"
	"teamCalendar/internal/models/task"
	"teamCalendar/internal/service"

	"go.uber.org/zap"
)

type TaskHandler struct {
	TaskService   TaskService
	PeopleService PeopleService
	Now           func() time.Time
}

func NewTaskHandler(taskService TaskService, peopleService PeopleService) TaskHandler {
	return TaskHandler{
		TaskService:   taskService,
		PeopleService: peopleService,
		Now:           time.Now,
	}
}

func (s *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	if err := s.TaskService.HealthCheck(r.Context()); err != nil {
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("status", "unavailable"),
			toPayload("service", "team-calendar"),
			toPayload("error", err.Error()))
		return
	}
	responseWithJSON(w, http.StatusOK,
		toPayload("status", "ok"),
		toPayload("service", "team-calendar"),
		toPayload("time", s.Now().UTC()))
}

// names - справочник имён для ответа; без каталога ответ всё равно отдаётся с id
func (s *TaskHandler) names(r *http.Request) dto.Names {
	if s.PeopleService == nil {
		return dto.Names{}
	}
	people, err := s.PeopleService.ListPeople(r.Context())
	if err != nil {
		logger.Warn("HTTP: Не удалось получить каталог для имён исполнителей", zap.Error(err))
		return dto.Names{}
	}
	return dto.NamesOf(people)
}

func (s *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()

	from, err := parseDay("from", q.Get("from"))
	if err != nil {
		handleBusinessError(w, err)
		return
	}
	to, err := parseDay("to", q.Get("to"))
	if err != nil {
		handleBusinessError(w, err)
		return
	}

	tasks, err := s.TaskService.GetTasks(r.Context(), service.TaskFilter{
		AssigneeID: q.Get("user"),
		From:       from,
		To:         to,
	})
	if err != nil {
		handleServiceError(w, r, err, "get_tasks")
		return
	}

	logger.Info("HTTP_OUT: Задачи получены",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromTaskList(tasks, s.names(r)))
}

func (s *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var request dto.CreateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	day, err := parseDay("date", request.Date)
	if err != nil {
		handleBusinessError(w, err)
		return
	}

	opts := []task.TaskOption{
		task.WithTitle(request.Title),
		task.WithDescription(request.Description),
		task.WithDate(day),
		task.WithTimes(request.StartTime, request.EndTime),
		task.WithAllDay(request.AllDay),
		task.WithColor(task.Color(request.Color)),
		task.WithAssignees(request.AssigneeIDs),
		task.WithResource(request.ResourceID),
		task.WithPriority(task.Priority(request.Priority)),
		task.WithRepeat(task.Repeat(request.Repeat)),
	}
	if author, ok := middleware.CurrentPerson(r.Context()); ok {
		opts = append(opts, task.WithCreatedBy(author.ID))
	}

	created, err := s.TaskService.CreateTask(r.Context(), opts...)
	if err != nil {
		handleServiceError(w, r, err, "create_task")
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.String("task_id", created.UUID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithBody(w, http.StatusCreated, dto.FromTask(created, s.names(r)))
}

func (s *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	found, err := s.TaskService.GetTaskByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "get_task")
		return
	}

	responseWithBody(w, http.StatusOK, dto.FromTask(found, s.names(r)))
}

// updateOptions переводит заданные поля запроса в опции
func updateOptions(request dto.UpdateTaskRequest, now time.Time) ([]task.TaskOption, error) {
	var opts []task.TaskOption
	if request.Title != nil {
		opts = append(opts, task.WithTitle(*request.Title))
	}
	if request.Description != nil {
		opts = append(opts, task.WithDescription(*request.Description))
	}
	if request.Date != nil {
		day, err := parseDay("date", *request.Date)
		if err != nil {
			return nil, err
		}
		if day.IsZero() {
			return nil, service.NewValidationError("date", "дата не может быть пустой")
		}
		opts = append(opts, task.WithDate(day))
	}
	if request.StartTime != nil {
		opts = append(opts, task.WithStartTime(*request.StartTime))
	}
	if request.EndTime != nil {
		opts = append(opts, task.WithEndTime(*request.EndTime))
	}
	if request.AllDay != nil {
		opts = append(opts, task.WithAllDay(*request.AllDay))
	}
	if request.Color != nil {
		opts = append(opts, task.WithColor(task.Color(*request.Color)))
	}
	if request.AssigneeIDs != nil {
		opts = append(opts, task.WithAssignees(*request.AssigneeIDs))
	}
	if request.ResourceID != nil {
		opts = append(opts, task.WithResource(*request.ResourceID))
	}
	if request.Priority != nil {
		opts = append(opts, task.WithPriority(task.Priority(*request.Priority)))
	}
	if request.Repeat != nil {
		opts = append(opts, task.WithRepeat(task.Repeat(*request.Repeat)))
	}
	if request.Completed != nil {
		opts = append(opts, task.WithCompleted(*request.Completed, now))
	}
	if request.Version != nil {
		opts = append(opts, task.WithVersion(*request.Version))
	}
	return opts, nil
}

func (s *TaskHandler) PatchTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var request dto.UpdateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	opts, err := updateOptions(request, s.Now())
	if err != nil {
		handleBusinessError(w, err)
		return
	}

	updated, err := s.TaskService.UpdateTask(r.Context(), id, opts...)
	if err != nil {
		handleServiceError(w, r, err, "update_task")
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromTask(updated, s.names(r)))
}

func (s *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.TaskService.DeleteTask(r.Context(), id); err != nil {
		handleServiceError(w, r, err, "delete_task")
		return
	}

	logger.Info("HTTP_OUT: Задача удалена",
		zap.String("task_id", id.String()),
		zap.Int("http_status", http.StatusNoContent))

	w.WriteHeader(http.StatusNoContent)
}

func (s *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	completed, err := s.TaskService.CompleteTask(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "complete_task")
		return
	}

	responseWithBody(w, http.StatusOK, dto.FromTask(completed, s.names(r)))
}

// MoveTask - drag-and-drop задачи на другой день
func (s *TaskHandler) MoveTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var request dto.MoveTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	day, err := parseDay("date", request.Date)
	if err != nil {
		handleBusinessError(w, err)
		return
	}

	moved, changed, err := s.TaskService.MoveTask(r.Context(), id, day)
	if err != nil {
		handleServiceError(w, r, err, "move_task")
		return
	}

	logger.Info("HTTP_OUT: Перенос задачи",
		zap.String("task_id", id.String()),
		zap.Bool("moved", changed),
		zap.String("date", task.FormatDay(moved.Date)))

	responseWithBody(w, http.StatusOK, dto.MoveResponse{
		Task:  dto.FromTask(moved, s.names(r)),
		Moved: changed,
	})
}
