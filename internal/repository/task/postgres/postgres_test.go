package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"teamCalendar/internal/models/task"
	"teamCalendar/internal/repository"
	"teamCalendar/internal/repository/task/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresTestSuite для интеграционных тестов с PostgreSQL
type PostgresTestSuite struct {
	suite.Suite
	container  testcontainers.Container
	storage    *postgres.Storage
	ctx        context.Context
	connString string
}

// SetupSuite запускается один раз перед всеми тестами
func (s *PostgresTestSuite) SetupSuite() {
	s.ctx = context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(s.T(), err)
	s.container = container

	host, err := container.Host(s.ctx)
	require.NoError(s.T(), err)

	port, err := container.MappedPort(s.ctx, "5432")
	require.NoError(s.T(), err)

	s.connString = fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	s.storage, err = postgres.New(s.ctx, s.connString)
	require.NoError(s.T(), err)

	require.NoError(s.T(), s.storage.Migrate(s.ctx))
}

// TearDownSuite очищает после всех тестов
func (s *PostgresTestSuite) TearDownSuite() {
	if s.storage != nil {
		assert.NoError(s.T(), s.storage.Down(s.ctx))
		s.storage.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

// SetupTest очищает таблицу перед каждым тестом
func (s *PostgresTestSuite) SetupTest() {
	conn, err := pgx.Connect(s.ctx, s.connString)
	require.NoError(s.T(), err)
	defer conn.Close(s.ctx)

	_, err = conn.Exec(s.ctx, "DELETE FROM tasks")
	require.NoError(s.T(), err)
}

// TestPostgresTestSuite запускает suite
func TestPostgresTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Пропускаем интеграционные тесты в коротком режиме")
	}
	suite.Run(t, new(PostgresTestSuite))
}

var day = time.Date(2025, 7, 28, 0, 0, 0, 0, time.UTC)

func timed(title string, date time.Time, start, end string) *task.Task {
	t := &task.Task{
		UUID:        uuid.New(),
		Title:       title,
		Date:        date,
		StartTime:   start,
		EndTime:     end,
		AssigneeIDs: []string{"alice", "bob"},
	}
	t.Normalize()
	return t
}

func (s *PostgresTestSuite) TestStorage_HealthCheck() {
	assert.NoError(s.T(), s.storage.HealthCheck(s.ctx))
}

// TestStorage_Create тестирует создание и чтение задачи
func (s *PostgresTestSuite) TestStorage_Create() {
	taskToCreate := timed("Planning", day, "09:00", "10:30")
	taskToCreate.Description = "Sprint planning"
	taskToCreate.ResourceID = "room-a"
	taskToCreate.Color = task.ColorPurple

	err := s.storage.Create(s.ctx, taskToCreate)
	require.NoError(s.T(), err)
	assert.False(s.T(), taskToCreate.CreatedAt.IsZero())

	got, err := s.storage.GetByID(s.ctx, taskToCreate.UUID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Planning", got.Title)
	assert.Equal(s.T(), "Sprint planning", got.Description)
	assert.True(s.T(), task.SameDay(day, got.Date))
	assert.Equal(s.T(), "09:00", got.StartTime)
	assert.Equal(s.T(), "10:30", got.EndTime)
	assert.Equal(s.T(), task.ColorPurple, got.Color)
	assert.Equal(s.T(), []string{"alice", "bob"}, got.AssigneeIDs)
	assert.Equal(s.T(), "room-a", got.ResourceID)
	assert.Equal(s.T(), task.PriorityMedium, got.Priority)
	assert.Equal(s.T(), 0, got.Version)
	assert.Nil(s.T(), got.UpdatedAt)
}

// TestStorage_GetByID тестирует получение несуществующей задачи
func (s *PostgresTestSuite) TestStorage_GetByID() {
	_, err := s.storage.GetByID(s.ctx, uuid.New())
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
}

// TestStorage_Update тестирует обновление задачи
func (s *PostgresTestSuite) TestStorage_Update() {
	taskToCreate := timed("Original Title", day, "09:00", "10:00")
	require.NoError(s.T(), s.storage.Create(s.ctx, taskToCreate))

	now := time.Now()
	taskToCreate.Title = "Updated Title"
	taskToCreate.Date = day.AddDate(0, 0, 1)
	taskToCreate.Completed = true
	taskToCreate.CompletedAt = &now

	require.NoError(s.T(), s.storage.Update(s.ctx, taskToCreate))
	assert.Equal(s.T(), 1, taskToCreate.Version)

	got, err := s.storage.GetByID(s.ctx, taskToCreate.UUID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Updated Title", got.Title)
	assert.True(s.T(), task.SameDay(day.AddDate(0, 0, 1), got.Date))
	assert.True(s.T(), got.Completed)
	assert.NotNil(s.T(), got.CompletedAt)
	assert.NotNil(s.T(), got.UpdatedAt)
	assert.Equal(s.T(), 1, got.Version)
}

// TestStorage_Update_VersionConflict тестирует конфликт версий
func (s *PostgresTestSuite) TestStorage_Update_VersionConflict() {
	taskToCreate := timed("Test Task", day, "09:00", "10:00")
	require.NoError(s.T(), s.storage.Create(s.ctx, taskToCreate))

	task1, err := s.storage.GetByID(s.ctx, taskToCreate.UUID)
	require.NoError(s.T(), err)
	task2, err := s.storage.GetByID(s.ctx, taskToCreate.UUID)
	require.NoError(s.T(), err)

	task1.Title = "Updated by task1"
	require.NoError(s.T(), s.storage.Update(s.ctx, task1))

	task2.Title = "Updated by task2"
	err = s.storage.Update(s.ctx, task2)
	assert.ErrorIs(s.T(), err, repository.ErrVersionConflict)

	missing := timed("Ghost", day, "", "")
	assert.ErrorIs(s.T(), s.storage.Update(s.ctx, missing), repository.ErrNotFound)
}

// TestStorage_Delete тестирует полное удаление
func (s *PostgresTestSuite) TestStorage_Delete() {
	taskToCreate := timed("Task to purge", day, "09:00", "10:00")
	require.NoError(s.T(), s.storage.Create(s.ctx, taskToCreate))

	require.NoError(s.T(), s.storage.Delete(s.ctx, taskToCreate.UUID))

	_, err := s.storage.GetByID(s.ctx, taskToCreate.UUID)
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
	assert.ErrorIs(s.T(), s.storage.Delete(s.ctx, taskToCreate.UUID), repository.ErrNotFound)
}

// TestStorage_List тестирует порядок выдачи
func (s *PostgresTestSuite) TestStorage_List() {
	late := timed("Late", day, "15:00", "16:00")
	early := timed("Early", day, "08:00", "09:00")
	allDay := timed("All day", day, "", "")
	allDay.AllDay = true
	allDay.Normalize()
	tomorrow := timed("Tomorrow", day.AddDate(0, 0, 1), "07:00", "08:00")

	for _, t := range []*task.Task{tomorrow, late, early, allDay} {
		require.NoError(s.T(), s.storage.Create(s.ctx, t))
	}

	tasks, err := s.storage.List(s.ctx)
	require.NoError(s.T(), err)

	titles := []string{}
	for _, t := range tasks {
		titles = append(titles, t.Title)
	}
	assert.Equal(s.T(), []string{"All day", "Early", "Late", "Tomorrow"}, titles)
}

// TestStorage_List_BrokenRow: строка, которую нельзя прочитать, даёт ошибку, а не пропадает из списка
func (s *PostgresTestSuite) TestStorage_List_BrokenRow() {
	broken := timed("Broken", day, "10:00", "11:00")
	require.NoError(s.T(), s.storage.Create(s.ctx, broken))
	require.NoError(s.T(), s.storage.Create(s.ctx, timed("Fine", day, "12:00", "13:00")))

	pool := s.storage.Pool()
	_, err := pool.Exec(s.ctx, `ALTER TABLE tasks ALTER COLUMN description DROP NOT NULL`)
	require.NoError(s.T(), err)
	defer func() {
		_, err := pool.Exec(s.ctx, `DELETE FROM tasks WHERE description IS NULL`)
		assert.NoError(s.T(), err)
		_, err = pool.Exec(s.ctx, `ALTER TABLE tasks ALTER COLUMN description SET NOT NULL`)
		assert.NoError(s.T(), err)
	}()

	_, err = pool.Exec(s.ctx, `UPDATE tasks SET description = NULL WHERE uuid = $1`, broken.UUID)
	require.NoError(s.T(), err)

	tasks, err := s.storage.List(s.ctx)
	assert.Error(s.T(), err)
	assert.Nil(s.T(), tasks)
}
