package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"teamCalendar/internal/models/task"
	"teamCalendar/internal/repository"
	"teamCalendar/internal/repository/task/sqlite"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2025, 7, 28, 0, 0, 0, 0, time.UTC)

func open(t *testing.T) (*sqlite.Storage, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "calendar.db")
	storage, err := sqlite.Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })
	return storage, path
}

func newTask(title string, date time.Time, start, end string) *task.Task {
	t := &task.Task{
		UUID:        uuid.New(),
		Title:       title,
		Date:        date,
		StartTime:   start,
		EndTime:     end,
		AllDay:      start == "",
		AssigneeIDs: []string{"alice"},
	}
	t.Normalize()
	return t
}

func TestStorage_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	storage, _ := open(t)

	require.NoError(t, storage.HealthCheck(ctx))

	created := newTask("Review", day, "13:00", "14:00")
	created.ResourceID = "room-b"
	require.NoError(t, storage.Create(ctx, created))
	assert.False(t, created.CreatedAt.IsZero())

	got, err := storage.GetByID(ctx, created.UUID)
	require.NoError(t, err)
	assert.Equal(t, created.UUID, got.UUID)
	assert.Equal(t, "Review", got.Title)
	assert.True(t, task.SameDay(day, got.Date))
	assert.Equal(t, "13:00", got.StartTime)
	assert.Equal(t, []string{"alice"}, got.AssigneeIDs)
	assert.Equal(t, "room-b", got.ResourceID)
	assert.Equal(t, task.ColorBlue, got.Color)
	assert.False(t, got.AllDay)
	assert.Nil(t, got.CompletedAt)

	_, err = storage.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStorage_UpdateVersioning(t *testing.T) {
	ctx := context.Background()
	storage, _ := open(t)

	created := newTask("Deploy", day, "", "")
	require.NoError(t, storage.Create(ctx, created))

	fresh, err := storage.GetByID(ctx, created.UUID)
	require.NoError(t, err)
	stale, err := storage.GetByID(ctx, created.UUID)
	require.NoError(t, err)

	now := time.Now()
	fresh.Completed = true
	fresh.CompletedAt = &now
	require.NoError(t, storage.Update(ctx, fresh))
	assert.Equal(t, 1, fresh.Version)

	got, err := storage.GetByID(ctx, created.UUID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	require.NotNil(t, got.CompletedAt)
	assert.WithinDuration(t, now, *got.CompletedAt, time.Millisecond)
	assert.NotNil(t, got.UpdatedAt)

	stale.Title = "Lost update"
	assert.ErrorIs(t, storage.Update(ctx, stale), repository.ErrVersionConflict)

	missing := newTask("Ghost", day, "", "")
	assert.ErrorIs(t, storage.Update(ctx, missing), repository.ErrNotFound)
}

func TestStorage_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	storage, _ := open(t)

	late := newTask("Late", day, "15:00", "16:00")
	early := newTask("Early", day, "08:00", "09:00")
	allDay := newTask("All day", day, "", "")
	tomorrow := newTask("Tomorrow", day.AddDate(0, 0, 1), "07:00", "08:00")
	for _, tk := range []*task.Task{tomorrow, late, early, allDay} {
		require.NoError(t, storage.Create(ctx, tk))
	}

	tasks, err := storage.List(ctx)
	require.NoError(t, err)
	titles := []string{}
	for _, tk := range tasks {
		titles = append(titles, tk.Title)
	}
	assert.Equal(t, []string{"All day", "Early", "Late", "Tomorrow"}, titles)

	require.NoError(t, storage.Delete(ctx, early.UUID))
	assert.ErrorIs(t, storage.Delete(ctx, early.UUID), repository.ErrNotFound)

	tasks, err = storage.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 3)
}

func TestStorage_ListBrokenRow(t *testing.T) {
	ctx := context.Background()
	storage, path := open(t)

	broken := newTask("Broken", day, "10:00", "11:00")
	require.NoError(t, storage.Create(ctx, broken))
	require.NoError(t, storage.Create(ctx, newTask("Fine", day, "12:00", "13:00")))

	// драйвер modernc уже зарегистрирован пакетом sqlite
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)")
	require.NoError(t, err)
	defer db.Close()
	_, err = db.ExecContext(ctx, `UPDATE tasks SET date = 'not a date' WHERE uuid = ?`, broken.UUID.String())
	require.NoError(t, err)

	tasks, err := storage.List(ctx)
	assert.Error(t, err)
	assert.Nil(t, tasks)
}

func TestStorage_SingleWriterLock(t *testing.T) {
	_, path := open(t)

	_, err := sqlite.Open(context.Background(), path)
	assert.ErrorIs(t, err, repository.ErrLocked)
}

func TestStorage_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "calendar.db")

	storage, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	created := newTask("Persisted", day, "10:00", "11:00")
	require.NoError(t, storage.Create(ctx, created))
	require.NoError(t, storage.Close())

	storage, err = sqlite.Open(ctx, path)
	require.NoError(t, err)
	defer storage.Close()

	got, err := storage.GetByID(ctx, created.UUID)
	require.NoError(t, err)
	assert.Equal(t, "Persisted", got.Title)
}
