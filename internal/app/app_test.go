package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"teamCalendar/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPeople = `people:
  - id: alice
    name: Alice Johnson
    admin: true
  - id: bob
    name: Bob Smith
`

func newTestApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()
	peoplePath := filepath.Join(dir, "people.yml")
	require.NoError(t, os.WriteFile(peoplePath, []byte(testPeople), 0o644))

	cfg, err := config.Load(filepath.Join(dir, "config.yml"))
	require.NoError(t, err)
	cfg.Directory.Path = peoplePath
	cfg.Server.RateLimit = 1000

	a, err := New(cfg).Init(context.Background())
	require.NoError(t, err)
	t.Cleanup(a.Shutdown)
	return a
}

func do(t *testing.T, a *App, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func openSession(t *testing.T, a *App, personID string) string {
	t.Helper()
	rr := do(t, a, http.MethodPost, "/sessions", "", map[string]string{"person_id": personID})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestApp_Routes(t *testing.T) {
	a := newTestApp(t)

	t.Run("health", func(t *testing.T) {
		rr := do(t, a, http.MethodGet, "/health", "", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	})

	t.Run("notifications require session", func(t *testing.T) {
		rr := do(t, a, http.MethodGet, "/notifications", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("unknown route", func(t *testing.T) {
		rr := do(t, a, http.MethodGet, "/archive", "", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("calendar", func(t *testing.T) {
		rr := do(t, a, http.MethodGet, "/calendar?date=2025-07-29&view=week", "", nil)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var board map[string]any
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&board))
		assert.Equal(t, "week", board["view"])
	})
}

func TestApp_TaskFlow(t *testing.T) {
	a := newTestApp(t)

	alice := openSession(t, a, "alice")
	bob := openSession(t, a, "bob")

	presence, ok := a.hub.Get("bob")
	require.True(t, ok)
	assert.True(t, presence.Online())

	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	rr := do(t, a, http.MethodPost, "/tasks", alice, map[string]any{
		"title":        "Sprint review",
		"date":         tomorrow,
		"start_time":   "10:00",
		"end_time":     "11:00",
		"assignee_ids": []string{"bob"},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created struct {
		ID            string   `json:"id"`
		AssigneeNames []string `json:"assignee_names"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
	assert.Equal(t, []string{"Bob Smith"}, created.AssigneeNames)

	// исполнитель получает new_task, автор нет
	rr = do(t, a, http.MethodGet, "/notifications", bob, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var notes []map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&notes))
	require.Len(t, notes, 1)
	assert.Equal(t, "new_task", notes[0]["type"])

	rr = do(t, a, http.MethodGet, "/notifications", alice, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	notes = nil
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&notes))
	assert.Empty(t, notes)

	rr = do(t, a, http.MethodPatch, "/tasks/"+created.ID, bob, map[string]any{"completed": true})
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	// повторное завершение через PATCH ведёт себя как POST /complete
	rr = do(t, a, http.MethodPost, "/tasks/"+created.ID+"/complete", bob, nil)
	assert.Equal(t, http.StatusConflict, rr.Code, rr.Body.String())

	rr = do(t, a, http.MethodPatch, "/tasks/"+created.ID, bob, map[string]any{"completed": true})
	assert.Equal(t, http.StatusConflict, rr.Code, rr.Body.String())

	rr = do(t, a, http.MethodDelete, "/tasks/"+created.ID, bob, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, a, http.MethodDelete, "/sessions", bob, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	presence, _ = a.hub.Get("bob")
	assert.False(t, presence.Online())
}

func TestApp_FirstTaskAfterStartNotifies(t *testing.T) {
	a := newTestApp(t)

	alice := openSession(t, a, "alice")
	bob := openSession(t, a, "bob")

	rr := do(t, a, http.MethodPost, "/tasks", alice, map[string]any{
		"title":        "Kickoff",
		"date":         time.Now().Format("2006-01-02"),
		"all_day":      true,
		"assignee_ids": []string{"bob"},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = do(t, a, http.MethodGet, "/notifications", bob, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var notes []map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&notes))
	require.Len(t, notes, 1)
	assert.Equal(t, "new_task", notes[0]["type"])
}
