package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"teamCalendar/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, "inmemory", cfg.Repository.Type)
	assert.Equal(t, ":8080", cfg.GetServerAddr())
	assert.Equal(t, 30.0, cfg.Calendar.SlotHeight)
	assert.Equal(t, time.Minute, cfg.Workers.LateInterval)
	assert.Equal(t, 2*time.Minute, cfg.Workers.SessionTTL)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
  host: 127.0.0.1
  request_timeout: 5s
repository:
  type: sqlite
sqlite:
  path: /tmp/cal.db
logging:
  level: debug
calendar:
  slot_height: 48
  resources:
    - id: room-a
      name: Conference Room A
      color: blue
workers:
  late_interval: 10s
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.GetServerAddr())
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "sqlite", cfg.Repository.Type)
	assert.Equal(t, "/tmp/cal.db", cfg.SQLite.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 48.0, cfg.Calendar.SlotHeight)
	require.Len(t, cfg.Calendar.Resources, 1)
	assert.Equal(t, "room-a", cfg.Calendar.Resources[0].ID)
	assert.Equal(t, 10*time.Second, cfg.Workers.LateInterval)
	// не указанное в файле берётся по умолчанию
	assert.Equal(t, 30*time.Second, cfg.Workers.ReapInterval)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "repository:\n  type: inmemory\n")
	t.Setenv("CALENDAR_REPOSITORY_TYPE", "postgres")
	t.Setenv("CALENDAR_DATABASE_URL", "postgres://u:p@localhost:5432/cal")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Repository.Type)
	assert.Equal(t, "postgres://u:p@localhost:5432/cal", cfg.Database.URL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown repository", "repository:\n  type: mongo\n"},
		{"postgres without url", "repository:\n  type: postgres\n"},
		{"zero slot height", "calendar:\n  slot_height: 0\n"},
		{"resource without id", "calendar:\n  resources:\n    - name: Room\n"},
		{"broken yaml", "server: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}
