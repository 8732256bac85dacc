package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"teamCalendar/internal/calendar"
	"teamCalendar/internal/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const EnvPrefix = "CALENDAR"

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	SQLite     SQLiteConfig     `mapstructure:"sqlite"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Repository RepositoryConfig `mapstructure:"repository"`
	Directory  DirectoryConfig  `mapstructure:"directory"`
	Calendar   CalendarConfig   `mapstructure:"calendar"`
	Workers    WorkersConfig    `mapstructure:"workers"`
}

type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	Host           string        `mapstructure:"host"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RateLimit      int           `mapstructure:"rate_limit"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int           `mapstructure:"max_connections"`
	MinConnections int           `mapstructure:"min_connections"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

type RepositoryConfig struct {
	Type string `mapstructure:"type"` // inmemory, postgres или sqlite
}

type DirectoryConfig struct {
	Path string `mapstructure:"path"`
}

type CalendarConfig struct {
	SlotHeight float64             `mapstructure:"slot_height"`
	Resources  []calendar.Resource `mapstructure:"resources"`
}

type WorkersConfig struct {
	LateInterval time.Duration `mapstructure:"late_interval"`
	ReapInterval time.Duration `mapstructure:"reap_interval"`
	SessionTTL   time.Duration `mapstructure:"session_ttl"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.host", "")
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.rate_limit", 300)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.min_connections", 2)
	v.SetDefault("database.idle_timeout", 5*time.Minute)

	v.SetDefault("sqlite.path", "data/calendar.db")

	v.SetDefault("logging.development", false)
	v.SetDefault("logging.level", "info")

	v.SetDefault("repository.type", "inmemory")
	v.SetDefault("directory.path", "people.yml")

	v.SetDefault("calendar.slot_height", calendar.DefaultSlotHeight)
	v.SetDefault("calendar.resources", []calendar.Resource{})

	v.SetDefault("workers.late_interval", time.Minute)
	v.SetDefault("workers.reap_interval", 30*time.Second)
	v.SetDefault("workers.session_ttl", 2*time.Minute)
}

// Loader читает config.yml и переменные окружения CALENDAR_*
// (CALENDAR_DATABASE_URL, CALENDAR_REPOSITORY_TYPE, ...)
type Loader struct {
	v    *viper.Viper
	path string
}

func NewLoader(path string) *Loader {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &Loader{v: v, path: path}
}

// Load: отсутствующий файл не ошибка, тогда действуют значения по умолчанию и окружение
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("ошибка парсинга %s: %w", l.path, err)
		}
		logger.Warn("Config: Файл не найден, используются значения по умолчанию", zap.String("path", l.path))
	}
	return l.decode()
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("разбор конфигурации: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Watch перечитывает файл при изменении и передаёт новую конфигурацию в onChange.
// Невалидная версия файла пропускается.
func (l *Loader) Watch(onChange func(*Config)) {
	l.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := l.decode()
		if err != nil {
			logger.Error("Config: Новая версия конфигурации отклонена", err, zap.String("file", e.Name))
			return
		}
		logger.Info("Config: Конфигурация перечитана", zap.String("file", e.Name), zap.String("op", e.Op.String()))
		onChange(cfg)
	})
	l.v.WatchConfig()
}

func Load(path string) (*Config, error) {
	return NewLoader(path).Load()
}

func (c *Config) Validate() error {
	switch c.Repository.Type {
	case "inmemory", "sqlite":
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("database.url обязателен для repository.type=postgres")
		}
	default:
		return fmt.Errorf("неизвестный repository.type %q", c.Repository.Type)
	}
	if c.Calendar.SlotHeight <= 0 {
		return fmt.Errorf("calendar.slot_height должен быть больше нуля")
	}
	for _, r := range c.Calendar.Resources {
		if r.ID == "" {
			return fmt.Errorf("calendar.resources: у ресурса %q нет id", r.Name)
		}
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
