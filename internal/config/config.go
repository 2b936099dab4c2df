package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/m04kA/kesseki-furikae/internal/domain"
	"github.com/m04kA/kesseki-furikae/pkg/types"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	SenderConsole  = "console"
	SenderSendGrid = "sendgrid"
)

// Переменные окружения с секретами, перекрывают значения из файла
const (
	envDBPassword     = "DB_PASSWORD"
	envSendGridAPIKey = "SENDGRID_API_KEY"
	envAdminTokenHash = "ADMIN_TOKEN_HASH"
	envPublicBaseURL  = "PUBLIC_BASE_URL"
)

// Config конфигурация сервиса
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Logs     LogsConfig     `toml:"logs"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Booking  BookingConfig  `toml:"booking"`
	Mail     MailConfig     `toml:"mail"`
	Admin    AdminConfig    `toml:"admin"`
	Sweeper  SweeperConfig  `toml:"sweeper"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

type DatabaseConfig struct {
	Storage         string `toml:"storage"` // postgres | memory
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
	AutoMigrate     bool   `toml:"auto_migrate"`
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type LogsConfig struct {
	File  string `toml:"file"` // пусто - stdout
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// BookingConfig значения по умолчанию для глобальных настроек
// Действующие настройки хранятся в БД и меняются через админку
type BookingConfig struct {
	Timezone         string `toml:"timezone"`
	MakeupWindowDays int    `toml:"makeup_window_days"`
	CutoffTime       string `toml:"cutoff_time"`
}

type MailConfig struct {
	Sender         string `toml:"sender"` // console | sendgrid
	SendGridAPIKey string `toml:"sendgrid_api_key"`
	FromName       string `toml:"from_name"`
	FromEmail      string `toml:"from_email"`
	SubjectPrefix  string `toml:"subject_prefix"`
	PublicBaseURL  string `toml:"public_base_url"`
}

type AdminConfig struct {
	TokenHash string `toml:"token_hash"` // bcrypt хеш токена администратора
}

type SweeperConfig struct {
	Enabled        bool   `toml:"enabled"`
	Interval       int    `toml:"interval"` // минуты
	WindowStart    string `toml:"window_start"`
	WindowEnd      string `toml:"window_end"`
	LookaheadHours int    `toml:"lookahead_hours"`
}

// Load читает config.toml, накладывает .env и переменные окружения, заполняет значения по умолчанию
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	// .env необязателен
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to load .env: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv(envDBPassword); ok {
		c.Database.Password = v
	}
	if v, ok := os.LookupEnv(envSendGridAPIKey); ok {
		c.Mail.SendGridAPIKey = v
	}
	if v, ok := os.LookupEnv(envAdminTokenHash); ok {
		c.Admin.TokenHash = v
	}
	if v, ok := os.LookupEnv(envPublicBaseURL); ok {
		c.Mail.PublicBaseURL = v
	}
}

func (c *Config) applyDefaults() {
	setInt(&c.Server.HTTPPort, 8080)
	setInt(&c.Server.ReadTimeout, 15)
	setInt(&c.Server.WriteTimeout, 15)
	setInt(&c.Server.IdleTimeout, 60)
	setInt(&c.Server.ShutdownTimeout, 30)

	setString(&c.Database.Storage, StoragePostgres)
	setString(&c.Database.Host, "localhost")
	setInt(&c.Database.Port, 5432)
	setString(&c.Database.SSLMode, "disable")
	setInt(&c.Database.MaxOpenConns, 25)
	setInt(&c.Database.MaxIdleConns, 5)
	setInt(&c.Database.ConnMaxLifetime, 300)

	setString(&c.Logs.Level, "info")

	setString(&c.Metrics.Path, "/metrics")
	setString(&c.Metrics.ServiceName, "kesseki-furikae")

	setString(&c.Booking.Timezone, domain.DefaultTimezone)
	setInt(&c.Booking.MakeupWindowDays, domain.DefaultMakeupWindowDays)
	setString(&c.Booking.CutoffTime, domain.DefaultCutoffTime)

	setString(&c.Mail.Sender, SenderConsole)
	setString(&c.Mail.FromName, "振替予約")
	setString(&c.Mail.PublicBaseURL, "http://localhost:8080")
	c.Mail.PublicBaseURL = strings.TrimRight(c.Mail.PublicBaseURL, "/")

	setInt(&c.Sweeper.Interval, 30)
	setString(&c.Sweeper.WindowStart, "08:00")
	setString(&c.Sweeper.WindowEnd, "21:00")
	setInt(&c.Sweeper.LookaheadHours, 24)
}

// Validate проверяет согласованность конфигурации
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("config: server.http_port %d is out of range", c.Server.HTTPPort)
	}

	switch c.Database.Storage {
	case StorageMemory:
	case StoragePostgres:
		if c.Database.DBName == "" || c.Database.User == "" {
			return errors.New("config: database.dbname and database.user are required for postgres storage")
		}
	default:
		return fmt.Errorf("config: unknown database.storage %q", c.Database.Storage)
	}

	if _, err := time.LoadLocation(c.Booking.Timezone); err != nil {
		return fmt.Errorf("config: invalid booking.timezone %q: %w", c.Booking.Timezone, err)
	}
	if c.Booking.MakeupWindowDays < domain.MinMakeupWindowDays || c.Booking.MakeupWindowDays > domain.MaxMakeupWindowDays {
		return fmt.Errorf("config: booking.makeup_window_days must be between %d and %d",
			domain.MinMakeupWindowDays, domain.MaxMakeupWindowDays)
	}
	if _, err := types.NewTimeStringFromString(c.Booking.CutoffTime); err != nil {
		return fmt.Errorf("config: invalid booking.cutoff_time %q", c.Booking.CutoffTime)
	}

	switch c.Mail.Sender {
	case SenderConsole:
	case SenderSendGrid:
		if c.Mail.SendGridAPIKey == "" || c.Mail.FromEmail == "" {
			return errors.New("config: mail.sendgrid_api_key and mail.from_email are required for sendgrid sender")
		}
	default:
		return fmt.Errorf("config: unknown mail.sender %q", c.Mail.Sender)
	}

	if c.Sweeper.Enabled {
		start, err := types.NewTimeStringFromString(c.Sweeper.WindowStart)
		if err != nil {
			return fmt.Errorf("config: invalid sweeper.window_start %q", c.Sweeper.WindowStart)
		}
		end, err := types.NewTimeStringFromString(c.Sweeper.WindowEnd)
		if err != nil {
			return fmt.Errorf("config: invalid sweeper.window_end %q", c.Sweeper.WindowEnd)
		}
		if !start.IsBefore(end) {
			return errors.New("config: sweeper.window_start must be before sweeper.window_end")
		}
		if c.Sweeper.Interval <= 0 || c.Sweeper.LookaheadHours <= 0 {
			return errors.New("config: sweeper.interval and sweeper.lookahead_hours must be positive")
		}
	}

	return nil
}

// Location часовой пояс школы
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Booking.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DefaultSettings глобальные настройки, пока они не сохранены в БД
func (c *Config) DefaultSettings() domain.Settings {
	return domain.Settings{
		MakeupWindowDays: c.Booking.MakeupWindowDays,
		CutoffTime:       types.MustTimeString(c.Booking.CutoffTime),
	}
}

func setInt(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}

func setString(v *string, def string) {
	if *v == "" {
		*v = def
	}
}
