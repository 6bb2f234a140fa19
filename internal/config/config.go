package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverSupabase = "supabase"
	DriverPostgres = "postgres"
	DriverPGX      = "pgx"
	DriverMemory   = "memory"
)

type ServerConfig struct {
	Port            int           `yaml:"port" env:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	Swagger         bool          `yaml:"swagger" env:"SWAGGER_ENABLED"`
}

type StoreConfig struct {
	Driver       string        `yaml:"driver" env:"STORE_DRIVER"`
	URL          string        `yaml:"url" env:"SUPABASE_URL"`
	Key          string        `yaml:"key" env:"SUPABASE_KEY"`
	Schema       string        `yaml:"schema" env:"SUPABASE_SCHEMA"`
	DSN          string        `yaml:"dsn" env:"DATABASE_URL"`
	Timeout      time.Duration `yaml:"timeout" env:"STORE_TIMEOUT"`
	MaxOpenConns int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
	UsersTable   string        `yaml:"users_table" env:"USERS_TABLE"`
	LeadsTable   string        `yaml:"leads_table" env:"LEADS_TABLE"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	TokenTTL  time.Duration `yaml:"token_ttl" env:"ACCESS_TOKEN_TTL"`
	Leeway    time.Duration `yaml:"leeway" env:"ACCESS_TOKEN_LEEWAY"`
}

type LogConfig struct {
	Level    string `yaml:"level" env:"LOG_LEVEL"`
	File     string `yaml:"file" env:"LOG_FILE"`
	Console  bool   `yaml:"console" env:"LOG_CONSOLE"`
	MaxSize  int    `yaml:"max_size_mb" env:"LOG_MAX_SIZE_MB"`
	MaxFiles int    `yaml:"max_files" env:"LOG_MAX_FILES"`
	KeepDays int    `yaml:"keep_days" env:"LOG_KEEP_DAYS"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

type EmailConfig struct {
	SMTPHost     string `yaml:"smtp_host" env:"SMTP_HOST"`
	SMTPPort     int    `yaml:"smtp_port" env:"SMTP_PORT"`
	SMTPUser     string `yaml:"smtp_user" env:"SMTP_USER"`
	SMTPPassword string `yaml:"smtp_password" env:"SMTP_PASSWORD"`
	FromEmail    string `yaml:"from_email" env:"EMAIL_FROM"`
}

func (e EmailConfig) Enabled() bool {
	return e.SMTPHost != "" && e.FromEmail != ""
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token" env:"TELEGRAM_BOT_TOKEN"`
	ChatID   int64  `yaml:"chat_id" env:"TELEGRAM_CHAT_ID"`
}

func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != 0
}

type ExportConfig struct {
	FontPath string `yaml:"font_path" env:"EXPORT_FONT_PATH"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Store    StoreConfig    `yaml:"store"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
	CORS     CORSConfig     `yaml:"cors"`
	Email    EmailConfig    `yaml:"email"`
	Telegram TelegramConfig `yaml:"telegram"`
	Export   ExportConfig   `yaml:"export"`
}

// Load reads the optional YAML file at path, then .env, then the process
// environment; later sources win. The result is validated.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		if err := readFile(path, cfg); err != nil {
			return nil, err
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 5 * time.Second
	}
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	if c.Store.Driver == "" {
		c.Store.Driver = DriverSupabase
	}
	if c.Store.Schema == "" {
		c.Store.Schema = "public"
	}
	if c.Store.Timeout == 0 {
		c.Store.Timeout = 15 * time.Second
	}
	if c.Store.MaxOpenConns == 0 {
		c.Store.MaxOpenConns = 5
	}
	if c.Store.UsersTable == "" {
		c.Store.UsersTable = "users"
	}
	if c.Store.LeadsTable == "" {
		c.Store.LeadsTable = "leads"
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 30 * time.Minute
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.File == "" {
		c.Log.Console = true
	}
	if c.Log.MaxSize == 0 {
		c.Log.MaxSize = 100
	}
	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 587
	}
}

// Validate fails fast on anything the server cannot start without.
func (c *Config) Validate() error {
	var missing []string
	switch c.Store.Driver {
	case DriverSupabase:
		if c.Store.URL == "" {
			missing = append(missing, "SUPABASE_URL")
		}
		if c.Store.Key == "" {
			missing = append(missing, "SUPABASE_KEY")
		}
	case DriverPostgres, DriverPGX:
		if c.Store.DSN == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Auth.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	if c.Auth.TokenTTL < 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}
	return nil
}
