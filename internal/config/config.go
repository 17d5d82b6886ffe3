package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Password storage schemes understood by the auth service.
const (
	PasswordSchemePlain  = "plain"
	PasswordSchemeBcrypt = "bcrypt"
)

// Config holds every application setting. It is built once in main and
// handed to each component's constructor.
type Config struct {
	// Server
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	Mode string `yaml:"mode"`

	// Database
	DBPath string `yaml:"db_path"`

	// File storage
	UploadPath  string `yaml:"upload_path"`
	MaxFileSize int64  `yaml:"max_file_size"`

	// Security
	JWTSecret            string        `yaml:"jwt_secret"`
	JWTExpiration        time.Duration `yaml:"jwt_expiration"`
	PasswordScheme       string        `yaml:"password_scheme"`
	DefaultAdminUsername string        `yaml:"default_admin_username"`
	DefaultAdminPassword string        `yaml:"default_admin_password"`
	CORSOrigins          []string      `yaml:"cors_origins"`

	// Institute
	InstituteName     string `yaml:"institute_name"`
	WhatsAppGroupLink string `yaml:"whatsapp_group_link"`
	WhatsAppShareBase string `yaml:"whatsapp_share_base"`

	// Telegram
	TelegramBotToken string `yaml:"telegram_bot_token"`
	TelegramChatID   int64  `yaml:"telegram_chat_id"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Host:                 "0.0.0.0",
		Port:                 "5000",
		Mode:                 "release",
		DBPath:               "data/coachdesk.db",
		UploadPath:           "uploads",
		MaxFileSize:          16 * 1024 * 1024,
		JWTSecret:            "coachdesk_secret_key",
		JWTExpiration:        24 * time.Hour,
		PasswordScheme:       PasswordSchemePlain,
		DefaultAdminUsername: "pcc",
		DefaultAdminPassword: "pcc@8618",
		CORSOrigins:          []string{"*"},
		InstituteName:        "Padashetty Coaching Class",
		WhatsAppGroupLink:    "https://chat.whatsapp.com/HkSWuBBqXpMG2DFmqnVORf",
		WhatsAppShareBase:    "https://wa.me/",
		LogLevel:             "info",
	}
}

// Load builds the configuration: defaults, then the optional YAML file, then
// environment variables (a .env file is honoured when present).
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv overrides fields from environment variables that are set.
func (c *Config) applyEnv() error {
	setString(&c.Host, "HOST")
	setString(&c.Port, "PORT")
	setString(&c.Mode, "GIN_MODE")
	setString(&c.DBPath, "DB_PATH")
	setString(&c.UploadPath, "UPLOAD_PATH")
	setString(&c.JWTSecret, "SECRET_KEY")
	setString(&c.PasswordScheme, "PASSWORD_SCHEME")
	setString(&c.DefaultAdminUsername, "DEFAULT_ADMIN_USERNAME")
	setString(&c.DefaultAdminPassword, "DEFAULT_ADMIN_PASSWORD")
	setString(&c.InstituteName, "INSTITUTE_NAME")
	setString(&c.WhatsAppGroupLink, "WHATSAPP_GROUP_LINK")
	setString(&c.WhatsAppShareBase, "WHATSAPP_SHARE_BASE")
	setString(&c.TelegramBotToken, "TELEGRAM_BOT_TOKEN")
	setString(&c.LogLevel, "LOG_LEVEL")

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = splitList(v)
	}

	if v := os.Getenv("MAX_FILE_SIZE"); v != "" {
		size, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid MAX_FILE_SIZE %q: %w", v, err)
		}
		c.MaxFileSize = size
	}

	if v := os.Getenv("JWT_EXPIRATION"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid JWT_EXPIRATION %q: %w", v, err)
		}
		c.JWTExpiration = d
	}

	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", v, err)
		}
		c.TelegramChatID = id
	}

	return nil
}

// Validate reports settings the application cannot start with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt secret must not be empty")
	}
	if c.JWTExpiration <= 0 {
		return fmt.Errorf("jwt expiration must be positive, got %s", c.JWTExpiration)
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max file size must be positive, got %d", c.MaxFileSize)
	}
	switch c.PasswordScheme {
	case PasswordSchemePlain, PasswordSchemeBcrypt:
	default:
		return fmt.Errorf("unknown password scheme %q", c.PasswordScheme)
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// TelegramEnabled reports whether shared results are also posted to Telegram.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

func setString(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
