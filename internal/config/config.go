package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const appDir = "freelancedesk"

type Config struct {
	// Database settings
	Database DatabaseConfig `yaml:"database"`

	// Invoice settings
	Invoice InvoiceConfig `yaml:"invoice"`

	// Business details used on invoices when no business profile is saved
	Business BusinessConfig `yaml:"business"`

	Log LogConfig `yaml:"log"`

	// Phone login
	Auth     AuthConfig     `yaml:"auth"`
	WhatsApp WhatsAppConfig `yaml:"whatsapp"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"` // Path to SQLCipher database
}

type InvoiceConfig struct {
	OutputDir    string `yaml:"output_dir"`    // Directory for generated invoices and exports
	NumberPrefix string `yaml:"number_prefix"` // Invoice number prefix (e.g., "INV")
}

type BusinessConfig struct {
	Name    string `yaml:"name"`
	Email   string `yaml:"email"`
	Phone   string `yaml:"phone"`
	Address string `yaml:"address"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // logrus level name
	Format string `yaml:"format"` // "text" or "json"
	File   string `yaml:"file"`
}

type OTPStore string

const (
	OTPStoreDatabase OTPStore = "database"
	OTPStoreRedis    OTPStore = "redis"
)

type AuthConfig struct {
	DefaultRegion        string        `yaml:"default_region"` // region for numbers without a country code
	OTPTTL               time.Duration `yaml:"otp_ttl"`
	OTPStore             OTPStore      `yaml:"otp_store"`
	RedisAddr            string        `yaml:"redis_addr"`
	SyntheticEmailDomain string        `yaml:"synthetic_email_domain"`
}

type WhatsAppConfig struct {
	BaseURL     string `yaml:"base_url"`
	InstanceID  string `yaml:"instance_id"`
	AccessToken string `yaml:"access_token"`
}

// Dir returns ~/.config/freelancedesk
func Dir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir unavailable
		return filepath.Join(".", ".config", appDir)
	}
	return filepath.Join(homeDir, ".config", appDir)
}

// DefaultConfigPath returns ~/.config/freelancedesk/config.yaml
func DefaultConfigPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	dir := Dir()
	return &Config{
		Database: DatabaseConfig{
			Path: filepath.Join(dir, "freelancedesk.db"),
		},
		Invoice: InvoiceConfig{
			OutputDir:    filepath.Join(dir, "invoices"),
			NumberPrefix: "INV",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			File:   filepath.Join(dir, "freelancedesk.log"),
		},
		Auth: AuthConfig{
			DefaultRegion:        "IN",
			OTPTTL:               5 * time.Minute,
			OTPStore:             OTPStoreDatabase,
			RedisAddr:            "localhost:6379",
			SyntheticEmailDomain: "phone.freelancedesk.local",
		},
		WhatsApp: WhatsAppConfig{
			BaseURL: "https://wapost.click",
		},
	}
}

// Load loads config from the given path, or defaults if the file doesn't exist, then applies
// environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	loadDotEnv(filepath.Join(filepath.Dir(path), ".env"))
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault loads from the default config path
func LoadDefault() (*Config, error) {
	return Load(DefaultConfigPath())
}

// loadDotEnv reads .env from the working directory and extra paths. Missing files are fine and
// variables already set win.
func loadDotEnv(extra ...string) {
	for _, p := range append([]string{".env"}, extra...) {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("FREELANCEDESK_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("FREELANCEDESK_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("FREELANCEDESK_REDIS_ADDR"); v != "" {
		c.Auth.RedisAddr = v
		c.Auth.OTPStore = OTPStoreRedis
	}
	if v := os.Getenv("WHATSAPP_INSTANCE_ID"); v != "" {
		c.WhatsApp.InstanceID = v
	}
	if v := os.Getenv("WHATSAPP_ACCESS_TOKEN"); v != "" {
		c.WhatsApp.AccessToken = v
	}
}

func (c *Config) Validate() error {
	switch c.Auth.OTPStore {
	case OTPStoreDatabase, OTPStoreRedis:
	default:
		return fmt.Errorf("unknown auth.otp_store %q", c.Auth.OTPStore)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log.format %q", c.Log.Format)
	}
	if c.Auth.OTPTTL <= 0 {
		return fmt.Errorf("auth.otp_ttl must be positive")
	}
	return nil
}

// Save writes the config to the given path
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	// Holds WhatsApp credentials
	return os.WriteFile(path, data, 0600)
}

// EnsureDirectories creates the database, invoice output, and log directories
func (c *Config) EnsureDirectories() error {
	dirs := []string{filepath.Dir(c.Database.Path), c.Invoice.OutputDir}
	if c.Log.File != "" {
		dirs = append(dirs, filepath.Dir(c.Log.File))
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}
	return nil
}
