// Package config provides configuration management for the stock notifier.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"stock-notifier/internal/models"
)

// Config holds all application configuration.
type Config struct {
	Monitor       MonitorConfig      `mapstructure:"monitor" yaml:"monitor"`
	Provider      ProviderConfig     `mapstructure:"provider" yaml:"provider"`
	Notifications NotificationConfig `mapstructure:"notifications" yaml:"notifications"`
	Storage       StorageConfig      `mapstructure:"storage" yaml:"storage"`
	Log           LogConfig          `mapstructure:"log" yaml:"log"`
	Credentials   Credentials        `mapstructure:"-" yaml:"credentials"` // Loaded separately
}

// MonitorConfig holds the alert loop parameters.
type MonitorConfig struct {
	Symbols    []string `mapstructure:"symbols" yaml:"symbols"`
	Interval   int      `mapstructure:"interval" yaml:"interval"` // seconds
	Lower      float64  `mapstructure:"lower" yaml:"lower"`
	Upper      float64  `mapstructure:"upper" yaml:"upper"`
	ShowStatus bool     `mapstructure:"show_status" yaml:"show_status"`
	// DeliveryTimeout bounds the channels and recorders of one alert.
	DeliveryTimeout time.Duration `mapstructure:"delivery_timeout" yaml:"delivery_timeout"`
}

// ProviderConfig selects and tunes the quote provider.
type ProviderConfig struct {
	Name          string        `mapstructure:"name" yaml:"name"` // yahoo, kite
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
	YahooBaseURL  string        `mapstructure:"yahoo_base_url" yaml:"yahoo_base_url"`
	SearchBaseURL string        `mapstructure:"search_base_url" yaml:"search_base_url"`
	SearchEnabled bool          `mapstructure:"search_enabled" yaml:"search_enabled"`
	KiteExchange  string        `mapstructure:"kite_exchange" yaml:"kite_exchange"`
}

// NotificationConfig holds notification configuration.
type NotificationConfig struct {
	Desktop  DesktopConfig  `mapstructure:"desktop" yaml:"desktop"`
	Console  ConsoleConfig  `mapstructure:"console" yaml:"console"`
	Email    EmailConfig    `mapstructure:"email" yaml:"email"`
	Webhook  WebhookConfig  `mapstructure:"webhook" yaml:"webhook"`
	Telegram TelegramConfig `mapstructure:"telegram" yaml:"telegram"`
}

// DesktopConfig holds desktop pop-up configuration.
type DesktopConfig struct {
	Enabled bool          `mapstructure:"enabled" yaml:"enabled"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Icon    string        `mapstructure:"icon" yaml:"icon"`
	Bell    bool          `mapstructure:"bell" yaml:"bell"`
}

// ConsoleConfig holds console alert line configuration.
type ConsoleConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Color   bool `mapstructure:"color" yaml:"color"`
}

// EmailConfig holds email notification configuration.
// Username and Password come from credentials.toml.
type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	SMTPHost string `mapstructure:"smtp_host" yaml:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port" yaml:"smtp_port"`
	From     string `mapstructure:"from" yaml:"from"`
	To       string `mapstructure:"to" yaml:"to"`
}

// WebhookConfig holds webhook notification configuration.
type WebhookConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	URL     string `mapstructure:"url" yaml:"url"`
}

// TelegramConfig holds Telegram notification configuration.
type TelegramConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	ChatID  string `mapstructure:"chat_id" yaml:"chat_id"`
}

// StorageConfig holds event log configuration.
type StorageConfig struct {
	EventLog   string `mapstructure:"event_log" yaml:"event_log"`
	DBPath     string `mapstructure:"db_path" yaml:"db_path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
}

// LogConfig holds diagnostic logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  bool   `mapstructure:"file" yaml:"file"`
	Path  string `mapstructure:"path" yaml:"path"`
}

// Credentials holds secrets.
type Credentials struct {
	SMTP     SMTPCredentials     `mapstructure:"smtp" yaml:"smtp"`
	Kite     KiteCredentials     `mapstructure:"kite" yaml:"kite"`
	Telegram TelegramCredentials `mapstructure:"telegram" yaml:"telegram"`
}

// SMTPCredentials holds the mail account login.
type SMTPCredentials struct {
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
}

// KiteCredentials holds Zerodha Kite Connect credentials.
type KiteCredentials struct {
	APIKey      string `mapstructure:"api_key" yaml:"api_key"`
	AccessToken string `mapstructure:"access_token" yaml:"access_token"`
}

// TelegramCredentials holds the bot token.
type TelegramCredentials struct {
	BotToken string `mapstructure:"bot_token" yaml:"bot_token"`
}

// Provider names
const (
	ProviderYahoo = "yahoo"
	ProviderKite  = "kite"
)

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/stock-notifier"
	}
	return filepath.Join(home, ".config", "stock-notifier")
}

// Default returns the configuration used when no file overrides a value.
func Default(configDir string) *Config {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	return &Config{
		Monitor: MonitorConfig{
			Interval:        60,
			ShowStatus:      true,
			DeliveryTimeout: 60 * time.Second,
		},
		Provider: ProviderConfig{
			Name:          ProviderYahoo,
			Timeout:       10 * time.Second,
			YahooBaseURL:  "https://query1.finance.yahoo.com",
			SearchBaseURL: "https://query2.finance.yahoo.com",
			SearchEnabled: true,
			KiteExchange:  "NSE",
		},
		Notifications: NotificationConfig{
			Desktop: DesktopConfig{Enabled: true, Timeout: 10 * time.Second},
			Console: ConsoleConfig{Enabled: true, Color: true},
			Email:   EmailConfig{SMTPHost: "smtp.gmail.com", SMTPPort: 587},
		},
		Storage: StorageConfig{
			EventLog:  filepath.Join(configDir, "stock_notifier.log"),
			DBPath:    filepath.Join(configDir, "events.db"),
			MaxSizeMB: 50,
		},
		Log: LogConfig{
			Level: "info",
			File:  true,
			Path:  filepath.Join(configDir, "logs", "notifier.log"),
		},
	}
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
// Missing files are created from templates and defaults apply.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := Default(configDir)

	// Load main config
	if err := loadConfigFile(configDir, cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	// Load credentials
	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("loading credentials.toml: %w", err)
	}

	fillPaths(cfg, configDir)

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir string, cfg *Config) error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, create template and keep defaults
			return createTemplate(configDir, "config.toml", configTemplate, 0644)
		}
		return err
	}

	return v.Unmarshal(cfg)
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Use restricted permissions for credentials file
			return createTemplate(configDir, "credentials.toml", credentialsTemplate, 0600)
		}
		return err
	}

	return v.Unmarshal(creds)
}

// setDefaults registers cfg's current values so partial files keep them.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("monitor.interval", cfg.Monitor.Interval)
	v.SetDefault("monitor.show_status", cfg.Monitor.ShowStatus)
	v.SetDefault("monitor.delivery_timeout", cfg.Monitor.DeliveryTimeout)
	v.SetDefault("provider.name", cfg.Provider.Name)
	v.SetDefault("provider.timeout", cfg.Provider.Timeout)
	v.SetDefault("provider.yahoo_base_url", cfg.Provider.YahooBaseURL)
	v.SetDefault("provider.search_base_url", cfg.Provider.SearchBaseURL)
	v.SetDefault("provider.search_enabled", cfg.Provider.SearchEnabled)
	v.SetDefault("provider.kite_exchange", cfg.Provider.KiteExchange)
	v.SetDefault("notifications.desktop.enabled", cfg.Notifications.Desktop.Enabled)
	v.SetDefault("notifications.desktop.timeout", cfg.Notifications.Desktop.Timeout)
	v.SetDefault("notifications.console.enabled", cfg.Notifications.Console.Enabled)
	v.SetDefault("notifications.console.color", cfg.Notifications.Console.Color)
	v.SetDefault("notifications.email.smtp_host", cfg.Notifications.Email.SMTPHost)
	v.SetDefault("notifications.email.smtp_port", cfg.Notifications.Email.SMTPPort)
	v.SetDefault("storage.event_log", cfg.Storage.EventLog)
	v.SetDefault("storage.db_path", cfg.Storage.DBPath)
	v.SetDefault("storage.max_size_mb", cfg.Storage.MaxSizeMB)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("log.path", cfg.Log.Path)
}

// fillPaths restores default locations for paths a file left blank.
func fillPaths(cfg *Config, configDir string) {
	def := Default(configDir)
	if cfg.Storage.EventLog == "" {
		cfg.Storage.EventLog = def.Storage.EventLog
	}
	if cfg.Storage.DBPath == "" {
		cfg.Storage.DBPath = def.Storage.DBPath
	}
	if cfg.Log.Path == "" {
		cfg.Log.Path = def.Log.Path
	}
}

func applyEnvOverrides(cfg *Config) {
	// SMTP credentials
	if v := os.Getenv("STOCK_NOTIFIER_SMTP_USERNAME"); v != "" {
		cfg.Credentials.SMTP.Username = v
	}
	if v := os.Getenv("STOCK_NOTIFIER_SMTP_PASSWORD"); v != "" {
		cfg.Credentials.SMTP.Password = v
	}

	// Kite credentials
	if v := os.Getenv("KITE_API_KEY"); v != "" {
		cfg.Credentials.Kite.APIKey = v
	}
	if v := os.Getenv("KITE_ACCESS_TOKEN"); v != "" {
		cfg.Credentials.Kite.AccessToken = v
	}

	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Credentials.Telegram.BotToken = v
	}

	// Provider
	if v := os.Getenv("STOCK_NOTIFIER_PROVIDER"); v != "" {
		cfg.Provider.Name = strings.ToLower(v)
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Monitor.Interval <= 0 {
		return fmt.Errorf("monitor.interval must be a positive number of seconds, got %d", c.Monitor.Interval)
	}
	if c.Monitor.Lower < 0 || c.Monitor.Upper < 0 {
		return fmt.Errorf("thresholds must be non-negative (0 disables a bound)")
	}
	if c.Monitor.DeliveryTimeout < 0 {
		return fmt.Errorf("monitor.delivery_timeout must not be negative, got %v", c.Monitor.DeliveryTimeout)
	}

	switch c.Provider.Name {
	case ProviderYahoo, ProviderKite:
	default:
		return fmt.Errorf("invalid provider: %s (must be 'yahoo' or 'kite')", c.Provider.Name)
	}
	if c.Provider.Timeout < 0 {
		return fmt.Errorf("provider.timeout must be non-negative")
	}

	if c.Notifications.Email.Enabled {
		if c.Notifications.Email.SMTPHost == "" || c.Notifications.Email.From == "" {
			return fmt.Errorf("email notifications need smtp_host and from")
		}
	}

	return nil
}

// Thresholds returns the configured alert bounds.
func (c *Config) Thresholds() models.Thresholds {
	return models.Thresholds{Lower: c.Monitor.Lower, Upper: c.Monitor.Upper}
}

// PollInterval returns the configured interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Monitor.Interval) * time.Second
}

// Redacted returns a copy with secrets masked, for display.
func (c *Config) Redacted() Config {
	out := *c
	out.Monitor.Symbols = append([]string(nil), c.Monitor.Symbols...)
	out.Credentials.SMTP.Password = mask(c.Credentials.SMTP.Password)
	out.Credentials.Kite.APIKey = mask(c.Credentials.Kite.APIKey)
	out.Credentials.Kite.AccessToken = mask(c.Credentials.Kite.AccessToken)
	out.Credentials.Telegram.BotToken = mask(c.Credentials.Telegram.BotToken)
	return out
}

// mask keeps the last four characters of long secrets.
func mask(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 8:
		return "****"
	default:
		return "****" + s[len(s)-4:]
	}
}
