package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// VisionConfig controls the inference adapter. An empty APIKey puts
// the adapter in dummy mode for the lifetime of the process.
type VisionConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// MailConfig holds SMTP credentials. Missing credentials do not stop
// the process; delivery attempts report send_failed instead.
type MailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	From     string `mapstructure:"from"`
	Password string `mapstructure:"password"`
}

func (m MailConfig) Configured() bool {
	return m.Host != "" && m.From != ""
}

type PipelineConfig struct {
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Vision   VisionConfig   `mapstructure:"vision"`
	Mail     MailConfig     `mapstructure:"mail"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
}

// Load reads configuration once at process start: optional config.yaml
// in the working directory, overridden by TVA_* environment variables
// (e.g. TVA_VISION_API_KEY).
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", "8080")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "tva")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("vision.api_key", "")
	v.SetDefault("vision.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("vision.model", "gemini-2.5-flash")
	v.SetDefault("vision.timeout", 30*time.Second)
	v.SetDefault("mail.host", "smtp.gmail.com")
	v.SetDefault("mail.port", 465)
	v.SetDefault("mail.from", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("pipeline.fetch_timeout", 10*time.Second)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("TVA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
