package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Config holds all configuration for both services
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Prompt   PromptConfig   `mapstructure:"prompt"`
	Database DatabaseConfig `mapstructure:"database"`
	UI       UIConfig       `mapstructure:"ui"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Seed     SeedConfig     `mapstructure:"seed"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration of the email service
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// PromptConfig holds configuration of the prompt service
type PromptConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	EmailServiceURL string        `mapstructure:"email_service_url"`
	ToolTimeout     time.Duration `mapstructure:"tool_timeout"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Path     string `mapstructure:"path"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// UIConfig holds the base URLs injected into the served UI page
type UIConfig struct {
	EmailServer string `mapstructure:"email_server"`
	LLMServer   string `mapstructure:"llm_server"`
}

// LLMConfig holds model client configuration
type LLMConfig struct {
	APIKey       string `mapstructure:"api_key"`
	BaseURL      string `mapstructure:"base_url"`
	Model        string `mapstructure:"model"`
	MaxTurns     int    `mapstructure:"max_turns"`
	OwnerAddress string `mapstructure:"owner_address"`
}

// SeedConfig holds seed routine configuration
type SeedConfig struct {
	// ResetSchedule is a cron spec with seconds; empty disables scheduled resets.
	ResetSchedule string `mapstructure:"reset_schedule"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig loads configuration from an optional env file, config file and environment
func LoadConfig(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("godotenv.Load failed: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Environment variables override config file
	v.AutomaticEnv()
	bindEnvVars(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")

	v.SetDefault("prompt.port", "8001")
	v.SetDefault("prompt.read_timeout", "30s")
	// a prompt may run up to llm.max_turns model rounds, each with tool calls
	v.SetDefault("prompt.write_timeout", "15m")
	v.SetDefault("prompt.email_service_url", "http://127.0.0.1:8000")
	v.SetDefault("prompt.tool_timeout", "30s")

	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "emails.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("ui.email_server", "http://127.0.0.1:8000")
	v.SetDefault("ui.llm_server", "http://127.0.0.1:8001")

	v.SetDefault("llm.model", "openai:gpt-4.1")
	v.SetDefault("llm.max_turns", 20)
	v.SetDefault("llm.owner_address", "you@email.com")

	v.SetDefault("seed.reset_schedule", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

func bindEnvVars(v *viper.Viper) {
	// Server
	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	v.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")

	// Prompt service
	v.BindEnv("prompt.port", "PROMPT_PORT")
	v.BindEnv("prompt.read_timeout", "PROMPT_READ_TIMEOUT")
	v.BindEnv("prompt.write_timeout", "PROMPT_WRITE_TIMEOUT")
	v.BindEnv("prompt.email_service_url", "EMAIL_SERVICE_URL")
	v.BindEnv("prompt.tool_timeout", "PROMPT_TOOL_TIMEOUT")

	// Database
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.path", "DB_PATH")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.dbname", "DB_NAME")
	v.BindEnv("database.sslmode", "DB_SSLMODE")

	// UI
	v.BindEnv("ui.email_server", "UI_EMAIL_SERVER")
	v.BindEnv("ui.llm_server", "UI_LLM_SERVER")

	// LLM
	v.BindEnv("llm.api_key", "OPENAI_API_KEY")
	v.BindEnv("llm.base_url", "LLM_BASE_URL")
	v.BindEnv("llm.model", "LLM_MODEL")
	v.BindEnv("llm.max_turns", "LLM_MAX_TURNS")
	v.BindEnv("llm.owner_address", "LLM_OWNER_ADDRESS")

	// Seed
	v.BindEnv("seed.reset_schedule", "SEED_RESET_SCHEDULE")

	// Logging
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.format", "LOG_FORMAT")
}

// GetDSN returns the database connection string for the configured driver
func (c *DatabaseConfig) GetDSN() string {
	switch c.Driver {
	case DriverMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.User, c.Password, c.Host, c.Port, c.DBName)
	case DriverPostgres:
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
	default:
		return c.Path
	}
}

// Validate validates the settings shared by both services
func (c *Config) Validate() error {
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log format must be json or text, got %q", c.Log.Format)
	}
	return nil
}

// ValidateEmailServer validates the settings the email service needs
func (c *Config) ValidateEmailServer() error {
	if err := c.Validate(); err != nil {
		return err
	}

	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database path is required for sqlite")
		}
	case DriverMySQL, DriverPostgres:
		if c.Database.Host == "" || c.Database.User == "" || c.Database.DBName == "" {
			return fmt.Errorf("database host, user, and dbname are required")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	return nil
}

// ValidatePromptServer validates the settings the prompt service needs
func (c *Config) ValidatePromptServer() error {
	if err := c.Validate(); err != nil {
		return err
	}

	if c.Prompt.Port == "" {
		return fmt.Errorf("prompt port is required")
	}

	if c.Prompt.WriteTimeout <= 0 {
		return fmt.Errorf("prompt write timeout must be greater than 0")
	}

	if c.Prompt.EmailServiceURL == "" {
		return fmt.Errorf("email service URL is required")
	}

	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM API key is required")
	}

	if c.LLM.Model == "" {
		return fmt.Errorf("LLM model is required")
	}

	if c.LLM.MaxTurns <= 0 {
		return fmt.Errorf("LLM max turns must be greater than 0")
	}

	return nil
}
