package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// TaskTypeEntry describes one task type offered to volunteers. The
// catalog lives in configuration because task types change between
// events, not at runtime.
type TaskTypeEntry struct {
	ID            string `yaml:"id" validate:"required"`
	NameFI        string `yaml:"nameFI" validate:"required"`
	NameEN        string `yaml:"nameEN,omitempty"`
	DescriptionFI string `yaml:"descriptionFI,omitempty"`
	DescriptionEN string `yaml:"descriptionEN,omitempty"`
	ActiveOnly    bool   `yaml:"activeOnly,omitempty"`
}

// VolunteerEntry is a member directory record
type VolunteerEntry struct {
	ID     string `yaml:"id" validate:"required"`
	Name   string `yaml:"name" validate:"required"`
	Email  string `yaml:"email,omitempty" validate:"omitempty,email"`
	Locale string `yaml:"locale,omitempty" validate:"omitempty,oneof=fi en"`
	Active bool   `yaml:"active"`
}

// Config represents the application configuration
type Config struct {
	Env         string           `yaml:"env,omitempty"`
	ListenAddr  string           `yaml:"listenAddr,omitempty"`
	DatabaseURL string           `yaml:"databaseURL,omitempty"`
	TaskTypes   []TaskTypeEntry  `yaml:"taskTypes" validate:"required,dive"`
	Volunteers  []VolunteerEntry `yaml:"volunteers,omitempty" validate:"dive"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from nakkikone.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	configPath, err := findConfigFile()
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct and checks cross-field
// constraints the struct tags cannot express
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	seen := make(map[string]bool, len(cfg.TaskTypes))
	for i, taskType := range cfg.TaskTypes {
		if seen[taskType.ID] {
			return fmt.Errorf("duplicate task type id in taskTypes[%d]: %s", i, taskType.ID)
		}
		seen[taskType.ID] = true
	}

	return nil
}

// applyEnvOverrides lets deployment environments override file values
// without editing the file. A .env file in the working directory is
// honoured too.
func applyEnvOverrides(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Env = v
	}

	if cfg.Env == "" {
		cfg.Env = "dev"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
}

// findConfigFile searches for nakkikone.yaml in current directory and home directory
func findConfigFile() (string, error) {
	configFileName := "nakkikone.yaml"

	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
