package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Environment string

const (
	EnvLocal      Environment = "LOCAL"
	EnvDev        Environment = "DEV"
	EnvProduction Environment = "PROD"
)

type ServerConfig struct {
	Port    int
	GinMode string
}

// GCPConfig holds Google Cloud Platform related configuration.
type GCPConfig struct {
	ProjectID  string
	BucketName string
}

type ProcessorConfig struct {
	BinaryPath     string
	LocalDataDir   string
	LocalOutputDir string
}

type AuthConfig struct {
	APIKey string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type Config struct {
	Env              Environment
	Server           ServerConfig
	GCP              GCPConfig
	Processor        ProcessorConfig
	Auth             AuthConfig
	Logging          LoggingConfig
	WorkspaceRoot    string // empty means the system temp directory
	LocalStoreDir    string // directory-backed object store, LOCAL env only
	JobEventsTopicID string // empty disables Pub/Sub publishing
}

// EventsEnabled reports whether job result events go to Pub/Sub.
func (c *Config) EventsEnabled() bool {
	return c.JobEventsTopicID != "" && c.GCP.ProjectID != ""
}

func LoadConfig(logger *slog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env file found, using environment variables")
	}

	var missing []string
	bucketName := os.Getenv("GCS_BUCKET")
	if bucketName == "" {
		missing = append(missing, "GCS_BUCKET")
	}
	apiKey := os.Getenv("SERVER_API_KEY")
	if apiKey == "" {
		missing = append(missing, "SERVER_API_KEY")
	}
	binaryPath := os.Getenv("PROCESSOR_BINARY")
	if binaryPath == "" {
		missing = append(missing, "PROCESSOR_BINARY")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	env := Environment(getEnv("APP_ENV", string(EnvLocal)))

	if env == EnvLocal {
		if gacPath := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); gacPath != "" {
			if _, err := os.Stat(gacPath); os.IsNotExist(err) {
				return nil, fmt.Errorf("GOOGLE_APPLICATION_CREDENTIALS file does not exist at path: %s", gacPath)
			}
		}
	}

	config := &Config{
		Env: env,
		Server: ServerConfig{
			Port:    getEnvAsInt("SERVER_PORT", 8080),
			GinMode: getEnv("GIN_MODE", "release"),
		},
		GCP: GCPConfig{
			ProjectID:  os.Getenv("GCP_PROJECT_ID"),
			BucketName: bucketName,
		},
		Processor: ProcessorConfig{
			BinaryPath:     binaryPath,
			LocalDataDir:   getEnv("LOCAL_DATA_DIR", "./local_test_data"),
			LocalOutputDir: getEnv("LOCAL_OUTPUT_DIR", "./local_outputs"),
		},
		Auth: AuthConfig{
			APIKey: apiKey,
		},
		Logging:          LoadLoggingConfig(),
		WorkspaceRoot:    os.Getenv("WORKSPACE_ROOT"),
		LocalStoreDir:    getEnv("LOCAL_STORE_DIR", "./test-data/store"),
		JobEventsTopicID: os.Getenv("JOB_EVENTS_TOPIC_ID"),
	}

	return config, nil
}

func LoadLoggingConfig() LoggingConfig {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	format := os.Getenv("LOG_FORMAT")
	if format == "" {
		format = "json"
	}
	return LoggingConfig{
		Level:  level,
		Format: format,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
