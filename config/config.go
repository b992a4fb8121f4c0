package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	API       APIConfig
	DB        DBConfig
	S3        S3Config
	Scheduler SchedulerConfig
	ExportDir string
	WriteMode string
	LogPath   string
	Endpoints map[string]string
}

type APIConfig struct {
	BaseURL      string
	PartnerToken string
	Login        string
	Password     string
	CompanyID    string
	PartnerID    string

	// Date window for the date-ranged staff schedule fetch.
	ScheduleDaysBack    int
	ScheduleDaysForward int
}

type DBConfig struct {
	// Driver selects the sink: "postgres", "sqlite", or "none" for
	// spreadsheet-only runs.
	Driver     string
	User       string
	Password   string
	Host       string
	Port       string
	Name       string
	SQLitePath string
}

type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
}

type SchedulerConfig struct {
	Interval time.Duration
	Cron     string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		API: APIConfig{
			BaseURL:             getEnv("API_BASE_URL", ""),
			PartnerToken:        os.Getenv("PARTNER_TOKEN"),
			Login:               os.Getenv("LOGIN"),
			Password:            os.Getenv("PASSWORD"),
			CompanyID:           os.Getenv("COMPANY_ID"),
			PartnerID:           os.Getenv("PARTNER_ID"),
			ScheduleDaysBack:    getEnvInt("SCHEDULE_DAYS_BACK", 30),
			ScheduleDaysForward: getEnvInt("SCHEDULE_DAYS_FORWARD", 30),
		},
		DB: DBConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			User:       os.Getenv("DB_USER"),
			Password:   os.Getenv("DB_PASSWORD"),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			Name:       os.Getenv("DB_NAME"),
			SQLitePath: getEnv("SQLITE_PATH", "yclients.db"),
		},
		S3: S3Config{
			Bucket:          os.Getenv("S3_BUCKET"),
			Region:          getEnv("S3_REGION", "us-east-1"),
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
			Prefix:          getEnv("S3_PREFIX", "exports"),
		},
		Scheduler: SchedulerConfig{
			Interval: 24 * time.Hour,
			Cron:     os.Getenv("SYNC_CRON"),
		},
		ExportDir: os.Getenv("EXPORT_DIR"),
		WriteMode: getEnv("WRITE_MODE", "replace"),
		LogPath:   getEnv("LOG_PATH", "sync.log"),
	}

	if interval := os.Getenv("SYNC_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil {
			return nil, fmt.Errorf("invalid SYNC_INTERVAL %q: %w", interval, err)
		}
		cfg.Scheduler.Interval = d
	}

	if cfg.API.PartnerToken == "" || cfg.API.Login == "" || cfg.API.Password == "" || cfg.API.CompanyID == "" {
		return nil, fmt.Errorf("PARTNER_TOKEN, LOGIN, PASSWORD and COMPANY_ID are required")
	}

	if err := cfg.loadEndpointOverrides(); err != nil {
		return nil, err
	}

	return cfg, nil
}

type resourcesFile struct {
	Endpoints map[string]string `yaml:"endpoints"`
}

// loadEndpointOverrides reads optional per-resource endpoint overrides.
// The file is absent in most deployments; that is not an error.
func (c *Config) loadEndpointOverrides() error {
	path := getEnv("RESOURCES_CONFIG", "config/resources.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var rf resourcesFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	c.Endpoints = rf.Endpoints
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
