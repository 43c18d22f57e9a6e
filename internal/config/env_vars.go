package config

import (
	"os"
	"time"
)

// Duration aliases time.Duration so config interfaces read naturally.
type Duration = time.Duration

const (
	appNameVar    = "APP_NAME"
	folderEnvVar  = "FOLDER"
	serviceURLVar = "SERVICE_BASE_URL"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Indicator Client")
}

func (EnvVars) GetDataFolder() string {
	return GetEnv(folderEnvVar, "./data")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetDurationEnv reads a duration env var ("10s", "30m"); falls back to the
// default on absence or a parse failure.
func GetDurationEnv(envVar string, defaultValue Duration) Duration {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
