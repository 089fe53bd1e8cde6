package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	portEnvVar        = "PORT"
	appNameVar        = "APP_NAME"
	envVar            = "ENV"
	logLevelVar       = "LOG_LEVEL"
	logFormatVar      = "LOG_FORMAT"
	apiBasePathEnvVar = "API_BASE_PATH"

	DevEnv = "DEV"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

// GetPort returns the listen address, e.g. ":8080".
func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Go Auth Relay")
}

func (EnvVars) GetEnv() string {
	return strings.ToUpper(GetEnv(envVar, DevEnv))
}

func (e EnvVars) IsDev() bool {
	return e.GetEnv() == DevEnv
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "info")
}

// GetLogFormat is "console" in DEV and "json" elsewhere unless LOG_FORMAT says otherwise.
func (e EnvVars) GetLogFormat() string {
	if e.IsDev() {
		return GetEnv(logFormatVar, "console")
	}
	return GetEnv(logFormatVar, "json")
}

// GetAPIBasePath returns the mount point of the auth API without a trailing slash.
func (EnvVars) GetAPIBasePath() string {
	path := strings.TrimRight(GetEnv(apiBasePathEnvVar, "/api/auth"), "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvBool parses a boolean variable, logging and falling back to defaultValue when malformed.
func GetEnvBool(envVar string, defaultValue bool) bool {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Warn().Str("var", envVar).Str("value", value).Msg("invalid boolean, using default")
		return defaultValue
	}
	return b
}

// GetEnvDuration parses a time.ParseDuration value, logging and falling back to
// defaultValue when malformed or not positive.
func GetEnvDuration(envVar string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		log.Warn().Str("var", envVar).Str("value", value).Msg("invalid duration, using default")
		return defaultValue
	}
	return d
}
