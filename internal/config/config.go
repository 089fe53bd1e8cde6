package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

const envFileVar = "ENV_FILE"

type Config interface {
	EnvConfig
	CorsConfig
	OIDCConfig
	SessionConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	IsDev() bool
	GetLogLevel() string
	GetLogFormat() string
	GetAPIBasePath() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	OIDC
	Session
}

func New() Config {
	return mainConfig{}
}

// Load reads the dotenv file named by ENV_FILE (default .env) into the process
// environment. A missing file is not an error. Variables already set take precedence.
func Load() error {
	path := GetEnv(envFileVar, ".env")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("[config Load] %s: %w", path, err)
	}
	return nil
}
