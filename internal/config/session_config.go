package config

import "time"

const (
	sessionCookieNameVar = "SESSION_COOKIE_NAME"
	sessionMaxAgeVar     = "SESSION_MAX_AGE"
	redisURLVar          = "REDIS_URL"
)

type SessionConfig interface {
	GetSessionCookieName() string
	GetMaxSessionAge() time.Duration
	GetRedisURL() string
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetSessionCookieName() string {
	return GetEnv(sessionCookieNameVar, "relay_session")
}

func (Session) GetMaxSessionAge() time.Duration {
	return GetEnvDuration(sessionMaxAgeVar, 30*time.Minute)
}

// GetRedisURL is empty when sessions are kept in process memory.
func (Session) GetRedisURL() string {
	return GetEnv(redisURLVar, "")
}
