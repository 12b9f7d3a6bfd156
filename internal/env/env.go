package env

import (
	"os"
)

const (
	Port           = "PORT"
	WebURL         = "WEB_URL"
	BoardRedisURL  = "BOARD_REDIS_URL"
	BoardRedisPass = "BOARD_REDIS_PASS"
)

// Every variable is optional: the service holds no durable state and
// must boot with an empty environment.

func Get(key string) string {
	return os.Getenv(key)
}

func GetOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}
