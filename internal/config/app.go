package config

import (
	"os"
	"strings"
)

const defaultPort = "8080"

func BasePath() string {
	return os.Getenv("APP_BASE_PATH")
}

func Port() string {
	if port, ok := os.LookupEnv("APP_PORT"); ok && port != "" {
		return port
	}
	return defaultPort
}

func Addr() string {
	return ":" + Port()
}

// CorsOrigins lists the origins in CORS_ALLOWED_ORIGINS, comma separated.
// None means any origin is allowed.
func CorsOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
