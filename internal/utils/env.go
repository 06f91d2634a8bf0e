package utils

import (
	"os"
	"strconv"
	"strings"

	"github.com/pathfinder-hq/pathfinder-backend/internal/logger"
)

func GetEnv(key, fallback string, log *logger.Logger) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		if log != nil {
			log.Debug("Env var not set, using fallback", "key", key, "fallback", fallback)
		}
		return fallback
	}
	return value
}

func GetEnvAsInt(key string, fallback int, log *logger.Logger) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		if log != nil {
			log.Warn("Env var is not a valid int, using fallback", "key", key, "value", value, "fallback", fallback)
		}
		return fallback
	}
	return parsed
}

func GetEnvAsFloat(key string, fallback float64, log *logger.Logger) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		if log != nil {
			log.Warn("Env var is not a valid float, using fallback", "key", key, "value", value, "fallback", fallback)
		}
		return fallback
	}
	return parsed
}

func GetEnvAsBool(key string, fallback bool, log *logger.Logger) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		if log != nil {
			log.Warn("Env var is not a valid bool, using fallback", "key", key, "value", value, "fallback", fallback)
		}
		return fallback
	}
	return parsed
}
