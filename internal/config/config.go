// Package config handles loading and managing application configuration
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"video-to-mp3-service/internal/constants"
	"video-to-mp3-service/internal/models"
)

// New loads configuration from environment variables and returns a Config struct
func New() models.Config {
	var config models.Config

	config.Port = getEnv("PORT", constants.DefaultPort)

	maxFileSizeMB := parseIntEnv("MAX_FILE_SIZE_MB", constants.DefaultMaxFileSizeMB)
	if maxFileSizeMB < 1 {
		log.Printf("Warning: Invalid MAX_FILE_SIZE_MB %d, using default %d",
			maxFileSizeMB, constants.DefaultMaxFileSizeMB)
		maxFileSizeMB = constants.DefaultMaxFileSizeMB
	}
	config.MaxFileSize = int64(maxFileSizeMB) * 1024 * 1024 // Convert MB to bytes

	config.WorkingDir = getEnv("WORKING_DIR", constants.DefaultWorkingDir)

	cleanupMinutes := parseIntEnv("CLEANUP_MAX_AGE_MINUTES", constants.DefaultCleanupMaxAgeMinutes)
	if cleanupMinutes < 1 {
		log.Printf("Warning: Invalid CLEANUP_MAX_AGE_MINUTES %d, using default %d",
			cleanupMinutes, constants.DefaultCleanupMaxAgeMinutes)
		cleanupMinutes = constants.DefaultCleanupMaxAgeMinutes
	}
	config.CleanupMaxAge = time.Duration(cleanupMinutes) * time.Minute

	config.DeleteAfterDownload = parseBoolEnv("DELETE_AFTER_DOWNLOAD", false)
	config.FFmpegPath = getEnv("FFMPEG_PATH", constants.DefaultFFmpegPath)
	config.DefaultBitrate = getEnv("DEFAULT_BITRATE", constants.DefaultBitrate)

	allowedOriginsStr := getEnv("ALLOWED_ORIGINS", "")
	if allowedOriginsStr == "" {
		config.AllowedOrigins = []string{"*"}
	} else {
		origins := strings.Split(allowedOriginsStr, ",")
		config.AllowedOrigins = make([]string, 0, len(origins))
		for _, origin := range origins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				config.AllowedOrigins = append(config.AllowedOrigins, trimmed)
			}
		}
	}

	log.Printf("Configuration loaded: Port=%s, MaxFileSize=%dMB, WorkingDir=%s, CleanupMaxAge=%v",
		config.Port, maxFileSizeMB, config.WorkingDir, config.CleanupMaxAge)

	return config
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

// parseIntEnv retrieves an integer environment variable or returns a default.
func parseIntEnv(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s ('%s'), using default %d", key, valueStr, fallback)
		return fallback
	}
	return value
}

// parseBoolEnv retrieves a boolean environment variable or returns a default.
func parseBoolEnv(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean value for %s ('%s'), using default %t", key, valueStr, fallback)
		return fallback
	}
	return value
}
