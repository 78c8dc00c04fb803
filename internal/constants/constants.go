// Package constants defines application-wide constant values
package constants

import (
	"os"
	"time"
)

// HTTP Server Configuration
const (
	// DefaultPort is the default server port
	DefaultPort = "3000"

	// HTTPReadTimeout is the maximum duration for reading the entire request.
	// Uploads can be large, so this is generous.
	HTTPReadTimeout = 10 * time.Minute

	// HTTPWriteTimeout is the maximum duration before timing out writes of the
	// response. Conversions run within the request, so this bounds them too.
	HTTPWriteTimeout = 20 * time.Minute

	// HTTPIdleTimeout is the maximum amount of time to wait for the next request
	HTTPIdleTimeout = 180 * time.Second

	// ShutdownTimeout is the graceful shutdown timeout
	ShutdownTimeout = 30 * time.Second
)

// Request Size Limits
const (
	// MaxJSONRequestSize is the maximum size for JSON request bodies
	MaxJSONRequestSize = 1 * 1024 * 1024 // 1 MB

	// MultipartMemoryLimit is the maximum memory used for multipart form parsing
	MultipartMemoryLimit = 32 << 20 // 32 MB

	// UploadSizeBuffer is extra buffer added to MaxFileSize for upload handling
	UploadSizeBuffer = 1 * 1024 * 1024 // 1 MB
)

// File Cleanup Configuration
const (
	// FileCleanupInitialDelay is the delay before the first background cleanup run
	FileCleanupInitialDelay = 5 * time.Minute

	// FileCleanupInterval is the interval between background cleanup runs
	FileCleanupInterval = 30 * time.Minute

	// DefaultCleanupMaxAgeMinutes is the default age threshold for cleanup
	DefaultCleanupMaxAgeMinutes = 60
)

// Conversion Configuration
const (
	// DefaultBitrate is the MP3 bitrate used when the client does not specify one
	DefaultBitrate = "192k"

	// DefaultFFmpegPath is the ffmpeg binary looked up on PATH
	DefaultFFmpegPath = "ffmpeg"

	// HealthProbeTimeout bounds the ffmpeg availability probe
	HealthProbeTimeout = 10 * time.Second
)

// File System Configuration
const (
	// DirectoryPermissions is the default permission mode for created directories
	DirectoryPermissions os.FileMode = 0755

	// MaxFilenameLength is the maximum length for sanitized filenames
	MaxFilenameLength = 100
)

// Default Configuration Values
const (
	// DefaultMaxFileSizeMB is the default maximum upload size in megabytes
	DefaultMaxFileSizeMB = 500

	// DefaultWorkingDir is the default directory for uploads and converted files
	DefaultWorkingDir = "uploads"
)
