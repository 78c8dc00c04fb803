// Package models contains data structures used across the application
package models

import "time"

// Config holds application configuration settings.
type Config struct {
	Port                string
	MaxFileSize         int64
	WorkingDir          string
	CleanupMaxAge       time.Duration
	DeleteAfterDownload bool
	FFmpegPath          string
	DefaultBitrate      string
	AllowedOrigins      []string
}

// UploadedFile describes a validated and persisted multipart upload.
// It exists for the duration of a single request.
type UploadedFile struct {
	OriginalName string
	StoredPath   string
	Extension    string
	Size         int64
}

// ConversionDescriptor summarizes a completed conversion.
type ConversionDescriptor struct {
	Success     bool    `json:"success"`
	InputFile   string  `json:"input_file,omitempty"`
	SourceURL   string  `json:"source_url,omitempty"`
	OutputFile  string  `json:"output_file"`
	OutputPath  string  `json:"output_path"`
	FileSize    int64   `json:"file_size"`
	FileSizeMB  float64 `json:"file_size_mb"`
	Bitrate     string  `json:"bitrate"`
	DownloadURL string  `json:"download_url"`
	Message     string  `json:"message,omitempty"`
}

// ErrorResponse is the standard JSON error payload.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// HealthResponse reports the converter capability probe result.
type HealthResponse struct {
	Status    string `json:"status"`
	FFmpeg    string `json:"ffmpeg,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Error     string `json:"error,omitempty"`
	Message   string `json:"message,omitempty"`
}

// CleanupResponse reports the outcome of a cleanup pass.
type CleanupResponse struct {
	Success      bool   `json:"success"`
	FilesCleaned int    `json:"files_cleaned"`
	Message      string `json:"message"`
}

// URLConversionRequest is the payload for starting a conversion from a remote URL.
type URLConversionRequest struct {
	URL     string `json:"url"`
	Bitrate string `json:"bitrate"`
}
