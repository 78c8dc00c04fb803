// Package main provides the entry point for the video-to-MP3 server
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"video-to-mp3-service/internal/api"
	"video-to-mp3-service/internal/config"
	"video-to-mp3-service/internal/constants"
	"video-to-mp3-service/internal/converter"
	"video-to-mp3-service/internal/filestore"
	"video-to-mp3-service/internal/middleware"
	"video-to-mp3-service/internal/models"
)

// version is set during build time using ldflags
var version string = "dev"

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	conf := config.New()

	store := filestore.New(conf.WorkingDir)
	if err := store.EnsureDirectory(); err != nil {
		log.Fatalf("Failed to ensure working directory %s exists: %v", conf.WorkingDir, err)
	}

	middleware.InitCORS(conf.AllowedOrigins)

	conv := converter.NewFFmpeg(converter.WithBinaryPath(conf.FFmpegPath))

	handler := api.NewHandler(conf, store, conv)

	mux := http.NewServeMux()
	handler.SetupRoutes(mux)

	server := &http.Server{
		Addr:         ":" + conf.Port,
		Handler:      middleware.CORS(mux),
		ReadTimeout:  constants.HTTPReadTimeout,
		WriteTimeout: constants.HTTPWriteTimeout,
		IdleTimeout:  constants.HTTPIdleTimeout,
	}

	go setupFileCleanup(conf, store)

	// Graceful shutdown setup
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		fmt.Printf("Video to MP3 Server version: %s\n", version)
		fmt.Printf("Server starting on http://localhost:%s\n", conf.Port)
		fmt.Printf("Working directory: %s\n", conf.WorkingDir)
		fmt.Println("Make sure FFmpeg is installed and accessible in your PATH.")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	<-stop // Wait for interrupt signal

	ctx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	fmt.Println("Server shutting down...")
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	fmt.Println("Server gracefully stopped")
}

// setupFileCleanup schedules periodic cleanup of old files in the working
// directory, complementing the on-demand /cleanup endpoint.
func setupFileCleanup(conf models.Config, store *filestore.Store) {
	log.Printf("Scheduling initial file cleanup in %v...", constants.FileCleanupInitialDelay)
	time.AfterFunc(constants.FileCleanupInitialDelay, func() {
		cleanupFiles(conf, store)
		ticker := time.NewTicker(constants.FileCleanupInterval)
		log.Printf("Starting periodic cleanup task (every %v)...", constants.FileCleanupInterval)
		for range ticker.C {
			cleanupFiles(conf, store)
		}
	})
}

// cleanupFiles removes old files from the working directory.
func cleanupFiles(conf models.Config, store *filestore.Store) {
	removed, err := store.CleanupOlderThan(conf.CleanupMaxAge)
	if err != nil {
		log.Printf("File cleanup failed: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("File cleanup finished. Removed %d old file(s).", removed)
	}
}
