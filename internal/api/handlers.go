package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"video-to-mp3-service/internal/constants"
	"video-to-mp3-service/internal/converter"
	"video-to-mp3-service/internal/filestore"
	"video-to-mp3-service/internal/models"
	"video-to-mp3-service/internal/upload"
	"video-to-mp3-service/internal/utils"
)

// Handler encapsulates dependencies for API handlers.
type Handler struct {
	Config    models.Config
	Store     *filestore.Store
	Converter converter.Converter
}

// NewHandler creates a new API handler.
func NewHandler(config models.Config, store *filestore.Store, conv converter.Converter) *Handler {
	return &Handler{
		Config:    config,
		Store:     store,
		Converter: conv,
	}
}

// SetupRoutes configures the HTTP routes.
func (h *Handler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc(RouteHealth, h.HealthHandler)
	mux.HandleFunc(RouteConvert, h.ConvertUploadHandler)
	mux.HandleFunc(RouteConvertURL, h.ConvertURLHandler)
	mux.HandleFunc(RouteDownload, h.DownloadHandler)
	mux.HandleFunc(RouteCleanup, h.CleanupHandler)
}

// HealthHandler probes the converter capability. It never touches the store.
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.sendErrorResponse(w, "Method not allowed", "", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), constants.HealthProbeTimeout)
	defer cancel()

	if err := h.Converter.CheckAvailable(ctx); err != nil {
		log.Printf("ERROR: Converter availability probe failed: %v", err)
		h.sendJSONResponse(w, models.HealthResponse{
			Status:  "unhealthy",
			Error:   "Converter unavailable",
			Message: err.Error(),
		}, http.StatusInternalServerError)
		return
	}

	h.sendJSONResponse(w, models.HealthResponse{
		Status:    "healthy",
		FFmpeg:    "available",
		Timestamp: time.Now().Format(time.RFC3339),
	}, http.StatusOK)
}

// ConvertUploadHandler accepts a multipart video upload, converts it to MP3
// and responds with either a JSON descriptor or the file itself.
func (h *Handler) ConvertUploadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendErrorResponse(w, "Method not allowed", "", http.StatusMethodNotAllowed)
		return
	}

	maxUploadSize := h.Config.MaxFileSize + constants.UploadSizeBuffer
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(constants.MultipartMemoryLimit); err != nil {
		switch {
		case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
			h.sendErrorResponse(w, "Invalid request: expected multipart/form-data", "", http.StatusBadRequest)
		case strings.Contains(err.Error(), "request body too large"):
			h.sendErrorResponse(w, h.sizeLimitMessage(), "", http.StatusBadRequest)
		default:
			log.Printf("WARN: Failed to parse multipart form: %v", err)
			h.sendErrorResponse(w, "Failed to parse multipart form", err.Error(), http.StatusBadRequest)
		}
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			log.Printf("WARN: Error removing multipart temp files: %v", err)
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			h.sendErrorResponse(w, "Missing 'file' part in form data", "", http.StatusBadRequest)
		} else {
			h.sendErrorResponse(w, "Failed to read file from form", err.Error(), http.StatusBadRequest)
		}
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			log.Printf("WARN: Error closing uploaded file handle: %v", closeErr)
		}
	}()

	bitrate := r.FormValue("bitrate")
	if bitrate == "" {
		bitrate = h.Config.DefaultBitrate
	}
	returnFile := r.FormValue("return_file") == "true"

	if err := h.Store.EnsureDirectory(); err != nil {
		log.Printf("ERROR: Failed to prepare working directory: %v", err)
		h.sendErrorResponse(w, "Failed to prepare working directory", err.Error(), http.StatusInternalServerError)
		return
	}

	uploaded, err := upload.Accept(file, header, h.Store, h.Config.MaxFileSize)
	if err != nil {
		switch {
		case errors.Is(err, upload.ErrUnsupportedFormat):
			h.sendErrorResponse(w, err.Error(), "", http.StatusBadRequest)
		case errors.Is(err, upload.ErrFileTooLarge):
			h.sendErrorResponse(w, h.sizeLimitMessage(), "", http.StatusBadRequest)
		default:
			log.Printf("ERROR: Failed to store upload %s: %v", header.Filename, err)
			h.sendErrorResponse(w, "Failed to store uploaded file", err.Error(), http.StatusInternalServerError)
		}
		return
	}

	outputName := strings.TrimSuffix(filepath.Base(uploaded.StoredPath), uploaded.Extension) + ".mp3"
	outputPath := h.Store.Path(outputName)

	log.Printf("Converting upload %s -> %s (bitrate %s)", uploaded.OriginalName, outputName, bitrate)
	if err := h.Converter.Convert(r.Context(), uploaded.StoredPath, outputPath, bitrate); err != nil {
		log.Printf("ERROR: Conversion failed for %s: %v", uploaded.OriginalName, err)
		h.removeQuietly(uploaded.StoredPath)
		h.removeQuietly(outputPath)
		h.sendErrorResponse(w, "Conversion failed", err.Error(), http.StatusInternalServerError)
		return
	}

	if returnFile {
		h.serveAttachment(w, r, outputPath, outputName)
		// Both files go regardless of how the stream ended.
		h.removeQuietly(uploaded.StoredPath)
		h.removeQuietly(outputPath)
		return
	}

	info, err := h.Store.Stat(outputPath)
	if err != nil {
		log.Printf("ERROR: Output file missing after conversion of %s: %v", uploaded.OriginalName, err)
		h.removeQuietly(uploaded.StoredPath)
		h.removeQuietly(outputPath)
		h.sendErrorResponse(w, "Conversion failed", err.Error(), http.StatusInternalServerError)
		return
	}

	h.removeQuietly(uploaded.StoredPath)

	h.sendJSONResponse(w, models.ConversionDescriptor{
		Success:     true,
		InputFile:   uploaded.OriginalName,
		OutputFile:  outputName,
		OutputPath:  outputPath,
		FileSize:    info.Size(),
		FileSizeMB:  utils.BytesToMBRounded(info.Size()),
		Bitrate:     bitrate,
		DownloadURL: RouteDownload + outputName,
		Message:     fmt.Sprintf("Conversion completed successfully (%s)", utils.FormatBytesToMB(info.Size())),
	}, http.StatusOK)
}

// ConvertURLHandler converts a remote video URL to MP3. The output stays in
// the working directory; there is no input file to clean up.
func (h *Handler) ConvertURLHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendErrorResponse(w, "Method not allowed", "", http.StatusMethodNotAllowed)
		return
	}

	var request models.URLConversionRequest
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxJSONRequestSize)
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.sendErrorResponse(w, "Failed to parse request body", err.Error(), http.StatusBadRequest)
		return
	}

	if request.URL == "" {
		h.sendErrorResponse(w, "Missing 'url' field in request body", "", http.StatusBadRequest)
		return
	}

	bitrate := request.Bitrate
	if bitrate == "" {
		bitrate = h.Config.DefaultBitrate
	}

	// Created lazily, independent of startup.
	if err := h.Store.EnsureDirectory(); err != nil {
		log.Printf("ERROR: Failed to prepare working directory: %v", err)
		h.sendErrorResponse(w, "Failed to prepare working directory", err.Error(), http.StatusInternalServerError)
		return
	}

	outputName := fmt.Sprintf("converted_%d.mp3", time.Now().UnixMilli())
	outputPath := h.Store.Path(outputName)

	log.Printf("Converting URL %s -> %s (bitrate %s)", request.URL, outputName, bitrate)
	if err := h.Converter.Convert(r.Context(), request.URL, outputPath, bitrate); err != nil {
		log.Printf("ERROR: URL conversion failed for %s: %v", request.URL, err)
		h.removeQuietly(outputPath)
		h.sendErrorResponse(w, "Conversion failed", err.Error(), http.StatusInternalServerError)
		return
	}

	info, err := h.Store.Stat(outputPath)
	if err != nil {
		log.Printf("ERROR: Output file missing after URL conversion of %s: %v", request.URL, err)
		h.removeQuietly(outputPath)
		h.sendErrorResponse(w, "Conversion failed", err.Error(), http.StatusInternalServerError)
		return
	}

	h.sendJSONResponse(w, models.ConversionDescriptor{
		Success:     true,
		SourceURL:   request.URL,
		OutputFile:  outputName,
		OutputPath:  outputPath,
		FileSize:    info.Size(),
		FileSizeMB:  utils.BytesToMBRounded(info.Size()),
		Bitrate:     bitrate,
		DownloadURL: RouteDownload + outputName,
	}, http.StatusOK)
}

// DownloadHandler serves a converted file as an attachment. By default the
// file stays in place for re-download; DeleteAfterDownload changes that.
func (h *Handler) DownloadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.sendErrorResponse(w, "Method not allowed", "", http.StatusMethodNotAllowed)
		return
	}

	filename := strings.TrimPrefix(r.URL.Path, RouteDownload)
	if filename == "" || strings.Contains(filename, "..") || strings.ContainsAny(filename, "/\\") {
		h.sendErrorResponse(w, "Invalid filename", "", http.StatusBadRequest)
		return
	}

	filePath, err := h.resolvePathInWorkingDir(filename)
	if err != nil {
		h.sendErrorResponse(w, "Invalid filename", "", http.StatusBadRequest)
		return
	}

	info, err := h.Store.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			h.sendErrorResponse(w, "Archivo no encontrado", "", http.StatusNotFound)
		} else {
			log.Printf("ERROR: Error stating download file %s: %v", filePath, err)
			h.sendErrorResponse(w, "Internal server error", "", http.StatusInternalServerError)
		}
		return
	}
	if info.IsDir() {
		h.sendErrorResponse(w, "Invalid filename", "", http.StatusBadRequest)
		return
	}

	h.serveAttachment(w, r, filePath, filename)

	if h.Config.DeleteAfterDownload {
		h.removeQuietly(filePath)
	}
}

// CleanupHandler deletes working-directory files older than the configured
// threshold and reports how many were removed.
func (h *Handler) CleanupHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendErrorResponse(w, "Method not allowed", "", http.StatusMethodNotAllowed)
		return
	}

	removed, err := h.Store.CleanupOlderThan(h.Config.CleanupMaxAge)
	if err != nil {
		log.Printf("ERROR: Cleanup failed: %v", err)
		h.sendErrorResponse(w, "Cleanup failed", err.Error(), http.StatusInternalServerError)
		return
	}

	log.Printf("Cleanup removed %d file(s) older than %v", removed, h.Config.CleanupMaxAge)
	h.sendJSONResponse(w, models.CleanupResponse{
		Success:      true,
		FilesCleaned: removed,
		Message:      fmt.Sprintf("Removed %d file(s) older than %v", removed, h.Config.CleanupMaxAge),
	}, http.StatusOK)
}

// resolvePathInWorkingDir resolves filename under the working directory and
// rejects anything that escapes it.
func (h *Handler) resolvePathInWorkingDir(filename string) (string, error) {
	absBaseDir, err := filepath.Abs(h.Store.Dir())
	if err != nil {
		return "", fmt.Errorf("internal server configuration error (base dir)")
	}

	absFilePath, err := filepath.Abs(h.Store.Path(filename))
	if err != nil {
		return "", fmt.Errorf("invalid file path generated")
	}

	if !strings.HasPrefix(absFilePath, absBaseDir+string(os.PathSeparator)) {
		log.Printf("WARN: Invalid path detected (outside working directory): %s", filename)
		return "", fmt.Errorf("invalid file path generated (security check failed)")
	}

	return absFilePath, nil
}

func (h *Handler) serveAttachment(w http.ResponseWriter, r *http.Request, filePath, filename string) {
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	contentType := "application/octet-stream"
	if strings.ToLower(filepath.Ext(filename)) == ".mp3" {
		contentType = "audio/mpeg"
	}
	w.Header().Set("Content-Type", contentType)

	if info, err := os.Stat(filePath); err == nil {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	}

	http.ServeFile(w, r, filePath)
}

func (h *Handler) sizeLimitMessage() string {
	return fmt.Sprintf("Upload failed: File exceeds maximum allowed size (%d MB)", h.Config.MaxFileSize/(1024*1024))
}

// removeQuietly deletes a file on a best-effort basis; failures are logged,
// never escalated.
func (h *Handler) removeQuietly(path string) {
	if err := h.Store.Delete(path); err != nil {
		log.Printf("WARN: Failed to remove file %s: %v", path, err)
	}
}

// sendJSONResponse sends a JSON response with appropriate headers.
func (h *Handler) sendJSONResponse(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// sendErrorResponse sends a standardized JSON error response.
func (h *Handler) sendErrorResponse(w http.ResponseWriter, errMsg, details string, statusCode int) {
	log.Printf("WARN: Sending error response (status %d): %s", statusCode, errMsg)
	h.sendJSONResponse(w, models.ErrorResponse{
		Success: false,
		Error:   errMsg,
		Details: details,
	}, statusCode)
}
