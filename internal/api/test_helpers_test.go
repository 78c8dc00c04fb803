package api

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"video-to-mp3-service/internal/filestore"
	"video-to-mp3-service/internal/models"
)

type convertCall struct {
	source     string
	outputPath string
	bitrate    string
}

// fakeConverter stands in for ffmpeg. On success it writes output bytes to
// the requested path; on failure it can leave a partial file behind, the way
// a killed ffmpeg process would.
type fakeConverter struct {
	convertErr       error
	probeErr         error
	output           []byte
	partialOnFailure bool
	skipOutput       bool
	calls            []convertCall
}

func (f *fakeConverter) Convert(_ context.Context, source, outputPath, bitrate string) error {
	f.calls = append(f.calls, convertCall{source: source, outputPath: outputPath, bitrate: bitrate})
	if f.convertErr != nil {
		if f.partialOnFailure {
			_ = os.WriteFile(outputPath, []byte("partial"), 0o644)
		}
		return f.convertErr
	}
	if f.skipOutput {
		return nil
	}
	data := f.output
	if len(data) == 0 {
		// Large enough that file_size_mb rounds above zero.
		data = bytes.Repeat([]byte("fake mp3 content "), 4096)
	}
	return os.WriteFile(outputPath, data, 0o644)
}

func (f *fakeConverter) CheckAvailable(_ context.Context) error {
	return f.probeErr
}

type handlerTestEnv struct {
	handler    *Handler
	store      *filestore.Store
	converter  *fakeConverter
	workingDir string
}

func newHandlerTestEnv(t *testing.T) *handlerTestEnv {
	t.Helper()

	workingDir := filepath.Join(t.TempDir(), "files")
	require.NoError(t, os.MkdirAll(workingDir, 0o755))

	config := models.Config{
		Port:           "3000",
		MaxFileSize:    5 * 1024 * 1024,
		WorkingDir:     workingDir,
		CleanupMaxAge:  time.Hour,
		FFmpegPath:     "ffmpeg",
		DefaultBitrate: "192k",
		AllowedOrigins: []string{"*"},
	}

	store := filestore.New(workingDir)
	conv := &fakeConverter{}

	return &handlerTestEnv{
		handler:    NewHandler(config, store, conv),
		store:      store,
		converter:  conv,
		workingDir: workingDir,
	}
}

// listWorkingDir returns the names of all entries in the working directory.
func (env *handlerTestEnv) listWorkingDir(t *testing.T) []string {
	t.Helper()

	entries, err := os.ReadDir(env.workingDir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

// newUploadRequest builds a multipart request with a file part and optional
// extra form fields.
func newUploadRequest(t *testing.T, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	fileWriter, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fileWriter.Write(content)
	require.NoError(t, err)

	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, RouteConvert, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}
