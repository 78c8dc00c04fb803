package api

// API route path constants
const (
	// Health check route
	RouteHealth = "/health"

	// Conversion routes
	RouteConvert    = "/convert"
	RouteConvertURL = "/convert-url"

	// Download route
	RouteDownload = "/download/"

	// Cleanup route
	RouteCleanup = "/cleanup"
)
