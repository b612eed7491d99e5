package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/infinitescroll/image-store/internal/handler"
	"github.com/infinitescroll/image-store/internal/health"
	"github.com/infinitescroll/image-store/internal/image"
	"github.com/infinitescroll/image-store/internal/logger"
	"github.com/infinitescroll/image-store/internal/tracing"
)

// API is a http api
type API struct {
	Service        *image.Service
	HealthChecker  *health.Checker
	Log            *logger.Logger
	Tracer         *tracing.Tracer
	CORSOrigin     string
	HandlerTimeout time.Duration
}

// Utility methods for logging
func (a *API) logError(r *http.Request, message string, err error) {
	a.Log.Errorw(message, handler.LogFields(r, "error", err)...)
}

// Router returns a http router
func (a *API) Router() http.Handler {
	router := mux.NewRouter()

	router.NotFoundHandler = handler.Handler(a.notFoundHandler)

	// Redirect trailing slashes
	router.StrictSlash(true)

	// Healthcheck
	router.Handle("/health", a.withTimeout(handler.Health(a.HealthChecker))).Methods("GET").Name("health")

	// Image routes
	// ?count={count} - How many images to import or return
	// Uploads aren't bounded by the handler timeout, an import runs until it completes or fails
	router.Handle("/images/upload", handler.Handler(a.uploadHandler)).Methods("POST").Name("images.upload")
	router.Handle("/images/random", a.withTimeout(handler.Handler(a.randomHandler))).Methods("GET").Name("images.random")
	router.Handle("/images/{id}", a.withTimeout(handler.Handler(a.imageHandler))).Methods("GET").Name("images.get")

	routeMatcher := &handler.MuxRouteMatcher{Router: router}

	// Set up handlers for tracing, handling panics, request logging, metrics and setting CORS headers
	return handler.Tracer(a.Tracer,
		handler.Recovery(a.Log,
			handler.Logger(a.Log,
				handler.Metrics(
					handler.CORS(a.CORSOrigin, []string{"ETag"}, router),
					routeMatcher,
				),
			),
		),
		routeMatcher,
	)
}

// withTimeout limits the execution time of a read handler
func (a *API) withTimeout(h http.Handler) http.Handler {
	return http.TimeoutHandler(h, a.HandlerTimeout, "Something went wrong. Timed out.")
}

// Handle not found errors
var notFoundError = &handler.Error{
	Message: "page not found",
	Code:    http.StatusNotFound,
}

func (a *API) notFoundHandler(w http.ResponseWriter, r *http.Request) *handler.Error {
	return notFoundError
}
