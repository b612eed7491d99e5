package handler

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS is a handler for setting CORS headers, allowing cross-origin reads from a single origin
func CORS(allowedOrigin string, exposedHeaders []string, next http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{allowedOrigin},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		ExposedHeaders: exposedHeaders,
	})

	return c.Handler(next)
}
