package middleware

import (
	"net/http"
	"slices"

	"github.com/rs/cors"
)

// Cors lets the listed origins in. Without any origin every origin is
// allowed.
func Cors(allowedOrigins ...string) Middleware {
	options := cors.Options{
		AllowOriginFunc: func(origin string) bool {
			return len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, origin)
		},
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}
	return cors.New(options).Handler
}
