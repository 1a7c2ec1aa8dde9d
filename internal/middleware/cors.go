package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// Cors lets browsers call the API with credentials. An empty allowed list
// accepts any origin.
func Cors(allowed []string) Middleware {
	options := cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: true,
	}
	if len(allowed) == 0 {
		options.AllowOriginFunc = func(string) bool { return true }
	} else {
		options.AllowedOrigins = allowed
	}
	return cors.New(options).Handler
}
