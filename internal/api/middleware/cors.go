package middleware

import (
	"github.com/go-chi/cors"
)

// NewCORS creates a CORS middleware for the read-only operational endpoints
func NewCORS(allowedOrigins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{
			"Content-Type",
			"Authorization",
		},
		ExposedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	})
}
