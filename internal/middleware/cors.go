package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// AccessTokenHeader is the header both servers use for the access token.
const AccessTokenHeader = "x-access-token"

func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	handler := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{AccessTokenHeader, "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Location", "Retry-After", "X-Request-ID"},
		MaxAge:           3600,
		AllowCredentials: false,
	})

	return handler.Handler
}
