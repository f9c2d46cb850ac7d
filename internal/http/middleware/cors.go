package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// corsMaxAge is how long browsers may cache a preflight, in seconds.
const corsMaxAge = 600

// CORS lets the booking front end call the API from the configured origins.
// Entries may be exact ("https://book.example"), subdomain wildcards
// ("https://*.example") or "*" for any origin.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(corsOptions(allowedOrigins))
}

func corsOptions(allowedOrigins []string) cors.Options {
	origins := make([]string, 0, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		// The wizard reads the request id for support tickets and Retry-After
		// when the recommendation limiter trips.
		ExposedHeaders: []string{"X-Request-ID", "Retry-After"},
		MaxAge:         corsMaxAge,
	}
}
