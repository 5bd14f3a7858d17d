package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/rs/cors"
)

var (
	corsAllowedMethods = []string{
		http.MethodGet,
		http.MethodPost,
		http.MethodOptions,
	}
	corsAllowedHeaders = []string{
		"Accept",
		"Content-Type",
		"Content-Length",
		"Authorization",
		RequestIDHeader,
		"MCP-Protocol-Version",
		"MCP-Session-Id",
	}
)

// Cors answers preflight requests with 200 and allows the given origins ("*" for any).
// With "*" every response carries the allow headers, also when the request sends no Origin.
func Cors(allowedOrigins []string) func(next http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	c := cors.New(cors.Options{
		AllowedOrigins:       allowedOrigins,
		AllowedMethods:       corsAllowedMethods,
		AllowedHeaders:       corsAllowedHeaders,
		ExposedHeaders:       []string{RequestIDHeader, "MCP-Session-Id"},
		OptionsSuccessStatus: http.StatusOK,
		MaxAge:               600,
	})

	if !slices.Contains(allowedOrigins, "*") {
		return c.Handler
	}

	allowMethods := strings.Join(corsAllowedMethods, ", ")
	allowHeaders := strings.Join(corsAllowedHeaders, ", ")
	return func(next http.Handler) http.Handler {
		corsHandler := c.Handler(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// rs/cors only overwrites these when it accepts the request
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", "*")
			if r.Method == http.MethodOptions {
				h.Set("Access-Control-Allow-Methods", allowMethods)
				h.Set("Access-Control-Allow-Headers", allowHeaders)
			}
			corsHandler.ServeHTTP(w, r)
		})
	}
}
