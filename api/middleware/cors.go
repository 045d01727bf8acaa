package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"

	"github.com/magusbylili/storefront-backend/pkg/config"
)

// CORS returns middleware that applies the storefront's allowed origin policy.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	origins := []string{"http://localhost:5173"}
	if origin := strings.TrimSpace(cfg.AllowedOrigin); origin != "" {
		origins = []string{origin}
	}

	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
