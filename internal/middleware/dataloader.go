package middleware

import (
	"net/http"

	"github.com/rpattn/finsheet/internal/repository"
	"github.com/rpattn/finsheet/internal/runloader"
)

// DataLoaderMiddleware attaches a fresh run loader to each request context
func DataLoaderMiddleware(repo repository.IngestionRunRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			loader := runloader.NewRunLoader(repo)
			ctx := runloader.ContextWithLoader(r.Context(), loader)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
