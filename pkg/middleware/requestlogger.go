package middleware

import (
	"log/slog"
	"net/http"

	"github.com/Haarush2006/OpsBoard-BE/pkg/logger"
)

// RequestLogger builds a request-scoped logger enriched with request_id,
// user_id, and trace IDs, and stores it in context via logger.NewContext.
// Handlers retrieve it with logger.FromContext.
//
// Mount after RequestLogging (which sets the request ID) and after Auth on
// authenticated routes (which sets the user ID).
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if userID := UserIDFromContext(ctx); userID != "" {
				ctx = logger.WithUserID(ctx, userID)
			}

			enriched := logger.WithContext(ctx, base)
			ctx = logger.NewContext(ctx, enriched)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
