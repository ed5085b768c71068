package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/stockpinghq/stockping-backend/api/responses"
	"github.com/stockpinghq/stockping-backend/pkg/config"
	pkgerrors "github.com/stockpinghq/stockping-backend/pkg/errors"
	"github.com/stockpinghq/stockping-backend/pkg/logger"
)

// AdminToken guards operational endpoints with the shared admin bearer
// token. When no token is configured the endpoints are disabled outright.
func AdminToken(cfg config.AdminConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "not found"))
				return
			}
			presented := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if presented == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(cfg.Token)) != 1 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid admin token"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
