package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/clockd/clockd/internal/common"
	"github.com/clockd/clockd/internal/server/auth"
)

type contextKey string

const userIDContextKey contextKey = "userID"

// jwtAuth verifies the Bearer access token and puts the user id into the
// request context. Expired tokens get a distinguishable 401 body so clients
// know to refresh instead of re-logging in.
func jwtAuth(secretKey []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeError(w, http.StatusUnauthorized, common.ErrorUnauthorized)
				return
			}

			userID, err := auth.GetUserIDFromToken(token, secretKey)
			if err != nil {
				if errors.Is(err, common.ErrTokenExpired) {
					writeError(w, http.StatusUnauthorized, common.ErrTokenExpired)
					return
				}
				writeError(w, http.StatusUnauthorized, common.ErrorUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDContextKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func userIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	return userID, ok && userID != ""
}
