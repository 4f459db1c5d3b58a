package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

var ErrUnknownUser = errors.New("unknown user")

// Directory resolves a user id into the identity used for policy checks.
// Group membership is read per request so assignments apply immediately.
type Directory interface {
	Identity(ctx context.Context, userID int64) (Identity, error)
}

type Verifier interface {
	Verify(token string) (int64, error)
}

// Middleware attaches the caller identity to the request context. Requests
// without an Authorization header proceed anonymously; a bad token is a 401.
func Middleware(v Verifier, dir Directory, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			token, ok := bearerToken(header)
			if !ok {
				writeDetail(w, http.StatusUnauthorized, "Invalid authorization header format.")
				return
			}
			userID, err := v.Verify(token)
			if err != nil {
				writeDetail(w, http.StatusUnauthorized, "Invalid token.")
				return
			}
			id, err := dir.Identity(r.Context(), userID)
			if errors.Is(err, ErrUnknownUser) {
				writeDetail(w, http.StatusUnauthorized, "User not found.")
				return
			}
			if err != nil {
				log.WithError(err).WithField("user_id", userID).Error("identity lookup failed")
				writeDetail(w, http.StatusInternalServerError, "internal error")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// writeDetail renders the same {"detail": ...} body as the API error path.
func writeDetail(w http.ResponseWriter, status int, msg string) {
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": msg})
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}
