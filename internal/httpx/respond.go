package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/Jeffzycode/LittleLemonAPI/internal/apperr"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(msg))
}

// writeError renders err by its apperr kind. Anything unclassified is logged
// and reported as a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		ae = apperr.Internal("unexpected", err)
	}

	switch ae.Kind {
	case apperr.KindForbidden:
		writeText(w, http.StatusForbidden, apperr.ForbiddenMessage)
	case apperr.KindBadRequest:
		writeText(w, http.StatusBadRequest, ae.Message)
	case apperr.KindUnauthorized:
		w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": ae.Message})
	case apperr.KindNotFound:
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": ae.Message})
	case apperr.KindValidation:
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": ae.Fields})
	default:
		log.WithError(err).WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": middleware.GetReqID(r.Context()),
		}).Error("request error")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "internal error"})
	}
}
