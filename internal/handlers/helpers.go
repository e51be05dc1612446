package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/app"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/apperrors"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/metrics"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/models"
)

type contextKey string

const actorKey contextKey = "actor"

// statusWriter remembers the status code for the request duration metric.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// WithActor authenticates the request via the session layer and attaches
// the actor triple to the context. Handlers never look at tokens
// themselves.
func WithActor(sessions *app.Sessions, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			duration := time.Since(start).Seconds()
			metrics.APIRequestDuration.WithLabelValues(
				r.URL.Path,
				r.Method,
				strconv.Itoa(sw.status),
			).Observe(duration)
		}()

		authHeader := r.Header.Get(sessions.TokenHeader())
		token := strings.TrimPrefix(authHeader, "Bearer ")

		actor, err := sessions.Resolve(r.Context(), token)
		if err != nil {
			logger.Debug.Printf("Auth failed: %v", err)
			http.Error(sw, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), actorKey, *actor)
		next(sw, r.WithContext(ctx))
	}
}

func actorFrom(r *http.Request) models.Actor {
	actor, _ := r.Context().Value(actorKey).(models.Actor)
	return actor
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.Validation("invalid %s in path", name)
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error.Printf("Failed to encode response: %v", err)
	}
}

// writeError maps the error taxonomy onto HTTP status classes: not-found
// to 404, permission to 403, validation and duplicate to 400, anything
// unrecognized to 500 without leaking the internal message.
func writeError(w http.ResponseWriter, err error) {
	var status int
	switch apperrors.KindOf(err) {
	case apperrors.KindNotFound:
		status = http.StatusNotFound
	case apperrors.KindPermission:
		status = http.StatusForbidden
	case apperrors.KindValidation, apperrors.KindDuplicate:
		status = http.StatusBadRequest
	default:
		logger.Error.Printf("Internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error": "internal server error",
		})
		return
	}
	writeJSON(w, status, map[string]interface{}{
		"error": err.Error(),
	})
}

func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.Validation("invalid request body")
	}
	return nil
}
