// internal/app/features/errors/errors.go

// Package errors renders API errors and JSON responses uniformly. Handlers
// pass any error to Write; apperr kinds map onto HTTP statuses and a
// structured {error, message} body, and anything untyped collapses to a
// 500 with a generic message so internals never leak to clients.
package errors

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/dalemusser/munidesk/internal/app/system/apperr"
)

// body is the wire shape of every error response.
type body struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Write renders err as a JSON error response. Internal errors are logged
// with their cause; client-safe kinds are logged at debug only.
func Write(w http.ResponseWriter, log *zap.Logger, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)
	if kind == apperr.KindInternal {
		log.Error("request failed", zap.Error(err))
	} else {
		log.Debug("request rejected",
			zap.String("kind", string(kind)),
			zap.String("message", apperr.ClientMessage(err)))
	}
	JSON(w, status, body{
		Error:   string(kind),
		Message: apperr.ClientMessage(err),
	})
}
