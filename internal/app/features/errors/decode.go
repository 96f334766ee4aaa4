// internal/app/features/errors/decode.go
package errors

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/munidesk/internal/app/system/apperr"
	"github.com/dalemusser/munidesk/internal/app/system/limits"
)

// Decode reads a JSON request body into dst, capped at the global body
// size limit. Unknown fields are rejected so typos surface instead of
// being silently dropped. Returns an apperr bad-request on any malformed
// input.
func Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apperr.BadRequest("request body is too large")
		case errors.Is(err, io.EOF):
			return apperr.BadRequest("request body must not be empty")
		}
		return apperr.BadRequest("request body is not valid JSON")
	}
	// A second document after the first is also malformed input.
	if dec.More() {
		return apperr.BadRequest("request body must contain a single JSON object")
	}
	return nil
}
