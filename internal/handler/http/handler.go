package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/daybookhq/daybook/pkg/errors"
	"github.com/daybookhq/daybook/pkg/validator"
)

// maxBodySize caps JSON request bodies.
const maxBodySize = 1 << 20 // 1MB

// decodeBody reads and validates a JSON request body. Malformed JSON becomes
// an invalid input error; validation failures pass through so the response
// can list the offending fields.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	if err := validator.DecodeAndValidate(r, dst); err != nil {
		var valErr *validator.ValidationError
		if errors.As(err, &valErr) {
			return err
		}
		return apperrors.InvalidInput("invalid request body")
	}
	return nil
}

// idParam extracts a positive integer URL parameter.
func idParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.InvalidInput("invalid " + name)
	}
	return id, nil
}
