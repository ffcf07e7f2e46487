package server

import (
	"encoding/json"
	"io"
	"net/http"

	"playshare/apperr"
	"playshare/model"
)

// maxBodySize caps JSON request bodies.
const maxBodySize = 1 << 20 // 1 MiB

// bindBody validates the request body against schema and unmarshals it into
// dst. Unmarshalling into the typed struct is the field-projection step:
// fields not declared on dst are silently dropped. A required field that is
// absent or null fails with a named validation error before anything reaches
// the store.
func bindBody(r *http.Request, schema model.Schema, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return apperr.ErrValidation.WithError(err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return apperr.ErrValidation.WithError(err)
	}

	if missing := schema.MissingFields(raw); len(missing) > 0 {
		return apperr.ErrMissingField.WithDetails(map[string]interface{}{"missing": missing})
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return apperr.ErrValidation.WithError(err)
	}
	return nil
}
