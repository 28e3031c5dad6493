package utils

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/itchan-dev/feedback/shared/errors"
	"github.com/itchan-dev/feedback/shared/logger"
)

// WriteErrorAndStatusCode writes a single human-readable message. Errors
// without a status are logged and reported as a generic 500.
func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	code := errors.StatusCode(err)
	if code >= http.StatusInternalServerError {
		logger.Log.Error("request failed", "error", err, "cause", errorsCause(err))
	}
	http.Error(w, errors.Message(err), code)
}

func errorsCause(err error) string {
	type unwrapper interface{ Unwrap() error }
	if u, ok := err.(unwrapper); ok && u.Unwrap() != nil {
		return u.Unwrap().Error()
	}
	return err.Error()
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		logger.Log.Error("failed to encode response", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
	w.Write([]byte("\n"))
}

// Decode reads a JSON body; unknown fields are rejected so typos don't silently no-op.
func Decode(r io.ReadCloser, body any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(body); err != nil {
		logger.Log.Debug("invalid json body", "error", err)
		return &errors.ErrorWithStatusCode{Message: "Body is invalid json", StatusCode: http.StatusBadRequest}
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeValidate is Decode followed by the struct's validate tags.
func DecodeValidate(r io.ReadCloser, body any) error {
	if err := Decode(r, body); err != nil {
		return err
	}
	if err := validate.Struct(body); err != nil {
		logger.Log.Debug("request failed validation", "error", err)
		return &errors.ErrorWithStatusCode{Message: "Request fields are invalid", StatusCode: http.StatusBadRequest}
	}
	return nil
}

// BoolQuery parses ?name=true|1|yes; anything else is false.
func BoolQuery(r *http.Request, name string) bool {
	switch strings.ToLower(r.URL.Query().Get(name)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
