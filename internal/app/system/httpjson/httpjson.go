// Package httpjson writes JSON responses and maps service errors onto HTTP
// status codes. Every error body is {"message": "..."}.
package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/projectflow/internal/app/service"
	"github.com/dalemusser/projectflow/internal/app/system/limits"
	"go.uber.org/zap"
)

// MsgInternal is what clients see for any infrastructure failure.
const MsgInternal = "internal server error"

// Message is the body of every error and of plain acknowledgements.
type Message struct {
	Message string `json:"message"`
}

// Write encodes v with the given status.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes v with 200.
func OK(w http.ResponseWriter, v any) { Write(w, http.StatusOK, v) }

// WriteMessage writes {"message": msg} with status.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	Write(w, status, Message{Message: msg})
}

// StatusFor maps the service error taxonomy to an HTTP status.
func StatusFor(err error) int {
	var (
		ve *service.ValidationError
		nf *service.NotFoundError
		ae *service.AuthError
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &ae):
		return http.StatusBadRequest
	case errors.As(err, &nf):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as {"message"} with its mapped status. 5xx causes are
// logged and replaced by MsgInternal.
func Error(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		if logger != nil {
			logger.Error("request failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err))
		}
		WriteMessage(w, status, MsgInternal)
		return
	}
	WriteMessage(w, status, err.Error())
}

// Read decodes a create body into dst. Unknown fields are ignored; an empty,
// oversized or malformed body is a ValidationError.
func Read(w http.ResponseWriter, r *http.Request, dst any) error {
	return ReadLimit(w, r, dst, limits.MaxJSONBody)
}

// ReadLimit is Read with an explicit size cap.
func ReadLimit(w http.ResponseWriter, r *http.Request, dst any, max int64) error {
	body := http.MaxBytesReader(w, r.Body, max)
	err := json.NewDecoder(body).Decode(dst)
	if err == nil {
		return nil
	}
	var tooBig *http.MaxBytesError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return &service.ValidationError{Msg: "request body is empty"}
	case errors.As(err, &tooBig):
		return &service.ValidationError{Msg: "request body too large"}
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return &service.ValidationError{Msg: typeErr.Field + " has the wrong type"}
	default:
		return &service.ValidationError{Msg: "malformed JSON body"}
	}
}

// Limit caps r.Body at the default size for decoders that read it
// themselves.
func Limit(w http.ResponseWriter, r *http.Request) io.Reader {
	return http.MaxBytesReader(w, r.Body, limits.MaxJSONBody)
}
