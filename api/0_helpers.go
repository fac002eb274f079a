package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/fulldump/box"

	"github.com/fulldump/btrievedb/btrieve"
)

type PrettyError struct {
	Message     string `json:"message"`
	Description string `json:"description"`
	Status      string `json:"status,omitempty"`
}

func (p PrettyError) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"error": struct {
			Message     string `json:"message"`
			Description string `json:"description"`
			Status      string `json:"status,omitempty"`
		}{
			p.Message,
			p.Description,
			p.Status,
		},
	})
}

func (p PrettyError) MarshalTo(w io.Writer) error {
	return json.NewEncoder(w).Encode(p)
}

// HttpStatus maps an engine status onto the HTTP status it is answered
// with.
func HttpStatus(s btrieve.StatusCode) int {
	switch s {
	case btrieve.StatusDuplicateKeyValue:
		return http.StatusConflict
	case btrieve.StatusRecordInUse, btrieve.StatusFileInUse:
		return http.StatusLocked
	case btrieve.StatusAccessToFileDenied:
		return http.StatusForbidden
	case btrieve.StatusFileAlreadyExists:
		return http.StatusConflict
	case btrieve.StatusRecordManagerInactive:
		return http.StatusServiceUnavailable
	}

	switch s.Class() {
	case btrieve.ClassNotFound:
		return http.StatusNotFound
	case btrieve.ClassValidation:
		return http.StatusBadRequest
	case btrieve.ClassConcurrency:
		return http.StatusConflict
	case btrieve.ClassSession:
		return http.StatusUnauthorized
	case btrieve.ClassResource:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func PrettyErrorInterceptor(next box.H) box.H {
	return func(ctx context.Context) {

		next(ctx)

		err := box.GetError(ctx)
		if err == nil {
			return
		}
		w := box.GetResponse(ctx)

		if err == ErrUnauthorized {
			w.WriteHeader(http.StatusUnauthorized)
			PrettyError{
				Message:     err.Error(),
				Description: "user is not authenticated",
			}.MarshalTo(w)
			return
		}

		if err == box.ErrResourceNotFound {
			w.WriteHeader(http.StatusNotFound)
			PrettyError{
				Message:     err.Error(),
				Description: fmt.Sprintf("resource '%s' not found", box.GetRequest(ctx).URL.String()),
			}.MarshalTo(w)
			return
		}

		if err == box.ErrMethodNotAllowed {
			w.WriteHeader(http.StatusMethodNotAllowed)
			PrettyError{
				Message:     err.Error(),
				Description: fmt.Sprintf("method '%s' not allowed", box.GetRequest(ctx).Method),
			}.MarshalTo(w)
			return
		}

		var syntaxError *json.SyntaxError
		if errors.As(err, &syntaxError) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			w.WriteHeader(http.StatusBadRequest)
			PrettyError{
				Message:     err.Error(),
				Description: "Malformed JSON",
			}.MarshalTo(w)
			return
		}

		var status btrieve.StatusCode
		if errors.As(err, &status) {
			w.WriteHeader(HttpStatus(status))
			PrettyError{
				Message:     err.Error(),
				Description: status.Class().String() + " error",
				Status:      status.String(),
			}.MarshalTo(w)
			return
		}

		w.WriteHeader(http.StatusInternalServerError)
		PrettyError{
			Message:     err.Error(),
			Description: "Unexpected error",
		}.MarshalTo(w)
	}
}
