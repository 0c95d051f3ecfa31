package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/mindsync-ai/mindsync/internal/api"
	"github.com/mindsync-ai/mindsync/internal/extract"
	"github.com/mindsync-ai/mindsync/internal/llm"
	"github.com/mindsync-ai/mindsync/internal/tutor"
)

// errBadRequest marks client mistakes that aren't covered by a package
// sentinel.
var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var (
		tooLarge    *http.MaxBytesError
		rateLimit   *llm.ErrRateLimit
		invalid     *llm.ErrInvalidResponse
		unavailable *llm.ErrProviderUnavailable
		rejected    *llm.ErrRequestRejected
	)
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, extract.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, extract.ErrNoText):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errBadRequest), errors.Is(err, tutor.ErrEmptyInput):
		return http.StatusBadRequest
	case errors.Is(err, llm.ErrTranscriptionUnsupported):
		return http.StatusNotImplemented
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &rateLimit):
		return http.StatusTooManyRequests
	case errors.As(err, &invalid), errors.As(err, &unavailable), errors.As(err, &rejected),
		errors.Is(err, tutor.ErrNoQuestions):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// fail writes err as an error body. Server-side failures are logged with
// detail but only the status text reaches the client.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status >= 500 {
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
		msg = http.StatusText(status)
	}
	writeJSON(w, status, api.ErrorResponse{Error: msg})
}

// decodeJSON reads a bounded JSON body into v.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, 2*s.opts.MaxUploadBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return badRequest("empty request body")
		}
		return badRequest("invalid JSON: %v", err)
	}
	return nil
}
