package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/weberyanglalala/gpt-chart-express-server/internal/config"
)

// Client-facing messages
const (
	MsgMissingChartParams  = "Missing required parameters: type and data"
	MsgMissingUploadFields = "Missing required fields: text_content and filename"
	MsgInvalidJSON         = "Invalid JSON request body"
	MsgBodyTooLarge        = "Request body too large"
	MsgUnknownError        = "Unknown error occurred"
)

// RequestError is a client input error answered with 400 and a fixed message.
type RequestError struct {
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// classify maps err to a status code and the message sent to the client.
// Collaborator errors keep their own message unless it is empty.
func classify(err error) (int, string) {
	var reqErr *RequestError
	var tooLarge *http.MaxBytesError
	var missing *config.MissingSettingsError

	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, MsgBodyTooLarge
	case errors.As(err, &reqErr):
		return http.StatusBadRequest, reqErr.Message
	case errors.As(err, &missing):
		return http.StatusInternalServerError, config.MissingStorageMessage
	}

	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return http.StatusInternalServerError, err.Error()
	}
	return http.StatusInternalServerError, MsgUnknownError
}
