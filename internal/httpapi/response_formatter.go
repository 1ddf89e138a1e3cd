package httpapi

import (
	"encoding/json"
	"net/http"
)

// ChartResponse is the success envelope of the chart endpoint.
type ChartResponse struct {
	Success   bool   `json:"success"`
	ResultObj string `json:"resultObj"`
}

// UploadResponse is the success envelope of the upload endpoint.
type UploadResponse struct {
	Success  bool   `json:"success"`
	FileURL  string `json:"fileUrl"`
	Filename string `json:"filename"`
}

// ErrorResponse is the envelope of every failed request.
type ErrorResponse struct {
	Success      bool   `json:"success"`
	ErrorMessage string `json:"errorMessage"`
}

// ResponseFormatter formats HTTP responses
type ResponseFormatter interface {
	FormatChartResponse(url string) ChartResponse
	FormatUploadResponse(url, filename string) UploadResponse
	FormatErrorResponse(message string) ErrorResponse
}

// DefaultResponseFormatter builds the success/error envelopes
type DefaultResponseFormatter struct{}

// NewDefaultResponseFormatter creates a new response formatter
func NewDefaultResponseFormatter() *DefaultResponseFormatter {
	return &DefaultResponseFormatter{}
}

// FormatChartResponse formats the response for the chart endpoint
func (f *DefaultResponseFormatter) FormatChartResponse(url string) ChartResponse {
	return ChartResponse{Success: true, ResultObj: url}
}

// FormatUploadResponse formats the response for the upload endpoint
func (f *DefaultResponseFormatter) FormatUploadResponse(url, filename string) UploadResponse {
	return UploadResponse{Success: true, FileURL: url, Filename: filename}
}

// FormatErrorResponse formats an error response
func (f *DefaultResponseFormatter) FormatErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Success: false, ErrorMessage: message}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
