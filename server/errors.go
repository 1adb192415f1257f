package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/etnz/ledgerdiff"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// NewAPIError creates a new APIError with the given parameters
func NewAPIError(statusCode int, errorCode, message string) *APIError {
	return &APIError{StatusCode: statusCode, ErrorCode: errorCode, Message: message}
}

func newAPIErrorWithDetails(statusCode int, errorCode, message string, details any) *APIError {
	return &APIError{StatusCode: statusCode, ErrorCode: errorCode, Message: message, Details: details}
}

// Error codes returned by the API.
const (
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeMissingFile     = "MISSING_FILE"
	CodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
	CodeUnreadableFile  = "UNREADABLE_FILE"
	CodeMissingColumn   = "MISSING_COLUMN"
	CodeInvalidCell     = "INVALID_CELL"
	CodeEmptyWorkbook   = "EMPTY_WORKBOOK"
	CodeSheetNotFound   = "SHEET_NOT_FOUND"
	CodeNotFound        = "NOT_FOUND"
	CodeInternal        = "INTERNAL_SERVER_ERROR"
)

// comparisonError maps an error returned by ledgerdiff.Compare to the API.
func comparisonError(err error) *APIError {
	var (
		mce *ledgerdiff.MissingColumnError
		ce  *ledgerdiff.CellError
	)
	switch {
	case errors.As(err, &mce):
		return newAPIErrorWithDetails(http.StatusUnprocessableEntity, CodeMissingColumn, err.Error(), map[string]string{
			"sheet":  mce.Table,
			"column": mce.Column.String(),
		})
	case errors.As(err, &ce):
		return newAPIErrorWithDetails(http.StatusUnprocessableEntity, CodeInvalidCell, err.Error(), map[string]any{
			"sheet":  ce.Table,
			"row":    ce.Row,
			"column": ce.Column.String(),
			"value":  ce.Value,
		})
	case errors.Is(err, ledgerdiff.ErrEmptyWorkbook):
		return NewAPIError(http.StatusUnprocessableEntity, CodeEmptyWorkbook, err.Error())
	case errors.Is(err, ledgerdiff.ErrSheetNotFound):
		return NewAPIError(http.StatusUnprocessableEntity, CodeSheetNotFound, err.Error())
	}
	return NewAPIError(http.StatusInternalServerError, CodeInternal, "Internal server error")
}

// outcome classifies a response for the metrics.
func outcome(status int) string {
	switch {
	case status >= 500:
		return "error"
	case status >= 400:
		return "rejected"
	}
	return "ok"
}
