package eventmodels

import "net/http"

type WebError struct {
	StatusCode int
	Type       string
	Message    string
	Cause      error
}

func (e *WebError) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}

	return e.Message
}

func (e *WebError) Unwrap() error {
	return e.Cause
}

func NewWebError(statusCode int, errType string, message string, cause error) *WebError {
	return &WebError{
		StatusCode: statusCode,
		Type:       errType,
		Message:    message,
		Cause:      cause,
	}
}

func NewParserError(cause error) *WebError {
	return NewWebError(http.StatusBadRequest, "parser", "failed to parse request", cause)
}
