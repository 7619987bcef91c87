// internal/common/errors/handler.go
package errors

// ErrorHandler normalizes and logs failures before they are turned into a
// response payload.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle logs err with its code and category and returns the normalized form.
func (h *ErrorHandler) Handle(operation string, err error, fields map[string]interface{}) *StandardError {
	stdErr := Normalize(err)
	if stdErr == nil {
		return nil
	}

	logFields := map[string]interface{}{
		"operation":     operation,
		"errorCode":     string(stdErr.Code),
		"errorCategory": GetErrorCategory(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
	}
	for k, v := range stdErr.Metadata {
		logFields[k] = v
	}
	for k, v := range fields {
		logFields[k] = v
	}

	h.logger.Error(operation+" failed", logFields)
	return stdErr
}
