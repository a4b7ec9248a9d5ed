package middleware

import (
	"encoding/json"
	"net/http"

	"review-service/internal/domain"

	"go.uber.org/zap"
)

// ErrorResponse is the error envelope every endpoint emits on failure.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteErrorResponse maps a domain error to its HTTP status and code and
// writes the envelope. Unknown errors become a generic 500.
func WriteErrorResponse(w http.ResponseWriter, err error, logger *zap.Logger) {
	statusCode := domain.GetHTTPStatus(err)
	errorCode := domain.GetErrorCode(err)

	if statusCode == http.StatusInternalServerError {
		logger.Error("internal server error", zap.Error(err))
	}

	response := ErrorResponse{
		Error: ErrorDetail{
			Code:    string(errorCode),
			Message: err.Error(),
		},
	}
	if errorCode == "" {
		response.Error.Code = "INTERNAL_ERROR"
		response.Error.Message = "internal server error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if encodeErr := json.NewEncoder(w).Encode(response); encodeErr != nil {
		logger.Error("failed to encode error response", zap.Error(encodeErr))
	}
}

// statusRecorder captures the status code for access logging.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}
