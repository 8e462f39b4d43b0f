package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/upb/casting-agency/services"
	"github.com/upb/casting-agency/utils"
)

// HandleServiceError maps domain errors to the error envelope
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	var (
		status int
		write  func(http.ResponseWriter) error
	)
	switch {
	case services.IsBadRequestError(err):
		status, write = http.StatusBadRequest, utils.WriteBadRequest
	case services.IsNotFoundError(err):
		status, write = http.StatusNotFound, utils.WriteNotFound
	case services.IsValidationError(err):
		status, write = http.StatusUnprocessableEntity, utils.WriteUnprocessableEntity
	case services.IsInternalError(err):
		logger.Error("internal server error", zap.Error(err))
		status, write = http.StatusInternalServerError, utils.WriteInternalServerError
	default:
		logger.Error("unhandled error type",
			zap.Error(err),
			zap.String("error_type", string(services.GetErrorType(err))))
		status, write = http.StatusInternalServerError, utils.WriteInternalServerError
	}

	if writeErr := write(w); writeErr != nil {
		logger.Error("failed to write error response", zap.Error(writeErr))
	}

	if details := services.GetErrorDetails(err); len(details) > 0 {
		logger.Debug("handled service error",
			zap.Int("status", status),
			zap.Any("details", details),
			zap.Error(err))
	}
}
