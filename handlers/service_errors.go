package handlers

import (
	"net/http"

	"github.com/plenario/gestion-api/services"
	"github.com/plenario/gestion-api/utils"
	"go.uber.org/zap"
)

// respondServiceError maps a domain error to an HTTP response. Underlying
// driver errors are logged, never sent to the client.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, requestID string, err error) {
	errType := services.GetErrorType(err)

	switch errType {
	case services.ErrorTypeMissingCredential:
		_ = utils.WriteUnauthorized(w, utils.CodeMissingCredential, "missing or malformed credential")
	case services.ErrorTypeInvalidCredential:
		_ = utils.WriteUnauthorized(w, utils.CodeInvalidCredential, "invalid credentials")
	case services.ErrorTypeTenantNotDefined:
		_ = utils.WriteForbidden(w, utils.CodeTenantNotDefined, "no company associated with the authenticated user")
	case services.ErrorTypeValidation:
		_ = utils.WriteBadRequest(w, err.Error(), nil)
	case services.ErrorTypeNotFound:
		_ = utils.WriteNotFound(w, err.Error())
	case services.ErrorTypeConflict:
		_ = utils.WriteConflict(w, err.Error())
	default:
		logger.Error("unhandled service error",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "internal server error")
	}
}
