package http

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"beauty-api/internal/service"
	"beauty-api/internal/storage"
)

// statusFor traduce errores de servicio a códigos HTTP.
func statusFor(err error) int {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrOAuthInvalid),
		errors.Is(err, service.ErrUnsupportedAuthFlow),
		errors.Is(err, service.ErrInvalidImage),
		errors.Is(err, service.ErrInvalidPeriod),
		errors.Is(err, service.ErrUnsupportedLanguage),
		errors.Is(err, service.ErrInvalidConsent),
		errors.Is(err, service.ErrMissingVisitor),
		errors.Is(err, service.ErrNonFiniteScore):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrIdentityTokenInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrProfileNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrEmailInUse):
		return http.StatusConflict
	case errors.Is(err, service.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, service.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, service.ErrContactDisabled),
		errors.Is(err, service.ErrFederatedDisabled),
		errors.Is(err, storage.ErrStorageDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError responde con el mensaje del error tal cual, salvo en fallas internas.
func respondError(c *gin.Context, logger *zap.Logger, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(op+" failed", zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}

	body := gin.H{"error": err.Error()}
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		body["fields"] = verr.Fields
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, logger *zap.Logger, op string, err error) {
	logger.Warn("invalid "+op+" request", zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
}

// imageBodyLimit acota un cuerpo JSON que trae una imagen como data URI en base64.
func imageBodyLimit(maxImageBytes int64) int64 {
	return int64(base64.StdEncoding.EncodedLen(int(maxImageBytes))) + 64<<10
}

// bindImageJSON lee el cuerpo con límite; exceder el límite es ErrImageTooLarge.
func bindImageJSON(c *gin.Context, maxImageBytes int64, obj any) error {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, imageBodyLimit(maxImageBytes))
	err := c.ShouldBindJSON(obj)
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return service.ErrImageTooLarge
	}
	return err
}

func bindFailed(c *gin.Context, logger *zap.Logger, op string, err error) {
	if errors.Is(err, service.ErrImageTooLarge) {
		respondError(c, logger, op, err)
		return
	}
	badRequest(c, logger, op, err)
}
