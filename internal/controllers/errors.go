package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hrcastell/Dulce-Maria-Reposteria/internal/models"
	"github.com/hrcastell/Dulce-Maria-Reposteria/internal/services"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// respondError translates service errors into HTTP responses with the
// standard APIError body. Unknown errors are logged and returned as 500
// without leaking internals.
func respondError(ctx *gin.Context, err error) {
	var (
		validationErr *services.ValidationError
		notFoundErr   *services.NotFoundError
		ownershipErr  *services.OwnershipMismatchError
		inactiveErr   *services.InactiveEntityError
		stockErr      *services.InsufficientStockError
		conflictErr   *services.ConflictError
	)

	switch {
	case errors.As(err, &validationErr):
		ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, validationErr.Message))
	case errors.As(err, &notFoundErr):
		ctx.JSON(http.StatusNotFound, models.NewAPIError(models.ErrNotFound, notFoundErr.Error()))
	case errors.As(err, &ownershipErr):
		ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrOwnershipMismatch, ownershipErr.Error()))
	case errors.As(err, &inactiveErr):
		ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrInactiveEntity, inactiveErr.Error()))
	case errors.As(err, &stockErr):
		ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrInsufficientStock, stockErr.Error(), map[string]interface{}{
			"item":      stockErr.Name,
			"requested": stockErr.Requested,
			"available": stockErr.Available,
		}))
	case errors.As(err, &conflictErr):
		code := models.ErrConflict
		if conflictErr.Code != "" {
			code = conflictErr.Code
		}
		ctx.JSON(http.StatusConflict, models.NewAPIError(code, conflictErr.Message))
	default:
		log.WithError(err).Error("Unhandled error in request")
		ctx.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Internal server error"))
	}
}

// respondBindError reports a malformed or incomplete request body.
func respondBindError(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid request body", map[string]interface{}{
		"reason": err.Error(),
	}))
}
