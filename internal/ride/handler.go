// File: internal/ride/handler.go
package ride

import (
	"errors"

	"github.com/bbuckleyp/lfg-cycling-app-sub000/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler exposes the ride mutations that feed the notification subsystem:
// organizer edits, cancellation and RSVP changes. Browse/create endpoints are
// served elsewhere.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new ride handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the ride mutation routes. All routes require
// authentication.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.PATCH("/:ride_id", h.updateRide)
	router.POST("/:ride_id/cancel", h.cancelRide)
	router.PUT("/:ride_id/rsvp", h.setRSVP)
	router.DELETE("/:ride_id/rsvp", h.removeRSVP)
}

type setRSVPRequest struct {
	Status RSVPStatus `json:"status" binding:"required,oneof=going maybe not_going"`
}

func (h *Handler) updateRide(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User ID not found in token."))
		return
	}

	rideID, err := uuid.Parse(c.Param("ride_id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid ride ID format."))
		return
	}

	var req UpdateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(validationErrs)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request body."))
		return
	}

	ride, err := h.service.UpdateRide(c.Request.Context(), rideID, userID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Ride updated successfully.", ride)
}

func (h *Handler) cancelRide(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User ID not found in token."))
		return
	}

	rideID, err := uuid.Parse(c.Param("ride_id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid ride ID format."))
		return
	}

	if err := h.service.CancelRide(c.Request.Context(), rideID, userID); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Ride cancelled successfully.", nil)
}

func (h *Handler) setRSVP(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User ID not found in token."))
		return
	}

	rideID, err := uuid.Parse(c.Param("ride_id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid ride ID format."))
		return
	}

	var req setRSVPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(validationErrs)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request body."))
		return
	}

	rsvp, err := h.service.SetRSVP(c.Request.Context(), rideID, userID, req.Status)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "RSVP saved successfully.", rsvp)
}

func (h *Handler) removeRSVP(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User ID not found in token."))
		return
	}

	rideID, err := uuid.Parse(c.Param("ride_id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid ride ID format."))
		return
	}

	if err := h.service.RemoveRSVP(c.Request.Context(), rideID, userID); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "RSVP removed successfully.", nil)
}
