package handlers

import (
	"net/http"
	"strconv"
	"sync"

	apperrors "hotelier/internal/errors"
	"hotelier/internal/logger"
	"hotelier/internal/models"
	"hotelier/internal/service"
	"hotelier/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type Handlers struct {
	services *service.Services
}

func NewHandlers(services *service.Services) *Handlers {
	registerValidators()
	return &Handlers{services: services}
}

var validatorsOnce sync.Once

// registerValidators adds the domain tags used in request binding.
func registerValidators() {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("booking_status", func(fl validator.FieldLevel) bool {
			_, err := models.ParseBookingStatus(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
			_, err := models.ParsePaymentMethod(fl.Field().String())
			return err == nil
		})
	})
}

func statusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindConflict, apperrors.KindDuplicateReview, apperrors.KindUsageLimit:
		return http.StatusConflict
	case apperrors.KindInvalidTransition, apperrors.KindExpired, apperrors.KindInactive,
		apperrors.KindMinimumNotMet, apperrors.KindInsufficientPoints, apperrors.KindNotEligible:
		return http.StatusUnprocessableEntity
	case apperrors.KindUnauthorized:
		return http.StatusUnauthorized
	case apperrors.KindForbidden:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, status int, kind apperrors.Kind, message string) {
	c.JSON(status, models.ErrorBody{Error: models.ErrorDetail{Code: string(kind), Message: message}})
}

// respondError renders service errors. Anything that is not an AppError is
// logged and hidden behind a generic message.
func respondError(c *gin.Context, op string, err error) {
	appErr := apperrors.GetAppError(err)
	if appErr == nil {
		logger.WithContext(c.Request.Context()).Error("Failed to "+op, "error", err)
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, apperrors.KindInternal, "internal server error")
		return
	}
	writeError(c, statusFor(appErr.Kind), appErr.Kind, appErr.Message)
}

func badRequest(c *gin.Context, err error) {
	writeError(c, http.StatusBadRequest, apperrors.KindValidation, err.Error())
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, http.StatusBadRequest, apperrors.KindValidation, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

// currentSession is set by the Auth middleware on every protected route.
func currentSession(c *gin.Context) *session.Session {
	s, _ := session.FromContext(c.Request.Context())
	return s
}

// authorizeBooking lets owners and admins through.
func (h *Handlers) authorizeBooking(c *gin.Context, id int64) (*models.Booking, bool) {
	booking, err := h.services.Bookings.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, "get booking", err)
		return nil, false
	}
	s := currentSession(c)
	if s == nil || (booking.UserID != s.UserID && !s.IsAdmin()) {
		// Hide other users' bookings entirely.
		respondError(c, "get booking", apperrors.NotFound("booking", id))
		return nil, false
	}
	return booking, true
}
