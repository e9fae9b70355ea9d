package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/teamspace/internal/auth/domain"
	"github.com/smallbiznis/teamspace/internal/authorization"
	invitationdomain "github.com/smallbiznis/teamspace/internal/invitation/domain"
	joinrequestdomain "github.com/smallbiznis/teamspace/internal/joinrequest/domain"
	notificationdomain "github.com/smallbiznis/teamspace/internal/notification/domain"
	organizationdomain "github.com/smallbiznis/teamspace/internal/organization/domain"
	outlinedomain "github.com/smallbiznis/teamspace/internal/outline/domain"
	signupdomain "github.com/smallbiznis/teamspace/internal/signup/domain"
	verificationdomain "github.com/smallbiznis/teamspace/internal/verification/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrRateLimited    = errors.New("rate_limited")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidSession),
		errors.Is(err, authdomain.ErrSessionExpired),
		errors.Is(err, authdomain.ErrSessionRevoked),
		errors.Is(err, authdomain.ErrSessionNotFound):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case isForbiddenError(err):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, authdomain.ErrUserExists):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case errors.Is(err, ErrInternal):
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, signupdomain.ErrInvalidRequest):
		return true
	case isOrganizationValidationError(err),
		isInvitationValidationError(err),
		isJoinRequestValidationError(err),
		isVerificationValidationError(err),
		isOutlineValidationError(err):
		return true
	default:
		return false
	}
}

func isOrganizationValidationError(err error) bool {
	switch {
	case errors.Is(err, organizationdomain.ErrInvalidName),
		errors.Is(err, organizationdomain.ErrInvalidUser),
		errors.Is(err, organizationdomain.ErrDuplicateName),
		errors.Is(err, organizationdomain.ErrSlugExhausted),
		errors.Is(err, organizationdomain.ErrAlreadyMember),
		errors.Is(err, organizationdomain.ErrCannotRemoveOwner):
		return true
	default:
		return false
	}
}

func isInvitationValidationError(err error) bool {
	switch {
	case errors.Is(err, invitationdomain.ErrInvalidEmail),
		errors.Is(err, invitationdomain.ErrInvalidRole),
		errors.Is(err, invitationdomain.ErrPendingExists),
		errors.Is(err, invitationdomain.ErrExpired),
		errors.Is(err, invitationdomain.ErrNotPending):
		return true
	default:
		return false
	}
}

func isJoinRequestValidationError(err error) bool {
	switch {
	case errors.Is(err, joinrequestdomain.ErrInvalidAction),
		errors.Is(err, joinrequestdomain.ErrNotJoinRequest),
		errors.Is(err, joinrequestdomain.ErrAlreadyResolved),
		errors.Is(err, joinrequestdomain.ErrRequestExpired):
		return true
	default:
		return false
	}
}

func isVerificationValidationError(err error) bool {
	switch {
	case errors.Is(err, verificationdomain.ErrInvalidToken),
		errors.Is(err, verificationdomain.ErrTokenExpired):
		return true
	default:
		return false
	}
}

func isOutlineValidationError(err error) bool {
	switch {
	case errors.Is(err, outlinedomain.ErrInvalidHeader),
		errors.Is(err, outlinedomain.ErrInvalidSection),
		errors.Is(err, outlinedomain.ErrInvalidStatus),
		errors.Is(err, outlinedomain.ErrInvalidReviewer):
		return true
	default:
		return false
	}
}

func isForbiddenError(err error) bool {
	switch {
	case errors.Is(err, ErrForbidden),
		errors.Is(err, organizationdomain.ErrForbidden),
		errors.Is(err, invitationdomain.ErrForbidden),
		errors.Is(err, joinrequestdomain.ErrForbidden),
		errors.Is(err, authorization.ErrForbidden):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, organizationdomain.ErrNotFound),
		errors.Is(err, organizationdomain.ErrMemberNotFound),
		errors.Is(err, invitationdomain.ErrNotFound),
		errors.Is(err, notificationdomain.ErrNotFound),
		errors.Is(err, outlinedomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, signupdomain.ErrInvalidRequest):
		return "invalid_request"
	default:
		return err.Error()
	}
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}
