package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"auction-house/internal/auctionerrors"
	"auction-house/internal/auth"
	model "auction-house/internal/models"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const claimsKey = "auth.claims"

func init() {
	// report json field names in validation errors
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fieldMessage(fe)
		}
		utils.JSONFieldErrors(c, http.StatusBadRequest, wrappedErr, "invalid request payload", fields)
	} else {
		utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	}
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "gt":
		return "must be greater than " + fe.Param()
	case "min", "max", "len":
		return fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param())
	case "datetime":
		return "expected a date formatted as " + fe.Param()
	default:
		return "invalid value"
	}
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrValidation):
		return http.StatusBadRequest, "validation failed"
	case errors.Is(err, auctionerrors.ErrInvalidBid):
		return http.StatusBadRequest, "invalid bid details"
	case errors.Is(err, auctionerrors.ErrUnauthorized):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, auctionerrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid username or password"
	case errors.Is(err, auctionerrors.ErrPermissionDenied):
		return http.StatusForbidden, "permission denied"
	case errors.Is(err, auctionerrors.ErrOwnAuction):
		return http.StatusForbidden, "not allowed on your own auction"
	case errors.Is(err, auctionerrors.ErrAuctionNotFound):
		return http.StatusNotFound, "auction not found"
	case errors.Is(err, auctionerrors.ErrItemNotFound):
		return http.StatusNotFound, "item not found"
	case errors.Is(err, auctionerrors.ErrCategoryNotFound):
		return http.StatusNotFound, "category not found"
	case errors.Is(err, auctionerrors.ErrOpinionNotFound):
		return http.StatusNotFound, "opinion not found"
	case errors.Is(err, auctionerrors.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, auctionerrors.ErrBuyNowUnavailable):
		return http.StatusNotFound, "auction has no buy-now price"
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		return http.StatusConflict, "bid amount too low"
	case errors.Is(err, auctionerrors.ErrAuctionClosed):
		return http.StatusConflict, "auction is closed"
	case errors.Is(err, auctionerrors.ErrAlreadyHighestBidder):
		return http.StatusConflict, "you already hold the highest bid"
	case errors.Is(err, auctionerrors.ErrBiddingStarted):
		return http.StatusConflict, "bidding has already started"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// RespondError maps err to a JSON error response and logs it. Validation
// errors carry their per-field messages.
func RespondError(c *gin.Context, handlerName string, err error, logFields map[string]any) {
	status, message := MapErrorToHTTP(err)

	var verr *auctionerrors.ValidationError
	if errors.As(err, &verr) {
		utils.JSONFieldErrors(c, status, fmt.Errorf("%s: %w", message, err), message, verr.FieldMap())
	} else {
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
	}

	if logFields == nil {
		logFields = map[string]any{}
	}
	logFields["handler"] = handlerName
	logFields["status"] = status
	logFields["error"] = err.Error()
	if status >= http.StatusInternalServerError {
		utils.Error(handlerName+": request failed", logFields)
	} else {
		utils.Warn(handlerName+": request rejected", logFields)
	}
}

// ParsePage reads the page and page_size query parameters
func ParsePage(c *gin.Context) (model.Page, error) {
	number, err := queryInt(c, "page", 1)
	if err != nil {
		return model.Page{}, err
	}
	size, err := queryInt(c, "page_size", model.DefaultPageSize)
	if err != nil {
		return model.Page{}, err
	}
	return model.NewPage(number, size), nil
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, auctionerrors.InvalidField(key, "must be an integer")
	}
	return n, nil
}

// PathID returns the path parameter key as a canonical identifier
func PathID(c *gin.Context, key string) string {
	return utils.CanonicalID(c.Param(key))
}

// SetClaims stores the authenticated caller on the request context
func SetClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(claimsKey, claims)
}

// Claims returns the authenticated caller, or nil
func Claims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

// CallerID returns the id of the authenticated caller, or ""
func CallerID(c *gin.Context) string {
	if claims := Claims(c); claims != nil {
		return claims.UserID
	}
	return ""
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
