package auctionerrors

import (
	"errors"
	"strings"
)

// Repository-level errors
var (
	ErrAuctionNotFound  = errors.New("auction not found")
	ErrItemNotFound     = errors.New("item not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrOpinionNotFound  = errors.New("opinion not found")
	ErrUserNotFound     = errors.New("user not found")
)

// Validation errors
var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidBid        = errors.New("invalid bid")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email is already in use")
	ErrPasswordMismatch  = errors.New("passwords do not match")
)

// Authentication and authorization errors
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("authentication required")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrOwnAuction         = errors.New("not allowed on your own auction")
)

// business logic errors
var (
	ErrBidTooLow            = errors.New("bid amount too low")
	ErrAuctionClosed        = errors.New("auction is expired or sold")
	ErrAlreadyHighestBidder = errors.New("you already hold the highest bid")
	ErrBuyNowUnavailable    = errors.New("auction has no buy-now price")
	ErrBiddingStarted       = errors.New("buy-now is disabled once bidding has started")
)

// FieldError describes one invalid input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries field-level errors. It matches ErrValidation and,
// when set, the specific cause through errors.Is.
type ValidationError struct {
	Fields []FieldError
	cause  error
}

// Invalid builds a single-field ValidationError whose message is taken from cause
func Invalid(field string, cause error) *ValidationError {
	return &ValidationError{
		Fields: []FieldError{{Field: field, Message: cause.Error()}},
		cause:  cause,
	}
}

// InvalidField builds a single-field ValidationError with a free-form message
func InvalidField(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() []error {
	if e.cause == nil {
		return []error{ErrValidation}
	}
	return []error{ErrValidation, e.cause}
}

// FieldMap flattens the field errors for JSON responses
func (e *ValidationError) FieldMap() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		out[f.Field] = f.Message
	}
	return out
}

// Add appends a field error with a free-form message
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// AddCause appends a field error taken from cause. The first cause added is
// the one errors.Is sees.
func (e *ValidationError) AddCause(field string, cause error) {
	e.Add(field, cause.Error())
	if e.cause == nil {
		e.cause = cause
	}
}

// OrNil returns e if any field is invalid and nil otherwise
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
