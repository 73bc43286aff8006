package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/prep-study/pronto/internal/constants"
)

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Err     error // underlying error for wrapping
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is and errors.As
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewPasswordPolicyError folds every violated password rule into one error so
// clients see the full list at once.
func NewPasswordPolicyError(violations []string) *DomainError {
	return NewDomainError("PASSWORD_POLICY_VIOLATION", strings.Join(violations, " "))
}

// WrapError wraps an existing error with domain error context
func WrapError(domainErr *DomainError, err error) *DomainError {
	return &DomainError{
		Code:    domainErr.Code,
		Message: domainErr.Message,
		Err:     err,
	}
}

// Predefined domain errors
var (
	// Registration errors
	ErrEmailRegistered    = NewDomainError("EMAIL_REGISTERED", constants.MsgEmailIsRegistered)
	ErrUsernameRegistered = NewDomainError("USERNAME_REGISTERED", constants.MsgUsernameIsRegistered)
	ErrNumberRegistered   = NewDomainError("NUMBER_REGISTERED", constants.MsgNumberIsRegistered)
	ErrMobileOrEmail      = NewDomainError("MOBILE_OR_EMAIL_REQUIRED", constants.MsgEitherMobileOrEmailRequired)
	ErrRoleNotFound       = NewDomainError("ROLE_NOT_FOUND", constants.MsgProvidedRoleDoesNotExist)

	// Verification errors. Invalid, expired and already-used are three
	// distinct outcomes and must stay distinguishable for clients.
	ErrCodeRequired    = NewDomainError("VERIFICATION_CODE_REQUIRED", constants.MsgVerificationCodeRequired)
	ErrCodeInvalid     = NewDomainError("INVALID_VERIFICATION_CODE", constants.MsgInvalidVerificationCode)
	ErrCodeExpired     = NewDomainError("VERIFICATION_CODE_EXPIRED", constants.MsgVerificationCodeExpired)
	ErrCodeAlreadyUsed = NewDomainError("VERIFICATION_CODE_ALREADY_USED", constants.MsgVerificationCodeAlreadyUsed)

	// Credential errors
	ErrInvalidCurrentPassword = NewDomainError("INVALID_CURRENT_PASSWORD", constants.MsgInvalidCurrentPassword)
	ErrPasswordMismatch       = NewDomainError("PASSWORD_MISMATCH", constants.MsgBothPasswordMustSame)
	ErrPasswordSameAsCurrent  = NewDomainError("PASSWORD_SAME_AS_CURRENT", constants.MsgNewPasswordSameAsCurrentPassword)
	ErrIncorrectEmail         = NewDomainError("INCORRECT_EMAIL", constants.MsgIncorrectEmail)

	// Login errors
	ErrInvalidCredentials  = NewDomainError("INVALID_CREDENTIALS", constants.MsgInvalidCredentials)
	ErrInvalidAuthCode     = NewDomainError("INVALID_AUTH_CODE", constants.MsgInvalidAuthCode)
	ErrInactivatedAccount  = NewDomainError("INACTIVATED_ACCOUNT", constants.MsgInactivatedAccount)
	ErrLoginFieldsRequired = NewDomainError("LOGIN_FIELDS_REQUIRED", constants.MsgEitherUsernamePasswordOrCode)

	// Email change errors
	ErrEmailChangeNotCreated = NewDomainError("EMAIL_CHANGE_NOT_CREATED", constants.MsgUnableToCreateEmailChange)
	ErrCodeParamRequired     = NewDomainError("VERIFICATION_CODE_PARAM_REQUIRED", constants.MsgExpectedVerificationCodeParam)
	ErrInvalidOrExpiredCode  = NewDomainError("INVALID_OR_EXPIRED_VERIFICATION_CODE", constants.MsgInvalidOrExpiredVerification)

	// User errors
	ErrUserNotFound      = NewDomainError("USER_NOT_FOUND", constants.MsgUserNotFound)
	ErrUserNotFoundEmail = NewDomainError("USER_NOT_FOUND_WITH_MAIL", constants.MsgUserNotFoundWithGivenMailID)

	// Location errors
	ErrCountryNotFound           = NewDomainError("COUNTRY_NOT_FOUND", constants.MsgCountryDoesNotExist)
	ErrStateNotFound             = NewDomainError("STATE_NOT_FOUND", constants.MsgStateDoesNotExist)
	ErrCityNotFound              = NewDomainError("CITY_NOT_FOUND", constants.MsgCityDoesNotExist)
	ErrLocationHierarchyMismatch = NewDomainError("LOCATION_HIERARCHY_MISMATCH", constants.MsgLocationHierarchyMismatch)

	// Resource errors
	ErrResourceNotFound = NewDomainError("RESOURCE_NOT_FOUND", "No resource found.")

	// Authentication errors
	ErrTokenExpired        = NewDomainError("TOKEN_EXPIRED", "token has expired")
	ErrInvalidRefreshToken = NewDomainError("INVALID_REFRESH_TOKEN", "invalid refresh token")

	// Validation errors
	ErrInvalidInput = NewDomainError("INVALID_INPUT", "invalid input")

	// System errors
	ErrInternal = NewDomainError("INTERNAL_ERROR", "internal server error")
)

// GetDomainError extracts the domain error from an error
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// ToHTTPStatus maps domain errors to HTTP status codes
// This should only be used in the handler/presentation layer
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	// Check if it's a domain error
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErrorToHTTPStatus(domainErr)
	}

	// Default to internal server error for unknown errors
	return http.StatusInternalServerError
}

// domainErrorToHTTPStatus maps specific domain errors to HTTP status codes
func domainErrorToHTTPStatus(err *DomainError) int {
	switch err.Code {
	// 400 Bad Request
	case "INVALID_INPUT", "PASSWORD_MISMATCH", "PASSWORD_SAME_AS_CURRENT",
		"PASSWORD_POLICY_VIOLATION",
		"VERIFICATION_CODE_REQUIRED", "INVALID_VERIFICATION_CODE",
		"VERIFICATION_CODE_EXPIRED", "VERIFICATION_CODE_ALREADY_USED",
		"MOBILE_OR_EMAIL_REQUIRED", "LOGIN_FIELDS_REQUIRED",
		"INCORRECT_EMAIL", "EMAIL_CHANGE_NOT_CREATED",
		"VERIFICATION_CODE_PARAM_REQUIRED", "INVALID_OR_EXPIRED_VERIFICATION_CODE",
		"LOCATION_HIERARCHY_MISMATCH", "ROLE_NOT_FOUND":
		return http.StatusBadRequest

	// 401 Unauthorized
	case "INVALID_CREDENTIALS", "INVALID_AUTH_CODE",
		"TOKEN_EXPIRED", "INVALID_REFRESH_TOKEN",
		"INVALID_CURRENT_PASSWORD":
		return http.StatusUnauthorized

	// 403 Forbidden
	case "INACTIVATED_ACCOUNT":
		return http.StatusForbidden

	// 404 Not Found
	case "USER_NOT_FOUND", "USER_NOT_FOUND_WITH_MAIL", "RESOURCE_NOT_FOUND",
		"COUNTRY_NOT_FOUND", "STATE_NOT_FOUND", "CITY_NOT_FOUND":
		return http.StatusNotFound

	// 409 Conflict
	case "EMAIL_REGISTERED", "USERNAME_REGISTERED", "NUMBER_REGISTERED":
		return http.StatusConflict

	// 500 Internal Server Error (default)
	default:
		return http.StatusInternalServerError
	}
}

// GetErrorMessage safely extracts error message
func GetErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}

	return err.Error()
}
