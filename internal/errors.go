package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeState        ErrorType = "STATE_ERROR"
	ErrorTypeStorage      ErrorType = "STORAGE_ERROR"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidCategory  ErrorCode = "INVALID_CATEGORY"
	ErrCodeInvalidStatus    ErrorCode = "INVALID_STATUS"
	ErrCodeInvalidDate      ErrorCode = "INVALID_DATE"
	ErrCodeInvalidCondition ErrorCode = "INVALID_CONDITION"
	ErrCodeInvalidPriority  ErrorCode = "INVALID_PRIORITY"
	ErrCodeInvalidFrequency ErrorCode = "INVALID_FREQUENCY"

	ErrCodeAssetNotFound       ErrorCode = "ASSET_NOT_FOUND"
	ErrCodeAssetNotAvailable   ErrorCode = "ASSET_NOT_AVAILABLE"
	ErrCodeAssetAssigned       ErrorCode = "ASSET_ASSIGNED"
	ErrCodeAssigneeRequired    ErrorCode = "ASSIGNEE_REQUIRED"
	ErrCodeAssigneeNotAllowed  ErrorCode = "ASSIGNEE_NOT_ALLOWED"
	ErrCodeStatusChangeBlocked ErrorCode = "STATUS_CHANGE_BLOCKED"

	ErrCodeAllocationNotFound ErrorCode = "ALLOCATION_NOT_FOUND"
	ErrCodeAlreadyReturned    ErrorCode = "ALLOCATION_ALREADY_RETURNED"

	ErrCodeTransferNotFound ErrorCode = "TRANSFER_NOT_FOUND"
	ErrCodeTransferTerminal ErrorCode = "TRANSFER_TERMINAL"
	ErrCodeNotAnApprover    ErrorCode = "NOT_AN_APPROVER"
	ErrCodeAlreadyApproved  ErrorCode = "ALREADY_APPROVED"
	ErrCodeSameHolder       ErrorCode = "RECIPIENT_IS_HOLDER"

	ErrCodeScheduleNotFound ErrorCode = "SCHEDULE_NOT_FOUND"
	ErrCodeScheduleNotDue   ErrorCode = "SCHEDULE_NOT_DUE"

	ErrCodeTicketNotFound   ErrorCode = "TICKET_NOT_FOUND"
	ErrCodeTicketNotOpen    ErrorCode = "TICKET_NOT_OPEN"
	ErrCodeNotTicketCreator ErrorCode = "NOT_TICKET_CREATOR"

	ErrCodeEmployeeNotFound ErrorCode = "EMPLOYEE_NOT_FOUND"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {

			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewAuthorizationError reports that the acting employee may not perform the
// requested transition. Never retried.
func NewAuthorizationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

// NewConflictError reports a violated status precondition, e.g. allocating an
// asset that is not available. Caller may refetch state and retry.
func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewStateError reports an operation that is invalid in the entity's current
// lifecycle state, e.g. cancelling a ticket that is no longer open.
func NewStateError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeState,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

// NewStorageError wraps an unexpected data store failure.
func NewStorageError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeStorage,
		Code:       "STORAGE_FAILED",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrAssetNotFound      = NewNotFoundError("Asset not found", ErrCodeAssetNotFound)
	ErrAssetNotAvailable  = NewConflictError("asset is not available for allocation", ErrCodeAssetNotAvailable)
	ErrAssetStillAssigned = NewConflictError("asset is still assigned to an employee", ErrCodeAssetAssigned)
	ErrAssigneeRequired   = NewValidationError("assignee is required when status is assigned", ErrCodeAssigneeRequired)
	ErrAssigneeNotAllowed = NewValidationError("assignee must be empty unless status is assigned", ErrCodeAssigneeNotAllowed)

	ErrAllocationNotFound = NewNotFoundError("Allocation not found", ErrCodeAllocationNotFound)
	ErrAlreadyReturned    = NewStateError("allocation has already been returned", ErrCodeAlreadyReturned)

	ErrTransferNotFound = NewNotFoundError("Transfer not found", ErrCodeTransferNotFound)
	ErrTransferTerminal = NewStateError("transfer is already completed or rejected", ErrCodeTransferTerminal)
	ErrNotAnApprover    = NewAuthorizationError("employee is not a party to this transfer", ErrCodeNotAnApprover)
	ErrAlreadyApproved  = NewStateError("approval already recorded for this side", ErrCodeAlreadyApproved)
	ErrSameHolder       = NewValidationError("recipient already holds this asset", ErrCodeSameHolder)

	ErrScheduleNotFound = NewNotFoundError("Maintenance schedule not found", ErrCodeScheduleNotFound)
	ErrScheduleNotDue   = NewStateError("schedule is not past due so cannot be marked overdue", ErrCodeScheduleNotDue)

	ErrTicketNotFound   = NewNotFoundError("Ticket not found", ErrCodeTicketNotFound)
	ErrTicketNotOpen    = NewStateError("only open tickets can be cancelled", ErrCodeTicketNotOpen)
	ErrNotTicketCreator = NewAuthorizationError("only the ticket creator can cancel it", ErrCodeNotTicketCreator)

	ErrEmployeeNotFound = NewNotFoundError("Employee not found", ErrCodeEmployeeNotFound)

	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrUserInactive       = NewAuthorizationError("User account is inactive", ErrCodeUserInactive)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
