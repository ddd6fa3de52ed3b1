package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeNotImplemented     ErrorCode = "COMMON_016"
)

// Aliases
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeCacheError   = ErrCodeCacheError
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
)

// KCF Parser Error Codes
const (
	ErrCodeKCFFormatViolation ErrorCode = "KCF_001"
	ErrCodeKCFEmptyRecord     ErrorCode = "KCF_002"
	ErrCodeKCFBatchFailed     ErrorCode = "KCF_003"
)

// Graph Model Error Codes
const (
	ErrCodeModelConfigInvalid   ErrorCode = "GNN_001"
	ErrCodeModelStateInvalid    ErrorCode = "GNN_002"
	ErrCodeModelStateMismatch   ErrorCode = "GNN_003"
	ErrCodeUnsupportedConvKind  ErrorCode = "GNN_004"
	ErrCodeModelStateCodecError ErrorCode = "GNN_005"
)

// Infrastructure Error Codes
const (
	ErrCodeStorageError   ErrorCode = "STORE_001"
	ErrCodeObjectNotFound ErrorCode = "STORE_002"
	ErrCodeMessagingError ErrorCode = "STORE_003"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeKCFFormatViolation: http.StatusUnprocessableEntity,
	ErrCodeKCFEmptyRecord:     http.StatusBadRequest,
	ErrCodeKCFBatchFailed:     http.StatusUnprocessableEntity,

	ErrCodeModelConfigInvalid:   http.StatusBadRequest,
	ErrCodeModelStateInvalid:    http.StatusUnprocessableEntity,
	ErrCodeModelStateMismatch:   http.StatusUnprocessableEntity,
	ErrCodeUnsupportedConvKind:  http.StatusBadRequest,
	ErrCodeModelStateCodecError: http.StatusInternalServerError,

	ErrCodeStorageError:   http.StatusBadGateway,
	ErrCodeObjectNotFound: http.StatusNotFound,
	ErrCodeMessagingError: http.StatusBadGateway,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeCacheError:         "cache error",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeKCFFormatViolation: "malformed KCF record",
	ErrCodeKCFEmptyRecord:     "empty KCF record",
	ErrCodeKCFBatchFailed:     "KCF batch aborted",

	ErrCodeModelConfigInvalid:   "invalid graph model configuration",
	ErrCodeModelStateInvalid:    "invalid model state parameter",
	ErrCodeModelStateMismatch:   "model state does not match model",
	ErrCodeUnsupportedConvKind:  "unsupported graph convolution",
	ErrCodeModelStateCodecError: "failed to encode or decode model state",

	ErrCodeStorageError:   "object storage error",
	ErrCodeObjectNotFound: "object not found",
	ErrCodeMessagingError: "message broker error",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
