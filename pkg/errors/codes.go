package errors

import "net/http"

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes shared by every module.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
)

// Portfolio module error codes.
const (
	ErrCodeCompanyNotFound      ErrorCode = "PORT_001"
	ErrCodeInvalidRiskGrade     ErrorCode = "PORT_002"
	ErrCodeInvalidFilter        ErrorCode = "PORT_003"
	ErrCodeEmptyPortfolio       ErrorCode = "PORT_004"
	ErrCodeAnalyticsFailed      ErrorCode = "PORT_005"
	ErrCodeReportBuildFailed    ErrorCode = "PORT_006"
	ErrCodeReportNotFound       ErrorCode = "PORT_007"
	ErrCodeInvalidStatusChange  ErrorCode = "PORT_008"
	ErrCodeOrganizationRequired ErrorCode = "PORT_009"
)

// Document / ingestion module error codes.
const (
	ErrCodeDocumentNotFound     ErrorCode = "DOC_001"
	ErrCodeDocumentUploadFailed ErrorCode = "DOC_002"
	ErrCodeDocumentTooLarge     ErrorCode = "DOC_003"
	ErrCodeUnsupportedFormat    ErrorCode = "DOC_004"
	ErrCodeProcessingFailed     ErrorCode = "DOC_005"
	ErrCodeRetryExhausted       ErrorCode = "DOC_006"
)

// httpStatusByCode maps error codes to HTTP status codes for the API layer.
var httpStatusByCode = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,

	ErrCodeCompanyNotFound:      http.StatusNotFound,
	ErrCodeInvalidRiskGrade:     http.StatusBadRequest,
	ErrCodeInvalidFilter:        http.StatusBadRequest,
	ErrCodeEmptyPortfolio:       http.StatusUnprocessableEntity,
	ErrCodeAnalyticsFailed:      http.StatusInternalServerError,
	ErrCodeReportBuildFailed:    http.StatusInternalServerError,
	ErrCodeReportNotFound:       http.StatusNotFound,
	ErrCodeInvalidStatusChange:  http.StatusConflict,
	ErrCodeOrganizationRequired: http.StatusBadRequest,

	ErrCodeDocumentNotFound:     http.StatusNotFound,
	ErrCodeDocumentUploadFailed: http.StatusBadGateway,
	ErrCodeDocumentTooLarge:     http.StatusRequestEntityTooLarge,
	ErrCodeUnsupportedFormat:    http.StatusUnsupportedMediaType,
	ErrCodeProcessingFailed:     http.StatusInternalServerError,
	ErrCodeRetryExhausted:       http.StatusConflict,
}

// HTTPStatus returns the HTTP status code associated with c. Unknown codes
// map to 500.
func (c ErrorCode) HTTPStatus() int {
	if s, ok := httpStatusByCode[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}
