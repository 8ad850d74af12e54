package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCarriesCodeAndStack(t *testing.T) {
	err := New(ErrCodeCompanyNotFound, "company not found")
	assert.Equal(t, ErrCodeCompanyNotFound, err.Code)
	assert.Equal(t, "[PORT_001] company not found", err.Error())
	assert.NotEmpty(t, err.Stack)
}

func TestErrorFormatWithDetail(t *testing.T) {
	err := NotFound("company not found").WithDetail("id=abc123")
	assert.Equal(t, "[COMMON_005] company not found: id=abc123", err.Error())
}

func TestWithDetailReturnsClone(t *testing.T) {
	base := NewValidation("bad filter")
	detailed := base.WithDetail("risk_grades contains CM9")
	assert.Empty(t, base.Detail)
	assert.Equal(t, "risk_grades contains CM9", detailed.Detail)

	var nilErr *AppError
	assert.Nil(t, nilErr.WithDetail("x"))
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeDatabaseError, "query failed"))
}

func TestWrapPreservesCodeWhenEmpty(t *testing.T) {
	inner := New(ErrCodeDocumentNotFound, "missing")
	wrapped := Wrap(inner, "", "load failed")
	assert.Equal(t, ErrCodeDocumentNotFound, wrapped.Code)

	plain := Wrap(errors.New("boom"), "", "load failed")
	assert.Equal(t, ErrCodeInternal, plain.Code)
}

func TestUnwrapChain(t *testing.T) {
	root := errors.New("connection refused")
	mid := Wrap(root, ErrCodeDatabaseError, "query failed")
	outer := fmt.Errorf("list companies: %w", mid)

	require.True(t, errors.Is(outer, root))
	var ae *AppError
	require.True(t, errors.As(outer, &ae))
	assert.Equal(t, ErrCodeDatabaseError, ae.Code)
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("ctx: %w", Wrap(New(ErrCodeInvalidFilter, "bad range"), ErrCodeAnalyticsFailed, "aggregate"))
	assert.True(t, IsCode(err, ErrCodeAnalyticsFailed))
	assert.True(t, IsCode(err, ErrCodeInvalidFilter))
	assert.False(t, IsCode(err, ErrCodeCacheError))
	assert.False(t, IsCode(nil, ErrCodeInternal))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("x")))
	assert.True(t, IsNotFound(New(ErrCodeCompanyNotFound, "x")))
	assert.True(t, IsNotFound(New(ErrCodeDocumentNotFound, "x")))
	assert.True(t, IsNotFound(New(ErrCodeReportNotFound, "x")))
	assert.False(t, IsNotFound(Internal("x")))
	assert.False(t, IsNotFound(errors.New("plain")))
	assert.False(t, IsNotFound(nil))
}

func TestIsValidation(t *testing.T) {
	assert.True(t, IsValidation(NewValidation("x")))
	assert.True(t, IsValidation(New(ErrCodeInvalidRiskGrade, "CM9")))
	assert.True(t, IsValidation(New(ErrCodeOrganizationRequired, "x")))
	assert.False(t, IsValidation(Conflict("x")))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrorCode(""), GetCode(nil))
	assert.Equal(t, ErrCodeInternal, GetCode(errors.New("plain")))
	assert.Equal(t, ErrCodeCacheError, GetCode(New(ErrCodeCacheError, "x")))
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeCompanyNotFound, http.StatusNotFound},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeInvalidStatusChange, http.StatusConflict},
		{ErrCodeDocumentTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeUnsupportedFormat, http.StatusUnsupportedMediaType},
		{ErrorCode("NOPE_999"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.code.HTTPStatus(), string(tt.code))
	}
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("plain")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFound("x")))
}
