package dto

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	cases := map[string]int{
		ErrCodeValidation:          http.StatusBadRequest,
		ErrCodeTokenExpired:        http.StatusUnauthorized,
		ErrCodeInvalidCredentials:  http.StatusUnauthorized,
		ErrCodeAccountDeactivated:  http.StatusForbidden,
		ErrCodeNotFound:            http.StatusNotFound,
		ErrCodeConcurrencyConflict: http.StatusConflict,
		ErrCodeDuplicateRequest:    http.StatusConflict,
		ErrCodeSaleCapExceeded:     http.StatusUnprocessableEntity,
		ErrCodeInsufficientStock:   http.StatusUnprocessableEntity,
		ErrCodeRateLimited:         http.StatusTooManyRequests,
		ErrCodeInternal:            http.StatusInternalServerError,
		"ERR_SOMETHING_NEW":        http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, GetHTTPStatus(code), code)
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	cases := map[string]string{
		"NOT_FOUND":              ErrCodeNotFound,
		"PERSISTENCE_ERROR":      ErrCodeInternal,
		"SALE_CAP_EXCEEDED":      ErrCodeSaleCapExceeded,
		"INVALID_STATE":          ErrCodeInvalidState,
		"INVALID_CREDENTIALS":    ErrCodeInvalidCredentials,
		"INVALID_QUANTITY":       ErrCodeValidation,
		"INVALID_DISCOUNT":       ErrCodeValidation,
		"INVALID_PAYMENT_METHOD": ErrCodeValidation,
		"EMPTY_SALE":             ErrCodeValidation,
		ErrCodeNotFound:          ErrCodeNotFound,
		"SOMETHING_ELSE":         "SOMETHING_ELSE",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeErrorCode(in), in)
	}
}

func TestErrorCodes_AllHaveStatus(t *testing.T) {
	for domainCode, apiCode := range DomainErrorCodeMapping {
		_, ok := ErrorCodeHTTPStatus[apiCode]
		assert.True(t, ok, "%s maps to %s which has no HTTP status", domainCode, apiCode)
	}
	for code := range ErrorCodeHTTPStatus {
		assert.True(t, strings.HasPrefix(code, "ERR_"), code)
	}
}

func TestNewErrorResponse_KeepsDomainCodeAsReason(t *testing.T) {
	before := time.Now()
	resp := NewErrorResponse("INVALID_QUANTITY", "quantity must be positive")

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "INVALID_QUANTITY", resp.Error.Reason)
	assert.False(t, resp.Error.Timestamp.Before(before))

	resp = NewErrorResponse(ErrCodeNotFound, "sale not found")
	assert.Empty(t, resp.Error.Reason)
}

func TestNewValidationErrorResponse(t *testing.T) {
	resp := NewValidationErrorResponse("invalid sale", "req-9", []ValidationDetail{
		{Field: "items[0].quantity", Message: "must be at least 1"},
		{Field: "payments[0].method", Message: "must be one of CASH CARD PIX"},
	})

	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-9", resp.Error.RequestID)
	require.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "items[0].quantity", resp.Error.Details[0].Field)
}

func TestNewErrorResponseWithHelp(t *testing.T) {
	resp := NewErrorResponseWithHelp(ErrCodeUnauthorized, "sign in first", "req-1", "POST /api/v1/auth/login")
	assert.Equal(t, ErrCodeUnauthorized, resp.Error.Code)
	assert.Equal(t, "POST /api/v1/auth/login", resp.Error.Help)
}

func TestErrorResponse_JSONShape(t *testing.T) {
	data, err := json.Marshal(NewErrorResponseWithRequestID("SALE_CAP_EXCEEDED", "sale above cap", "req-7"))
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, false, body["success"])
	assert.NotContains(t, body, "data")

	errBody := body["error"].(map[string]any)
	assert.Equal(t, ErrCodeSaleCapExceeded, errBody["code"])
	assert.Equal(t, "SALE_CAP_EXCEEDED", errBody["reason"])
	assert.Equal(t, "req-7", errBody["request_id"])
	assert.NotContains(t, errBody, "details")
}

func TestNewSuccessResponse(t *testing.T) {
	resp := NewSuccessResponse(map[string]string{"status": "COMPLETED"})
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
	assert.Nil(t, resp.Meta)
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	cases := []struct {
		total               int64
		pageSize            int
		wantPages, wantSize int
	}{
		{100, 10, 10, 10},
		{101, 10, 11, 10},
		{0, 10, 0, 10},
		{9, 10, 1, 10},
		{100, 0, 5, 20},
		{100, -1, 5, 20},
	}
	for _, tc := range cases {
		resp := NewSuccessResponseWithMeta(nil, tc.total, 1, tc.pageSize)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, tc.wantPages, resp.Meta.TotalPages, "total=%d size=%d", tc.total, tc.pageSize)
		assert.Equal(t, tc.wantSize, resp.Meta.PageSize)
		assert.Equal(t, tc.total, resp.Meta.Total)
	}
}
