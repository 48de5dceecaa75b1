package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bindRequest struct {
	Title    string  `json:"title" binding:"required"`
	Severity float64 `json:"severity" binding:"gte=0,lte=10"`
}

func bind(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var req bindRequest
	err := c.ShouldBindJSON(&req)
	require.Error(t, err)
	BindingError(c, err)
	return w
}

func TestBindingError_ValidationDetails(t *testing.T) {
	w := bind(t, `{"severity": 11}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Code    string       `json:"code"`
		Details []FieldError `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, ErrCodeInvalidInput, resp.Code)
	require.Len(t, resp.Details, 2)
	assert.Equal(t, "is required", resp.Details[0].Message)
	assert.Equal(t, "must be less than or equal to 10", resp.Details[1].Message)
}

func TestBindingError_TypeMismatch(t *testing.T) {
	w := bind(t, `{"title": "x", "severity": "high"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"severity"`)
}

func TestBindingError_Malformed(t *testing.T) {
	w := bind(t, `{`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request body")
}

func TestHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name   string
		send   func(c *gin.Context)
		status int
		code   string
	}{
		{"unauthorized", func(c *gin.Context) { Unauthorized(c, "") }, http.StatusUnauthorized, ErrCodeUnauthorized},
		{"invalid credentials", func(c *gin.Context) { InvalidCredentials(c, "") }, http.StatusUnauthorized, ErrCodeInvalidCredentials},
		{"not found", func(c *gin.Context) { NotFound(c, "Task not found") }, http.StatusNotFound, ErrCodeNotFound},
		{"conflict", func(c *gin.Context) { Conflict(c, "") }, http.StatusConflict, ErrCodeConflict},
		{"unavailable", func(c *gin.Context) { ServiceUnavailable(c, "") }, http.StatusServiceUnavailable, ErrCodeServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			tt.send(c)

			var resp APIError
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, resp.Code)
			assert.NotEmpty(t, resp.Message)
		})
	}
}
