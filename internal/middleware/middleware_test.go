package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"dndinfo/internal/pkg/logger"
)

func TestCORS(t *testing.T) {
	router := gin.New()
	router.Use(CORS([]string{"https://dnd.example"}))
	router.GET("/protected", whoAmI)

	request := func(method, origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/protected", nil)
		req.Header.Set("Origin", origin)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := request(http.MethodGet, "https://dnd.example")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://dnd.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = request(http.MethodGet, "http://localhost:5173")
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	w = request(http.MethodGet, "https://evil.example")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = request(http.MethodOptions, "https://dnd.example")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRequireRole_WithoutIdentity(t *testing.T) {
	router := gin.New()
	router.Use(AdminOnly())
	router.GET("/protected", whoAmI)

	w := serve(router, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
}

func TestErrorLogger_RecoversPanics(t *testing.T) {
	router := gin.New()
	router.Use(RequestID(), ErrorLogger(logger.Nop()), Metrics())
	router.GET("/protected", func(c *gin.Context) {
		panic("boom")
	})

	w := serve(router, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"error":{"code":"INTERNAL_ERROR","message":"Internal server error"}}`, w.Body.String())
}
