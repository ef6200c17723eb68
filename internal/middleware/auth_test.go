package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"dndinfo/internal/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func whoAmI(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"user_id": c.GetInt64("user_id"),
		"role":    c.GetString("role"),
	})
}

func serve(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestJWTAuth_ValidToken(t *testing.T) {
	jwtService := jwt.New("test-secret-123", time.Hour)
	validToken, _ := jwtService.GenerateToken(42, "user")

	router := gin.New()
	router.Use(JWTAuth(jwtService))
	router.GET("/protected", whoAmI)

	w := serve(router, "Bearer "+validToken)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "42")
	assert.Contains(t, w.Body.String(), "user")
}

func TestJWTAuth_Rejections(t *testing.T) {
	jwtService := jwt.New("secret", time.Hour)
	foreign, _ := jwt.New("other-secret", time.Hour).GenerateToken(1, "admin")

	cases := []struct {
		name   string
		header string
		code   string
	}{
		{name: "no token", header: "", code: "AUTH_HEADER_MISSING"},
		{name: "wrong scheme", header: "Basic dGVzdA==", code: "INVALID_AUTH_FORMAT"},
		{name: "empty bearer", header: "Bearer   ", code: "INVALID_AUTH_FORMAT"},
		{name: "garbage", header: "Bearer invalid-jwt-here", code: "INVALID_TOKEN"},
		{name: "foreign signature", header: "Bearer " + foreign, code: "INVALID_TOKEN"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := gin.New()
			router.Use(JWTAuth(jwtService))
			router.GET("/protected", func(c *gin.Context) {
				t.Fatal("handler should not be reached")
			})

			w := serve(router, tc.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), tc.code)
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	jwtService := jwt.New("secret", time.Hour)
	token, _ := jwtService.GenerateToken(9, "admin")

	router := gin.New()
	router.Use(OptionalAuth(jwtService))
	router.GET("/protected", whoAmI)

	w := serve(router, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":0,"role":""}`, w.Body.String())

	w = serve(router, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":9,"role":"admin"}`, w.Body.String())

	w = serve(router, "Bearer broken")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminOnly(t *testing.T) {
	jwtService := jwt.New("secret", time.Hour)
	userToken, _ := jwtService.GenerateToken(1, "user")
	adminToken, _ := jwtService.GenerateToken(2, "admin")

	router := gin.New()
	router.Use(JWTAuth(jwtService), AdminOnly())
	router.GET("/protected", whoAmI)

	assert.Equal(t, http.StatusForbidden, serve(router, "Bearer "+userToken).Code)
	assert.Equal(t, http.StatusOK, serve(router, "Bearer "+adminToken).Code)
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/protected", func(c *gin.Context) {
		c.String(http.StatusOK, RequestIDFrom(c))
	})

	w := serve(router, "")
	generated := w.Header().Get("X-Request-ID")
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("X-Request-ID", "2f1d2a3e-6a43-4c5e-9d61-8f0f5b1f4c11")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "2f1d2a3e-6a43-4c5e-9d61-8f0f5b1f4c11", w.Body.String())
}
