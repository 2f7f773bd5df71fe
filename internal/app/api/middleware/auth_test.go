package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(testSecret))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": CurrentUserID(c), "role": CurrentRole(c)})
	})
	admin := r.Group("/admin", RequireRole(RoleAdmin))
	admin.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	r := newAuthRouter()

	do := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("missing token", func(t *testing.T) {
		require.Equal(t, http.StatusUnauthorized, do("").Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		require.Equal(t, http.StatusUnauthorized, do("not-a-jwt").Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": float64(7)}).SignedString([]byte("other-secret"))
		require.NoError(t, err)
		require.Equal(t, http.StatusUnauthorized, do(token).Code)
	})

	t.Run("missing user_id claim", func(t *testing.T) {
		require.Equal(t, http.StatusUnauthorized, do(signToken(t, jwt.MapClaims{"role": "USER"})).Code)
	})

	t.Run("valid token", func(t *testing.T) {
		w := do(signToken(t, jwt.MapClaims{"user_id": float64(42), "role": "USER"}))
		require.Equal(t, http.StatusOK, w.Code)
		require.JSONEq(t, `{"user_id":42,"role":"USER"}`, w.Body.String())
	})
}

func TestRequireRole(t *testing.T) {
	r := newAuthRouter()

	do := func(role string) int {
		req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{"user_id": float64(1), "role": role}))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	require.Equal(t, http.StatusForbidden, do("USER"))
	require.Equal(t, http.StatusForbidden, do(""))
	require.Equal(t, http.StatusOK, do(RoleAdmin))
}
