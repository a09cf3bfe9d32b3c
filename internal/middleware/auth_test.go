package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/pageza/foodgram/backend/internal/types"
)

type stubValidator struct {
	token  string
	claims *types.TokenClaims
}

func (s stubValidator) ValidateToken(token string) (*types.TokenClaims, error) {
	if token != s.token {
		return nil, errors.New("invalid token")
	}
	return s.claims, nil
}

func newAuthRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(mw)
	router.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": UserID(c).String()})
	})
	return router
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	validator := stubValidator{token: "good", claims: &types.TokenClaims{UserID: userID, Username: "chef"}}
	router := newAuthRouter(AuthMiddleware(validator))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"bearer scheme", "Bearer good", http.StatusOK},
		{"token scheme", "Token good", http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"unknown scheme", "Basic good", http.StatusUnauthorized},
		{"bad token", "Bearer bad", http.StatusUnauthorized},
		{"malformed", "Bearer", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Contains(t, w.Body.String(), userID.String())
			} else {
				assert.Contains(t, w.Body.String(), `"error"`)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	userID := uuid.New()
	validator := stubValidator{token: "good", claims: &types.TokenClaims{UserID: userID}}
	router := newAuthRouter(OptionalAuth(validator))

	t.Run("anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), uuid.Nil.String())
	})

	t.Run("invalid token is ignored", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Token bad")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), uuid.Nil.String())
	})

	t.Run("authenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Token good")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), userID.String())
	})
}
