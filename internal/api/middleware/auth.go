package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/erindhoxha/mern-stack-site/internal/services"
	"github.com/erindhoxha/mern-stack-site/internal/utils"
	"github.com/gin-gonic/gin"
)

const TokenHeader = "x-auth-token"

type apiError struct {
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

// Auth rejects requests without a valid token and stores the caller id under "user_id".
func Auth(tokens services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(TokenHeader))
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{
				Code:    utils.CodeUnauthorized,
				Message: "No token, authorization denied",
			})
			return
		}

		userID, err := tokens.Verify(raw)
		if err != nil {
			if errors.Is(err, services.ErrTokenExpired) {
				_ = c.Error(err)
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{
				Code:    utils.CodeUnauthorized,
				Message: "Token is not valid",
			})
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}
