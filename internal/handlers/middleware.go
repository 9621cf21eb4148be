package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/SAP-F-2025/exam-studio/internal/config"
	"github.com/SAP-F-2025/exam-studio/internal/services"
	"github.com/SAP-F-2025/exam-studio/internal/utils"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestID propagates or assigns the request id and stores it in both the gin
// and the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(utils.RequestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(utils.RequestIDHeader, requestID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), services.RequestIDKey, requestID))
		c.Next()
	}
}

// TokenParser verifies a bearer token and returns its claims.
type TokenParser interface {
	ParseJwtToken(token string) (*casdoorsdk.Claims, error)
}

// NewCasdoorParser builds a casdoor client from the auth configuration.
func NewCasdoorParser(cfg config.AuthConfig) TokenParser {
	return casdoorsdk.NewClient(cfg.Endpoint, cfg.ClientID, cfg.ClientSecret, cfg.Certificate, cfg.Organization, cfg.Application)
}

// AuthMiddleware rejects requests without a valid casdoor issued bearer token.
// The user id lands in the gin context and the request context.
func AuthMiddleware(parser TokenParser, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
			return
		}

		claims, err := parser.ParseJwtToken(strings.TrimSpace(token))
		if err != nil {
			logger.WarnContext(c.Request.Context(), "Rejected bearer token", "error", err, "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid or expired token"})
			return
		}

		userID := claims.Id
		if userID == "" {
			userID = claims.Owner + "/" + claims.Name
		}
		c.Set("user_id", userID)
		c.Set("user_name", claims.Name)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), services.UserIDKey, userID))
		c.Next()
	}
}
