// Package middleware provides HTTP middleware for Gin framework.
// #IMPLEMENTATION_DECISION: Middleware chain for authentication, authorization, and logging
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/secinto/hrms_backend/internal/auth"
	"github.com/secinto/hrms_backend/internal/models"
)

// Context keys for storing authenticated user data
// #INTEGRATION_POINT: Handlers extract the acting identity using these keys
const (
	ContextKeyUserID = "user_id"
	ContextKeyRole   = "role"
	ContextKeyActor  = "actor"
	ContextKeyClaims = "claims"
)

// Custom errors
var (
	ErrAuthHeaderMissing = errors.New("authorization header is required")
	ErrAuthHeaderFormat  = errors.New("authorization header format must be Bearer {token}")
	ErrInvalidToken      = errors.New("invalid or expired token")
	ErrForbidden         = errors.New("access denied")
)

// AuthMiddleware validates JWT tokens and stores the acting identity
// #IMPLEMENTATION_DECISION: Bearer token authentication
func AuthMiddleware(jwtService auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}

		claims, err := jwtService.ValidateAccessToken(tokenString)
		if err != nil {
			message := ErrInvalidToken.Error()
			if errors.Is(err, auth.ErrTokenExpired) {
				message = "token has expired"
			}
			abortUnauthorized(c, message)
			return
		}
		if claims.UserID == "" {
			abortUnauthorized(c, ErrInvalidToken.Error())
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

// OptionalAuthMiddleware extracts user claims if present but doesn't require authentication
// #IMPLEMENTATION_DECISION: Health and docs routes stay public but log the caller when known
func OptionalAuthMiddleware(jwtService auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.Next()
			return
		}

		if claims, err := jwtService.ValidateAccessToken(tokenString); err == nil && claims.UserID != "" {
			setIdentity(c, claims)
		}

		c.Next()
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrAuthHeaderMissing
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", ErrAuthHeaderFormat
	}
	return parts[1], nil
}

func setIdentity(c *gin.Context, claims *auth.Claims) {
	actor := claims.Actor()
	c.Set(ContextKeyClaims, claims)
	c.Set(ContextKeyUserID, actor.UserID)
	c.Set(ContextKeyRole, string(actor.Role))
	c.Set(ContextKeyActor, actor)
}

func abortUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"error":   "unauthorized",
		"message": message,
	})
	c.Abort()
}

// RequireRole middleware checks if the user has one of the required roles
// #IMPLEMENTATION_DECISION: Role-based access control
func RequireRole(allowedRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, exists := GetActor(c)
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": ErrForbidden.Error(),
			})
			c.Abort()
			return
		}

		for _, allowed := range allowedRoles {
			if actor.Role == allowed {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{
			"error":   "forbidden",
			"message": "insufficient role permissions",
		})
		c.Abort()
	}
}

// RequireAdmin is a shorthand for requiring admin role
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(models.UserRoleAdmin)
}

// RequireEvaluationAdmin allows the roles that manage evaluations
// #BUSINESS_RULE: ADMIN and HR author questionnaires, assign them and read reports
func RequireEvaluationAdmin() gin.HandlerFunc {
	return RequireRole(models.UserRoleAdmin, models.UserRoleHR)
}

// Helper functions for extracting values from context

// GetActor extracts the acting identity from context
func GetActor(c *gin.Context) (models.Actor, bool) {
	actorVal, exists := c.Get(ContextKeyActor)
	if !exists {
		return models.Actor{}, false
	}

	actor, ok := actorVal.(models.Actor)
	if !ok || actor.UserID == "" {
		return models.Actor{}, false
	}

	return actor, true
}

// GetUserID extracts the user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	actor, ok := GetActor(c)
	if !ok {
		return "", false
	}
	return actor.UserID, true
}

// GetRole extracts the user role from context
func GetRole(c *gin.Context) (models.UserRole, bool) {
	actor, ok := GetActor(c)
	if !ok {
		return "", false
	}
	return actor.Role, true
}

// GetClaims extracts the full JWT claims from context
func GetClaims(c *gin.Context) (*auth.Claims, bool) {
	claimsVal, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil, false
	}

	claims, ok := claimsVal.(*auth.Claims)
	if !ok {
		return nil, false
	}

	return claims, true
}

// IsAdmin checks if the current user is an admin
func IsAdmin(c *gin.Context) bool {
	role, exists := GetRole(c)
	return exists && role == models.UserRoleAdmin
}
