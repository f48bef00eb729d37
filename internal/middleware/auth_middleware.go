package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/lms/internal/app/models"
	"github.com/yigit/lms/internal/app/models/dto"
	"github.com/yigit/lms/internal/pkg/apperrors"
	"github.com/yigit/lms/internal/pkg/auth"
	"github.com/yigit/lms/internal/pkg/logger"
)

const (
	// PrincipalKey is the gin context key holding *models.Principal.
	PrincipalKey = "principal"

	// AccessTokenCookie lets server rendered pages authenticate without
	// script-set headers.
	AccessTokenCookie = "access_token"
)

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *auth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService}
}

// JWTAuth validates the bearer token and stores the caller's principal in
// the context. Any failure aborts with 401.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			var err error
			tokenString, err = auth.ExtractBearerToken(authHeader)
			if err != nil {
				abortUnauthorized(c, dto.ErrorCodeInvalidToken, "Invalid token format")
				return
			}
		} else if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
			tokenString = cookie
		}

		if tokenString == "" {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Authorization header missing")
			return
		}

		claims, err := m.jwtService.ValidateAndExtractClaims(tokenString)
		if err != nil {
			errorCode := dto.ErrorCodeInvalidToken
			errorDetails := "Invalid token"
			if errors.Is(err, apperrors.ErrTokenExpired) {
				errorCode = dto.ErrorCodeExpiredToken
				errorDetails = "Token has expired"
			}
			abortUnauthorized(c, errorCode, errorDetails)
			return
		}

		c.Set(PrincipalKey, claims.Principal())
		c.Next()
	}
}

// RoleRequired aborts with a uniform 403 unless the principal carries role.
// It must run after JWTAuth.
func (m *AuthMiddleware) RoleRequired(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFrom(c)
		if !ok {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "User information not found")
			return
		}

		if !principal.HasRole(role) {
			logger.Warn().
				Int64("userID", principal.UserID).
				Str("method", c.Request.Method).
				Str("path", c.FullPath()).
				Msg("Role check failed")
			AbortForbidden(c)
			return
		}

		c.Next()
	}
}

// PrincipalFrom returns the principal stored by JWTAuth.
func PrincipalFrom(c *gin.Context) (*models.Principal, bool) {
	v, exists := c.Get(PrincipalKey)
	if !exists {
		return nil, false
	}
	principal, ok := v.(*models.Principal)
	return principal, ok && principal != nil
}

// AbortForbidden writes the uniform access denied response. It never says
// which role or resource was missing.
func AbortForbidden(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(
		dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied"),
	))
}

func abortUnauthorized(c *gin.Context, code dto.ErrorCode, details string) {
	errorDetail := dto.NewErrorDetail(code, "Authentication required").WithDetails(details)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
}
