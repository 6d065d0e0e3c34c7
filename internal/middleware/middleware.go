package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/rentyclub/internal/apperrors"
	"github.com/joshua-takyi/rentyclub/internal/helpers"
	"github.com/joshua-takyi/rentyclub/internal/models"
)

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// StructuredLogger provides structured logging middleware
func StructuredLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}
		requestID, _ := c.Get("request_id")

		attrs := []any{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if user, ok := c.Get("user"); ok {
			if claims, ok := user.(*helpers.EnhancedClaims); ok {
				attrs = append(attrs, "user_id", claims.UserID)
			}
		}
		logger.Info("HTTP Request", attrs...)
	}
}

// ErrorHandler logs errors attached by handlers. A response is only written
// when the handler did not already send one.
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last()
		requestID, _ := c.Get("request_id")

		logger.Error("Request error",
			"request_id", requestID,
			"error", err.Error(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)

		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success":    false,
				"error":      "Internal server error",
				"request_id": requestID,
			})
		}
	}
}

// TokenValidator checks a Supabase access token.
type TokenValidator interface {
	Validate(token string) (*helpers.CustomClaims, error)
}

// Sessions refreshes expired sessions and resolves the caller's profile.
type Sessions interface {
	Refresh(ctx context.Context, refreshToken string) (*models.AuthSession, error)
	Lookup(ctx context.Context, userID uuid.UUID, accessToken string) (*models.Profile, error)
}

var errNoToken = errors.New("no access token")

// Authenticator resolves the caller from a Bearer header or the session
// cookies, transparently refreshing an expired access token.
type Authenticator struct {
	validator     TokenValidator
	sessions      Sessions
	secureCookies bool
	logger        *slog.Logger
}

func NewAuthenticator(validator TokenValidator, sessions Sessions, secureCookies bool, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		validator:     validator,
		sessions:      sessions,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func (a *Authenticator) authenticate(c *gin.Context) (*helpers.EnhancedClaims, error) {
	token := bearerToken(c)
	fromHeader := token != ""
	if !fromHeader {
		token, _ = c.Cookie(helpers.AccessTokenCookie)
	}

	var claims *helpers.CustomClaims
	err := errNoToken
	if token != "" {
		claims, err = a.validator.Validate(token)
	}

	// Only cookie sessions are refreshed; API clients handle their own tokens.
	if err != nil && !fromHeader {
		refreshToken, cookieErr := c.Cookie(helpers.RefreshTokenCookie)
		if cookieErr != nil || refreshToken == "" {
			return nil, err
		}
		session, refreshErr := a.sessions.Refresh(c.Request.Context(), refreshToken)
		if refreshErr != nil {
			a.logger.Info("Token refresh failed", "error", refreshErr)
			helpers.ClearSessionCookies(c, a.secureCookies)
			return nil, refreshErr
		}
		helpers.SetSessionCookies(c, session, a.secureCookies)
		a.logger.Info("Token refreshed successfully", "user_id", session.UserID, "expires_in", session.ExpiresIn)

		token = session.AccessToken
		claims, err = a.validator.Validate(token)
	}
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, errors.New("invalid subject in token")
	}

	user := &helpers.EnhancedClaims{
		CustomClaims: claims,
		Role:         models.RoleUser,
		UserID:       userID,
		Email:        claims.Email,
		AccessToken:  token,
	}
	profile, err := a.sessions.Lookup(c.Request.Context(), userID, token)
	if err != nil {
		a.logger.Info("Profile not found, using default role", "user_id", userID, "error", err)
		return user, nil
	}
	if profile.Role != "" {
		user.Role = profile.Role
	}
	user.FullName = profile.FullName
	user.AvatarURL = profile.AvatarURL
	if profile.Email != "" {
		user.Email = profile.Email
	}
	return user, nil
}

// Required rejects requests without a valid session.
func (a *Authenticator) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := a.authenticate(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				helpers.AppErrorResponse(apperrors.Unauthorized("Unauthorized access")))
			return
		}
		c.Set("user", user)
		c.Next()
	}
}

// Optional sets the caller when a valid session is present and lets anonymous
// requests through.
func (a *Authenticator) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, err := a.authenticate(c); err == nil {
			c.Set("user", user)
		}
		c.Next()
	}
}

// RequireRole must run after Required.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, _ := c.Get("user")
		user, ok := v.(*helpers.EnhancedClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				helpers.AppErrorResponse(apperrors.Unauthorized("Unauthorized access")))
			return
		}
		if user.IsAdmin() {
			c.Next()
			return
		}
		for _, r := range roles {
			if user.HasRole(r) {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden,
			helpers.AppErrorResponse(apperrors.Forbidden("insufficient role")))
	}
}
