package helpers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/rentyclub/internal/models"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
	SessionCookie      = "session_id"

	refreshTokenMaxAge = 3600 * 24 * 30
	sessionMaxAge      = 3600 * 24 * 365
)

// SetSessionCookies stores the Supabase tokens as httpOnly cookies.
func SetSessionCookies(c *gin.Context, s *models.AuthSession, secure bool) {
	c.SetCookie(AccessTokenCookie, s.AccessToken, s.ExpiresIn, "/", "", secure, true)
	c.SetCookie(RefreshTokenCookie, s.RefreshToken, refreshTokenMaxAge, "/", "", secure, true)
}

func ClearSessionCookies(c *gin.Context, secure bool) {
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", secure, true)
	c.SetCookie(RefreshTokenCookie, "", -1, "/", "", secure, true)
}

// BrowserSession returns the anonymous session id used for view analytics,
// issuing one when the browser has none.
func BrowserSession(c *gin.Context, secure bool) string {
	if id, err := c.Cookie(SessionCookie); err == nil && id != "" {
		return id
	}
	id := uuid.NewString()
	c.SetCookie(SessionCookie, id, sessionMaxAge, "/", "", secure, true)
	return id
}
