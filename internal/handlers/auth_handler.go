package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/rentyclub/internal/helpers"
	"github.com/joshua-takyi/rentyclub/internal/models"
	"github.com/joshua-takyi/rentyclub/internal/services"
)

func SignUp(p *services.ProfilesService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SignupRequest
		if !bindJSON(c, &req) {
			return
		}
		profile, err := p.SignUp(c.Request.Context(), &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, helpers.SuccessResponse(profile, "Account created, check your inbox to confirm"))
	}
}

// Login sets the Supabase tokens as cookies and returns only the user summary.
func Login(p *services.ProfilesService, secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.LoginRequest
		if !bindJSON(c, &req) {
			return
		}
		session, err := p.Login(c.Request.Context(), &req)
		if err != nil {
			respondError(c, err)
			return
		}
		helpers.SetSessionCookies(c, session, secureCookies)
		c.JSON(http.StatusOK, helpers.SuccessResponse(session, "Logged in"))
	}
}

func Logout(p *services.ProfilesService, secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		if user := currentUser(c); user != nil {
			token = user.AccessToken
		} else if cookie, err := c.Cookie(helpers.AccessTokenCookie); err == nil {
			token = cookie
		}
		_ = p.Logout(c.Request.Context(), token)

		helpers.ClearSessionCookies(c, secureCookies)
		c.JSON(http.StatusOK, helpers.SuccessResponse(nil, "Logged out successfully"))
	}
}
