package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/rentyclub/internal/helpers"
	"github.com/joshua-takyi/rentyclub/internal/models"
	"github.com/joshua-takyi/rentyclub/internal/services"
)

func GetProfile(p *services.ProfilesService) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, err := p.GetProfile(c.Request.Context(), currentUser(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(profile, ""))
	}
}

func UpdateProfile(p *services.ProfilesService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var upd models.ProfileUpdate
		if !bindJSON(c, &upd) {
			return
		}
		profile, err := p.UpdateProfile(c.Request.Context(), currentUser(c), &upd)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(profile, "Profile updated successfully"))
	}
}

func UploadAvatar(p *services.ProfilesService) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, ok := formFile(c)
		if !ok {
			return
		}
		defer file.body.Close()

		profile, err := p.UploadAvatar(c.Request.Context(), currentUser(c), file.filename, file.contentType, file.body)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(profile, "Avatar uploaded successfully"))
	}
}

func ChangeEmail(p *services.ProfilesService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.EmailChange
		if !bindJSON(c, &req) {
			return
		}
		if err := p.ChangeEmail(c.Request.Context(), currentUser(c), &req); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(nil, "Check your new inbox to confirm the change"))
	}
}

func ChangePassword(p *services.ProfilesService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.PasswordChange
		if !bindJSON(c, &req) {
			return
		}
		if err := p.ChangePassword(c.Request.Context(), currentUser(c), &req); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(nil, "Password updated"))
	}
}
