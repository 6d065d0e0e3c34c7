package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/rentyclub/internal/apperrors"
	"github.com/joshua-takyi/rentyclub/internal/helpers"
	"github.com/joshua-takyi/rentyclub/internal/models"
	"github.com/joshua-takyi/rentyclub/internal/services"
)

func ListSpaces(s *services.SpacesService) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset, limit, ok := pageParams(c)
		if !ok {
			return
		}
		filter := models.SpaceFilter{
			Type:     strings.TrimSpace(c.Query("type")),
			Location: strings.TrimSpace(c.Query("location")),
			Offset:   offset,
			Limit:    limit,
		}
		spaces, total, err := s.ListSpaces(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err)
			return
		}
		paginated(c, spaces, offset, limit, total)
	}
}

func GetSpace(s *services.SpacesService, secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}

		viewer := services.ViewMeta{
			SessionID: helpers.BrowserSession(c, secureCookies),
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		if user := currentUser(c); user != nil {
			uid := user.UserID
			viewer.UserID = &uid
		}

		detail, err := s.GetSpace(c.Request.Context(), id, viewer)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(detail, ""))
	}
}

func MySpaces(s *services.SpacesService) gin.HandlerFunc {
	return func(c *gin.Context) {
		spaces, err := s.MySpaces(c.Request.Context(), currentUser(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(spaces, ""))
	}
}

func CreateSpace(s *services.SpacesService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in models.SpaceInput
		if !bindJSON(c, &in) {
			return
		}
		space, err := s.CreateSpace(c.Request.Context(), currentUser(c), &in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, helpers.SuccessResponse(space, "Space created successfully"))
	}
}

func UpdateSpace(s *services.SpacesService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var upd models.SpaceUpdate
		if !bindJSON(c, &upd) {
			return
		}
		space, err := s.UpdateSpace(c.Request.Context(), currentUser(c), id, &upd)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(space, "Space updated successfully"))
	}
}

func DeleteSpace(s *services.SpacesService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		if err := s.DeleteSpace(c.Request.Context(), currentUser(c), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(nil, "Space deleted successfully"))
	}
}

// SpaceStats serves both /spaces/:id/stats and the owner-wide /spaces/stats.
func SpaceStats(s *services.SpacesService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.Nil
		if c.Param("id") != "" {
			var ok bool
			if id, ok = paramID(c, "id"); !ok {
				return
			}
		}
		stats, err := s.SpaceStats(c.Request.Context(), currentUser(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(stats, ""))
	}
}

func UploadSpacePhoto(s *services.SpacesService) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, ok := formFile(c)
		if !ok {
			return
		}
		defer file.body.Close()

		url, err := s.UploadPhoto(c.Request.Context(), currentUser(c), file.filename, file.contentType, file.body)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, helpers.SuccessResponse(gin.H{"url": url}, "Photo uploaded"))
	}
}

func SpaceViewHistory(s *services.SpacesService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
		if err != nil {
			respondError(c, apperrors.InvalidInput("invalid limit parameter"))
			return
		}
		views, err := s.ViewHistory(c.Request.Context(), currentUser(c), id, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(views, ""))
	}
}
