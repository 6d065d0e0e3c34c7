package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/rentyclub/internal/helpers"
	"github.com/joshua-takyi/rentyclub/internal/models"
	"github.com/joshua-takyi/rentyclub/internal/services"
)

func ListEvents(e *services.EventsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset, limit, ok := pageParams(c)
		if !ok {
			return
		}
		events, total, err := e.ListEvents(c.Request.Context(), strings.TrimSpace(c.Query("category")), offset, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		paginated(c, events, offset, limit, total)
	}
}

func GetEvent(e *services.EventsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		event, err := e.GetEvent(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(event, ""))
	}
}

func MyEvents(e *services.EventsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := e.MyEvents(c.Request.Context(), currentUser(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(events, ""))
	}
}

func CreateEvent(e *services.EventsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in models.EventInput
		if !bindJSON(c, &in) {
			return
		}
		event, err := e.CreateEvent(c.Request.Context(), currentUser(c), &in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, helpers.SuccessResponse(event, "Event created successfully"))
	}
}

func UpdateEvent(e *services.EventsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var upd models.EventUpdate
		if !bindJSON(c, &upd) {
			return
		}
		event, err := e.UpdateEvent(c.Request.Context(), currentUser(c), id, &upd)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(event, "Event updated successfully"))
	}
}

func DeleteEvent(e *services.EventsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		if err := e.DeleteEvent(c.Request.Context(), currentUser(c), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(nil, "Event deleted successfully"))
	}
}

func UploadEventImage(e *services.EventsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, ok := formFile(c)
		if !ok {
			return
		}
		defer file.body.Close()

		url, err := e.UploadImage(c.Request.Context(), currentUser(c), file.filename, file.contentType, file.body)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, helpers.SuccessResponse(gin.H{"url": url}, "Image uploaded"))
	}
}

// RegisterForEvent works with or without a session; guests register by email.
func RegisterForEvent(e *services.EventsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req models.RegistrationRequest
		if !bindJSON(c, &req) {
			return
		}
		reg, err := e.Register(c.Request.Context(), currentUser(c), id, &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, helpers.SuccessResponse(reg, "Registration confirmed"))
	}
}

func MyRegistrations(e *services.EventsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		regs, err := e.MyRegistrations(c.Request.Context(), currentUser(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(regs, ""))
	}
}

func OrganizerRegistrations(e *services.EventsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		regs, err := e.OrganizerRegistrations(c.Request.Context(), currentUser(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(regs, ""))
	}
}

func CancelRegistration(e *services.EventsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		if err := e.CancelRegistration(c.Request.Context(), currentUser(c), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(nil, "Registration cancelled"))
	}
}
