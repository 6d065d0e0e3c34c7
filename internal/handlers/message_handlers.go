package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/rentyclub/internal/helpers"
	"github.com/joshua-takyi/rentyclub/internal/models"
	"github.com/joshua-takyi/rentyclub/internal/services"
)

func ListThreads(m *services.MessagesService) gin.HandlerFunc {
	return func(c *gin.Context) {
		threads, err := m.Threads(c.Request.Context(), currentUser(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(threads, ""))
	}
}

func SendMessage(m *services.MessagesService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SendMessageRequest
		if !bindJSON(c, &req) {
			return
		}
		msg, err := m.Send(c.Request.Context(), currentUser(c), &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, helpers.SuccessResponse(msg, "Message sent"))
	}
}

func EventInquiry(m *services.MessagesService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req models.EventInquiryRequest
		if !bindJSON(c, &req) {
			return
		}
		msg, err := m.EventInquiry(c.Request.Context(), currentUser(c), id, &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, helpers.SuccessResponse(msg, "Inquiry sent to the organizer"))
	}
}
