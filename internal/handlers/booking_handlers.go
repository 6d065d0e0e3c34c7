package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/rentyclub/internal/apperrors"
	"github.com/joshua-takyi/rentyclub/internal/helpers"
	"github.com/joshua-takyi/rentyclub/internal/models"
	"github.com/joshua-takyi/rentyclub/internal/services"
)

// QuoteSpace prices ?start=&end= for a space.
func QuoteSpace(b *services.BookingsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		start, ok := queryDate(c, "start")
		if !ok {
			return
		}
		end, ok := queryDate(c, "end")
		if !ok {
			return
		}
		if start.IsZero() || end.IsZero() {
			respondError(c, apperrors.InvalidInput("start and end are required"))
			return
		}
		quote, err := b.Quote(c.Request.Context(), id, start, end)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(quote, ""))
	}
}

func SpaceAvailability(b *services.BookingsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		from, ok := queryDate(c, "from")
		if !ok {
			return
		}
		to, ok := queryDate(c, "to")
		if !ok {
			return
		}
		view, err := b.Availability(c.Request.Context(), id, models.DateRange{From: from, To: to})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(view, ""))
	}
}

func CreateBooking(b *services.BookingsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BookingRequest
		if !bindJSON(c, &req) {
			return
		}
		booking, err := b.CreateBooking(c.Request.Context(), currentUser(c), &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, helpers.SuccessResponse(booking, "Booking requested"))
	}
}

func ListBookingRequests(b *services.BookingsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := b.ListRequests(c.Request.Context(), currentUser(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(rows, ""))
	}
}

func ListRentals(b *services.BookingsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := b.ListRentals(c.Request.Context(), currentUser(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(rows, ""))
	}
}

func UpdateBookingStatus(b *services.BookingsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req models.StatusUpdate
		if !bindJSON(c, &req) {
			return
		}
		booking, err := b.UpdateStatus(c.Request.Context(), currentUser(c), id, req.Status)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(booking, "Booking "+string(booking.Status)))
	}
}

func CreateBlackout(b *services.BookingsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var in services.BlackoutInput
		if !bindJSON(c, &in) {
			return
		}
		blackout, err := b.CreateBlackout(c.Request.Context(), currentUser(c), id, &in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, helpers.SuccessResponse(blackout, "Dates blocked"))
	}
}

func ListBlackouts(b *services.BookingsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := b.ListBlackouts(c.Request.Context(), currentUser(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(rows, ""))
	}
}

func DeleteBlackout(b *services.BookingsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		if err := b.DeleteBlackout(c.Request.Context(), currentUser(c), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(nil, "Dates released"))
	}
}

// SpaceCalendar returns per-day unavailable flags for ?month=YYYY-MM,
// defaulting to the current month.
func SpaceCalendar(b *services.BookingsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		month := time.Now().UTC()
		if raw := c.Query("month"); raw != "" {
			parsed, err := time.Parse("2006-01", raw)
			if err != nil {
				respondError(c, apperrors.InvalidInput("month must be YYYY-MM"))
				return
			}
			month = parsed
		}
		days, err := b.MonthCalendar(c.Request.Context(), id, month.Year(), month.Month())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(gin.H{
			"year":  month.Year(),
			"month": int(month.Month()),
			"days":  days,
		}, ""))
	}
}
