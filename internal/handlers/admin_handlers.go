package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/rentyclub/internal/helpers"
	"github.com/joshua-takyi/rentyclub/internal/models"
	"github.com/joshua-takyi/rentyclub/internal/services"
)

func AdminStats(a *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := a.Stats(c.Request.Context(), currentUser(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(stats, ""))
	}
}

// adminList adapts the paginated admin listings to one handler shape.
func adminList[T any](list func(context.Context, *helpers.EnhancedClaims, int, int) ([]T, int, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset, limit, ok := pageParams(c)
		if !ok {
			return
		}
		rows, total, err := list(c.Request.Context(), currentUser(c), offset, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		paginated(c, rows, offset, limit, total)
	}
}

func AdminListUsers(a *services.AdminService) gin.HandlerFunc    { return adminList(a.ListUsers) }
func AdminListSpaces(a *services.AdminService) gin.HandlerFunc   { return adminList(a.ListSpaces) }
func AdminListBookings(a *services.AdminService) gin.HandlerFunc { return adminList(a.ListBookings) }
func AdminListEvents(a *services.AdminService) gin.HandlerFunc   { return adminList(a.ListEvents) }

func AdminListRegistrations(a *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		regs, err := a.ListRegistrations(c.Request.Context(), currentUser(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(regs, ""))
	}
}

func AdminCreateUser(a *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req services.NewUser
		if !bindJSON(c, &req) {
			return
		}
		profile, err := a.CreateUser(c.Request.Context(), currentUser(c), &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, helpers.SuccessResponse(profile, "User created"))
	}
}

func AdminSetRole(a *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req models.RoleChange
		if !bindJSON(c, &req) {
			return
		}
		profile, err := a.SetRole(c.Request.Context(), currentUser(c), id, &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(profile, "Role updated"))
	}
}

func AdminDeleteUser(a *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		if err := a.DeleteUser(c.Request.Context(), currentUser(c), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(nil, "User deleted"))
	}
}

func Dashboard(d *services.DashboardService) gin.HandlerFunc {
	return func(c *gin.Context) {
		dash, err := d.Load(c.Request.Context(), currentUser(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(dash, ""))
	}
}
