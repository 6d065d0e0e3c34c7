package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/rentyclub/internal/apperrors"
	"github.com/joshua-takyi/rentyclub/internal/helpers"
	"github.com/joshua-takyi/rentyclub/internal/media"
	"github.com/joshua-takyi/rentyclub/internal/models"
	"github.com/joshua-takyi/rentyclub/internal/services"
)

// currentUser returns the caller set by the auth middleware, or nil.
func currentUser(c *gin.Context) *helpers.EnhancedClaims {
	user, exists := c.Get("user")
	if !exists {
		return nil
	}
	claims, _ := user.(*helpers.EnhancedClaims)
	return claims
}

// respondError renders err with its status. Server-side failures are also
// attached to the context so the error middleware logs them.
func respondError(c *gin.Context, err error) {
	appErr := apperrors.As(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(appErr.HTTPStatus, helpers.AppErrorResponse(appErr))
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, apperrors.InvalidInput("invalid request body: "+err.Error()))
		return false
	}
	return true
}

// paramID parses a uuid path parameter, tolerating stray quotes from clients
// that template ids as JSON strings.
func paramID(c *gin.Context, name string) (uuid.UUID, bool) {
	raw := strings.Trim(strings.TrimSpace(c.Param(name)), "\"'")
	id, err := uuid.Parse(raw)
	if err != nil {
		respondError(c, apperrors.InvalidInput(fmt.Sprintf("invalid %s format", name)))
		return uuid.Nil, false
	}
	return id, true
}

func pageParams(c *gin.Context) (offset, limit int, ok bool) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(services.DefaultPageSize)))
	if err != nil || limit <= 0 {
		respondError(c, apperrors.InvalidInput("invalid limit parameter"))
		return 0, 0, false
	}
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		respondError(c, apperrors.InvalidInput("invalid offset parameter"))
		return 0, 0, false
	}
	return offset, limit, true
}

func paginated(c *gin.Context, data interface{}, offset, limit, total int) {
	page := (offset / limit) + 1
	c.JSON(http.StatusOK, helpers.PaginatedResponse(data, page, limit, total))
}

// queryDate reads an optional YYYY-MM-DD query parameter.
func queryDate(c *gin.Context, name string) (models.Date, bool) {
	raw := c.Query(name)
	if raw == "" {
		return models.Date{}, true
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		respondError(c, apperrors.InvalidInput(fmt.Sprintf("%s: %v", name, err)))
		return models.Date{}, false
	}
	return d, true
}

type upload struct {
	filename    string
	contentType string
	body        io.ReadCloser
}

// formFile opens the multipart "file" field, enforcing the image size limit.
func formFile(c *gin.Context) (*upload, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		respondError(c, apperrors.InvalidInput("multipart field \"file\" is required"))
		return nil, false
	}
	if fh.Size > media.MaxImageBytes {
		respondError(c, apperrors.InvalidInput(fmt.Sprintf("file exceeds %d MB", media.MaxImageBytes>>20)))
		return nil, false
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, apperrors.InvalidInput("failed to read upload"))
		return nil, false
	}
	return &upload{
		filename:    fh.Filename,
		contentType: fh.Header.Get("Content-Type"),
		body:        f,
	}, true
}
