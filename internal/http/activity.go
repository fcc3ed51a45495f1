package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/booky/internal/auth"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 100
)

// ActivityController exposes the signed-in reader's own audit trail.
type ActivityController struct {
	reader ActivityReader
}

func NewActivityController(reader ActivityReader) *ActivityController {
	return &ActivityController{reader: reader}
}

// ListActivity handles GET /api/activity?limit=&offset=.
func (controller *ActivityController) ListActivity(c *gin.Context) {
	limit, ok := parseLimit(c, defaultActivityLimit, maxActivityLimit)
	if !ok {
		return
	}
	offset, ok := parseOffset(c)
	if !ok {
		return
	}

	events, total, err := controller.reader.GetEvents(c.Request.Context(), auth.GetUserID(c), limit, offset)
	if err != nil {
		respondInternalError(c, err, "list activity")
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:       events,
		Total:      total,
		Limit:      limit,
		Offset:     offset,
		HasMore:    int64(offset+len(events)) < total,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	})
}
