package http

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/booky/internal/entities"
	"github.com/mrlokans/booky/internal/notify"
)

type statusRequest struct {
	Status string `json:"status"`
}

type reviewRequest struct {
	Rating int    `json:"rating"`
	Text   string `json:"text"`
}

// ActionsController exposes the reading-status and review actions to HTML
// forms and to the JSON API.
type ActionsController struct {
	runner ActionRunner
}

func NewActionsController(runner ActionRunner) *ActionsController {
	return &ActionsController{runner: runner}
}

// SetStatusForm handles POST /books/:id/status. The outcome is flashed and
// the browser is sent back to the page it came from.
func (controller *ActionsController) SetStatusForm(c *gin.Context) {
	status := entities.ReadingStatus(strings.TrimSpace(c.PostForm("status")))
	controller.runner.AddToBooks(c.Request.Context(), c.Param("id"), status)
	redirectBack(c)
}

// ReviewForm handles POST /books/:id/review. A missing or malformed rating
// is passed through as 0 and rejected by the action.
func (controller *ActionsController) ReviewForm(c *gin.Context) {
	rating, _ := strconv.Atoi(strings.TrimSpace(c.PostForm("rating")))
	controller.runner.AddReview(c.Request.Context(), c.Param("id"), rating, c.PostForm("text"))
	redirectBack(c)
}

// SetStatus handles POST /api/books/:id/status. The notification travels in
// the response body instead of the flash queue. An unreadable body is run as
// an empty request so that the session check still comes first.
func (controller *ActionsController) SetStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req = statusRequest{}
	}

	ctx := notify.Quiet(c.Request.Context())
	respondResult(c, controller.runner.AddToBooks(ctx, c.Param("id"), entities.ReadingStatus(req.Status)))
}

// AddReview handles POST /api/books/:id/review.
func (controller *ActionsController) AddReview(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req = reviewRequest{}
	}

	ctx := notify.Quiet(c.Request.Context())
	respondResult(c, controller.runner.AddReview(ctx, c.Param("id"), req.Rating, req.Text))
}
