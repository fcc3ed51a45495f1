package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type CommunityController struct {
	loader CommunityLoader
}

func NewCommunityController(loader CommunityLoader) *CommunityController {
	return &CommunityController{loader: loader}
}

// GetCommunity returns the community page data. Sections that fail to load
// come back empty, so this always answers 200.
func (controller *CommunityController) GetCommunity(c *gin.Context) {
	c.JSON(http.StatusOK, controller.loader.Load(c.Request.Context()))
}
