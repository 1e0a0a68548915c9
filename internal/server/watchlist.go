package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	watchlistdomain "github.com/haulmatic/fleetguard/internal/watchlist/domain"
)

type resolveWatchListItemRequest struct {
	JobCardID string `json:"job_card_id"`
}

func (s *Server) listWatchList(c *gin.Context) {
	resp, err := s.watchListSvc.ListActiveByVehicle(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) resolveWatchListItem(c *gin.Context) {
	var req resolveWatchListItemRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	var jobCardID *snowflake.ID
	if trimmed := strings.TrimSpace(req.JobCardID); trimmed != "" {
		id, err := snowflake.ParseString(trimmed)
		if err != nil {
			AbortWithError(c, watchlistdomain.ErrInvalidItem)
			return
		}
		jobCardID = &id
	}

	resp, err := s.watchListSvc.Resolve(c.Request.Context(), strings.TrimSpace(c.Param("id")), jobCardID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
