package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	jobcarddomain "github.com/haulmatic/fleetguard/internal/jobcard/domain"
)

type approveJobCardRequest struct {
	WatchListItemIDs []string `json:"watch_list_item_ids"`
}

func (s *Server) createJobCard(c *gin.Context) {
	var req jobcarddomain.CreateJobCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.CreatedBy == "" {
		req.CreatedBy = actorID(c)
	}

	resp, err := s.jobCardSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) getJobCard(c *gin.Context) {
	resp, err := s.jobCardSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) listJobCards(c *gin.Context) {
	resp, err := s.jobCardSvc.ListByVehicle(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) submitJobCard(c *gin.Context) {
	resp, err := s.jobCardSvc.Submit(c.Request.Context(), strings.TrimSpace(c.Param("id")), actorID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) approveJobCard(c *gin.Context) {
	var req approveJobCardRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	resp, err := s.jobCardSvc.Approve(c.Request.Context(), strings.TrimSpace(c.Param("id")), actorID(c), req.WatchListItemIDs)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) rejectJobCard(c *gin.Context) {
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.jobCardSvc.Reject(c.Request.Context(), strings.TrimSpace(c.Param("id")), actorID(c), strings.TrimSpace(req.Reason))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
