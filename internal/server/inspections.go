package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	inspectiondomain "github.com/haulmatic/fleetguard/internal/inspection/domain"
)

func (s *Server) createInspection(c *gin.Context) {
	var req inspectiondomain.CreateInspectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.CreatedBy == "" {
		req.CreatedBy = actorID(c)
	}

	resp, err := s.inspectionSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) getInspection(c *gin.Context) {
	resp, err := s.inspectionSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) listInspections(c *gin.Context) {
	resp, err := s.inspectionSvc.ListByVehicle(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) submitInspection(c *gin.Context) {
	resp, err := s.inspectionSvc.Submit(c.Request.Context(), strings.TrimSpace(c.Param("id")), actorID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) approveInspection(c *gin.Context) {
	resp, err := s.inspectionSvc.Approve(c.Request.Context(), strings.TrimSpace(c.Param("id")), actorID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) rejectInspection(c *gin.Context) {
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.inspectionSvc.Reject(c.Request.Context(), strings.TrimSpace(c.Param("id")), actorID(c), strings.TrimSpace(req.Reason))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
