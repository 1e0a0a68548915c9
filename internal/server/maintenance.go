package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	maintenancedomain "github.com/haulmatic/fleetguard/internal/maintenance/domain"
)

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) createServiceRecord(c *gin.Context) {
	var req maintenancedomain.CreateServiceRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.CreatedBy == "" {
		req.CreatedBy = actorID(c)
	}

	resp, err := s.maintenanceSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) getServiceRecord(c *gin.Context) {
	resp, err := s.maintenanceSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) listServiceRecords(c *gin.Context) {
	resp, err := s.maintenanceSvc.ListByVehicle(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) updateServiceRecord(c *gin.Context) {
	var req maintenancedomain.UpdateServiceRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.maintenanceSvc.Update(c.Request.Context(), strings.TrimSpace(c.Param("id")), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) deleteServiceRecord(c *gin.Context) {
	if err := s.maintenanceSvc.DeleteDraft(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) submitServiceRecord(c *gin.Context) {
	resp, err := s.maintenanceSvc.Submit(c.Request.Context(), strings.TrimSpace(c.Param("id")), actorID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) approveServiceRecord(c *gin.Context) {
	resp, err := s.maintenanceSvc.Approve(c.Request.Context(), strings.TrimSpace(c.Param("id")), actorID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) rejectServiceRecord(c *gin.Context) {
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.maintenanceSvc.Reject(c.Request.Context(), strings.TrimSpace(c.Param("id")), actorID(c), strings.TrimSpace(req.Reason))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
