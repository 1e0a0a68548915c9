package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	exemptiondomain "github.com/haulmatic/fleetguard/internal/exemption/domain"
)

func (s *Server) createExemption(c *gin.Context) {
	var req exemptiondomain.CreateExemptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.VehicleID = strings.TrimSpace(c.Param("id"))
	req.Reason = strings.TrimSpace(req.Reason)
	if req.CreatedBy == "" {
		req.CreatedBy = actorID(c)
	}

	resp, err := s.exemptionSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) listExemptions(c *gin.Context) {
	resp, err := s.exemptionSvc.ListByVehicle(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) getExemption(c *gin.Context) {
	resp, err := s.exemptionSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) endExemption(c *gin.Context) {
	resp, err := s.exemptionSvc.End(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) cancelExemption(c *gin.Context) {
	resp, err := s.exemptionSvc.Cancel(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
