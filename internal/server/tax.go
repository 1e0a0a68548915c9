package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	taxdomain "github.com/haulmatic/fleetguard/internal/tax/domain"
)

func (s *Server) createTaxPeriod(c *gin.Context) {
	var req taxdomain.CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.VehicleID = strings.TrimSpace(c.Param("id"))
	if req.CreatedBy == "" {
		req.CreatedBy = actorID(c)
	}

	resp, err := s.taxSvc.CreatePeriod(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) listTaxPeriods(c *gin.Context) {
	resp, err := s.taxSvc.ListPeriods(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) currentTaxPeriod(c *gin.Context) {
	resp, err := s.taxSvc.CurrentPeriod(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) getTaxPeriod(c *gin.Context) {
	resp, err := s.taxSvc.GetPeriod(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
