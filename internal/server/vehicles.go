package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	vehicledomain "github.com/haulmatic/fleetguard/internal/vehicle/domain"
)

func (s *Server) createMachineType(c *gin.Context) {
	var req vehicledomain.CreateMachineTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.Name = strings.TrimSpace(req.Name)

	resp, err := s.vehicleSvc.CreateMachineType(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) getVehicle(c *gin.Context) {
	resp, err := s.vehicleSvc.GetVehicle(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) createReading(c *gin.Context) {
	var req vehicledomain.CreateReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.VehicleID = strings.TrimSpace(c.Param("id"))
	if req.RecordedBy == "" {
		req.RecordedBy = actorID(c)
	}

	resp, err := s.vehicleSvc.CreateReading(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) serviceDue(c *gin.Context) {
	resp, err := s.vehicleSvc.ServiceDue(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
