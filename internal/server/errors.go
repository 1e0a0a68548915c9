package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	exemptiondomain "github.com/haulmatic/fleetguard/internal/exemption/domain"
	inspectiondomain "github.com/haulmatic/fleetguard/internal/inspection/domain"
	jobcarddomain "github.com/haulmatic/fleetguard/internal/jobcard/domain"
	maintenancedomain "github.com/haulmatic/fleetguard/internal/maintenance/domain"
	taxdomain "github.com/haulmatic/fleetguard/internal/tax/domain"
	userdomain "github.com/haulmatic/fleetguard/internal/user/domain"
	vehicledomain "github.com/haulmatic/fleetguard/internal/vehicle/domain"
	watchlistdomain "github.com/haulmatic/fleetguard/internal/watchlist/domain"
	"github.com/haulmatic/fleetguard/internal/workflow"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

// ErrorHandlingMiddleware converts errors attached to the gin context into
// a JSON error body. Handlers call AbortWithError and return.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

var errInvalidRequest = errors.New("invalid_request_body")

func invalidRequestError() error {
	return errInvalidRequest
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

var notFoundErrors = []error{
	vehicledomain.ErrVehicleNotFound,
	vehicledomain.ErrMachineTypeNotFound,
	taxdomain.ErrPeriodNotFound,
	exemptiondomain.ErrExemptionNotFound,
	maintenancedomain.ErrRecordNotFound,
	inspectiondomain.ErrInspectionNotFound,
	jobcarddomain.ErrJobCardNotFound,
	watchlistdomain.ErrItemNotFound,
	userdomain.ErrUserNotFound,
}

// Both invalid transitions and validation failures map to 422: the
// request was well-formed but a precondition was unmet. A racing second
// approval surfaces the same way.
var unprocessableErrors = []error{
	workflow.ErrInvalidStateTransition,
	workflow.ErrReasonTooShort,
	vehicledomain.ErrInvalidVehicle,
	vehicledomain.ErrInvalidReading,
	vehicledomain.ErrReadingRegressed,
	vehicledomain.ErrInvalidIntervals,
	vehicledomain.ErrInvalidTrackingUnit,
	taxdomain.ErrInvalidPeriod,
	taxdomain.ErrPeriodOverlap,
	taxdomain.ErrInvalidVehicleID,
	exemptiondomain.ErrInvalidExemption,
	exemptiondomain.ErrExemptionNotActive,
	exemptiondomain.ErrActiveExists,
	exemptiondomain.ErrInvalidVehicleID,
	maintenancedomain.ErrInvalidRecord,
	maintenancedomain.ErrRecordNotEditable,
	maintenancedomain.ErrInvalidServiceType,
	maintenancedomain.ErrInvalidVehicleID,
	inspectiondomain.ErrInvalidInspection,
	inspectiondomain.ErrInvalidRating,
	inspectiondomain.ErrInvalidVehicleID,
	jobcarddomain.ErrInvalidJobCard,
	jobcarddomain.ErrInvalidVehicleID,
	watchlistdomain.ErrItemNotActive,
	watchlistdomain.ErrInvalidItem,
	userdomain.ErrInvalidUserID,
}

func mapError(err error) (int, errorPayload) {
	if errors.Is(err, errInvalidRequest) {
		return http.StatusBadRequest, errorPayload{Type: "bad_request", Message: errInvalidRequest.Error()}
	}
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return http.StatusNotFound, errorPayload{Type: "not_found", Message: target.Error()}
		}
	}
	for _, target := range unprocessableErrors {
		if errors.Is(err, target) {
			return http.StatusUnprocessableEntity, errorPayload{Type: "unprocessable", Message: target.Error()}
		}
	}
	return http.StatusInternalServerError, errorPayload{Type: "internal_error", Message: "internal server error"}
}
