package server

import (
	"net/http"
	"time"

	billingrundomain "github.com/GestionAscensores/elevarapp/internal/billingrun/domain"
	"github.com/gin-gonic/gin"
)

type checkBillingRequest struct {
	Today *time.Time `json:"today"`
}

// CheckAutoBilling is safe to call repeatedly: a run that already happened
// this month is a no-op, a failed run is retried.
func (s *Server) CheckAutoBilling(c *gin.Context) {
	var req checkBillingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}
	today := time.Time{}
	if req.Today != nil {
		today = *req.Today
	}

	result, err := s.billingRunSvc.CheckAndTrigger(c.Request.Context(), today)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) GetBillingSchedule(c *gin.Context) {
	state, err := s.billingRunSvc.GetSchedule(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedule": state})
}

func (s *Server) UpdateBillingSchedule(c *gin.Context) {
	var req billingrundomain.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	state, err := s.billingRunSvc.UpdateSchedule(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "schedule": state})
}
