package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// SetpointRequest is the body of POST /controller/setpoint.
// Temperature is a pointer so that an explicit 0.0 is distinguishable from
// an absent field.
type SetpointRequest struct {
	Temperature *float64 `json:"temperature" binding:"required"`
}

// GeneralResponse is the generic success/failure body.
type GeneralResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// HistoryResponse is the body of GET /controller/history.
type HistoryResponse struct {
	Count   int `json:"count"`
	Entries any `json:"entries"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "link_up": s.device.LinkUp()})
}

func (s *Server) handleSetSetpoint(c *gin.Context) {
	var req SetpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, GeneralResponse{Success: false, Message: "invalid request body"})

		return
	}

	if !s.device.LinkUp() {
		c.JSON(http.StatusServiceUnavailable, GeneralResponse{Success: false, Message: "controller link is down"})

		return
	}

	if err := s.device.WriteSetpoint(*req.Temperature); err != nil {
		s.logger.Error("api: setpoint write failed", "temperature", *req.Temperature, "error", err)
		c.JSON(http.StatusInternalServerError, GeneralResponse{Success: false, Message: "failed to set temperature on the controller"})

		return
	}

	c.JSON(http.StatusOK, GeneralResponse{
		Success: true,
		Message: strconv.FormatFloat(*req.Temperature, 'f', 1, 64) + " accepted as new setpoint",
	})
}

func (s *Server) handleStatus(c *gin.Context) {
	status := s.device.Status()

	// Never connected and nothing cached: there is no status to report.
	if !status.LinkUp && status.Measured == nil {
		c.JSON(http.StatusServiceUnavailable, GeneralResponse{Success: false, Message: "controller not reachable and no data cached"})

		return
	}

	c.JSON(http.StatusOK, status)
}

func (s *Server) handleHistory(c *gin.Context) {
	lines := DefaultHistoryLines
	if raw := c.Query("lines"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, GeneralResponse{Success: false, Message: "lines must be an integer"})

			return
		}
		lines = n
	}

	entries, err := s.history.Tail(lines)
	if err != nil {
		s.logger.Error("api: history read failed", "error", err)
		c.JSON(http.StatusInternalServerError, GeneralResponse{Success: false, Message: "failed to read history log"})

		return
	}

	c.JSON(http.StatusOK, HistoryResponse{Count: len(entries), Entries: entries})
}
