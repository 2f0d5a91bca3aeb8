package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	svc "github.com/abv-ps/shop-api/internal/audit/service"
	"github.com/abv-ps/shop-api/internal/platform/validation"
)

type Controller struct {
	logger *svc.EventLogger
}

func New(logger *svc.EventLogger) *Controller {
	return &Controller{logger: logger}
}

// RegisterV1 mounts the audit log routes under the given group.
func (h *Controller) RegisterV1(g *echo.Group) {
	lg := g.Group("/logs")
	lg.POST("", h.createLog)
	lg.GET("", h.getLogs)
	lg.DELETE("/old", h.deleteOldLogs)
	lg.PUT("/:event_id", h.updateLog)
}

type createLogReq struct {
	UserID     string `json:"user_id" validate:"required"`
	EventType  string `json:"event_type" validate:"required"`
	Metadata   string `json:"metadata"`
	TTLSeconds int    `json:"ttl_seconds" validate:"omitempty,gt=0"`
}

func (h *Controller) createLog(c echo.Context) error {
	var req createLogReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid json"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, validation.ErrorResponse(err))
	}
	eventID, err := h.logger.CreateLog(c.Request().Context(), req.UserID, req.EventType, req.Metadata,
		time.Duration(req.TTLSeconds)*time.Second)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "log store unavailable"})
	}
	return c.JSON(http.StatusCreated, map[string]string{"event_id": eventID.String()})
}

func (h *Controller) getLogs(c echo.Context) error {
	eventType := c.QueryParam("event_type")
	if eventType == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "event_type is required"})
	}
	hours := 24
	if v := c.QueryParam("hours"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "hours must be a positive integer"})
		}
		hours = n
	}
	events, err := h.logger.RecentEventsByType(c.Request().Context(), eventType, hours)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "log store unavailable"})
	}
	return c.JSON(http.StatusOK, events)
}

type updateLogReq struct {
	Metadata string `json:"metadata" validate:"required"`
}

func (h *Controller) updateLog(c echo.Context) error {
	eventID, err := uuid.Parse(c.Param("event_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid event_id"})
	}
	var req updateLogReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid json"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, validation.ErrorResponse(err))
	}
	if err := h.logger.UpdateMetadata(c.Request().Context(), eventID, req.Metadata); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "log store unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"detail": "metadata updated"})
}

func (h *Controller) deleteOldLogs(c echo.Context) error {
	days := 7
	if v := c.QueryParam("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "days must be a positive integer"})
		}
		days = n
	}
	deleted, err := h.logger.DeleteOldLogs(c.Request().Context(), days)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "log store unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]int{"deleted": deleted})
}
