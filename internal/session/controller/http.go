package controller

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/abv-ps/shop-api/internal/platform/ratelimit"
	"github.com/abv-ps/shop-api/internal/session/domain"
)

type Controller struct {
	mgr domain.Manager
	rl  ratelimit.Store
}

func New(mgr domain.Manager) *Controller {
	return &Controller{mgr: mgr}
}

// WithRateLimitStore enables store-backed rate limiting on session creation.
func (h *Controller) WithRateLimitStore(store ratelimit.Store) *Controller {
	h.rl = store
	return h
}

// RegisterV1 mounts the session routes under the given group.
func (h *Controller) RegisterV1(g *echo.Group) {
	policy := ratelimit.Policy{
		Name:   "session:create",
		Window: time.Minute,
		Limit:  10,
		Key:    ratelimit.KeyUserOrIP("session:create"),
	}
	rlCreate := ratelimit.Middleware(policy)
	if h.rl != nil {
		rlCreate = ratelimit.MiddlewareWithStore(policy, h.rl)
	}

	sg := g.Group("/session")
	// static route must be registered alongside the :user_id ones; echo
	// matches it first
	sg.GET("/by-token", h.byToken)
	sg.POST("/:user_id", h.create, rlCreate)
	sg.GET("/:user_id", h.get)
	sg.DELETE("/:user_id", h.delete)
	sg.PUT("/:user_id", h.touch)
}

func (h *Controller) create(c echo.Context) error {
	userID := c.Param("user_id")
	sess, err := h.mgr.Create(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "session store unavailable"})
	}
	return c.JSON(http.StatusCreated, sess)
}

func (h *Controller) get(c echo.Context) error {
	userID := c.Param("user_id")
	sess, err := h.mgr.Get(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "session store unavailable"})
	}
	if sess == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
	}
	return c.JSON(http.StatusOK, sess)
}

func (h *Controller) delete(c echo.Context) error {
	userID := c.Param("user_id")
	deleted, err := h.mgr.Delete(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "session store unavailable"})
	}
	if deleted == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
	}
	return c.JSON(http.StatusOK, map[string]string{"detail": "session deleted"})
}

func (h *Controller) touch(c echo.Context) error {
	userID := c.Param("user_id")
	sess, err := h.mgr.Touch(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "session store unavailable"})
	}
	if sess == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
	}
	return c.JSON(http.StatusOK, sess)
}

func (h *Controller) byToken(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "token is required"})
	}
	userID, err := h.mgr.UserIDByToken(c.Request().Context(), token)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "session store unavailable"})
	}
	if userID == "" {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found for given token"})
	}
	return c.JSON(http.StatusOK, map[string]string{"user_id": userID})
}
