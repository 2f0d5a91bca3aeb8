package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/abv-ps/shop-api/internal/platform/validation"
	sessdomain "github.com/abv-ps/shop-api/internal/session/domain"
	"github.com/abv-ps/shop-api/internal/shop/domain"
	svc "github.com/abv-ps/shop-api/internal/shop/service"
)

// HeaderSessionToken carries the optional bearer token used to attribute
// shop actions to a user.
const HeaderSessionToken = "Session-Token"

type Controller struct {
	svc      *svc.Service
	sessions sessdomain.Manager
}

func New(s *svc.Service, sessions sessdomain.Manager) *Controller {
	return &Controller{svc: s, sessions: sessions}
}

// RegisterV1 mounts the product, order and stats routes under the group.
func (h *Controller) RegisterV1(g *echo.Group) {
	pg := g.Group("/products")
	pg.POST("", h.addProduct)
	pg.DELETE("/unavailable", h.deleteUnavailable)

	og := g.Group("/orders")
	og.POST("", h.addOrder)
	og.GET("/recent", h.recentOrders)

	sg := g.Group("/stats")
	sg.GET("/sold", h.soldStats)
	sg.GET("/customer/:name", h.customerStats)
}

// currentUserID resolves the acting user from the session token header,
// falling back to "anonymous". Both authenticated and anonymous access are
// allowed on every shop route.
func (h *Controller) currentUserID(c echo.Context) string {
	token := c.Request().Header.Get(HeaderSessionToken)
	if token == "" {
		return "anonymous"
	}
	userID, err := h.sessions.UserIDByToken(c.Request().Context(), token)
	if err != nil || userID == "" {
		return "anonymous"
	}
	return userID
}

type productCreateReq struct {
	Name        string  `json:"name" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Stock       int     `json:"stock" validate:"gte=0"`
}

func (h *Controller) addProduct(c echo.Context) error {
	var req productCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid json"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, validation.ErrorResponse(err))
	}
	created, err := h.svc.CreateProduct(c.Request().Context(), domain.Product{
		Name:        req.Name,
		Price:       req.Price,
		Category:    req.Category,
		Description: req.Description,
		Stock:       req.Stock,
	}, h.currentUserID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "product store unavailable"})
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Controller) deleteUnavailable(c echo.Context) error {
	deleted, err := h.svc.DeleteUnavailable(c.Request().Context(), h.currentUserID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "product store unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]int64{"deleted_count": deleted})
}

type orderItemReq struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

type orderCreateReq struct {
	Customer string         `json:"customer" validate:"required"`
	Items    []orderItemReq `json:"items" validate:"required,min=1,dive"`
	Total    float64        `json:"total" validate:"gte=0"`
}

func (h *Controller) addOrder(c echo.Context) error {
	var req orderCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid json"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, validation.ErrorResponse(err))
	}
	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, domain.OrderItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	created, err := h.svc.PlaceOrder(c.Request().Context(), domain.Order{
		Customer: req.Customer,
		Items:    items,
		Total:    req.Total,
	}, h.currentUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidProductID):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid product id format"})
		case errors.Is(err, domain.ErrProductNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "order store unavailable"})
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Controller) recentOrders(c echo.Context) error {
	orders, err := h.svc.RecentOrders(c.Request().Context(), h.currentUserID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "order store unavailable"})
	}
	return c.JSON(http.StatusOK, orders)
}

// parseISOTime accepts RFC 3339 or a naive ISO datetime like
// 2025-01-01T00:00:00, which is assumed to be UTC.
func parseISOTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02T15:04:05", s, time.UTC)
}

func (h *Controller) soldStats(c echo.Context) error {
	start, err := parseISOTime(c.QueryParam("start"))
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "invalid start datetime, use ISO 8601"})
	}
	end, err := parseISOTime(c.QueryParam("end"))
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "invalid end datetime, use ISO 8601"})
	}
	total, err := h.svc.SoldTotal(c.Request().Context(), start, end)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "order store unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]int64{"total_sold": total})
}

func (h *Controller) customerStats(c echo.Context) error {
	total, err := h.svc.TotalSpentByCustomer(c.Request().Context(), c.Param("name"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "order store unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]float64{"total": total})
}
