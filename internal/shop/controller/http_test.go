package controller

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abv-ps/shop-api/internal/platform/validation"
	sessdomain "github.com/abv-ps/shop-api/internal/session/domain"
	"github.com/abv-ps/shop-api/internal/shop/domain"
	svc "github.com/abv-ps/shop-api/internal/shop/service"
)

type memRepo struct {
	mu       sync.Mutex
	products map[string]*domain.Product
	orders   []domain.Order
	seq      int
}

func newMemRepo() *memRepo {
	return &memRepo{products: make(map[string]*domain.Product)}
}

func (m *memRepo) EnsureIndexes(context.Context) error { return nil }

func (m *memRepo) InsertProduct(_ context.Context, p domain.Product) (domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	p.ID = fmt.Sprintf("%024x", m.seq)
	m.products[p.ID] = &p
	return p, nil
}

func (m *memRepo) DecrementStock(_ context.Context, productID string, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(productID) != 24 {
		return domain.ErrInvalidProductID
	}
	p, ok := m.products[productID]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.Stock -= qty
	return nil
}

func (m *memRepo) DeleteUnavailable(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, p := range m.products {
		if p.Stock == 0 {
			delete(m.products, id)
			n++
		}
	}
	return n, nil
}

func (m *memRepo) InsertOrder(_ context.Context, o domain.Order) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	o.ID = fmt.Sprintf("%024x", m.seq)
	m.orders = append(m.orders, o)
	return o, nil
}

func (m *memRepo) RecentOrders(context.Context, int) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Order(nil), m.orders...), nil
}

func (m *memRepo) SoldTotal(context.Context, time.Time, time.Time) (int64, error) {
	return 42, nil
}

func (m *memRepo) TotalSpentByCustomer(context.Context, string) (float64, error) {
	return 99.5, nil
}

type tokenRecorder struct {
	mu    sync.Mutex
	users []string
}

func (t *tokenRecorder) Record(userID, _, _ string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.users = append(t.users, userID)
}

// stubSessions resolves a single fixed token; everything else is unknown.
type stubSessions struct{ token, userID string }

func (s *stubSessions) Create(context.Context, string) (*sessdomain.Session, error) { return nil, nil }
func (s *stubSessions) Get(context.Context, string) (*sessdomain.Session, error)    { return nil, nil }
func (s *stubSessions) Delete(context.Context, string) (int64, error)               { return 0, nil }
func (s *stubSessions) Touch(context.Context, string) (*sessdomain.Session, error)  { return nil, nil }

func (s *stubSessions) UserIDByToken(_ context.Context, token string) (string, error) {
	if token == s.token {
		return s.userID, nil
	}
	return "", nil
}

func newShopServer(t *testing.T) (*echo.Echo, *memRepo, *tokenRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = validation.New()
	repo := newMemRepo()
	rec := &tokenRecorder{}
	s := svc.New(repo, rec)
	New(s, &stubSessions{token: "tok-1", userID: "alice"}).RegisterV1(e.Group("/v1"))
	return e, repo, rec
}

func do(e *echo.Echo, method, target, body, token string) *httptest.ResponseRecorder {
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(HeaderSessionToken, token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestShopRoutes_ProductLifecycle(t *testing.T) {
	e, repo, _ := newShopServer(t)

	res := do(e, http.MethodPost, "/v1/products", `{"name":"mug","price":9.5,"stock":3}`, "")
	require.Equal(t, http.StatusCreated, res.Code)
	assert.Contains(t, res.Body.String(), `"name":"mug"`)
	assert.Len(t, repo.products, 1)

	res = do(e, http.MethodPost, "/v1/products", `{"name":"sold out","price":1,"stock":0}`, "")
	require.Equal(t, http.StatusCreated, res.Code)

	res = do(e, http.MethodDelete, "/v1/products/unavailable", "", "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"deleted_count":1`)
	assert.Len(t, repo.products, 1)
}

func TestShopRoutes_ProductValidation(t *testing.T) {
	e, _, _ := newShopServer(t)

	res := do(e, http.MethodPost, "/v1/products", `{"price":9.5}`, "")
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = do(e, http.MethodPost, "/v1/products", `{"name":"mug","price":-1}`, "")
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = do(e, http.MethodPost, "/v1/products", `not json`, "")
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestShopRoutes_Orders(t *testing.T) {
	e, repo, _ := newShopServer(t)

	res := do(e, http.MethodPost, "/v1/products", `{"name":"mug","price":9.5,"stock":5}`, "")
	require.Equal(t, http.StatusCreated, res.Code)
	var pid string
	for id := range repo.products {
		pid = id
	}

	body := fmt.Sprintf(`{"customer":"alice","items":[{"product_id":%q,"quantity":2}],"total":19}`, pid)
	res = do(e, http.MethodPost, "/v1/orders", body, "")
	require.Equal(t, http.StatusCreated, res.Code)
	assert.Equal(t, 3, repo.products[pid].Stock)

	res = do(e, http.MethodGet, "/v1/orders/recent", "", "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"customer":"alice"`)
}

func TestShopRoutes_OrderErrorMapping(t *testing.T) {
	e, _, _ := newShopServer(t)

	res := do(e, http.MethodPost, "/v1/orders",
		`{"customer":"alice","items":[{"product_id":"short","quantity":1}],"total":1}`, "")
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = do(e, http.MethodPost, "/v1/orders",
		`{"customer":"alice","items":[{"product_id":"aaaaaaaaaaaaaaaaaaaaaaaa","quantity":1}],"total":1}`, "")
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = do(e, http.MethodPost, "/v1/orders", `{"customer":"alice","items":[],"total":1}`, "")
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestShopRoutes_Stats(t *testing.T) {
	e, _, _ := newShopServer(t)

	res := do(e, http.MethodGet,
		"/v1/stats/sold?start=2026-01-01T00:00:00Z&end=2026-02-01T00:00:00Z", "", "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"total_sold":42`)

	// naive ISO datetimes are accepted and read as UTC
	res = do(e, http.MethodGet,
		"/v1/stats/sold?start=2026-01-01T00:00:00&end=2026-02-01T00:00:00", "", "")
	require.Equal(t, http.StatusOK, res.Code)

	res = do(e, http.MethodGet, "/v1/stats/sold?start=yesterday&end=2026-02-01T00:00:00Z", "", "")
	assert.Equal(t, http.StatusUnprocessableEntity, res.Code)

	res = do(e, http.MethodGet, "/v1/stats/sold?start=2026-01-01T00:00:00Z", "", "")
	assert.Equal(t, http.StatusUnprocessableEntity, res.Code)

	res = do(e, http.MethodGet, "/v1/stats/customer/alice", "", "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"total":99.5`)
}

func TestShopRoutes_UserAttribution(t *testing.T) {
	e, _, rec := newShopServer(t)

	res := do(e, http.MethodPost, "/v1/products", `{"name":"mug","price":1,"stock":1}`, "tok-1")
	require.Equal(t, http.StatusCreated, res.Code)

	res = do(e, http.MethodPost, "/v1/products", `{"name":"cup","price":1,"stock":1}`, "bogus")
	require.Equal(t, http.StatusCreated, res.Code)

	res = do(e, http.MethodPost, "/v1/products", `{"name":"pot","price":1,"stock":1}`, "")
	require.Equal(t, http.StatusCreated, res.Code)

	assert.Equal(t, []string{"alice", "anonymous", "anonymous"}, rec.users)
}
