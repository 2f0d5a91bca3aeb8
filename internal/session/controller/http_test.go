package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abv-ps/shop-api/internal/session/domain"
)

// fakeManager keeps sessions in memory for handler tests.
type fakeManager struct {
	sessions map[string]*domain.Session
	tokens   map[string]string
	err      error
}

func newFakeManager() *fakeManager {
	return &fakeManager{
		sessions: make(map[string]*domain.Session),
		tokens:   make(map[string]string),
	}
}

func (f *fakeManager) Create(_ context.Context, userID string) (*domain.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	now := time.Now().UTC()
	s := &domain.Session{UserID: userID, SessionToken: "tok-" + userID, LoginTime: now, LastActive: now}
	f.sessions[userID] = s
	f.tokens[s.SessionToken] = userID
	return s, nil
}

func (f *fakeManager) Get(_ context.Context, userID string) (*domain.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sessions[userID], nil
}

func (f *fakeManager) Delete(_ context.Context, userID string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	s, ok := f.sessions[userID]
	if !ok {
		return 0, nil
	}
	delete(f.sessions, userID)
	delete(f.tokens, s.SessionToken)
	return 1, nil
}

func (f *fakeManager) Touch(_ context.Context, userID string) (*domain.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.sessions[userID]
	if !ok {
		return nil, nil
	}
	s.LastActive = time.Now().UTC()
	return s, nil
}

func (f *fakeManager) UserIDByToken(_ context.Context, token string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.tokens[token], nil
}

func setup(t *testing.T) (*echo.Echo, *fakeManager) {
	t.Helper()
	e := echo.New()
	mgr := newFakeManager()
	New(mgr).RegisterV1(e.Group("/v1"))
	return e, mgr
}

func do(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSessionRoutes_Lifecycle(t *testing.T) {
	e, _ := setup(t)

	rec := do(e, http.MethodPost, "/v1/session/alice")
	require.Equal(t, http.StatusCreated, rec.Code)
	var created domain.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "alice", created.UserID)
	assert.NotEmpty(t, created.SessionToken)

	rec = do(e, http.MethodGet, "/v1/session/alice")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodGet, "/v1/session/by-token?token="+created.SessionToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user_id":"alice"}`, rec.Body.String())

	rec = do(e, http.MethodDelete, "/v1/session/alice")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodGet, "/v1/session/alice")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodGet, "/v1/session/by-token?token="+created.SessionToken)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionRoutes_NotFound(t *testing.T) {
	e, _ := setup(t)

	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/v1/session/ghost").Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodDelete, "/v1/session/ghost").Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodPut, "/v1/session/ghost").Code)
}

func TestSessionRoutes_Touch(t *testing.T) {
	e, _ := setup(t)

	require.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/v1/session/bob").Code)

	rec := do(e, http.MethodPut, "/v1/session/bob")
	require.Equal(t, http.StatusOK, rec.Code)
	var touched domain.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &touched))
	assert.Equal(t, "bob", touched.UserID)
}

func TestSessionRoutes_ByTokenRequiresToken(t *testing.T) {
	e, _ := setup(t)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/v1/session/by-token").Code)
}

func TestSessionRoutes_StoreFailure(t *testing.T) {
	e, mgr := setup(t)
	mgr.err = assert.AnError

	assert.Equal(t, http.StatusInternalServerError, do(e, http.MethodPost, "/v1/session/alice").Code)
	assert.Equal(t, http.StatusInternalServerError, do(e, http.MethodGet, "/v1/session/alice").Code)
}
