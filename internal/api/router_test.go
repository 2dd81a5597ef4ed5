package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/socialboost/panel/internal/api"
	"github.com/socialboost/panel/internal/api/middleware"
	"github.com/socialboost/panel/internal/config"
	"github.com/socialboost/panel/internal/db"
	"github.com/socialboost/panel/internal/events"
	"github.com/socialboost/panel/internal/gateway"
	"github.com/socialboost/panel/internal/idempotency"
	"github.com/socialboost/panel/internal/repository"
	"github.com/socialboost/panel/internal/session"
	"github.com/socialboost/panel/migrations"
)

type testServer struct {
	srv   *httptest.Server
	store *repository.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ctx := context.Background()
	conn, err := db.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, repository.ApplyMigrations(ctx, conn, migrations.Files))

	store := repository.NewStore(conn)
	require.NoError(t, store.Seed(ctx))

	cfg := &config.Config{
		HTTPPort:           "0",
		AdminEmail:         "admin@example.com",
		TokenTTL:           time.Hour,
		JWTSecret:          "0123456789abcdef0123456789abcdef",
		JWTIssuer:          "socialboost-panel",
		JWTAudience:        "panel-api",
		PublicRateLimitRPS: 1000,
		AuthRateLimitRPS:   1000,
		IdempotencyTTL:     time.Hour,
	}
	middleware.SetJWTSecret(cfg.JWTSecret)
	middleware.SetJWTValidation(cfg.JWTIssuer, cfg.JWTAudience)

	logger := zap.NewNop()
	sessions := session.NewManager()
	bus := events.NewBus(logger)
	idem := idempotency.NewStore(nil, store, cfg.IdempotencyTTL)
	cards := &gateway.MockCardGateway{FailureRate: 0, Latency: 0}

	router := api.NewRouter(cfg, logger, conn, store, sessions, bus, idem, nil, cards)
	srv := httptest.NewServer(router.Routes())
	t.Cleanup(srv.Close)

	return &testServer{srv: srv, store: store}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, reqBody)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := ts.srv.Client().Do(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, data
}

func (ts *testServer) login(t *testing.T, email, password string) string {
	t.Helper()

	resp, body := ts.do(t, http.MethodPost, "/v1/auth/login", map[string]string{
		"email": email, "password": password,
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var parsed struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body, &parsed))
	require.NotEmpty(t, parsed.Token)
	return parsed.Token
}

func (ts *testServer) apiKey(t *testing.T, email string) string {
	t.Helper()
	user, err := ts.store.Queries().GetUserByEmail(context.Background(), email)
	require.NoError(t, err)
	return user.APIKey
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestRegisterLoginAndMe(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodPost, "/v1/auth/register", map[string]string{
		"name": "New User", "email": "New@Example.com", "password": "hunter22",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	// Same address in another case is taken.
	resp, _ = ts.do(t, http.MethodPost, "/v1/auth/register", map[string]string{
		"name": "Imposter", "email": "new@example.com", "password": "hunter23",
	}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	token := ts.login(t, "new@example.com", "hunter22")
	resp, body = ts.do(t, http.MethodGet, "/v1/dashboard/me", nil, bearer(token))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var me struct {
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(body, &me))
	assert.Equal(t, "new@example.com", me.Email)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.do(t, http.MethodPost, "/v1/auth/login", map[string]string{
		"email": "test@example.com", "password": "wrong",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestDashboardRequiresToken(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.do(t, http.MethodGet, "/v1/dashboard/orders", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPublicAPIRequiresKey(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.do(t, http.MethodGet, "/api/services", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodGet, "/api/services", nil, map[string]string{"X-API-Key": "sk_bogus"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := ts.do(t, http.MethodGet, "/api/services", nil, map[string]string{"X-API-Key": ts.apiKey(t, "test@example.com")})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var platforms map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &platforms))
	assert.Len(t, platforms, 4)
}

func TestPublicAPIPlaceOrderIdempotent(t *testing.T) {
	ts := newTestServer(t)
	key := ts.apiKey(t, "test@example.com")

	order := map[string]interface{}{
		"platform_id": "instagram",
		"service_id":  "followers",
		"quantity":    1000,
		"link":        "https://instagram.com/someone",
	}
	headers := map[string]string{
		"X-API-Key":         key,
		"X-Idempotency-Key": "test-key-1",
	}

	resp, body := ts.do(t, http.MethodPost, "/api/orders", order, headers)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var placed struct {
		ID         string `json:"id"`
		CostMicros int64  `json:"cost_micros"`
		Status     string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(body, &placed))
	assert.Equal(t, int64(5_000_000), placed.CostMicros)
	assert.Equal(t, "Pending", placed.Status)

	// Replaying the same key with the same body returns the stored
	// response without placing a second order.
	resp, replay := ts.do(t, http.MethodPost, "/api/orders", order, headers)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.JSONEq(t, string(body), string(replay))
	assert.NotEmpty(t, resp.Header.Get("X-Idempotent-Replay"))

	orders, err := ts.store.Queries().ListOrdersForUser(context.Background(), "test@example.com")
	require.NoError(t, err)
	assert.Len(t, orders, 4)

	// Same key with a different body is a conflict.
	order["quantity"] = 2000
	resp, _ = ts.do(t, http.MethodPost, "/api/orders", order, headers)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// The key header is mandatory on this route.
	resp, _ = ts.do(t, http.MethodPost, "/api/orders", order, map[string]string{"X-API-Key": key})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPublicAPIGetOrderOwnerOnly(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.do(t, http.MethodGet, "/api/orders/ORD_MOCK_0", nil, map[string]string{
		"X-API-Key": ts.apiKey(t, "test@example.com"),
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodGet, "/api/orders/ORD_MOCK_0", nil, map[string]string{
		"X-API-Key": ts.apiKey(t, "admin@example.com"),
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminSurfaceRequiresRole(t *testing.T) {
	ts := newTestServer(t)

	userToken := ts.login(t, "test@example.com", "password123")
	resp, _ := ts.do(t, http.MethodGet, "/v1/admin/users", nil, bearer(userToken))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	adminToken := ts.login(t, "admin@example.com", "admin123")
	resp, body := ts.do(t, http.MethodGet, "/v1/admin/users", nil, bearer(adminToken))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
}

func TestAdminOrderAndFundFlow(t *testing.T) {
	ts := newTestServer(t)
	adminToken := ts.login(t, "admin@example.com", "admin123")
	userToken := ts.login(t, "test@example.com", "password123")

	// User files a fund transfer claim.
	resp, body := ts.do(t, http.MethodPost, "/v1/dashboard/funds", map[string]interface{}{
		"amount_micros": 25_000_000,
		"bank_id":       "rajhi",
	}, bearer(userToken))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var filed struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body, &filed))

	// Admin approves it; the balance moves.
	resp, body = ts.do(t, http.MethodPost, "/v1/admin/funds/"+filed.ID+"/decision", map[string]string{
		"decision": "Approved",
	}, bearer(adminToken))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	user, err := ts.store.Queries().GetUserByEmail(context.Background(), "test@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(75_000_000), user.BalanceMicros)

	// Second decision conflicts.
	resp, _ = ts.do(t, http.MethodPost, "/v1/admin/funds/"+filed.ID+"/decision", map[string]string{
		"decision": "Rejected",
	}, bearer(adminToken))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Admin moves an order along.
	resp, body = ts.do(t, http.MethodPut, "/v1/admin/orders/ORD_MOCK_2/status", map[string]string{
		"status": "Completed",
	}, bearer(adminToken))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var updated struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, "Completed", updated.Status)
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.do(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodGet, "/readyz", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := ts.do(t, http.MethodGet, "/openapi.yaml", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "openapi: 3.0.3")
}
