package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storekeep/storekeep/internal/adapter/llm"
	"github.com/storekeep/storekeep/internal/auth"
	"github.com/storekeep/storekeep/internal/domain"
	"github.com/storekeep/storekeep/internal/service"
	"github.com/storekeep/storekeep/internal/session"
	"github.com/storekeep/storekeep/internal/store"
	"github.com/storekeep/storekeep/policy"
)

type testServer struct {
	e       *echo.Echo
	svc     *service.Service
	gateway *llm.MockGateway
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	engine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	require.NoError(t, err)

	gateway := llm.NewMockGateway()
	tokens := auth.NewTokenManager(time.Hour)
	svc := service.New(st, session.NewRegistry(), gateway, engine, tokens)

	e := echo.New()
	NewHandler(svc).RegisterRoutes(e, auth.Middleware(tokens, st))
	return &testServer{e: e, svc: svc, gateway: gateway}
}

// seedLogin creates an account and returns a live bearer token for it.
func (ts *testServer) seedLogin(t *testing.T, username string, role domain.Role) string {
	t.Helper()
	_, err := ts.svc.CreateUser(context.Background(), service.UserInput{
		Username: username,
		Password: "secret123",
		FullName: "Test " + username,
		Email:    username + "@example.com",
		Role:     role,
	})
	require.NoError(t, err)

	token, _, err := ts.svc.Login(context.Background(), username, "secret123")
	require.NoError(t, err)
	return token
}

func (ts *testServer) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.request(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decodeBody(t, rec)["status"])
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)
	ts.seedLogin(t, "alice", domain.RoleUser)

	t.Run("valid credentials", func(t *testing.T) {
		rec := ts.request(t, http.MethodPost, "/v1/auth/login", "", LoginRequest{Username: "alice", Password: "secret123"})
		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.NotEmpty(t, body["access_token"])
		assert.Equal(t, "bearer", body["token_type"])
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := ts.request(t, http.MethodPost, "/v1/auth/login", "", LoginRequest{Username: "alice", Password: "nope"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := ts.request(t, http.MethodPost, "/v1/auth/login", "", LoginRequest{Username: "ghost", Password: "secret123"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("password hash never leaks", func(t *testing.T) {
		rec := ts.request(t, http.MethodPost, "/v1/auth/login", "", LoginRequest{Username: "alice", Password: "secret123"})
		assert.NotContains(t, rec.Body.String(), "password_hash")
	})
}

func TestRoutesRequireAuth(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/v1/products", "/v1/bills", "/v1/chat/history?session_id=s1"} {
		rec := ts.request(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestChatEndpoint(t *testing.T) {
	ts := newTestServer(t)
	token := ts.seedLogin(t, "alice", domain.RoleUser)

	t.Run("assigns session id", func(t *testing.T) {
		ts.gateway.EnqueueDecision(llm.Decision{Text: "Hello!"})
		rec := ts.request(t, http.MethodPost, "/v1/chat", token, ChatRequest{Text: "hi"})
		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Hello!", body["response"])
		assert.NotEmpty(t, body["session_id"])
		assert.Equal(t, false, body["action_performed"])
	})

	t.Run("keeps provided session id", func(t *testing.T) {
		ts.gateway.EnqueueDecision(llm.Decision{Text: "again"})
		rec := ts.request(t, http.MethodPost, "/v1/chat", token, ChatRequest{Text: "hi", SessionID: "s1"})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "s1", decodeBody(t, rec)["session_id"])
	})

	t.Run("rejects empty text", func(t *testing.T) {
		rec := ts.request(t, http.MethodPost, "/v1/chat", token, ChatRequest{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("history for unseen session is empty", func(t *testing.T) {
		rec := ts.request(t, http.MethodGet, "/v1/chat/history?session_id=ghost", token, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"messages":[]`)
	})

	t.Run("history and reset", func(t *testing.T) {
		rec := ts.request(t, http.MethodGet, "/v1/chat/history?session_id=s1", token, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Len(t, body["messages"], 2)

		rec = ts.request(t, http.MethodPost, "/v1/chat/reset", token, ResetSessionRequest{SessionID: "s1"})
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = ts.request(t, http.MethodGet, "/v1/chat/history?session_id=s1", token, nil)
		body = decodeBody(t, rec)
		assert.Empty(t, body["messages"])
	})
}

func TestProductEndpoints(t *testing.T) {
	ts := newTestServer(t)
	userToken := ts.seedLogin(t, "alice", domain.RoleUser)
	adminToken := ts.seedLogin(t, "boss", domain.RoleAdmin)

	t.Run("create requires admin", func(t *testing.T) {
		rec := ts.request(t, http.MethodPost, "/v1/products", userToken,
			service.ProductInput{Name: "Coke", Quantity: 10, PurchasePrice: 0.8, SellingPrice: 1.5})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin creates product", func(t *testing.T) {
		rec := ts.request(t, http.MethodPost, "/v1/products", adminToken,
			service.ProductInput{Name: "Coke", Quantity: 10, PurchasePrice: 0.8, SellingPrice: 1.5})
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "Coke", decodeBody(t, rec)["name"])
	})

	t.Run("invalid product rejected", func(t *testing.T) {
		rec := ts.request(t, http.MethodPost, "/v1/products", adminToken,
			service.ProductInput{Name: "", Quantity: 1, PurchasePrice: 1, SellingPrice: 2})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("anyone lists products", func(t *testing.T) {
		rec := ts.request(t, http.MethodGet, "/v1/products", userToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decodeBody(t, rec)["products"], 1)
	})

	t.Run("get unknown product", func(t *testing.T) {
		rec := ts.request(t, http.MethodGet, "/v1/products/999", userToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("update and delete", func(t *testing.T) {
		rec := ts.request(t, http.MethodPut, "/v1/products/1", adminToken,
			service.ProductInput{Name: "Coke Zero", Quantity: 20, PurchasePrice: 0.8, SellingPrice: 1.6})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Coke Zero", decodeBody(t, rec)["name"])

		rec = ts.request(t, http.MethodDelete, "/v1/products/1", adminToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = ts.request(t, http.MethodGet, "/v1/products/1", adminToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestBillEndpoints(t *testing.T) {
	ts := newTestServer(t)
	userToken := ts.seedLogin(t, "alice", domain.RoleUser)
	adminToken := ts.seedLogin(t, "boss", domain.RoleAdmin)

	rec := ts.request(t, http.MethodPost, "/v1/products", adminToken,
		service.ProductInput{Name: "Coke", Quantity: 10, PurchasePrice: 0.8, SellingPrice: 1.5})
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("create bill", func(t *testing.T) {
		rec := ts.request(t, http.MethodPost, "/v1/bills", userToken,
			CreateBillRequest{Items: []service.BillLineInput{{ProductID: 1, Quantity: 3}}})
		assert.Equal(t, http.StatusCreated, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, 4.5, body["total_amount"])
		assert.NotEmpty(t, body["bill_number"])
	})

	t.Run("insufficient stock is a conflict", func(t *testing.T) {
		rec := ts.request(t, http.MethodPost, "/v1/bills", userToken,
			CreateBillRequest{Items: []service.BillLineInput{{ProductID: 1, Quantity: 100}}})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("unknown product is not found", func(t *testing.T) {
		rec := ts.request(t, http.MethodPost, "/v1/bills", userToken,
			CreateBillRequest{Items: []service.BillLineInput{{ProductID: 99, Quantity: 1}}})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("empty bill rejected", func(t *testing.T) {
		rec := ts.request(t, http.MethodPost, "/v1/bills", userToken, CreateBillRequest{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("users only see their own bills", func(t *testing.T) {
		rec := ts.request(t, http.MethodPost, "/v1/bills", adminToken,
			CreateBillRequest{Items: []service.BillLineInput{{ProductID: 1, Quantity: 1}}})
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = ts.request(t, http.MethodGet, "/v1/bills", userToken, nil)
		assert.Len(t, decodeBody(t, rec)["bills"], 1)

		rec = ts.request(t, http.MethodGet, "/v1/bills", adminToken, nil)
		assert.Len(t, decodeBody(t, rec)["bills"], 2)
	})

	t.Run("foreign bill is forbidden", func(t *testing.T) {
		rec := ts.request(t, http.MethodGet, "/v1/bills/2", userToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = ts.request(t, http.MethodGet, "/v1/bills/1", adminToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestReportEndpoints(t *testing.T) {
	ts := newTestServer(t)
	userToken := ts.seedLogin(t, "alice", domain.RoleUser)
	adminToken := ts.seedLogin(t, "boss", domain.RoleAdmin)

	t.Run("reports require admin", func(t *testing.T) {
		rec := ts.request(t, http.MethodGet, "/v1/reports/daily-sales", userToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("daily sales", func(t *testing.T) {
		rec := ts.request(t, http.MethodGet, "/v1/reports/daily-sales", adminToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, float64(0), body["bill_count"])
	})

	t.Run("bad date rejected", func(t *testing.T) {
		rec := ts.request(t, http.MethodGet, "/v1/reports/daily-sales?date=tomorrow", adminToken, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("profit loss", func(t *testing.T) {
		rec := ts.request(t, http.MethodGet, "/v1/reports/profit-loss?start_date=2024-01-01&end_date=2024-01-31", adminToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, float64(0), body["revenue"])
	})
}

func TestUserEndpoints(t *testing.T) {
	ts := newTestServer(t)
	adminToken := ts.seedLogin(t, "boss", domain.RoleAdmin)
	superToken := ts.seedLogin(t, "root", domain.RoleSuperAdmin)

	t.Run("create requires super admin", func(t *testing.T) {
		rec := ts.request(t, http.MethodPost, "/v1/users", adminToken,
			service.UserInput{Username: "clerk", Password: "secret123", Role: domain.RoleUser})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("super admin creates user", func(t *testing.T) {
		rec := ts.request(t, http.MethodPost, "/v1/users", superToken,
			service.UserInput{Username: "clerk", Password: "secret123", FullName: "Clerk", Email: "clerk@example.com", Role: domain.RoleUser})
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("missing email is invalid", func(t *testing.T) {
		rec := ts.request(t, http.MethodPost, "/v1/users", superToken,
			service.UserInput{Username: "mailless", Password: "secret123", FullName: "No Mail", Role: domain.RoleUser})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("duplicate username is a conflict", func(t *testing.T) {
		rec := ts.request(t, http.MethodPost, "/v1/users", superToken,
			service.UserInput{Username: "clerk", Password: "secret123", Email: "c2@example.com", Role: domain.RoleUser})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("admin lists users", func(t *testing.T) {
		rec := ts.request(t, http.MethodGet, "/v1/users", adminToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decodeBody(t, rec)["users"], 3)
		assert.NotContains(t, rec.Body.String(), "password_hash")
	})

	t.Run("self delete rejected", func(t *testing.T) {
		rec := ts.request(t, http.MethodDelete, "/v1/users/2", superToken, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete user", func(t *testing.T) {
		rec := ts.request(t, http.MethodDelete, "/v1/users/3", superToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = ts.request(t, http.MethodDelete, "/v1/users/3", superToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
