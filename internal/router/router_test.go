package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-inventory-tracker/internal/cache"
	"go-inventory-tracker/internal/events"
	"go-inventory-tracker/internal/model"
	"go-inventory-tracker/internal/repository"
	"go-inventory-tracker/internal/service"
	"go-inventory-tracker/internal/testutil"
	"go-inventory-tracker/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testServer struct {
	app    *fiber.App
	db     *gorm.DB
	shop   *model.Shop
	tokens map[model.Role]string
	events *events.Recorder
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewDB(t)

	users := repository.NewUserRepo(db)
	products := repository.NewProductRepo(db)
	shops := repository.NewShopRepo(db)
	txs := repository.NewTransactionRepo(db)
	manager := jwt.NewManager("router-test", time.Hour)
	rec := &events.Recorder{}
	reports := cache.NewMemory()

	authSvc := service.NewAuthService(users, manager)
	app := New(Deps{
		Auth:        authSvc,
		Products:    service.NewProductService(db, products, shops, txs, rec, reports),
		Ledger:      service.NewLedgerService(db, products, txs, rec, reports),
		Shops:       service.NewShopService(shops),
		Dashboard:   service.NewDashboardService(products, txs, reports),
		CORSOrigins: "*",
		LoginLimit:  3,
	})

	tokens := map[model.Role]string{}
	for _, role := range []model.Role{model.RoleAdmin, model.RoleManager, model.RoleStaff} {
		u := testutil.CreateUser(t, db, string(role)+"_user", role)
		token, err := manager.GenerateToken(u.ID, u.Username, string(u.Role))
		require.NoError(t, err)
		tokens[role] = token
	}

	return &testServer{app: app, db: db, shop: testutil.CreateShop(t, db, "Main"), tokens: tokens, events: rec}
}

// do sends a JSON request as role (empty for anonymous) and decodes the body.
func (s *testServer) do(t *testing.T, role model.Role, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", "Bearer "+s.tokens[role])
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]interface{}{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func (s *testServer) createProduct(t *testing.T, name string, quantity int) string {
	t.Helper()
	status, body := s.do(t, model.RoleAdmin, http.MethodPost, "/api/products", fiber.Map{
		"name":     name,
		"price":    "10.00",
		"quantity": quantity,
		"shopId":   s.shop.ID,
	})
	require.Equal(t, http.StatusCreated, status, body)
	return body["product"].(map[string]interface{})["id"].(string)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	status, body := s.do(t, "", http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", body["status"])
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, "", http.MethodPost, "/api/auth/register", fiber.Map{
		"username": "newbie", "email": "newbie@example.com", "password": "Passw0rd",
	})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "staff", body["user"].(map[string]interface{})["role"])
	assert.NotContains(t, body["user"], "password")

	status, _ = s.do(t, "", http.MethodPost, "/api/auth/register", fiber.Map{
		"username": "boss", "email": "boss@example.com", "password": "Passw0rd", "role": "admin",
	})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = s.do(t, model.RoleAdmin, http.MethodPost, "/api/auth/register", fiber.Map{
		"username": "boss", "email": "boss@example.com", "password": "Passw0rd", "role": "manager",
	})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "manager", body["user"].(map[string]interface{})["role"])

	status, body = s.do(t, "", http.MethodPost, "/api/auth/login", fiber.Map{
		"email": "newbie@example.com", "password": "Passw0rd",
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.NotEmpty(t, body["token"])

	status, body = s.do(t, "", http.MethodPost, "/api/auth/login", fiber.Map{
		"email": "newbie@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid credentials", body["message"])

	status, body = s.do(t, model.RoleStaff, http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "staff_user", body["username"])
}

func TestLoginIsRateLimited(t *testing.T) {
	s := newTestServer(t)
	creds := fiber.Map{"email": "ghost@example.com", "password": "nope"}

	for i := 0; i < 3; i++ {
		status, _ := s.do(t, "", http.MethodPost, "/api/auth/login", creds)
		require.Equal(t, http.StatusUnauthorized, status)
	}
	status, _ := s.do(t, "", http.MethodPost, "/api/auth/login", creds)
	assert.Equal(t, http.StatusTooManyRequests, status)
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, "", http.MethodGet, "/api/products", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Access token required", body["message"])

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestStaffCannotMutate(t *testing.T) {
	s := newTestServer(t)
	id := s.createProduct(t, "Widget", 5)

	routes := []struct {
		method, path string
	}{
		{http.MethodPost, "/api/products"},
		{http.MethodPut, "/api/products/" + id},
		{http.MethodDelete, "/api/products/" + id},
		{http.MethodPost, "/api/products/seed"},
		{http.MethodPost, "/api/transactions"},
		{http.MethodPost, "/api/shops"},
		{http.MethodGet, "/api/products/reconciliation"},
	}
	for _, r := range routes {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			status, _ := s.do(t, model.RoleStaff, r.method, r.path, fiber.Map{})
			assert.Equal(t, http.StatusForbidden, status)
		})
	}

	status, _ := s.do(t, model.RoleManager, http.MethodDelete, "/api/products/"+id, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestProductValidationErrors(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, model.RoleAdmin, http.MethodPost, "/api/products", fiber.Map{"name": ""})
	require.Equal(t, http.StatusBadRequest, status)
	errs, ok := body["errors"].([]interface{})
	require.True(t, ok, body)
	fields := map[string]bool{}
	for _, e := range errs {
		fields[e.(map[string]interface{})["field"].(string)] = true
	}
	assert.True(t, fields["name"])
	assert.True(t, fields["price"])
	assert.True(t, fields["quantity"])
	assert.True(t, fields["shopId"])

	status, _ = s.do(t, model.RoleAdmin, http.MethodGet, "/api/products/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, model.RoleAdmin, http.MethodGet, "/api/products?limit=500", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestTransactionLifecycle(t *testing.T) {
	s := newTestServer(t)
	id := s.createProduct(t, "Widget", 10)

	status, body := s.do(t, model.RoleManager, http.MethodPost, "/api/transactions", fiber.Map{
		"type": "out", "quantity": 4, "productId": id,
	})
	require.Equal(t, http.StatusCreated, status, body)
	txID := body["transaction"].(map[string]interface{})["id"].(string)
	assert.Equal(t, 6, testutil.Quantity(t, s.db, parseUUID(t, id)))

	status, body = s.do(t, model.RoleManager, http.MethodPost, "/api/transactions", fiber.Map{
		"type": "out", "quantity": 100, "productId": id,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["message"], "Insufficient stock")

	status, body = s.do(t, model.RoleManager, http.MethodPut, "/api/transactions/"+txID, fiber.Map{"quantity": 2})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, 8, testutil.Quantity(t, s.db, parseUUID(t, id)))

	status, body = s.do(t, model.RoleStaff, http.MethodGet, "/api/transactions?productId="+id, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Len(t, body["items"], 2)
	assert.Equal(t, float64(2), body["pagination"].(map[string]interface{})["total"])
	assert.Contains(t, body, "totalValue")

	status, _ = s.do(t, model.RoleStaff, http.MethodGet, "/api/transactions?type=sideways", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, model.RoleAdmin, http.MethodDelete, "/api/transactions/"+txID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 10, testutil.Quantity(t, s.db, parseUUID(t, id)))

	status, _ = s.do(t, model.RoleAdmin, http.MethodGet, "/api/transactions/"+txID, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = s.do(t, model.RoleAdmin, http.MethodGet, "/api/products/reconciliation", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["consistent"])
	assert.Equal(t, 4, s.events.Len())
}

func TestReportsRoutes(t *testing.T) {
	s := newTestServer(t)
	s.createProduct(t, "Widget", 3)

	status, body := s.do(t, model.RoleStaff, http.MethodGet, "/api/products/low-stock", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["alerts"], 1)

	status, body = s.do(t, model.RoleStaff, http.MethodGet, "/api/products/total-quantity", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["categoryTotals"], 1)

	status, body = s.do(t, model.RoleStaff, http.MethodGet, "/api/dashboard/stats", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["totalProducts"])

	status, body = s.do(t, model.RoleStaff, http.MethodGet, "/api/dashboard/stock-movement?days=3", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 3)

	status, body = s.do(t, model.RoleAdmin, http.MethodPost, "/api/products/seed", nil)
	require.Equal(t, http.StatusCreated, status, body)
	assert.Greater(t, body["count"], float64(0))
	assert.Len(t, body["products"], int(body["count"].(float64)))
}

func TestShopRoutes(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, model.RoleManager, http.MethodPost, "/api/shops", fiber.Map{"name": "Branch"})
	require.Equal(t, http.StatusCreated, status, body)
	id := body["shop"].(map[string]interface{})["id"].(string)

	status, body = s.do(t, model.RoleStaff, http.MethodGet, "/api/shops", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["items"], 2)
	assert.Equal(t, float64(2), body["pagination"].(map[string]interface{})["total"])

	s.createProduct(t, "Widget", 1)
	status, _ = s.do(t, model.RoleAdmin, http.MethodDelete, "/api/shops/"+s.shop.ID.String(), nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, model.RoleAdmin, http.MethodDelete, "/api/shops/"+id, nil)
	assert.Equal(t, http.StatusOK, status)
}

func parseUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	require.NoError(t, err)
	return id
}
