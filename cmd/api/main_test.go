package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/orderdesk/internal/config"
	"github.com/georgemunganga/orderdesk/internal/modules/catalog"
	"github.com/georgemunganga/orderdesk/internal/platform/database/databasetest"
)

func TestMain(m *testing.M) {
	decimal.MarshalJSONWithoutQuotes = true
	os.Exit(m.Run())
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Env:           "production",
		JWTSecret:     "test-secret",
		JWTExpiresIn:  time.Hour,
		AdminUsername: "admin",
		AdminEmail:    "admin@example.com",
		AdminPassword: "admin-pass",
		UploadDir:     t.TempDir(),
		UploadURLBase: "/uploads",
		FrontendURL:   "https://shop.example.com/",
	}
}

type client struct {
	t *testing.T
	h http.Handler
}

func (c client) do(method, path, token, body string) (int, map[string]interface{}, string) {
	c.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)

	var obj map[string]interface{}
	_ = json.Unmarshal(rec.Body.Bytes(), &obj)
	return rec.Code, obj, rec.Body.String()
}

func (c client) login(login, password string) string {
	c.t.Helper()
	code, obj, raw := c.do(http.MethodPost, "/api/auth/login", "", `{"email":"`+login+`","password":"`+password+`"}`)
	require.Equal(c.t, http.StatusOK, code, raw)
	return obj["token"].(string)
}

func TestOrderFlow(t *testing.T) {
	h, err := newRouter(context.Background(), testConfig(t), databasetest.New(t))
	require.NoError(t, err)
	c := client{t: t, h: h}

	code, obj, _ := c.do(http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "OK", obj["status"])

	admin := c.login("admin", "admin-pass")

	code, obj, raw := c.do(http.MethodPost, "/api/products/", admin,
		`{"name":"Rice","category":"Grains","price":10.00,"wholesale_price":6.00}`)
	require.Equal(t, http.StatusCreated, code, raw)
	productID := int(obj["id"].(float64))

	code, _, raw = c.do(http.MethodPost, "/api/auth/register", "",
		`{"username":"rep","email":"rep@example.com","password":"rep-pass","role":"sales"}`)
	require.Equal(t, http.StatusCreated, code, raw)

	code, _, _ = c.do(http.MethodPost, "/api/auth/login", "", `{"email":"rep","password":"rep-pass"}`)
	assert.Equal(t, http.StatusForbidden, code)

	code, _, raw = c.do(http.MethodPut, "/api/auth/users/2/approve", admin, "")
	require.Equal(t, http.StatusOK, code, raw)
	rep := c.login("rep@example.com", "rep-pass")

	code, obj, raw = c.do(http.MethodPost, "/api/orders/", rep,
		`{"client_name":"Corner Shop","items":[{"product_id":`+itoa(productID)+`,"quantity":3,"unit_price":6}]}`)
	require.Equal(t, http.StatusCreated, code, raw)
	assert.Equal(t, 18.0, obj["total_amount"])

	code, obj, _ = c.do(http.MethodGet, "/api/orders/admin/notifications/count", admin, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1.0, obj["count"])

	code, _, _ = c.do(http.MethodGet, "/api/orders/admin/notifications/count", rep, "")
	assert.Equal(t, http.StatusForbidden, code)

	code, _, _ = c.do(http.MethodGet, "/api/orders/my-orders", "", "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _, _ = c.do(http.MethodDelete, "/api/auth/users/1", admin, "")
	assert.Equal(t, http.StatusForbidden, code)

	code, _, _ = c.do(http.MethodGet, "/api/nothing-here", "", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRouterSeedsAdminOnce(t *testing.T) {
	cfg := testConfig(t)
	store := databasetest.New(t)

	_, err := newRouter(context.Background(), cfg, store)
	require.NoError(t, err)
	_, err = newRouter(context.Background(), cfg, store)
	require.NoError(t, err)

	var n int
	require.NoError(t, store.QueryOne(context.Background(), &n, `SELECT COUNT(*) FROM users WHERE role = 'admin'`))
	assert.Equal(t, 1, n)
}

func TestCORS(t *testing.T) {
	h, err := newRouter(context.Background(), testConfig(t), databasetest.New(t))
	require.NoError(t, err)

	preflight := func(origin string) string {
		req := httptest.NewRequest(http.MethodOptions, "/api/orders", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Header().Get("Access-Control-Allow-Origin")
	}

	assert.Equal(t, "https://shop.example.com", preflight("https://shop.example.com"))
	assert.Equal(t, "http://localhost:5173", preflight("http://localhost:5173"))
	assert.Empty(t, preflight("https://evil.example.com"))
}

func TestParsePriceList(t *testing.T) {
	rows, err := parsePriceList(strings.NewReader(
		"name,category,wholesale_price,price\n" +
			"Rice 5kg, Grains, 6.00, 10.00\n" +
			"Salt,Spices,,1.20\n"))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Rice 5kg", rows[0].Name)
	assert.Equal(t, "Grains", rows[0].Category)
	assert.True(t, rows[0].WholesalePrice.Valid)
	assert.True(t, decimal.RequireFromString("10").Equal(rows[0].RetailPrice))
	assert.False(t, rows[1].WholesalePrice.Valid)

	_, err = parsePriceList(strings.NewReader("Rice,Grains,6,ten\n"))
	assert.Error(t, err)

	_, err = parsePriceList(strings.NewReader("Rice,Grains\n"))
	assert.Error(t, err)
}

func TestPrintPrices(t *testing.T) {
	var buf bytes.Buffer
	printPrices(&buf, []*catalog.Product{
		{Name: "Rice", RetailPrice: decimal.RequireFromString("10"), WholesalePrice: decimal.NewNullDecimal(decimal.RequireFromString("6"))},
		{Name: "Salt", RetailPrice: decimal.RequireFromString("1.2")},
	})

	out := buf.String()
	assert.Contains(t, out, "6.00")
	assert.Contains(t, out, "10.00")
	assert.Contains(t, out, "1.20")
	assert.Contains(t, out, "Total products: 2")
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
