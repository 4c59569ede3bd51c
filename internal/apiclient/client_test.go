package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiendaonline/storefront/internal/orders"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, opts...)
	require.NoError(t, err)
	return c
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New("  ")
	assert.Error(t, err)
}

func TestListProducts(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/productos", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":1,"nombre":"Camiseta","precio":"19.99","categoria":"ropa","stock":50,"activo":true},
			{"id":3,"nombre":"Gorra","precio":10,"categoria":"accesorios","stock":0,"activo":true}
		]`))
	})

	ps, err := c.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, "Camiseta", ps[0].Name)
	assert.Equal(t, "19.99", ps[0].Price.StringFixed(2))
	assert.Equal(t, "10.00", ps[1].Price.StringFixed(2))
	assert.False(t, ps[1].InStock())
}

func TestListProducts_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Error interno del servidor"}`))
	})

	_, err := c.ListProducts(context.Background())
	var he *HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusInternalServerError, he.StatusCode)
	assert.Equal(t, "Error interno del servidor", he.Message)
}

func TestCreateOrder(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/pedidos", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "key-1", r.Header.Get(HeaderIdempotencyKey))

		var body struct {
			Email     string `json:"cliente_email"`
			Address   string `json:"direccion_envio"`
			Productos []struct {
				Cantidad int `json:"cantidad"`
			} `json:"productos"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ana@tienda.es", body.Email)
		assert.Equal(t, "Calle Mayor 1, Madrid, 28013", body.Address)
		if assert.Len(t, body.Productos, 1) {
			assert.Equal(t, 2, body.Productos[0].Cantidad)
		}

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"Pedido creado exitosamente","pedido_id":42}`))
	})

	resp, err := c.CreateOrder(context.Background(), "key-1", orders.OrderRequest{
		CustomerEmail:   "ana@tienda.es",
		CustomerName:    "Ana",
		ShippingAddress: "Calle Mayor 1, Madrid, 28013",
		Total:           decimal.RequireFromString("44.98"),
		Items:           []orders.OrderItem{{ProductID: 1, Qty: 2, Price: decimal.RequireFromString("19.99")}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), resp.OrderID)
	assert.Equal(t, "Pedido creado exitosamente", resp.Message)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCreateOrder_NoRetryOnFailure(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.CreateOrder(context.Background(), "", orders.OrderRequest{})
	var he *HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusServiceUnavailable, he.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCreateOrder_MissingID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	})

	_, err := c.CreateOrder(context.Background(), "", orders.OrderRequest{})
	assert.Error(t, err)
}

func TestCreateOrder_Keys(t *testing.T) {
	var (
		mu   sync.Mutex
		keys []string
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		keys = append(keys, r.Header.Get(HeaderIdempotencyKey))
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"pedido_id":1}`))
	}, WithKeyFunc(func() string { return "generated" }))

	for _, key := range []string{"pedido-1", "pedido-1", ""} {
		_, err := c.CreateOrder(context.Background(), key, orders.OrderRequest{})
		require.NoError(t, err)
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"pedido-1", "pedido-1", "generated"}, keys)
}

func TestBaseURLPathPrefix(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"pedido_id":1}`))
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	for _, base := range []string{srv.URL + "/tienda", srv.URL + "/tienda/"} {
		c, err := New(base)
		require.NoError(t, err)
		_, err = c.ListProducts(context.Background())
		require.NoError(t, err)
		_, err = c.CreateOrder(context.Background(), "k", orders.OrderRequest{})
		require.NoError(t, err)
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"/tienda/api/productos", "/tienda/api/pedidos",
		"/tienda/api/productos", "/tienda/api/pedidos",
	}, paths)
}
