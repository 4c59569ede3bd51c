package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/tiendaonline/storefront/internal/orders"
	"github.com/tiendaonline/storefront/internal/redisx"
)

type ProductStore interface {
	ListProducts(ctx context.Context) ([]orders.Product, error)
	GetProduct(ctx context.Context, id int64) (orders.Product, error)
}

// ProductsHandler serves the catalog from Redis, falling back to the store.
// Concurrent misses for the same key share one store query.
type ProductsHandler struct {
	Repo  ProductStore
	Redis *redis.Client
	Log   *zap.Logger

	sfg singleflight.Group
}

func (h *ProductsHandler) Register(r chi.Router) {
	r.Get("/api/productos", h.listProducts)
	r.Get("/api/productos/{id}", h.getProduct)
}

func (h *ProductsHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	v, err, _ := h.sfg.Do(redisx.KeyProductList, func() (any, error) {
		var ps []orders.Product
		err := redisx.GetJSON(ctx, h.Redis, redisx.KeyProductList, &ps)
		if err == nil {
			return ps, nil
		}
		if !errors.Is(err, redisx.ErrCacheMiss) {
			h.Log.Warn("product cache read failed", zap.Error(err))
		}

		ps, err = h.Repo.ListProducts(ctx)
		if err != nil {
			return nil, err
		}
		if err := redisx.SetJSON(ctx, h.Redis, redisx.KeyProductList, ps, redisx.TTLProducts); err != nil {
			h.Log.Warn("product cache write failed", zap.Error(err))
		}
		return ps, nil
	})
	if err != nil {
		h.Log.Error("error obteniendo productos", zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	ps := v.([]orders.Product)
	if ps == nil {
		ps = []orders.Product{}
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *ProductsHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, msgInvalidID)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyProduct, id)
	v, err, _ := h.sfg.Do(key, func() (any, error) {
		var p orders.Product
		if err := redisx.GetJSON(ctx, h.Redis, key, &p); err == nil {
			return p, nil
		}
		p, err := h.Repo.GetProduct(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := redisx.SetJSON(ctx, h.Redis, key, p, redisx.TTLProducts); err != nil {
			h.Log.Warn("product cache write failed", zap.Error(err))
		}
		return p, nil
	})
	switch {
	case errors.Is(err, orders.ErrProductNotFound):
		writeError(w, http.StatusNotFound, "Producto no encontrado")
		return
	case err != nil:
		h.Log.Error("error obteniendo producto", zap.Int64("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	writeJSON(w, http.StatusOK, v.(orders.Product))
}
