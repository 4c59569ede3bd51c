// Package catalog is the storefront's read-only view of the product list,
// fetched once when the session starts.
package catalog

import (
	"context"

	"go.uber.org/zap"

	"github.com/tiendaonline/storefront/internal/orders"
)

// AllCategories is the pseudo-category that disables filtering.
const AllCategories = "todas"

// Source is the remote catalog service.
type Source interface {
	ListProducts(ctx context.Context) ([]orders.Product, error)
}

type Catalog struct {
	products []orders.Product
	err      error
}

// Load fetches the products once. A failure leaves the catalog empty and is
// kept in Err for the user; Load itself never fails.
func Load(ctx context.Context, src Source, log *zap.Logger) *Catalog {
	ps, err := src.ListProducts(ctx)
	if err != nil {
		log.Error("error cargando productos", zap.Error(err))
		return &Catalog{err: err}
	}
	log.Info("catalog loaded", zap.Int("products", len(ps)))
	return &Catalog{products: append([]orders.Product(nil), ps...)}
}

// Err is the loading error, if any.
func (c *Catalog) Err() error { return c.err }

func (c *Catalog) Len() int { return len(c.products) }

// Products returns a copy of the products in service order.
func (c *Catalog) Products() []orders.Product {
	return append([]orders.Product(nil), c.products...)
}

func (c *Catalog) Find(id int64) (orders.Product, bool) {
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return orders.Product{}, false
}

// Categories lists AllCategories followed by each distinct category in first-seen order.
func (c *Catalog) Categories() []string {
	out := []string{AllCategories}
	seen := map[string]bool{}
	for _, p := range c.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}

// Filter returns the products of one category; AllCategories or "" returns all.
func (c *Catalog) Filter(category string) []orders.Product {
	if category == "" || category == AllCategories {
		return c.Products()
	}
	out := make([]orders.Product, 0)
	for _, p := range c.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}
