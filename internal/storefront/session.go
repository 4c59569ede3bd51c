// Package storefront is the application controller of the shop front end. A
// Session owns the catalog, the cart and the checkout in progress; front ends
// only render its state and forward user actions.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tiendaonline/storefront/internal/cart"
	"github.com/tiendaonline/storefront/internal/catalog"
	"github.com/tiendaonline/storefront/internal/checkout"
	"github.com/tiendaonline/storefront/internal/orders"
	"github.com/tiendaonline/storefront/internal/pricing"
)

type View string

const (
	ViewBrowsing View = "productos"
	ViewCart     View = "carrito"
	ViewCheckout View = "checkout"
)

var (
	ErrUnknownProduct = errors.New("producto no encontrado")
	ErrOutOfStock     = errors.New("producto sin stock")
	ErrNoCheckout     = errors.New("no checkout open")
)

// Service is everything the session needs from the backend.
type Service interface {
	catalog.Source
	checkout.OrderService
}

type Session struct {
	catalog *catalog.Catalog
	cart    *cart.Store
	orders  checkout.OrderService
	log     *zap.Logger

	mu       sync.Mutex
	view     View
	category string
	pipeline *checkout.Pipeline
	flash    string
}

// Start loads the catalog once and opens an empty cart on the product list.
func Start(ctx context.Context, svc Service, log *zap.Logger) *Session {
	return &Session{
		catalog:  catalog.Load(ctx, svc, log),
		cart:     cart.New(),
		orders:   svc,
		log:      log,
		view:     ViewBrowsing,
		category: catalog.AllCategories,
	}
}

func (s *Session) Catalog() *catalog.Catalog { return s.catalog }

func (s *Session) Cart() *cart.Store { return s.cart }

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Badge is the number of units in the cart.
func (s *Session) Badge() int { return s.cart.ItemCount() }

// ShowProducts navigates back to the product list.
func (s *Session) ShowProducts() {
	s.mu.Lock()
	s.view = ViewBrowsing
	s.mu.Unlock()
}

func (s *Session) ShowCart() {
	s.mu.Lock()
	s.view = ViewCart
	s.mu.Unlock()
}

// SelectCategory filters the product list; unknown categories show nothing.
func (s *Session) SelectCategory(category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if category == "" {
		category = catalog.AllCategories
	}
	s.category = category
}

func (s *Session) Category() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.category
}

// Products is the product list under the selected category.
func (s *Session) Products() []orders.Product {
	return s.catalog.Filter(s.Category())
}

// AddToCart adds qty units of a catalog product. Products without stock are
// refused the way the product card hides its add button.
func (s *Session) AddToCart(productID int64, qty int) error {
	p, ok := s.catalog.Find(productID)
	if !ok {
		return ErrUnknownProduct
	}
	if !p.InStock() {
		return ErrOutOfStock
	}
	s.cart.Add(p, qty)
	return nil
}

type CartSummary struct {
	pricing.Summary
	Items int
	// Remaining is what is missing for free shipping; zero once it applies.
	Remaining decimal.Decimal
}

// FreeShippingNotice is the hint shown below the totals, empty once shipping is free.
func (c CartSummary) FreeShippingNotice() string {
	if c.FreeShipping() {
		return ""
	}
	return fmt.Sprintf("Agrega $%s más para envío gratis", c.Remaining.StringFixed(2))
}

func (s *Session) CartSummary() CartSummary {
	sub := s.cart.Subtotal()
	return CartSummary{
		Summary:   pricing.Summarize(sub),
		Items:     s.cart.ItemCount(),
		Remaining: pricing.FreeShippingRemaining(sub),
	}
}

// OpenCheckout starts a new checkout over the cart unless one is already
// open. With an empty cart the pipeline is in checkout.StateEmpty, even if
// an earlier checkout was left mid-edit; only a submission in flight is kept.
func (s *Session) OpenCheckout() *checkout.Pipeline {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reopen() {
		s.pipeline = checkout.Open(s.cart, s.orders, s.log)
	}
	s.view = ViewCheckout
	return s.pipeline
}

func (s *Session) reopen() bool {
	if s.pipeline == nil {
		return true
	}
	switch st := s.pipeline.State(); {
	case st == checkout.StateSucceeded:
		return true
	case st == checkout.StateSubmitting:
		return false
	case s.cart.IsEmpty():
		return st != checkout.StateEmpty
	default:
		return st == checkout.StateEmpty
	}
}

// Checkout is the open checkout, nil when none is open.
func (s *Session) Checkout() *checkout.Pipeline {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pipeline
}

// SubmitCheckout submits the open checkout. On success the session shows the
// confirmation message and returns to the product list.
func (s *Session) SubmitCheckout(ctx context.Context) (int64, error) {
	p := s.Checkout()
	if p == nil {
		return 0, ErrNoCheckout
	}
	id, err := p.Submit(ctx)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pipeline == p {
		s.pipeline = nil
	}
	s.flash = fmt.Sprintf("¡Pedido creado exitosamente! ID del pedido: %d", id)
	s.view = ViewBrowsing
	return id, nil
}

// TakeFlash returns the pending one-time message and clears it.
func (s *Session) TakeFlash() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.flash
	s.flash = ""
	return msg
}
