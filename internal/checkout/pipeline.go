// Package checkout drives one checkout attempt: form editing, validation and
// the single order-creation request built from the cart.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tiendaonline/storefront/internal/cart"
	"github.com/tiendaonline/storefront/internal/orders"
	"github.com/tiendaonline/storefront/internal/pricing"
)

type State string

const (
	StateEmpty      State = "empty"
	StateEditing    State = "editing"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
)

// FailureNotice is shown for any order failure, whatever the cause.
const FailureNotice = "Error al procesar el pedido. Por favor, intenta nuevamente."

var (
	ErrEmptyCart          = errors.New("no hay productos en el carrito")
	ErrSubmissionInFlight = errors.New("order submission already in progress")
	ErrFinished           = errors.New("checkout already completed")
	ErrOrderFailed        = errors.New("order submission failed")
)

// OrderService creates orders on the backend. Requests sharing an
// idempotency key create at most one order.
type OrderService interface {
	CreateOrder(ctx context.Context, idempotencyKey string, req orders.OrderRequest) (orders.OrderCreatedResp, error)
}

type Pipeline struct {
	cart   *cart.Store
	orders OrderService
	log    *zap.Logger

	mu      sync.Mutex
	state   State
	form    Form
	errs    FieldErrors
	notice  string
	orderID int64

	// key identifies the order built from cart version keyVersion and keyForm.
	key        string
	keyVersion uint64
	keyForm    Form
}

// Open starts a checkout over c. An empty cart yields a pipeline in StateEmpty
// that only offers navigation back; it never shows a form or sends a request.
func Open(c *cart.Store, svc OrderService, log *zap.Logger) *Pipeline {
	p := &Pipeline{cart: c, orders: svc, log: log, state: StateEditing, errs: FieldErrors{}}
	if c.IsEmpty() {
		p.state = StateEmpty
	}
	return p
}

func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Form returns a copy of the current form values.
func (p *Pipeline) Form() Form {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.form
}

// Errors returns the field errors of the last submit attempt.
func (p *Pipeline) Errors() FieldErrors {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(FieldErrors, len(p.errs))
	for f, m := range p.errs {
		out[f] = m
	}
	return out
}

// Notice is the failure notice of the last submission, if any.
func (p *Pipeline) Notice() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.notice
}

// OrderID is the id returned by the order service after success.
func (p *Pipeline) OrderID() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.orderID
}

// Set edits a field while editing and clears that field's error.
func (p *Pipeline) Set(field Field, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case StateEmpty:
		return ErrEmptyCart
	case StateSucceeded:
		return ErrFinished
	}
	p.form.Set(field, value)
	delete(p.errs, field)
	return nil
}

// Submit validates the form and, when valid, sends exactly one order built from
// the cart as it is at this instant. While a submission is outstanding further
// calls return ErrSubmissionInFlight. Validation failures return FieldErrors;
// order failures return an error wrapping ErrOrderFailed and leave the cart and
// the form untouched.
func (p *Pipeline) Submit(ctx context.Context) (int64, error) {
	p.mu.Lock()
	switch p.state {
	case StateEmpty:
		p.mu.Unlock()
		return 0, ErrEmptyCart
	case StateSubmitting, StateValidating:
		p.mu.Unlock()
		return 0, ErrSubmissionInFlight
	case StateSucceeded:
		p.mu.Unlock()
		return 0, ErrFinished
	}

	p.state = StateValidating
	p.notice = ""
	if errs := p.form.Validate(); len(errs) > 0 {
		p.errs = errs
		p.state = StateEditing
		p.mu.Unlock()
		return 0, errs
	}
	p.errs = FieldErrors{}

	snap := p.cart.Snapshot()
	if snap.IsEmpty() {
		p.state = StateEmpty
		p.mu.Unlock()
		return 0, ErrEmptyCart
	}
	req := buildRequest(p.form, snap)
	key := p.keyFor(snap)
	p.state = StateSubmitting
	p.mu.Unlock()

	// An issued request always runs to completion.
	resp, err := p.orders.CreateOrder(context.WithoutCancel(ctx), key, req)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.log.Error("error creando pedido", zap.Error(err), zap.Int("lines", len(req.Items)))
		p.state = StateEditing
		p.notice = FailureNotice
		return 0, fmt.Errorf("%w: %w", ErrOrderFailed, err)
	}

	p.cart.Settle(snap)
	p.orderID = resp.OrderID
	p.state = StateSucceeded
	p.log.Info("pedido creado", zap.Int64("pedido_id", resp.OrderID), zap.String("total", req.Total.StringFixed(2)))
	return resp.OrderID, nil
}

// keyFor returns the idempotency key of the order built from snap and the
// current form. A retry of an unchanged order reuses the previous key so the
// backend can tell it from a new order.
func (p *Pipeline) keyFor(snap cart.Snapshot) string {
	if p.key == "" || p.keyVersion != snap.Version() || p.keyForm != p.form {
		p.key = uuid.NewString()
		p.keyVersion = snap.Version()
		p.keyForm = p.form
	}
	return p.key
}

func buildRequest(f Form, snap cart.Snapshot) orders.OrderRequest {
	items := make([]orders.OrderItem, 0, len(snap.Lines))
	for _, l := range snap.Lines {
		items = append(items, orders.OrderItem{ProductID: l.ProductID, Qty: l.Qty, Price: l.Price})
	}
	return orders.OrderRequest{
		CustomerEmail:   f.Email,
		CustomerName:    f.Name,
		CustomerPhone:   f.Phone,
		ShippingAddress: f.ShippingAddress(),
		Total:           pricing.GrandTotal(snap.Subtotal()),
		Items:           items,
	}
}
