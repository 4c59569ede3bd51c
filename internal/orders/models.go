package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"nombre"`
	Description string          `json:"descripcion"`
	Price       decimal.Decimal `json:"precio"`
	ImageURL    string          `json:"imagen_url"`
	Category    string          `json:"categoria"`
	Stock       int             `json:"stock"`
	Active      bool            `json:"activo"`
}

// InStock reports whether the product can be added to a cart.
func (p Product) InStock() bool { return p.Stock > 0 }

type Order struct {
	ID              int64           `json:"id"`
	ExternalID      string          `json:"external_id,omitempty"`
	CustomerEmail   string          `json:"cliente_email"`
	CustomerName    string          `json:"cliente_nombre"`
	CustomerPhone   string          `json:"cliente_telefono"`
	ShippingAddress string          `json:"direccion_envio"`
	Status          Status          `json:"estado"`
	Total           decimal.Decimal `json:"total"`
	Items           []OrderItem     `json:"productos"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type OrderItem struct {
	ProductID int64           `json:"producto_id" validate:"gt=0"`
	Qty       int             `json:"cantidad" validate:"min=1"`
	Price     decimal.Decimal `json:"precio"`
}

// OrderRequest is the body of POST /api/pedidos. The storefront builds it once
// per checkout attempt and never mutates it afterwards.
type OrderRequest struct {
	CustomerEmail   string          `json:"cliente_email" validate:"required,email"`
	CustomerName    string          `json:"cliente_nombre" validate:"required"`
	CustomerPhone   string          `json:"cliente_telefono"`
	ShippingAddress string          `json:"direccion_envio"`
	Total           decimal.Decimal `json:"total"`
	Items           []OrderItem     `json:"productos" validate:"required,min=1,dive"`
}

// Subtotal sums precio*cantidad over the requested lines.
func (r OrderRequest) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range r.Items {
		sum = sum.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Qty))))
	}
	return sum
}

type OrderCreatedResp struct {
	Message string `json:"message"`
	OrderID int64  `json:"pedido_id"`
}
