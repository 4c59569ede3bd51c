package orders

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated = "PedidoCreado"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"` // e.g. "tienda-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // pedido id
	Payload       json.RawMessage `json:"payload"`
}

type OrderCreatedPayload struct {
	OrderID         int64           `json:"pedido_id"`
	ExternalID      string          `json:"external_id,omitempty"`
	CustomerEmail   string          `json:"cliente_email"`
	CustomerName    string          `json:"cliente_nombre"`
	ShippingAddress string          `json:"direccion_envio"`
	Items           []OrderItem     `json:"productos"`
	Total           decimal.Decimal `json:"total"`
}
