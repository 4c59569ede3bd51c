package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/tiendaonline/storefront/internal/kafka"
	"github.com/tiendaonline/storefront/internal/orders"
	"github.com/tiendaonline/storefront/internal/pricing"
	"github.com/tiendaonline/storefront/internal/redisx"
)

const headerIdempotencyKey = "Idempotency-Key"

type OrderStore interface {
	CreateOrderTx(ctx context.Context, externalID string, req orders.OrderRequest) (int64, bool, error)
	GetOrder(ctx context.Context, id int64) (orders.Order, error)
	GetOrderStatus(ctx context.Context, id int64) (orders.Status, error)
}

type OrdersHandler struct {
	Repo     OrderStore
	Producer kafkax.Publisher
	Redis    *redis.Client
	Log      *zap.Logger
	Service  string
}

type orderStatusResp struct {
	ID     int64         `json:"id"`
	Status orders.Status `json:"estado"`
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/api/pedidos", h.createOrder)
	r.Get("/api/pedidos/{id}", h.getOrder)
	r.Get("/api/pedidos/{id}/estado", h.getOrderStatus)
}

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checkOrder runs the struct rules plus the money rules the tags cannot express.
func checkOrder(req orders.OrderRequest) string {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			field := strings.TrimPrefix(fe.Namespace(), "OrderRequest.")
			return fmt.Sprintf("%s: %s (%s)", msgInvalidInput, field, fe.Tag())
		}
		return msgInvalidInput
	}
	for i, it := range req.Items {
		if it.Price.IsNegative() {
			return fmt.Sprintf("%s: productos[%d].precio", msgInvalidInput, i)
		}
	}
	if want := pricing.GrandTotal(req.Subtotal()); !req.Total.Round(2).Equal(want.Round(2)) {
		return fmt.Sprintf("El total no coincide con los productos (esperado %s)", want.StringFixed(2))
	}
	return ""
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req orders.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}
	if msg := checkOrder(req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	key := strings.TrimSpace(r.Header.Get(headerIdempotencyKey))
	idemKey := fmt.Sprintf(redisx.KeyIdemOrderCreate, key)
	if key != "" {
		if id, err := h.Redis.Get(ctx, idemKey).Int64(); err == nil {
			writeJSON(w, http.StatusCreated, orders.OrderCreatedResp{Message: "Pedido creado exitosamente", OrderID: id})
			return
		} else if !errors.Is(err, redis.Nil) {
			h.Log.Warn("idempotency lookup failed", zap.Error(err))
		}
	}

	orderID, existed, err := h.Repo.CreateOrderTx(ctx, key, req)
	if errors.Is(err, orders.ErrProductNotFound) {
		writeError(w, http.StatusBadRequest, "Producto no encontrado")
		return
	}
	if err != nil {
		h.Log.Error("error creando pedido", zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	if key != "" {
		if err := h.Redis.Set(ctx, idemKey, orderID, redisx.TTLIdempotency).Err(); err != nil {
			h.Log.Warn("idempotency store failed", zap.Error(err))
		}
	}
	if !existed {
		statusKey := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
		_ = redisx.SetJSON(ctx, h.Redis, statusKey, orderStatusResp{ID: orderID, Status: orders.StatusPending}, redisx.TTLStatusCache)
		h.publishCreated(r, orderID, key, req)
	}

	writeJSON(w, http.StatusCreated, orders.OrderCreatedResp{Message: "Pedido creado exitosamente", OrderID: orderID})
}

func (h *OrdersHandler) publishCreated(r *http.Request, orderID int64, externalID string, req orders.OrderRequest) {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderCreated,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       middleware.GetReqID(r.Context()),
		CorrelationID: strconv.FormatInt(orderID, 10),
		Payload: kafkax.MustMarshal(orders.OrderCreatedPayload{
			OrderID:         orderID,
			ExternalID:      externalID,
			CustomerEmail:   req.CustomerEmail,
			CustomerName:    req.CustomerName,
			ShippingAddress: req.ShippingAddress,
			Items:           req.Items,
			Total:           req.Total,
		}),
	}
	h.Producer.Publish(orders.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderCreated)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, msgInvalidID)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Repo.GetOrder(ctx, id)
	switch {
	case errors.Is(err, orders.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "Pedido no encontrado")
		return
	case err != nil:
		h.Log.Error("error obteniendo pedido", zap.Int64("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) getOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, msgInvalidID)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyOrderStatus, id)
	var cached orderStatusResp
	if err := redisx.GetJSON(ctx, h.Redis, key, &cached); err == nil {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	st, err := h.Repo.GetOrderStatus(ctx, id)
	switch {
	case errors.Is(err, orders.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "Pedido no encontrado")
		return
	case err != nil:
		h.Log.Error("error obteniendo estado", zap.Int64("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	resp := orderStatusResp{ID: id, Status: st}
	_ = redisx.SetJSON(ctx, h.Redis, key, resp, redisx.TTLStatusCache)
	writeJSON(w, http.StatusOK, resp)
}
