// Package notify confirms new orders: it consumes PedidoCreado events, moves
// the pedido from pendiente to confirmado and notifies the customer.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/tiendaonline/storefront/internal/kafka"
	"github.com/tiendaonline/storefront/internal/orders"
	"github.com/tiendaonline/storefront/internal/redisx"
)

// OrderStore is the part of orders.Repo the worker needs.
type OrderStore interface {
	UpdateStatus(ctx context.Context, orderID int64, to orders.Status) error
}

type Service struct {
	Orders      OrderStore
	Redis       *redis.Client
	Log         *zap.Logger
	ServiceName string
}

// HandleOrderCreated is the consumer handler. It returns an error only for
// failures worth redelivering; malformed or stale events are logged and
// acknowledged.
func (s *Service) HandleOrderCreated(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		s.Log.Error("undecodable event dropped", zap.Int64("offset", m.Offset), zap.Error(err))
		return nil
	}
	if env.EventType != orders.EventOrderCreated {
		return nil
	}
	log := s.Log.With(zap.String("event_id", env.EventID), zap.String("trace_id", env.TraceID))

	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	if seen, err := redisx.Exists(ctx, s.Redis, dkey); err != nil {
		log.Warn("dedup lookup failed", zap.Error(err))
	} else if seen {
		log.Debug("duplicate event skipped")
		return nil
	}

	p, err := kafkax.UnwrapPayload[orders.OrderCreatedPayload](env.Payload)
	if err != nil {
		log.Error("invalid PedidoCreado payload dropped", zap.Error(err))
		return nil
	}
	log = log.With(zap.Int64("pedido_id", p.OrderID))

	err = s.Orders.UpdateStatus(ctx, p.OrderID, orders.StatusConfirmed)
	switch {
	case errors.Is(err, orders.ErrOrderNotFound), errors.Is(err, orders.ErrInvalidTransition):
		log.Warn("pedido not confirmed", zap.Error(err))
		s.markDone(ctx, log, dkey)
		return nil
	case err != nil:
		return fmt.Errorf("confirm pedido %d: %w", p.OrderID, err)
	}

	if err := s.Redis.Del(ctx, fmt.Sprintf(redisx.KeyOrderStatus, p.OrderID)).Err(); err != nil {
		log.Warn("status cache invalidation failed", zap.Error(err))
	}
	log.Info("confirmación de pedido enviada",
		zap.String("cliente_email", p.CustomerEmail),
		zap.String("cliente_nombre", p.CustomerName),
		zap.Int("productos", len(p.Items)),
		zap.String("total", p.Total.StringFixed(2)),
	)
	s.markDone(ctx, log, dkey)
	return nil
}

func (s *Service) markDone(ctx context.Context, log *zap.Logger, key string) {
	if _, err := redisx.MarkOnce(ctx, s.Redis, key, redisx.TTLDedup); err != nil {
		log.Warn("dedup mark failed", zap.Error(err))
	}
}
