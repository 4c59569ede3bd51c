package redisx

import "time"

const (
	// Product list cache: productos:lista -> JSON []orders.Product
	KeyProductList = "productos:lista"

	// Single product cache: producto:{id} -> JSON orders.Product
	KeyProduct = "producto:%d"

	// Idempotency create pedido: idem:pedido:create:{idempotency key} -> pedido id
	KeyIdemOrderCreate = "idem:pedido:create:%s"

	// Cache status pedido: pedido_estado:{id} -> {"id":..,"estado":".."}
	KeyOrderStatus = "pedido_estado:%d"

	// Dedup event processing: dedup:{service}:{event id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLProducts    = 5 * time.Minute
	TTLIdempotency = 24 * time.Hour
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
