package orders

import "strconv"

const (
	TopicOrderCreated = "pedido.creado"
)

// Partition key = pedido id, so every event of one order keeps its ordering.
func PartitionKey(orderID int64) []byte { return []byte(strconv.FormatInt(orderID, 10)) }
