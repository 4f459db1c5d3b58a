package orders

import "strconv"

const (
	TopicOrderPlaced  = "order.placed"
	TopicOrderUpdated = "order.updated"
)

// PartitionKey keeps every event of one order on the same partition.
func PartitionKey(orderID int64) []byte { return []byte(strconv.FormatInt(orderID, 10)) }
