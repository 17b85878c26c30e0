package kafka

import "time"

// OrderLine is one purchased cart line
type OrderLine struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// OrderPlacedEvent is emitted when a checkout completes
type OrderPlacedEvent struct {
	EventID   string      `json:"event_id"`
	EventType string      `json:"event_type"`
	OrderID   string      `json:"order_id"`
	UserID    uint        `json:"user_id"`
	Lines     []OrderLine `json:"lines"`
	ItemCount int         `json:"item_count"`
	Timestamp time.Time   `json:"timestamp"`
}

// Event types
const (
	EventTypeOrderPlaced = "order.placed"
)

// Kafka topics
const (
	TopicOrderPlaced = "order-placed"
)
