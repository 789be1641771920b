package kafka

import "time"

// EventTypeSaleCommitted venta confirmada pendiente de proyectar salidas.
const EventTypeSaleCommitted = "sale.committed"

// SaleCommittedEvent mensaje publicado tras el commit de una venta.
type SaleCommittedEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	SaleID    string    `json:"sale_id"`
	Timestamp time.Time `json:"timestamp"`
}
