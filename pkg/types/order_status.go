package types

// OrderStatus belongs to the order subsystem; the loyalty core only reads it
// for amount/user context and never drives its lifecycle.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)
