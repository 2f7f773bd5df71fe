package models

import (
	"time"

	"github.com/fatflowers/loyalty/pkg/types"
)

// Order is owned by the order subsystem. The loyalty core reads it for
// amount/user context when a payment is created and never mutates it.
type Order struct {
	ID        string            `gorm:"column:id;primary_key;type:uuid" json:"id"`
	UserID    int64             `gorm:"column:user_id;type:bigint;not null;index" json:"user_id"`
	Amount    int64             `gorm:"column:amount;type:bigint;not null" json:"amount"`
	Status    types.OrderStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	DeletedAt *time.Time        `gorm:"column:deleted_at;index;default:null" json:"deleted_at"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}
