package models

import "time"

// Coupon expiry is driven purely by wall-clock comparison against ExpireAt;
// the daily sweep soft-deletes coupons once past it.
type Coupon struct {
	ID             string     `gorm:"column:id;primary_key;type:uuid" json:"id"`
	Name           string     `gorm:"column:name;type:varchar(128);not null" json:"name"`
	DiscountAmount int64      `gorm:"column:discount_amount;type:bigint;not null" json:"discount_amount"`
	ExpireAt       time.Time  `gorm:"column:expire_at;not null;index" json:"expire_at"`
	DeletedAt      *time.Time `gorm:"column:deleted_at;index;default:null" json:"deleted_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (Coupon) TableName() string {
	return "coupon"
}

// ExpiredAt reports whether the coupon's deadline has passed at the given time.
func (c *Coupon) ExpiredAt(now time.Time) bool {
	return c != nil && !c.ExpireAt.After(now)
}
