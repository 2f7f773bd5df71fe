package models

import (
	"time"

	"github.com/fatflowers/loyalty/pkg/types"
)

// UserCoupon 用户持有的优惠券
// 状态单调推进：ACTIVE → EXPIRED → 软删除，扫描任务只推进仍符合条件的行
type UserCoupon struct {
	ID        string                 `gorm:"column:id;primary_key;type:uuid" json:"id"`
	UserID    int64                  `gorm:"column:user_id;type:bigint;not null;index" json:"user_id"`
	CouponID  string                 `gorm:"column:coupon_id;type:uuid;not null;index" json:"coupon_id"`
	Status    types.UserCouponStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	UsedAt    *time.Time             `gorm:"column:used_at;default:null" json:"used_at"`
	DeletedAt *time.Time             `gorm:"column:deleted_at;index;default:null" json:"deleted_at"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

func (UserCoupon) TableName() string {
	return "user_coupon"
}
