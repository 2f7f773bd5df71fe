package models

import (
	"time"

	"github.com/fatflowers/loyalty/pkg/types"
)

// PointHistory 积分流水，append-only 账本
// (reference_id, movement_type) 在未删除记录里唯一，是重放保护的幂等键
type PointHistory struct {
	ID       string `gorm:"column:id;primary_key;type:uuid;index:idx_point_history_wallet_id_id,priority:2,sort:desc" json:"id"`
	WalletID string `gorm:"column:wallet_id;type:uuid;not null;index:idx_point_history_wallet_id_id,priority:1" json:"wallet_id"`
	UserID   int64  `gorm:"column:user_id;type:bigint;not null;index" json:"user_id"`
	// Amount 始终记录为正数，方向由 MovementType 决定
	Amount       int64                   `gorm:"column:amount;type:bigint;not null" json:"amount"`
	MovementType types.PointMovementType `gorm:"column:movement_type;type:varchar(32);not null;uniqueIndex:udx_point_history_ref,priority:2" json:"movement_type"`
	// ReferenceID 触发本条流水的业务事件，如支付ID、评价ID，过期流水指向原始流水ID
	// 部分唯一索引只约束未删除的行，软删除的旧行不挡重放
	ReferenceID string `gorm:"column:reference_id;type:varchar(64);not null;uniqueIndex:udx_point_history_ref,priority:1,where:deleted_at IS NULL" json:"reference_id"`
	Description string `gorm:"column:description;type:varchar(255)" json:"description"`
	// ExpireAt 积分失效时间，非入账类流水为 null
	ExpireAt  *time.Time `gorm:"column:expire_at;default:null;index" json:"expire_at"`
	DeletedAt *time.Time `gorm:"column:deleted_at;index;default:null" json:"deleted_at"`
	CreatedAt time.Time  `json:"created_at"`
}

func (PointHistory) TableName() string {
	return "point_history"
}

// Signed returns the entry's contribution to the wallet balance.
func (h *PointHistory) Signed() int64 {
	if h == nil {
		return 0
	}
	if h.MovementType.Credit() {
		return h.Amount
	}
	return -h.Amount
}

// ActiveAt reports whether the entry still counts as usable at the given time:
// not soft-deleted and either without expiry or not yet expired.
func (h *PointHistory) ActiveAt(now time.Time) bool {
	if h == nil || h.DeletedAt != nil {
		return false
	}
	return h.ExpireAt == nil || h.ExpireAt.After(now)
}
