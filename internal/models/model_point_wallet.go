package models

import (
	"encoding/json"
	"time"
)

// PointWallet 用户积分钱包，每个用户最多一个，首次入账时懒创建
// Balance 始终等于未删除流水的有符号金额之和，且永不为负
type PointWallet struct {
	ID        string    `gorm:"column:id;primary_key;type:uuid" json:"id"`
	UserID    int64     `gorm:"column:user_id;type:bigint;not null;uniqueIndex" json:"user_id"`
	Balance   int64     `gorm:"column:balance;type:bigint;not null;default:0" json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PointWallet) TableName() string {
	return "point_wallet"
}

// MarshalBinary/UnmarshalBinary let the wallet round-trip through redis.
func (w PointWallet) MarshalBinary() ([]byte, error) {
	return json.Marshal(w)
}

func (w *PointWallet) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, w)
}
