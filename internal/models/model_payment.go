package models

import (
	"time"

	"github.com/fatflowers/loyalty/pkg/types"

	"gorm.io/datatypes"
)

// PaymentCardInfo 支付卡片元数据快照，仅用于展示
type PaymentCardInfo struct {
	// Issuer 发卡机构
	Issuer string `json:"issuer,omitempty"`
	// NumberMasked 脱敏卡号
	NumberMasked string `json:"number_masked,omitempty"`
	// InstallmentMonths 分期月数，一次性支付为0
	InstallmentMonths int `json:"installment_months,omitempty"`
}

// Payment 用户支付记录，状态只能沿 types.PaymentStatus 的状态表流转
// 记录只做软删除，永不物理删除
type Payment struct {
	ID        string `gorm:"column:id;primary_key;type:uuid;index:idx_payment_user_id_id,priority:2,sort:desc" json:"id"`
	PaymentNo string `gorm:"column:payment_no;type:varchar(64);not null;uniqueIndex" json:"payment_no"`
	UserID    int64  `gorm:"column:user_id;type:bigint;not null;index:idx_payment_user_id_id,priority:1" json:"user_id"`
	// OrderID 与订单1:1关联，订单生命周期由外部系统管理
	OrderID string                               `gorm:"column:order_id;type:uuid;not null;uniqueIndex" json:"order_id"`
	Amount  int64                                `gorm:"column:amount;type:bigint;not null" json:"amount"`
	Status  types.PaymentStatus                  `gorm:"column:status;type:varchar(32);not null" json:"status"`
	Card    datatypes.JSONType[*PaymentCardInfo] `gorm:"column:card;type:jsonb;default:'null'" json:"card"`
	// ProcessedAt is set on every terminal transition (COMPLETED/CANCELLED/FAILED).
	ProcessedAt *time.Time `gorm:"column:processed_at;default:null" json:"processed_at"`
	DeletedAt   *time.Time `gorm:"column:deleted_at;index;default:null" json:"deleted_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Payment) TableName() string {
	return "payment"
}

func (p *Payment) CardInfo() *PaymentCardInfo {
	if p == nil {
		return nil
	}
	return p.Card.Data()
}
