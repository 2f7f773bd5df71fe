package types

type UserCouponStatus string

const (
	UserCouponStatusActive  UserCouponStatus = "ACTIVE"
	UserCouponStatusUsed    UserCouponStatus = "USED"
	UserCouponStatusExpired UserCouponStatus = "EXPIRED"
)
