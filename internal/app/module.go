package app

import (
	"time"

	"github.com/fatflowers/loyalty/internal/app/api/server"
	"github.com/fatflowers/loyalty/internal/app/scheduler"
	"github.com/fatflowers/loyalty/internal/app/service/coupon"
	"github.com/fatflowers/loyalty/internal/app/service/payment"
	"github.com/fatflowers/loyalty/internal/app/service/point"
	"github.com/fatflowers/loyalty/internal/app/service/reward"
	"github.com/fatflowers/loyalty/internal/platform/cache"
	"github.com/fatflowers/loyalty/internal/platform/db"
	"github.com/fatflowers/loyalty/pkg/config"
	"github.com/fatflowers/loyalty/pkg/logger"

	"go.uber.org/fx"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	cache.Module,
	server.Module,
	point.Module,
	reward.Module,
	payment.Module,
	coupon.Module,
	scheduler.Module,
)
