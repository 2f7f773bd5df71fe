package point

import "go.uber.org/fx"

// Module exposes the point ledger via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
