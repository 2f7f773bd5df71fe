package reward

import "go.uber.org/fx"

// Module exposes the reward reactor via Fx.
var Module = fx.Options(
	fx.Provide(NewReactor),
)
