package report

import "go.uber.org/fx"

var Module = fx.Module("providers.report",
	fx.Provide(New),
)
