package providers

import (
	"github.com/boxtrack/boxtrack/internal/providers/report"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	report.Module,
)
