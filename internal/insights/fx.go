package insights

import (
	"github.com/boxtrack/boxtrack/internal/insights/repository"
	"github.com/boxtrack/boxtrack/internal/insights/service"
	"go.uber.org/fx"
)

var Module = fx.Module("insights.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
