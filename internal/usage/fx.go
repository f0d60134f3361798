package usage

import (
	"github.com/boxtrack/boxtrack/internal/usage/repository"
	"github.com/boxtrack/boxtrack/internal/usage/service"
	"go.uber.org/fx"
)

var Module = fx.Module("usage.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
