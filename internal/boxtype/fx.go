package boxtype

import (
	"github.com/boxtrack/boxtrack/internal/boxtype/repository"
	"github.com/boxtrack/boxtrack/internal/boxtype/service"
	"go.uber.org/fx"
)

var Module = fx.Module("boxtype.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
