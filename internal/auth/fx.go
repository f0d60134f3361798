package auth

import (
	"github.com/boxtrack/boxtrack/internal/auth/repository"
	"github.com/boxtrack/boxtrack/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.ProvideUsers),
	fx.Provide(repository.ProvideSessions),
	fx.Provide(service.New),
)
