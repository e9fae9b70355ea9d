package auth

import (
	"github.com/smallbiznis/teamspace/internal/auth/repository"
	"github.com/smallbiznis/teamspace/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
