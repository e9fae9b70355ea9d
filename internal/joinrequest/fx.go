package joinrequest

import (
	"github.com/smallbiznis/teamspace/internal/joinrequest/service"
	"go.uber.org/fx"
)

var Module = fx.Module("joinrequest.service",
	fx.Provide(service.NewService),
)
