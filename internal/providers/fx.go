package providers

import (
	"github.com/smallbiznis/teamspace/internal/providers/email"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
)
