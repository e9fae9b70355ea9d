package migration

import (
	authdomain "github.com/smallbiznis/teamspace/internal/auth/domain"
	"github.com/smallbiznis/teamspace/internal/config"
	invitationdomain "github.com/smallbiznis/teamspace/internal/invitation/domain"
	notificationdomain "github.com/smallbiznis/teamspace/internal/notification/domain"
	organizationdomain "github.com/smallbiznis/teamspace/internal/organization/domain"
	outlinedomain "github.com/smallbiznis/teamspace/internal/outline/domain"
	verificationdomain "github.com/smallbiznis/teamspace/internal/verification/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			// Versioned SQL targets postgres; other dialects are for local
			// runs where the model schema is enough.
			return conn.AutoMigrate(
				&authdomain.User{},
				&authdomain.Session{},
				&organizationdomain.Organization{},
				&organizationdomain.OrganizationMember{},
				&invitationdomain.Invitation{},
				&notificationdomain.Notification{},
				&verificationdomain.Verification{},
				&outlinedomain.Outline{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
