package authorization

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	orgdomain "github.com/smallbiznis/teamspace/internal/organization/domain"
	orgrepository "github.com/smallbiznis/teamspace/internal/organization/repository"
	"github.com/smallbiznis/teamspace/pkg/db"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (Service, snowflake.ID, snowflake.ID, snowflake.ID) {
	t.Helper()

	gdb, err := db.NewTest()
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := gdb.AutoMigrate(&orgdomain.Organization{}, &orgdomain.OrganizationMember{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}

	ctx := context.Background()
	repo := orgrepository.NewRepository(gdb)
	owner := node.Generate()
	member := node.Generate()
	now := time.Now().UTC()
	org := orgdomain.Organization{
		ID:        node.Generate(),
		Name:      "Acme",
		Slug:      "acme",
		OwnerID:   owner,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.CreateOrganization(ctx, org); err != nil {
		t.Fatalf("create org: %v", err)
	}
	for userID, role := range map[snowflake.ID]string{owner: orgdomain.RoleOwner, member: orgdomain.RoleMember} {
		if err := repo.AddMember(ctx, orgdomain.OrganizationMember{
			ID:        node.Generate(),
			OrgID:     org.ID,
			UserID:    userID,
			Role:      role,
			CreatedAt: now,
		}); err != nil {
			t.Fatalf("add member: %v", err)
		}
	}

	enforcer, err := NewEnforcer(gdb)
	if err != nil {
		t.Fatalf("enforcer: %v", err)
	}
	return NewService(gdb, zap.NewNop(), enforcer), org.ID, owner, member
}

func TestOwnerAndMemberCapabilities(t *testing.T) {
	svc, orgID, owner, member := newTestService(t)
	ctx := context.Background()

	ownerActor := "user:" + owner.String()
	memberActor := "user:" + member.String()
	dom := orgID.String()

	if err := svc.Authorize(ctx, ownerActor, dom, ObjectOrganization, ActionOrganizationDelete); err != nil {
		t.Fatalf("owner delete org: %v", err)
	}
	if err := svc.Authorize(ctx, ownerActor, dom, ObjectMember, ActionMemberInvite); err != nil {
		t.Fatalf("owner invite: %v", err)
	}
	if err := svc.Authorize(ctx, memberActor, dom, ObjectOutline, ActionOutlineView); err != nil {
		t.Fatalf("member view outline: %v", err)
	}
	if err := svc.Authorize(ctx, memberActor, dom, ObjectOutline, ActionOutlineCreate); err != ErrForbidden {
		t.Fatalf("member create outline err = %v, want ErrForbidden", err)
	}
	if err := svc.Authorize(ctx, memberActor, dom, ObjectOrganization, ActionOrganizationDelete); err != ErrForbidden {
		t.Fatalf("member delete org err = %v, want ErrForbidden", err)
	}
}

func TestNonMemberIsForbidden(t *testing.T) {
	svc, orgID, _, _ := newTestService(t)
	ctx := context.Background()

	outsider := "user:" + snowflake.ID(424242).String()
	if err := svc.Authorize(ctx, outsider, orgID.String(), ObjectOutline, ActionOutlineView); err != ErrForbidden {
		t.Fatalf("outsider err = %v, want ErrForbidden", err)
	}
}

func TestInputValidation(t *testing.T) {
	svc, orgID, owner, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.Authorize(ctx, "", orgID.String(), ObjectMember, ActionMemberView); err != ErrInvalidActor {
		t.Fatalf("blank actor err = %v, want ErrInvalidActor", err)
	}
	if err := svc.Authorize(ctx, "robot:7", orgID.String(), ObjectMember, ActionMemberView); err != ErrInvalidActor {
		t.Fatalf("bad prefix err = %v, want ErrInvalidActor", err)
	}
	if err := svc.Authorize(ctx, "user:"+owner.String(), "", ObjectMember, ActionMemberView); err != ErrInvalidOrganization {
		t.Fatalf("blank org err = %v, want ErrInvalidOrganization", err)
	}
	if err := svc.Authorize(ctx, "user:"+owner.String(), orgID.String(), "", ActionMemberView); err != ErrInvalidObject {
		t.Fatalf("blank object err = %v, want ErrInvalidObject", err)
	}
	if err := svc.Authorize(ctx, "user:"+owner.String(), orgID.String(), ObjectMember, ""); err != ErrInvalidAction {
		t.Fatalf("blank action err = %v, want ErrInvalidAction", err)
	}
}
