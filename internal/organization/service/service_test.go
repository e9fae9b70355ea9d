package service

import (
	"context"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/teamspace/internal/auth/domain"
	authrepository "github.com/smallbiznis/teamspace/internal/auth/repository"
	authservice "github.com/smallbiznis/teamspace/internal/auth/service"
	invitationdomain "github.com/smallbiznis/teamspace/internal/invitation/domain"
	notificationdomain "github.com/smallbiznis/teamspace/internal/notification/domain"
	notificationrepository "github.com/smallbiznis/teamspace/internal/notification/repository"
	notificationservice "github.com/smallbiznis/teamspace/internal/notification/service"
	"github.com/smallbiznis/teamspace/internal/organization/domain"
	outlinedomain "github.com/smallbiznis/teamspace/internal/outline/domain"
	"github.com/smallbiznis/teamspace/internal/organization/repository"
	"github.com/smallbiznis/teamspace/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db      *gorm.DB
	svc     domain.Service
	authsvc authdomain.Service
	notify  notificationdomain.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gdb, err := db.NewTest()
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := gdb.AutoMigrate(
		&authdomain.User{},
		&authdomain.Session{},
		&domain.Organization{},
		&domain.OrganizationMember{},
		&notificationdomain.Notification{},
		&invitationdomain.Invitation{},
		&outlinedomain.Outline{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}

	log := zap.NewNop()
	userRepo, sessionRepo := authrepository.New(gdb)
	authsvc := authservice.New(log, userRepo, sessionRepo, node)
	notify := notificationservice.NewService(log, notificationrepository.NewRepository(gdb), node)
	repo := repository.NewRepository(gdb)

	return &testEnv{
		db:      gdb,
		svc:     NewService(log, gdb, repo, authsvc, notify, node),
		authsvc: authsvc,
		notify:  notify,
	}
}

func (e *testEnv) createUser(t *testing.T, email string) snowflake.ID {
	t.Helper()
	user, err := e.authsvc.CreateUser(context.Background(), authdomain.CreateUserRequest{
		Email:    email,
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user.ID
}

func TestCreateOrganizationAddsOwnerMember(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com")

	resp, err := env.svc.Create(ctx, owner, domain.CreateOrganizationRequest{Name: "Acme Rockets"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if resp.Slug != "acme-rockets" {
		t.Fatalf("slug = %q, want acme-rockets", resp.Slug)
	}

	orgs, err := env.svc.ListOrganizationsByUser(ctx, owner)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(orgs) != 1 || orgs[0].Role != domain.RoleOwner {
		t.Fatalf("orgs = %+v, want one owner row", orgs)
	}
}

func TestCreateOrganizationDuplicateNameSameOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com")

	if _, err := env.svc.Create(ctx, owner, domain.CreateOrganizationRequest{Name: "Acme"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := env.svc.Create(ctx, owner, domain.CreateOrganizationRequest{Name: "Acme"}); err != domain.ErrDuplicateName {
		t.Fatalf("second create err = %v, want ErrDuplicateName", err)
	}
}

func TestCreateOrganizationSlugCollisionGetsSuffix(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.createUser(t, "a@example.com")
	b := env.createUser(t, "b@example.com")

	first, err := env.svc.Create(ctx, a, domain.CreateOrganizationRequest{Name: "Acme"})
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	second, err := env.svc.Create(ctx, b, domain.CreateOrganizationRequest{Name: "Acme"})
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if second.Slug == first.Slug {
		t.Fatalf("expected distinct slugs, both %q", first.Slug)
	}
	if !strings.HasPrefix(second.Slug, "acme-") {
		t.Fatalf("second slug = %q, want acme- prefix", second.Slug)
	}
}

func TestRemoveMemberGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com")
	member := env.createUser(t, "member@example.com")

	resp, err := env.svc.Create(ctx, owner, domain.CreateOrganizationRequest{Name: "Acme"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	orgID, err := snowflake.ParseString(resp.ID)
	if err != nil {
		t.Fatalf("parse org id: %v", err)
	}

	repo := repository.NewRepository(env.db)
	node, _ := snowflake.NewNode(2)
	if err := repo.AddMember(ctx, domain.OrganizationMember{
		ID:     node.Generate(),
		OrgID:  orgID,
		UserID: member,
		Role:   domain.RoleMember,
	}); err != nil {
		t.Fatalf("add member: %v", err)
	}

	if err := env.svc.RemoveMember(ctx, member, orgID, owner); err != domain.ErrForbidden {
		t.Fatalf("non-owner remove err = %v, want ErrForbidden", err)
	}
	if err := env.svc.RemoveMember(ctx, owner, orgID, owner); err != domain.ErrCannotRemoveOwner {
		t.Fatalf("remove owner err = %v, want ErrCannotRemoveOwner", err)
	}
	if err := env.svc.RemoveMember(ctx, owner, orgID, member); err != nil {
		t.Fatalf("remove member: %v", err)
	}

	list, err := env.notify.List(ctx, member, false)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(list) != 1 || list[0].Type != notificationdomain.TypeMemberRemoved {
		t.Fatalf("notifications = %+v, want one member_removed", list)
	}
}

func TestDeleteRequiresOwnerPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com")
	member := env.createUser(t, "member@example.com")

	resp, err := env.svc.Create(ctx, owner, domain.CreateOrganizationRequest{Name: "Acme"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	orgID, _ := snowflake.ParseString(resp.ID)

	repo := repository.NewRepository(env.db)
	node, _ := snowflake.NewNode(3)
	if err := repo.AddMember(ctx, domain.OrganizationMember{
		ID:     node.Generate(),
		OrgID:  orgID,
		UserID: member,
		Role:   domain.RoleMember,
	}); err != nil {
		t.Fatalf("add member: %v", err)
	}

	if err := env.svc.Delete(ctx, owner, orgID, "wrong password"); err != authdomain.ErrInvalidCredentials {
		t.Fatalf("wrong password err = %v, want ErrInvalidCredentials", err)
	}
	if err := env.svc.Delete(ctx, member, orgID, "correct horse battery"); err != domain.ErrForbidden {
		t.Fatalf("non-owner err = %v, want ErrForbidden", err)
	}
	if err := env.svc.Delete(ctx, owner, orgID, "correct horse battery"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := env.svc.GetBySlug(ctx, resp.Slug); err != domain.ErrNotFound {
		t.Fatalf("get deleted err = %v, want ErrNotFound", err)
	}

	list, err := env.notify.List(ctx, member, false)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(list) != 1 || list[0].Type != notificationdomain.TypeOrganizationDeleted {
		t.Fatalf("notifications = %+v, want one organization_deleted", list)
	}
}
