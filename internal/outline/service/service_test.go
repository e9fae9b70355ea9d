package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	orgdomain "github.com/smallbiznis/teamspace/internal/organization/domain"
	orgrepository "github.com/smallbiznis/teamspace/internal/organization/repository"
	"github.com/smallbiznis/teamspace/internal/outline/domain"
	"github.com/smallbiznis/teamspace/internal/outline/repository"
	"github.com/smallbiznis/teamspace/pkg/db"
	"go.uber.org/zap"
)

type testEnv struct {
	svc    domain.Service
	owner  snowflake.ID
	member snowflake.ID
	orgID  snowflake.ID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gdb, err := db.NewTest()
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := gdb.AutoMigrate(
		&orgdomain.Organization{},
		&orgdomain.OrganizationMember{},
		&domain.Outline{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}

	ctx := context.Background()
	orgRepo := orgrepository.NewRepository(gdb)
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
	if err := orgRepo.CreateOrganization(ctx, org); err != nil {
		t.Fatalf("create org: %v", err)
	}
	for userID, role := range map[snowflake.ID]string{owner: orgdomain.RoleOwner, member: orgdomain.RoleMember} {
		if err := orgRepo.AddMember(ctx, orgdomain.OrganizationMember{
			ID:        node.Generate(),
			OrgID:     org.ID,
			UserID:    userID,
			Role:      role,
			CreatedAt: now,
		}); err != nil {
			t.Fatalf("add member: %v", err)
		}
	}

	return &testEnv{
		svc:    NewService(zap.NewNop(), repository.NewRepository(gdb), orgRepo, node),
		owner:  owner,
		member: member,
		orgID:  org.ID,
	}
}

func TestCreateAppliesDefaults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	o, err := env.svc.Create(ctx, env.owner, domain.CreateRequest{
		OrgID:  env.orgID,
		Header: "Q3 planning",
		Target: 10,
		Limit:  20,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if o.SectionType != domain.SectionOverview || o.Status != domain.StatusDraft || o.Reviewer != domain.ReviewerUnassigned {
		t.Fatalf("defaults not applied: %+v", o)
	}
}

func TestCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.svc.Create(ctx, env.member, domain.CreateRequest{OrgID: env.orgID, Header: "x"}); err != orgdomain.ErrForbidden {
		t.Fatalf("member create err = %v, want ErrForbidden", err)
	}
	if _, err := env.svc.Create(ctx, env.owner, domain.CreateRequest{OrgID: env.orgID, Header: "  "}); err != domain.ErrInvalidHeader {
		t.Fatalf("blank header err = %v, want ErrInvalidHeader", err)
	}
	if _, err := env.svc.Create(ctx, env.owner, domain.CreateRequest{OrgID: env.orgID, Header: "x", SectionType: "prologue"}); err != domain.ErrInvalidSection {
		t.Fatalf("bad section err = %v, want ErrInvalidSection", err)
	}
	if _, err := env.svc.Create(ctx, env.owner, domain.CreateRequest{OrgID: env.orgID, Header: "x", Status: "paused"}); err != domain.ErrInvalidStatus {
		t.Fatalf("bad status err = %v, want ErrInvalidStatus", err)
	}
	if _, err := env.svc.Create(ctx, env.owner, domain.CreateRequest{OrgID: env.orgID, Header: "x", Reviewer: "ghost"}); err != domain.ErrInvalidReviewer {
		t.Fatalf("bad reviewer err = %v, want ErrInvalidReviewer", err)
	}
}

func TestListVisibleToMembers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.svc.Create(ctx, env.owner, domain.CreateRequest{OrgID: env.orgID, Header: "one"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	list, err := env.svc.ListByOrg(ctx, env.member, env.orgID)
	if err != nil {
		t.Fatalf("member list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len = %d, want 1", len(list))
	}

	outsider := snowflake.ID(999)
	if _, err := env.svc.ListByOrg(ctx, outsider, env.orgID); err != orgdomain.ErrForbidden {
		t.Fatalf("outsider list err = %v, want ErrForbidden", err)
	}
}

func TestPatchOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	o, err := env.svc.Create(ctx, env.owner, domain.CreateRequest{OrgID: env.orgID, Header: "one"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	status := domain.StatusInProgress
	if _, err := env.svc.Patch(ctx, env.member, o.ID, domain.PatchRequest{Status: &status}); err != orgdomain.ErrForbidden {
		t.Fatalf("member patch err = %v, want ErrForbidden", err)
	}

	header := "renamed"
	patched, err := env.svc.Patch(ctx, env.owner, o.ID, domain.PatchRequest{Header: &header, Status: &status})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if patched.Header != "renamed" || patched.Status != domain.StatusInProgress {
		t.Fatalf("patched = %+v", patched)
	}

	bad := "paused"
	if _, err := env.svc.Patch(ctx, env.owner, o.ID, domain.PatchRequest{Status: &bad}); err != domain.ErrInvalidStatus {
		t.Fatalf("bad status patch err = %v, want ErrInvalidStatus", err)
	}
}

func TestDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	o, err := env.svc.Create(ctx, env.owner, domain.CreateRequest{OrgID: env.orgID, Header: "one"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := env.svc.Delete(ctx, env.member, o.ID); err != orgdomain.ErrForbidden {
		t.Fatalf("member delete err = %v, want ErrForbidden", err)
	}
	if err := env.svc.Delete(ctx, env.owner, o.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := env.svc.Delete(ctx, env.owner, o.ID); err != domain.ErrNotFound {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
}
