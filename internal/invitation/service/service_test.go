package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/prometheus/client_golang/prometheus"
	authdomain "github.com/smallbiznis/teamspace/internal/auth/domain"
	authrepository "github.com/smallbiznis/teamspace/internal/auth/repository"
	authservice "github.com/smallbiznis/teamspace/internal/auth/service"
	"github.com/smallbiznis/teamspace/internal/clock"
	"github.com/smallbiznis/teamspace/internal/config"
	"github.com/smallbiznis/teamspace/internal/invitation/domain"
	"github.com/smallbiznis/teamspace/internal/invitation/repository"
	notificationdomain "github.com/smallbiznis/teamspace/internal/notification/domain"
	notificationrepository "github.com/smallbiznis/teamspace/internal/notification/repository"
	notificationservice "github.com/smallbiznis/teamspace/internal/notification/service"
	"github.com/smallbiznis/teamspace/internal/observability/metrics"
	orgdomain "github.com/smallbiznis/teamspace/internal/organization/domain"
	orgrepository "github.com/smallbiznis/teamspace/internal/organization/repository"
	"github.com/smallbiznis/teamspace/internal/providers/email"
	"github.com/smallbiznis/teamspace/pkg/db"
	"go.uber.org/zap"
)

type testEnv struct {
	svc     domain.Service
	authsvc authdomain.Service
	orgRepo orgdomain.Repository
	notify  notificationdomain.Service
	clk     *clock.FakeClock
	node    *snowflake.Node
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
		&orgdomain.Organization{},
		&orgdomain.OrganizationMember{},
		&notificationdomain.Notification{},
		&domain.Invitation{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}

	log := zap.NewNop()
	cfg := config.Config{BaseURL: "https://teamspace.test"}
	userRepo, sessionRepo := authrepository.New(gdb)
	authsvc := authservice.New(log, userRepo, sessionRepo, node)
	notify := notificationservice.NewService(log, notificationrepository.NewRepository(gdb), node)
	orgRepo := orgrepository.NewRepository(gdb)
	m := metrics.New(prometheus.NewRegistry(), metrics.Config{Environment: "test"})
	mailer := email.NewDispatcher(log, &email.NoOpProvider{}, m, cfg)
	clk := clock.NewFakeClock(time.Now().UTC())

	svc := NewService(log, cfg, repository.NewRepository(gdb), orgRepo, authsvc, notify, mailer, clk, node)

	return &testEnv{
		svc:     svc,
		authsvc: authsvc,
		orgRepo: orgRepo,
		notify:  notify,
		clk:     clk,
		node:    node,
	}
}

func (e *testEnv) createUser(t *testing.T, emailAddr string) *authdomain.User {
	t.Helper()
	user, err := e.authsvc.CreateUser(context.Background(), authdomain.CreateUserRequest{
		Email:    emailAddr,
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("create user %s: %v", emailAddr, err)
	}
	return user
}

func (e *testEnv) createOrg(t *testing.T, ownerID snowflake.ID, name, slugName string) *orgdomain.Organization {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	org := orgdomain.Organization{
		ID:        e.node.Generate(),
		Name:      name,
		Slug:      slugName,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.orgRepo.CreateOrganization(ctx, org); err != nil {
		t.Fatalf("create org: %v", err)
	}
	if err := e.orgRepo.AddMember(ctx, orgdomain.OrganizationMember{
		ID:        e.node.Generate(),
		OrgID:     org.ID,
		UserID:    ownerID,
		Role:      orgdomain.RoleOwner,
		CreatedAt: now,
	}); err != nil {
		t.Fatalf("add owner member: %v", err)
	}
	return &org
}

func (e *testEnv) invite(t *testing.T, inviterID, orgID snowflake.ID, emailAddr string) snowflake.ID {
	t.Helper()
	resp, err := e.svc.Invite(context.Background(), inviterID, domain.InviteRequest{
		OrgID: orgID,
		Email: emailAddr,
	})
	if err != nil {
		t.Fatalf("invite %s: %v", emailAddr, err)
	}
	id, err := snowflake.ParseString(resp.ID)
	if err != nil {
		t.Fatalf("parse invitation id: %v", err)
	}
	return id
}

func TestInviteCreatesPendingAndNotifies(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com")
	invitee := env.createUser(t, "invitee@example.com")
	org := env.createOrg(t, owner.ID, "Acme", "acme")

	resp, err := env.svc.Invite(ctx, owner.ID, domain.InviteRequest{OrgID: org.ID, Email: "invitee@example.com"})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if resp.Status != domain.StatusPending || resp.Role != orgdomain.RoleMember {
		t.Fatalf("resp = %+v, want pending member", resp)
	}

	list, err := env.notify.List(ctx, invitee.ID, true)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(list) != 1 || list[0].Type != notificationdomain.TypeInvitation {
		t.Fatalf("notifications = %+v, want one invitation", list)
	}
}

func TestInviteGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com")
	stranger := env.createUser(t, "stranger@example.com")
	org := env.createOrg(t, owner.ID, "Acme", "acme")

	if _, err := env.svc.Invite(ctx, stranger.ID, domain.InviteRequest{OrgID: org.ID, Email: "x@example.com"}); err != domain.ErrForbidden {
		t.Fatalf("non-owner invite err = %v, want ErrForbidden", err)
	}
	if _, err := env.svc.Invite(ctx, owner.ID, domain.InviteRequest{OrgID: org.ID, Email: "not-an-email"}); err != domain.ErrInvalidEmail {
		t.Fatalf("bad email err = %v, want ErrInvalidEmail", err)
	}
	if _, err := env.svc.Invite(ctx, owner.ID, domain.InviteRequest{OrgID: org.ID, Email: "x@example.com", Role: orgdomain.RoleOwner}); err != domain.ErrInvalidRole {
		t.Fatalf("owner role err = %v, want ErrInvalidRole", err)
	}
	if _, err := env.svc.Invite(ctx, owner.ID, domain.InviteRequest{OrgID: org.ID, Email: "owner@example.com"}); err != orgdomain.ErrAlreadyMember {
		t.Fatalf("member invite err = %v, want ErrAlreadyMember", err)
	}
}

func TestInviteDuplicatePending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com")
	org := env.createOrg(t, owner.ID, "Acme", "acme")

	env.invite(t, owner.ID, org.ID, "invitee@example.com")
	if _, err := env.svc.Invite(ctx, owner.ID, domain.InviteRequest{OrgID: org.ID, Email: "invitee@example.com"}); err != domain.ErrPendingExists {
		t.Fatalf("duplicate invite err = %v, want ErrPendingExists", err)
	}
}

func TestReinviteAfterExpiryExpiresStaleRow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com")
	env.createUser(t, "invitee@example.com")
	org := env.createOrg(t, owner.ID, "Acme", "acme")

	first := env.invite(t, owner.ID, org.ID, "invitee@example.com")
	env.clk.Advance(8 * 24 * time.Hour)

	second, err := env.svc.Invite(ctx, owner.ID, domain.InviteRequest{OrgID: org.ID, Email: "invitee@example.com"})
	if err != nil {
		t.Fatalf("re-invite: %v", err)
	}
	if second.Status != domain.StatusPending {
		t.Fatalf("second status = %s, want pending", second.Status)
	}

	list, err := env.svc.ListByOrg(ctx, owner.ID, org.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	seen := map[string]string{}
	for _, inv := range list {
		seen[inv.ID] = inv.Status
	}
	if seen[first.String()] != domain.StatusExpired {
		t.Fatalf("first invitation status = %s, want expired", seen[first.String()])
	}
}

func TestAcceptCreatesMembership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com")
	invitee := env.createUser(t, "invitee@example.com")
	org := env.createOrg(t, owner.ID, "Acme", "acme")

	invID := env.invite(t, owner.ID, org.ID, "invitee@example.com")

	if err := env.svc.Accept(ctx, invitee.ID, invID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	isMember, err := env.orgRepo.IsMember(ctx, org.ID, invitee.ID)
	if err != nil {
		t.Fatalf("is member: %v", err)
	}
	if !isMember {
		t.Fatal("expected membership after accept")
	}

	// The originating invitation notification is now read.
	unread, err := env.notify.List(ctx, invitee.ID, true)
	if err != nil {
		t.Fatalf("list unread: %v", err)
	}
	for _, n := range unread {
		if n.Type == notificationdomain.TypeInvitation {
			t.Fatalf("invitation notification still unread: %+v", n)
		}
	}

	ownerList, err := env.notify.List(ctx, owner.ID, true)
	if err != nil {
		t.Fatalf("list owner: %v", err)
	}
	if len(ownerList) != 1 || ownerList[0].Type != notificationdomain.TypeInvitationAccepted {
		t.Fatalf("owner notifications = %+v, want one invitation_accepted", ownerList)
	}

	if err := env.svc.Accept(ctx, invitee.ID, invID); err != domain.ErrNotPending {
		t.Fatalf("second accept err = %v, want ErrNotPending", err)
	}
}

func TestAcceptEmailMismatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com")
	other := env.createUser(t, "other@example.com")
	org := env.createOrg(t, owner.ID, "Acme", "acme")

	invID := env.invite(t, owner.ID, org.ID, "invitee@example.com")

	if err := env.svc.Accept(ctx, other.ID, invID); err != domain.ErrForbidden {
		t.Fatalf("mismatched accept err = %v, want ErrForbidden", err)
	}
}

func TestAcceptExpiredFlipsStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com")
	invitee := env.createUser(t, "invitee@example.com")
	org := env.createOrg(t, owner.ID, "Acme", "acme")

	invID := env.invite(t, owner.ID, org.ID, "invitee@example.com")
	env.clk.Advance(8 * 24 * time.Hour)

	if err := env.svc.Accept(ctx, invitee.ID, invID); err != domain.ErrExpired {
		t.Fatalf("stale accept err = %v, want ErrExpired", err)
	}

	isMember, err := env.orgRepo.IsMember(ctx, org.ID, invitee.ID)
	if err != nil {
		t.Fatalf("is member: %v", err)
	}
	if isMember {
		t.Fatal("expired accept must not create membership")
	}

	// The row is terminal now, not just lazily re-evaluated each call.
	if err := env.svc.Accept(ctx, invitee.ID, invID); err != domain.ErrExpired {
		t.Fatalf("repeat accept err = %v, want ErrExpired", err)
	}
}

func TestAcceptWhenAlreadyMemberIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com")
	invitee := env.createUser(t, "invitee@example.com")
	org := env.createOrg(t, owner.ID, "Acme", "acme")

	invID := env.invite(t, owner.ID, org.ID, "invitee@example.com")

	if err := env.orgRepo.AddMember(ctx, orgdomain.OrganizationMember{
		ID:        env.node.Generate(),
		OrgID:     org.ID,
		UserID:    invitee.ID,
		Role:      orgdomain.RoleMember,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("pre-add member: %v", err)
	}

	if err := env.svc.Accept(ctx, invitee.ID, invID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	list, err := env.svc.ListByOrg(ctx, owner.ID, org.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Status != domain.StatusAccepted {
		t.Fatalf("list = %+v, want one accepted", list)
	}
}

func TestRejectNotifiesOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner@example.com")
	invitee := env.createUser(t, "invitee@example.com")
	org := env.createOrg(t, owner.ID, "Acme", "acme")

	invID := env.invite(t, owner.ID, org.ID, "invitee@example.com")

	if err := env.svc.Reject(ctx, invitee.ID, invID); err != nil {
		t.Fatalf("reject: %v", err)
	}

	isMember, err := env.orgRepo.IsMember(ctx, org.ID, invitee.ID)
	if err != nil {
		t.Fatalf("is member: %v", err)
	}
	if isMember {
		t.Fatal("reject must not create membership")
	}

	ownerList, err := env.notify.List(ctx, owner.ID, true)
	if err != nil {
		t.Fatalf("list owner: %v", err)
	}
	if len(ownerList) != 1 || ownerList[0].Type != notificationdomain.TypeInvitationRejected {
		t.Fatalf("owner notifications = %+v, want one invitation_rejected", ownerList)
	}

	if err := env.svc.Accept(ctx, invitee.ID, invID); err != domain.ErrNotPending {
		t.Fatalf("accept after reject err = %v, want ErrNotPending", err)
	}
}
