package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/teamspace/internal/notification/domain"
	"github.com/smallbiznis/teamspace/internal/notification/repository"
	"github.com/smallbiznis/teamspace/pkg/db"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, domain.Repository, *gorm.DB) {
	t.Helper()

	gdb, err := db.NewTest()
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := gdb.AutoMigrate(&domain.Notification{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}

	repo := repository.NewRepository(gdb)
	return NewService(zap.NewNop(), repo, node), repo, gdb
}

func TestListCapsAtNewest(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	userID := snowflake.ID(10)

	node, _ := snowflake.NewNode(2)
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < domain.ListLimit+5; i++ {
		n := &domain.Notification{
			ID:        node.Generate(),
			UserID:    userID,
			Type:      domain.TypeJoinRequest,
			Title:     fmt.Sprintf("n-%d", i),
			Message:   "m",
			Metadata:  datatypes.JSONMap{},
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := repo.Create(ctx, n); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	items, err := svc.List(ctx, userID, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != domain.ListLimit {
		t.Fatalf("expected %d notifications, got %d", domain.ListLimit, len(items))
	}
	if items[0].Title != fmt.Sprintf("n-%d", domain.ListLimit+4) {
		t.Fatalf("expected newest first, got %q", items[0].Title)
	}
}

func TestUpsertRefreshesUnread(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	userID := snowflake.ID(10)

	req := domain.CreateRequest{
		UserID:  userID,
		Type:    domain.TypeInvitation,
		Title:   "first",
		Message: "m",
		Metadata: map[string]any{
			"organization_id": "100",
		},
	}

	first, err := svc.Upsert(ctx, req, "organization_id")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	req.Title = "second"
	second, err := svc.Upsert(ctx, req, "organization_id")
	if err != nil {
		t.Fatalf("upsert again: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected refresh of the same notification, got a new row")
	}

	items, err := svc.List(ctx, userID, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].Title != "second" {
		t.Fatalf("expected single refreshed notification, got %+v", items)
	}

	// Once read, a re-invite appends instead of resurrecting the old row.
	if err := svc.MarkRead(ctx, userID, []snowflake.ID{first.ID}); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	third, err := svc.Upsert(ctx, req, "organization_id")
	if err != nil {
		t.Fatalf("upsert after read: %v", err)
	}
	if third.ID == first.ID {
		t.Fatalf("expected a fresh notification after the old one was read")
	}
}

func TestMarkReadScopedToUser(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	n, err := svc.Notify(ctx, domain.CreateRequest{
		UserID:  snowflake.ID(10),
		Type:    domain.TypeJoinAccepted,
		Title:   "t",
		Message: "m",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}

	if err := svc.MarkRead(ctx, snowflake.ID(99), []snowflake.ID{n.ID}); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	unread, err := svc.List(ctx, snowflake.ID(10), true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(unread) != 1 {
		t.Fatalf("expected notification to stay unread for its owner, got %d unread", len(unread))
	}
}
