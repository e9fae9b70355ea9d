package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// ListLimit caps notification listings; newest entries win.
const ListLimit = 50

var ErrNotFound = errors.New("notification_not_found")

type CreateRequest struct {
	UserID   snowflake.ID
	Type     string
	Title    string
	Message  string
	Metadata map[string]any
}

type Service interface {
	Notify(ctx context.Context, req CreateRequest) (*Notification, error)
	// Upsert refreshes an existing unread notification matching
	// (user, type, metadata[refKey]) instead of appending a duplicate.
	Upsert(ctx context.Context, req CreateRequest, refKey string) (*Notification, error)
	Get(ctx context.Context, id snowflake.ID) (*Notification, error)
	List(ctx context.Context, userID snowflake.ID, unreadOnly bool) ([]Notification, error)
	// MarkReadByRef flips the unread notification matching
	// (user, type, metadata[refKey]); missing matches are a no-op.
	MarkReadByRef(ctx context.Context, userID snowflake.ID, typ, refKey, refValue string) error
	MarkRead(ctx context.Context, userID snowflake.ID, ids []snowflake.ID) error
	MarkAllRead(ctx context.Context, userID snowflake.ID) error
}
