package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

//go:generate mockgen -source=repository.go -destination=../mocks/mock_repository.go -package=mocks

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	Update(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id snowflake.ID) (*Notification, error)
	ListByUser(ctx context.Context, userID snowflake.ID, unreadOnly bool, limit int) ([]Notification, error)
	FindUnreadByTypeRef(ctx context.Context, userID snowflake.ID, typ, refKey, refValue string) (*Notification, error)
	MarkRead(ctx context.Context, userID snowflake.ID, ids []snowflake.ID) error
	MarkAllRead(ctx context.Context, userID snowflake.ID) error
}
