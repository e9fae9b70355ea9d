// Package domain contains persistence models for in-app notifications.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	TypeInvitation          = "invitation"
	TypeInvitationAccepted  = "invitation_accepted"
	TypeInvitationRejected  = "invitation_rejected"
	TypeJoinRequest         = "join_request"
	TypeJoinAccepted        = "join_accepted"
	TypeJoinRejected        = "join_rejected"
	TypeOrganizationDeleted = "organization_deleted"
	TypeMemberRemoved       = "member_removed"
)

// Notification is the authoritative record for approval flows; email is a
// best-effort companion channel.
type Notification struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	UserID    snowflake.ID      `gorm:"column:user_id;not null;index" json:"user_id"`
	Type      string            `gorm:"type:text;not null;index" json:"type"`
	Title     string            `gorm:"type:text;not null" json:"title"`
	Message   string            `gorm:"type:text;not null" json:"message"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb" json:"metadata"`
	Read      bool              `gorm:"not null;default:false;index" json:"read"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Notification) TableName() string { return "notifications" }
