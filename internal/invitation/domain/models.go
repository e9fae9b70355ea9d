package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
	StatusExpired  = "expired"
)

// Invitation is an owner-issued, time-bounded offer of membership. Status
// moves pending -> {accepted, rejected, expired} and never leaves a terminal
// state.
type Invitation struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID `gorm:"not null;index" json:"organization_id"`
	Email     string       `gorm:"not null;index" json:"email"`
	Role      string       `gorm:"not null" json:"role"`
	InviterID snowflake.ID `gorm:"not null" json:"inviter_id"`
	Status    string       `gorm:"not null;index" json:"status"`
	ExpiresAt time.Time    `json:"expires_at"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (Invitation) TableName() string {
	return "invitations"
}
