package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	KindEmailVerification = "email_verification"
	KindPasswordReset     = "password_reset"
)

// Verification is a single-use token row. Redeeming or touching an expired
// token removes the row, so presence implies the token is still spendable.
type Verification struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	Kind      string       `gorm:"size:32;uniqueIndex:ux_verifications_kind_token"`
	Token     string       `gorm:"size:128;uniqueIndex:ux_verifications_kind_token"`
	UserID    snowflake.ID `gorm:"index"`
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (Verification) TableName() string {
	return "verifications"
}
