package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	SectionOverview     = "overview"
	SectionObjectives   = "objectives"
	SectionDeliverables = "deliverables"
	SectionReview       = "review"
)

const (
	StatusDraft      = "draft"
	StatusInProgress = "in_progress"
	StatusComplete   = "complete"
)

const (
	ReviewerUnassigned = "unassigned"
	ReviewerOwner      = "owner"
	ReviewerMember     = "member"
)

func ValidSectionType(v string) bool {
	switch v {
	case SectionOverview, SectionObjectives, SectionDeliverables, SectionReview:
		return true
	}
	return false
}

func ValidStatus(v string) bool {
	switch v {
	case StatusDraft, StatusInProgress, StatusComplete:
		return true
	}
	return false
}

func ValidReviewer(v string) bool {
	switch v {
	case ReviewerUnassigned, ReviewerOwner, ReviewerMember:
		return true
	}
	return false
}

type Outline struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID       snowflake.ID `gorm:"not null;index" json:"organization_id"`
	Header      string       `gorm:"not null" json:"header"`
	SectionType string       `gorm:"not null" json:"section_type"`
	Status      string       `gorm:"not null" json:"status"`
	Target      int          `json:"target"`
	Limit       int          `json:"limit"`
	Reviewer    string       `gorm:"not null" json:"reviewer"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (Outline) TableName() string {
	return "outlines"
}
