package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectOrganization = "organization"
	ObjectMember       = "member"
	ObjectInvitation   = "invitation"
	ObjectOutline      = "outline"
)

const (
	ActionOrganizationDelete = "organization.delete"

	ActionMemberView   = "member.view"
	ActionMemberInvite = "member.invite"
	ActionMemberRemove = "member.remove"

	ActionInvitationView = "invitation.view"

	ActionOutlineView   = "outline.view"
	ActionOutlineCreate = "outline.create"
	ActionOutlineUpdate = "outline.update"
	ActionOutlineDelete = "outline.delete"
)

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(db *gorm.DB, log *zap.Logger, enforcer *casbin.SyncedEnforcer) Service {
	return &ServiceImpl{
		db:       db,
		log:      log.Named("authorization.service"),
		enforcer: enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, actor string, orgID string, object string, action string) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ErrInvalidActor
	}
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return ErrInvalidOrganization
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject, roleName, err := s.resolveActor(ctx, actor, orgID)
	if err != nil {
		return err
	}

	domain := fmt.Sprintf("org:%s", orgID)
	if err := s.ensureGrouping(subject, roleName, domain); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, domain, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrForbidden
	}
	return nil
}

func (s *ServiceImpl) resolveActor(ctx context.Context, actor string, orgID string) (string, string, error) {
	if !strings.HasPrefix(actor, "user:") {
		return "", "", ErrInvalidActor
	}

	userIDRaw := strings.TrimPrefix(actor, "user:")
	userID, err := snowflake.ParseString(userIDRaw)
	if err != nil || userID == 0 {
		return "", "", ErrInvalidActor
	}
	parsedOrgID, err := snowflake.ParseString(orgID)
	if err != nil || parsedOrgID == 0 {
		return "", "", ErrInvalidOrganization
	}

	role, err := s.roleForUser(ctx, parsedOrgID, userID)
	if err != nil {
		return "", "", err
	}
	return actor, fmt.Sprintf("role:%s", strings.ToLower(role)), nil
}

func (s *ServiceImpl) roleForUser(ctx context.Context, orgID snowflake.ID, userID snowflake.ID) (string, error) {
	var row struct {
		Role string `gorm:"column:role"`
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT role
		 FROM organization_members
		 WHERE org_id = ? AND user_id = ?
		 LIMIT 1`,
		orgID,
		userID,
	).Scan(&row).Error; err != nil {
		return "", err
	}

	role := strings.TrimSpace(row.Role)
	if role == "" {
		return "", ErrForbidden
	}
	return role, nil
}

// ensureGrouping keeps the subject's role binding for the org domain current,
// replacing stale bindings left by role changes or re-joins.
func (s *ServiceImpl) ensureGrouping(subject string, roleName string, domain string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject, "", domain)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 {
			continue
		}
		if rule[1] != roleName {
			params := make([]interface{}, 0, len(rule))
			for _, value := range rule {
				params = append(params, value)
			}
			_, _ = s.enforcer.RemoveGroupingPolicy(params...)
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName, domain)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName, domain)
	return err
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		{"role:member", "*", ObjectMember, ActionMemberView},
		{"role:member", "*", ObjectOutline, ActionOutlineView},

		{"role:owner", "*", ObjectOrganization, ActionOrganizationDelete},
		{"role:owner", "*", ObjectMember, ActionMemberView},
		{"role:owner", "*", ObjectMember, ActionMemberInvite},
		{"role:owner", "*", ObjectMember, ActionMemberRemove},
		{"role:owner", "*", ObjectInvitation, ActionInvitationView},
		{"role:owner", "*", ObjectOutline, ActionOutlineView},
		{"role:owner", "*", ObjectOutline, ActionOutlineCreate},
		{"role:owner", "*", ObjectOutline, ActionOutlineUpdate},
		{"role:owner", "*", ObjectOutline, ActionOutlineDelete},
	}

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
