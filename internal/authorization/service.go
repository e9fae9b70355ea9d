package authorization

import (
	"context"
	"errors"
)

var (
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidActor        = errors.New("invalid_actor")
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidObject       = errors.New("invalid_object")
	ErrInvalidAction       = errors.New("invalid_action")
)

// Service answers whether an actor may perform an action on an object within
// an organization domain. Roles come from organization_members rows.
type Service interface {
	Authorize(ctx context.Context, actor string, orgID string, object string, action string) error
}
