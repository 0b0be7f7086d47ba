package service

import (
	"context"

	"github.com/alexanderramin/hrdesk/internal/authz"
)

// Guard checks the caller's role before a remote call is made. A zero
// Guard allows everything.
type Guard struct {
	Gate *authz.Gate
	Role func(ctx context.Context) string
}

func (g Guard) check(ctx context.Context, resource, action string) error {
	if g.Gate == nil {
		return nil
	}
	var role string
	if g.Role != nil {
		role = g.Role(ctx)
	}
	return g.Gate.Check(role, resource, action)
}
