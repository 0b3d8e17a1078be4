package auth

import "context"

type (
	// Context is the authorized request context handed to handlers.
	// Handlers must derive their filter through Scope before issuing any
	// repository read or write.
	Context struct {
		Identity Identity

		scoper *Scoper
	}

	// Gate composes the capability table and the scoper into a single
	// request-scoped decision. It holds no mutable state and caches no
	// decisions across requests.
	Gate struct {
		scoper *Scoper
	}
)

func NewGate(assignments AssignmentLoader) *Gate {
	return &Gate{scoper: NewScoper(assignments)}
}

// Authorize accepts or rejects a request before any handler logic runs.
//
// ErrUnauthenticated means the caller presented no usable identity (401);
// ErrRoleNotPermitted means the identity's role is outside required or
// the capability table denies resource/action (403).
//
// required, resource and action are supplied by the call site; an empty
// required set admits all valid roles, and an empty resource skips the
// capability check (eg. token refresh).
func (g *Gate) Authorize(ident Identity, required []Role, resource Resource, action Action) (*Context, error) {
	if ident.IsZero() || !ident.Role.Valid() {
		return nil, ErrUnauthenticated
	}
	if len(required) > 0 && !roleIn(ident.Role, required) {
		return nil, ErrRoleNotPermitted
	}
	if resource != "" && !Can(ident.Role, resource, action) {
		return nil, ErrRoleNotPermitted
	}
	return &Context{Identity: ident, scoper: g.scoper}, nil
}

// Scope derives the mandatory database filter for the bound identity.
func (c *Context) Scope(ctx context.Context, resource Resource, q Query) (Filter, error) {
	return c.scoper.DeriveFilter(ctx, c.Identity, resource, q)
}

func roleIn(role Role, roles []Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
