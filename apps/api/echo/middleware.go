package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/sharath2004/edubridge/core/auth"
)

var contextAuthKey = "authContext"

// authorize runs the gate for the route's resource/action pair and
// stashes the resulting authorization context; handlers read it back
// with getAuthContext to derive their mandatory scope filter.
func authorize(gate *auth.Gate, resource auth.Resource, action auth.Action, roles ...auth.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			authCtx, err := gate.Authorize(claims.Identity(), roles, resource, action)
			if err != nil {
				return err
			}
			ctx.Set(contextAuthKey, authCtx)
			return next(ctx)
		}
	}
}

func getAuthContext(ctx echo.Context) (*auth.Context, error) {
	if authCtx, ok := ctx.Get(contextAuthKey).(*auth.Context); ok {
		return authCtx, nil
	}
	return nil, auth.ErrUnauthenticated
}
