package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/sharath2004/edubridge/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind parses the `ordering` query param, eg. "is_active,-created_at".
// Fields outside the allowed set are dropped so user input never reaches
// an ORDER BY clause unchecked.
func (ord *Ordering) Bind(ctx echo.Context, allowed ...string) {
	ord.Orderings = core.ParseOrdering(ctx.QueryParam(orderingParam), allowed...)
}
