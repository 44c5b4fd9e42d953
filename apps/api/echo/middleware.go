package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/elearn360/backend/core"
	"github.com/elearn360/backend/core/user"
)

func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// reviewerMiddleware admits project managers and admins.
func reviewerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if contextHasAnyRole(ctx, user.ReviewerRoles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// Ordering binds the `ordering` query param ("-created_at,name") to
// core.DBOrdering values; a leading dash means descending.
type Ordering struct {
	Orderings []core.DBOrdering
}

func (o *Ordering) Bind(ctx echo.Context) {
	raw := ctx.QueryParam("ordering")
	if raw == "" {
		return
	}
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		ord := core.DBOrdering{Field: field, Ascending: true}
		if strings.HasPrefix(field, "-") {
			ord = core.DBOrdering{Field: field[1:], Ascending: false}
		}
		o.Orderings = append(o.Orderings, ord)
	}
}
