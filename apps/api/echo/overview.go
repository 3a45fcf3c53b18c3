package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kiwisport/clubboard/core/overview"
)

type overviewApi struct {
	svc *overview.Service
}

func registerOverviewAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := overviewApi{svc: deps.Overview}

	g.GET("/overview", api.snapshot, jwt)
}

// snapshot serves the dashboard aggregates: member counts, sport
// distribution, growth by registration month and today's attendance.
func (api *overviewApi) snapshot(ctx echo.Context) error {
	ov, err := api.svc.Snapshot(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "building overview")
	}
	return ctx.JSON(http.StatusOK, ov)
}
