package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kiwisport/clubboard/core/attendance"
)

type attendanceApi struct {
	board    *attendance.Board
	validate *validator.Validate
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := attendanceApi{
		board:    deps.Board,
		validate: deps.Validate,
	}

	ag := g.Group("/attendance", jwt)
	ag.GET("", api.sheet)
	ag.POST("/mark", api.mark)
}

type sheetSelection struct {
	Date  string `query:"date" validate:"omitempty,isodate"`
	Sport string `query:"sport" validate:"omitempty,sport|eq=All"`
}

// Handlers

// sheet serves the day sheet for the selected date and sport filter.
func (api *attendanceApi) sheet(ctx echo.Context) error {
	var sel sheetSelection
	if err := ctx.Bind(&sel); err != nil {
		return errors.Wrap(err, "binding to sheetSelection")
	}
	if err := api.validate.Struct(&sel); err != nil {
		return err
	}
	if sel.Date != "" {
		api.board.SetDate(sel.Date)
	}
	api.board.SetSport(sel.Sport)

	if err := api.board.Refresh(ctx.Request().Context()); err != nil {
		// a superseded fetch is not a failure; the current sheet still stands
		if errors.Cause(err) != attendance.ErrStaleFetch {
			return errors.Wrap(err, "refreshing attendance board")
		}
		staleFetchDrops.Inc()
	}

	return ctx.JSON(http.StatusOK, api.board.Sheet())
}

// mark sets a member's attendance for today. The change is applied
// optimistically and rolled back when the upstream save fails.
func (api *attendanceApi) mark(ctx echo.Context) error {
	var data attendance.Mark
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Mark")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.board.Mark(ctx.Request().Context(), data.MemberID, data.Status); err != nil {
		if errors.Cause(err) != attendance.ErrReadOnlyDate {
			markReverts.Inc()
		}
		return errors.Wrap(err, "marking attendance")
	}

	return ctx.JSON(http.StatusOK, api.board.Sheet())
}
