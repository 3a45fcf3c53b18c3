package echoapi

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kiwisport/clubboard/core/member"
)

type memberApi struct {
	roster   *member.Roster
	validate *validator.Validate
}

func registerMemberAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := memberApi{
		roster:   deps.Roster,
		validate: deps.Validate,
	}

	mg := g.Group("/members", jwt)
	mg.GET("", api.query)
	mg.POST("", api.create)
	mg.GET("/colors", api.queryColors)
	mg.GET("/:id", api.retrieve)
	mg.PUT("/:id", api.update)
	mg.DELETE("/:id", api.destroy)
}

// Handlers

func (api *memberApi) query(ctx echo.Context) error {
	filter := new(member.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	api.roster.SetFilter(*filter)

	if err := api.roster.Refresh(ctx.Request().Context()); err != nil {
		// a superseded fetch is not a failure; the current rows still stand
		if errors.Cause(err) != member.ErrStaleFetch {
			return errors.Wrap(err, "refreshing roster")
		}
		staleFetchDrops.Inc()
	}

	rows := api.roster.Rows()
	if rows == nil {
		rows = []member.Row{}
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *memberApi) retrieve(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	mbr, err := api.roster.Get(id)
	if err != nil {
		return errors.Wrap(err, "finding member by ID")
	}
	return ctx.JSON(http.StatusOK, mbr)
}

func (api *memberApi) create(ctx echo.Context) error {
	var data member.NewMember
	if err := api.bindMemberData(ctx, &data, &data.Image); err != nil {
		return errors.Wrap(err, "binding to NewMember")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	mbr, err := api.roster.Add(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating member")
	}
	return ctx.JSON(http.StatusCreated, mbr)
}

func (api *memberApi) update(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	orig, err := api.roster.Get(id)
	if err != nil {
		return errors.Wrap(err, "finding member by ID")
	}

	data := member.UpdateMember{}
	data.FromMember(orig)
	if err := api.bindMemberData(ctx, &data, &data.Image); err != nil {
		return errors.Wrap(err, "binding to UpdateMember")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	mbr, err := api.roster.Edit(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating member")
	}
	return ctx.JSON(http.StatusOK, mbr)
}

func (api *memberApi) destroy(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	confirmed, _ := strconv.ParseBool(ctx.QueryParam("confirm"))

	if err := api.roster.Delete(ctx.Request().Context(), id, confirmed); err != nil {
		return errors.Wrap(err, "deleting member")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// queryColors returns the avatar and sport badge colors for the current rows.
func (api *memberApi) queryColors(ctx echo.Context) error {
	rows := api.roster.Rows()
	colors := make(map[string]echo.Map, len(rows))
	for _, row := range rows {
		colors[strconv.Itoa(row.ID)] = echo.Map{
			"avatar": row.AvatarColor,
			"sport":  row.SportColor,
		}
	}
	return ctx.JSON(http.StatusOK, colors)
}

// bindMemberData fills a member payload from either a JSON body or a
// multipart form carrying an optional image upload.
func (api *memberApi) bindMemberData(ctx echo.Context, data interface{}, upload **member.Upload) error {
	contentType := ctx.Request().Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
		return ctx.Bind(data)
	}

	if err := ctx.Bind(data); err != nil {
		return err
	}
	fh, err := ctx.FormFile("image")
	if err != nil {
		// no upload in the form; keep the stored image
		return nil
	}
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	content, err := io.ReadAll(src)
	if err != nil {
		return err
	}
	*upload = &member.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Content:     content,
	}
	return nil
}
