package echoapi

import (
	"net/http"
	"net/mail"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kiwisport/clubboard/core"
	"github.com/kiwisport/clubboard/core/member"
	"github.com/kiwisport/clubboard/core/payment"
)

type paymentApi struct {
	ledger   *payment.Ledger
	mailSvc  core.EmailService
	conf     *core.Config
	validate *validator.Validate
}

func registerPaymentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := paymentApi{
		ledger:   deps.Ledger,
		mailSvc:  deps.MailSvc,
		conf:     deps.Conf,
		validate: deps.Validate,
	}

	pg := g.Group("/payments", jwt)
	pg.GET("", api.sheet)
	pg.POST("", api.save)
	pg.POST("/remind", api.remind, adminMiddleware())
}

type monthSelection struct {
	Month  string `query:"month" validate:"omitempty,isomonth"`
	Search string `query:"search"`
	Sport  string `query:"sport"`
}

// Handlers

// sheet serves the month sheet for the selected month and filters.
func (api *paymentApi) sheet(ctx echo.Context) error {
	var sel monthSelection
	if err := ctx.Bind(&sel); err != nil {
		return errors.Wrap(err, "binding to monthSelection")
	}
	if err := api.validate.Struct(&sel); err != nil {
		return err
	}
	if sel.Month != "" {
		api.ledger.SetMonth(sel.Month)
	}
	api.ledger.SetFilter(member.QueryFilter{Search: sel.Search, Sport: sel.Sport})

	if err := api.ledger.Refresh(ctx.Request().Context()); err != nil {
		// a superseded fetch is not a failure; the current sheet still stands
		if errors.Cause(err) != payment.ErrStaleFetch {
			return errors.Wrap(err, "refreshing payment ledger")
		}
		staleFetchDrops.Inc()
	}

	return ctx.JSON(http.StatusOK, api.ledger.Sheet())
}

// save records or replaces a member's payment for the selected month.
func (api *paymentApi) save(ctx echo.Context) error {
	var data payment.SavePayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SavePayment")
	}
	sport := api.ledger.MemberSport(data.MemberID)
	if err := data.Validate(api.validate, sport); err != nil {
		return err
	}

	rec, err := api.ledger.Save(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "saving payment")
	}
	return ctx.JSON(http.StatusOK, rec)
}

// remind emails the admin a list of this month's unpaid members.
func (api *paymentApi) remind(ctx echo.Context) error {
	sheet := api.ledger.Sheet()
	msg := payment.UnpaidReminder(sheet, mail.Address{Address: api.conf.AdminEmail})
	if msg == nil {
		return ctx.JSON(http.StatusOK, SuccessResponse{Success: "All members have paid for " + sheet.Month + "."})
	}
	api.mailSvc.SendMessages(msg)
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Reminder sent."})
}
