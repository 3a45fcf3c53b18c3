package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kiwisport/clubboard/core"
	"github.com/kiwisport/clubboard/core/operator"
)

var errOpNotFoundInCtx = errors.New("operator object not found in echo.Context")

type operatorApi struct {
	svc      *operator.Service
	validate *validator.Validate
}

func registerOperatorAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := operatorApi{
		svc:      deps.OperatorSvc,
		validate: deps.Validate,
	}

	og := g.Group("/operators")

	// un-authed endpoints
	og.POST("/login", api.login)
	og.POST("/password-reset", api.resetPassword)
	og.POST("/password-reset-confirm", api.confirmPasswordReset)

	// authed endpoints
	ag := og.Group("", jwt)
	ag.POST("/token-refresh", api.refreshToken)
	ag.POST("/register", api.create, adminMiddleware())
	ag.GET("", api.query, adminMiddleware())
	ag.GET("/roles", api.queryRoles, adminMiddleware())

	// detail endpoints
	dg := ag.Group("/:id", ctxOperatorOrAdminMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy, adminMiddleware())
}

// Handlers

func (api *operatorApi) create(ctx echo.Context) error {
	var data operator.NewOperator
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewOperator")
	}
	if err := data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	op, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating operator")
	}
	return ctx.JSON(http.StatusCreated, op)
}

func (api *operatorApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := authenticate(ctx, data.Username, data.Password, api.svc)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := GenerateToken(claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *operatorApi) resetPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.RequestPasswordReset(ctx.Request().Context(), data.Email); !(err == nil || errors.Cause(err) == operator.ErrNotFound) {
		// do not return errors to attackers
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})
}

func (api *operatorApi) confirmPasswordReset(ctx echo.Context) error {
	var data operator.ResetPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetPassword")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.ResetPassword(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been reset with the new password."})
}

func (api *operatorApi) query(ctx echo.Context) error {
	ops, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying operators")
	}
	if ops == nil {
		ops = []operator.Operator{}
	}
	return ctx.JSON(http.StatusOK, ops)
}

func (api *operatorApi) retrieve(ctx echo.Context) error {
	op, ok := ctx.Get("object").(operator.Operator)
	if !ok {
		return errors.Wrap(errOpNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, op)
}

func (api *operatorApi) update(ctx echo.Context) error {
	op, ok := ctx.Get("object").(operator.Operator)
	if !ok {
		return errors.Wrap(errOpNotFoundInCtx, "retrieving object from context")
	}

	var data operator.UpdateOperator
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateOperator")
	}

	ctxOp, err := getContextOperator(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context operator")
	}
	if !ctxOp.IsAdmin() {
		// `IsActive` and `Roles` can only be changed by admin
		// `Username` and `Email` can only be changed by admin for now
		if data.IsActive != nil || data.Roles != nil || data.Username != "" || data.Email != "" {
			return errHttpForbidden
		}
	}

	if err := data.Validate(op, api.validate, api.svc); err != nil {
		return err
	}

	op, err = api.svc.Update(ctx.Request().Context(), op.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating operator")
	}
	return ctx.JSON(http.StatusOK, op)
}

func (api *operatorApi) destroy(ctx echo.Context) error {
	op, ok := ctx.Get("object").(operator.Operator)
	if !ok {
		return errors.Wrap(errOpNotFoundInCtx, "retrieving object from context")
	}

	// ctxOperator cannot delete themselves
	ctxOp, err := getContextOperator(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context operator")
	}
	if op.ID == ctxOp.ID {
		return errHttpForbidden
	}

	if err := api.svc.Delete(ctx.Request().Context(), op.ID); err != nil {
		return errors.Wrap(err, "deleting operator")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *operatorApi) queryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, operator.AllRoles)
}

func (api *operatorApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func ctxOperatorOrAdminMiddleware(svc *operator.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctxOp, err := getContextOperator(ctx, svc)
			if err != nil {
				return errors.Wrap(err, "getting context operator")
			}

			if ctx.Param("id") == ctxOp.ID || ctxOp.IsAdmin() {
				if op, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id")); err == nil {
					ctx.Set("object", op)
					return next(ctx)
				} else if errors.Cause(err) != operator.ErrNotFound {
					return errors.Wrap(err, "finding operator by ID")
				}
			}
			return errHttpNotFound
		}
	}
}

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return validate.Struct(lr)
}

func (pr *PasswordResetRequest) Validate(validate *validator.Validate) error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return validate.Struct(pr)
}
