package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/kiwisport/clubboard/core"
	"github.com/kiwisport/clubboard/core/attendance"
	"github.com/kiwisport/clubboard/core/member"
	"github.com/kiwisport/clubboard/core/operator"
	"github.com/kiwisport/clubboard/services/club"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "operator not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired       = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		switch cause {
		case member.ErrNotFound, operator.ErrNotFound:
			code = http.StatusNotFound
			message = cause.Error()
		case member.ErrNotConfirmed:
			code = http.StatusBadRequest
			message = cause.Error()
		case attendance.ErrReadOnlyDate:
			code = http.StatusConflict
			message = cause.Error()
		default:
			code, message = classifyError(err, cause, ctx, logger, translator, signalShutdown)
		}

		if ctx.Echo().Debug {
			message = err.Error()
		} else if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

func classifyError(
	err, cause error,
	ctx echo.Context,
	logger core.Logger,
	translator ut.Translator,
	signalShutdown func(),
) (int, interface{}) {
	var code int
	var message interface{}

	switch origErr := cause.(type) {
	case *echo.HTTPError:
		if origErr == middleware.ErrJWTMissing {
			return http.StatusUnauthorized, origErr.Message
		}
		if origErr.Internal != nil {
			if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
				origErr = herr
			}
		}
		code = origErr.Code
		message = origErr.Message
	case validator.ValidationErrors:
		fldErrs := make(map[string]string, len(origErr))
		for _, vErr := range origErr {
			fldErrs[vErr.Field()] = vErr.Translate(translator)
		}
		code = http.StatusBadRequest
		message = fldErrs
	case *core.ValidationError:
		if origErr.Fields != nil {
			fldErrs := make(map[string]string, len(origErr.Fields))
			for _, fErr := range origErr.Fields {
				fldErrs[fErr.Field] = fErr.Error
			}
			message = fldErrs
		} else {
			message = origErr.Error()
		}
		code = http.StatusBadRequest
	case *club.APIError:
		// the upstream club API rejected or failed the request
		upstreamErrors.Inc()
		code = http.StatusBadGateway
		message = "upstream club API error"
		logger.Warn(origErr.Error())
	default: // any other error is a server error
		code = http.StatusInternalServerError
		msg := http.StatusText(http.StatusInternalServerError)
		message = msg

		var op operator.Operator
		if claims, cErr := getContextClaims(ctx); cErr == nil {
			op.ID = claims.Subject
			op.Username = claims.Username
			op.Email = claims.Email
		}
		logger.Error(msg, errors.Wrap(err, msg), op)

		// shutting down...
		if core.IsShutdown(err) {
			signalShutdown()
		}
	}
	return code, message
}
