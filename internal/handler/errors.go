package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"supplies-service/internal/apperr"
	"supplies-service/pkg/logger"
)

const routeNotFound = "route not found"

// ErrorHandler renders every error as {"message": ...}. Outside production, 500s also carry "error".
func ErrorHandler(production bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		log := logger.FromEcho(c)

		status := http.StatusInternalServerError
		body := echo.Map{"message": "internal server error"}

		var (
			appErr  *apperr.Error
			httpErr *echo.HTTPError
		)
		switch {
		case errors.As(err, &appErr):
			status = appErr.Kind.Status()
			body["message"] = appErr.Message
			if status == http.StatusInternalServerError && !production {
				body["error"] = detail(appErr)
			}
		case errors.As(err, &httpErr):
			status = httpErr.Code
			switch status {
			case http.StatusNotFound, http.StatusMethodNotAllowed:
				status = http.StatusNotFound
				body["message"] = routeNotFound
			default:
				body["message"] = fmt.Sprint(httpErr.Message)
			}
		default:
			if !production {
				body["error"] = err.Error()
			}
		}

		if status >= http.StatusInternalServerError {
			log.Error("Request failed", zap.Int("status", status), zap.Error(err))
		} else {
			log.Warn("Request rejected", zap.Int("status", status), zap.Any("message", body["message"]))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			log.Error("Failed to write error response", zap.Error(err))
		}
	}
}

func detail(e *apperr.Error) string {
	if e.Stack != "" {
		return e.Stack
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// RecoverMiddleware turns panics into 500 errors that keep the stack trace
func RecoverMiddleware() echo.MiddlewareFunc {
	return middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableErrorHandler: true,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			return &apperr.Error{
				Kind:    apperr.KindInternal,
				Message: "internal server error",
				Err:     err,
				Stack:   string(stack),
			}
		},
	})
}
