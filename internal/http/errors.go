package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// statusError is implemented by domain errors that know their HTTP status.
type statusError interface {
	error
	HTTPStatus() int
}

func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}

// respondError maps err to a response, logging anything unexpected.
func respondError(c echo.Context, log *zap.Logger, err error) error {
	var se statusError
	if errors.As(err, &se) {
		return errorJSON(c, se.HTTPStatus(), se.Error())
	}

	log.Error("request failed",
		zap.String("path", c.Path()),
		zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
		zap.Error(err),
	)
	return errorJSON(c, http.StatusInternalServerError, "db error")
}
