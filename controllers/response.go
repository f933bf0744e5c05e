package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/princinho/storefront/apperror"
	"github.com/princinho/storefront/dto"
)

// respondError renders err as a failed envelope. Internal causes are logged
// and never shown to the client.
func (a *App) respondError(c *gin.Context, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		appErr = apperror.Internal(err)
	}

	msg := appErr.Message
	if appErr.Kind == apperror.KindInternal || appErr.Kind == apperror.KindConfiguration {
		a.Log.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		msg = "Internal server error"
	}

	c.JSON(appErr.Kind.HTTPStatus(), dto.Fail(msg))
}

func (a *App) badRequest(c *gin.Context, msg string) {
	a.respondError(c, apperror.Validation(msg))
}
