package handler

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/studio-project-hub/internal/auth"
)

// writeError renders a structured core error. Anything that is not an
// *auth.Error is a genuinely unexpected fault and becomes a generic
// 500 without leaking its driver-specific shape.
func writeError(c echo.Context, err error) error {
	var ae *auth.Error
	if !errors.As(err, &ae) {
		ae = auth.Wrap(err, auth.KindDatabase, auth.CodeDatabase, "internal error")
	}
	if ae.Kind == auth.KindDatabase {
		c.Logger().Errorf("internal error: %v", ae)
	}
	return c.JSON(ae.HTTPStatus(), echo.Map{"error": ae.Code, "message": ae.Message})
}
