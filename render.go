package letterpress

import (
	"mime"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// renderDocument writes cmp as an HTML response. A non-empty filename turns
// the response into a download.
func renderDocument(c echo.Context, cmp templ.Component, filename string) error {
	h := c.Response().Header()
	h.Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	if filename != "" {
		h.Set(echo.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	}
	c.Response().WriteHeader(http.StatusOK)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}
