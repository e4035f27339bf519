package blogcms

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/blogcms/views"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// page collects the per-request data every view needs.
func (a *App) page(c echo.Context) views.Page {
	p := views.Page{
		Site: views.SiteConfig{
			Name:        a.Config.SiteName,
			URL:         a.Config.SiteURL,
			Description: a.Config.SiteDescription,
		},
		ActiveRoute: views.ActiveRoute(c.Request().URL.Path),
		User:        currentUser(c),
		CSRFToken:   CsrfToken(c),
	}
	if id, err := parseID(c.QueryParam("category")); err == nil {
		p.ViewingCategory = id
	}
	return p
}
