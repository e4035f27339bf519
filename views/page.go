// Package views renders the site's HTML pages. Pages are built with
// gomponents and exposed as templ components so handlers render them
// through one code path.
package views

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"
	g "github.com/maragudk/gomponents"

	"github.com/eringen/blogcms/auth"
	"github.com/eringen/blogcms/content"
)

// SiteConfig holds site-wide settings shown on every page.
type SiteConfig struct {
	Name        string
	URL         string
	Description string
}

// Page is the per-request data every view needs.
type Page struct {
	Site  SiteConfig
	Title string
	// ActiveRoute is "/" plus the first path segment, e.g. "/blog".
	ActiveRoute string
	// ViewingCategory is the category id from the query string, 0 if none.
	ViewingCategory int64
	User            *auth.SessionUser
	CSRFToken       string
}

// Component adapts a gomponents node to templ.Component.
func Component(n g.Node) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return n.Render(w)
	})
}

// ActiveRoute returns "/" followed by the first segment of path.
func ActiveRoute(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	return "/" + path
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// FormatDateTime renders t in UTC with minute precision.
func FormatDateTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04 MST")
}

// CategoryName looks up the name of id, or "Uncategorised".
func CategoryName(categories []content.Category, id int64) string {
	for _, c := range categories {
		if c.ID == id {
			return c.Name
		}
	}
	return "Uncategorised"
}
