package blogcms

import (
	"encoding/xml"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/blogcms/content"
	"github.com/eringen/blogcms/views"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// staffPaths are kept out of search indexes.
var staffPaths = []string{"/posts", "/post/", "/categories", "/userHistory", "/login", "/register"}

func (a *App) handleRobots(c echo.Context) error {
	var b strings.Builder
	b.WriteString("User-agent: *\nAllow: /\n")
	for _, p := range staffPaths {
		b.WriteString("Disallow: " + p + "\n")
	}
	b.WriteString("\nSitemap: " + BuildURL(a.Config.SiteURL, "sitemap.xml") + "\n")
	return c.String(http.StatusOK, b.String())
}

func (a *App) handleSitemap(c echo.Context) error {
	ctx := c.Request().Context()
	posts, err := a.Blog.PublishedPosts(ctx)
	if err != nil {
		return err
	}
	categories, err := a.Blog.Categories(ctx)
	if err != nil {
		return err
	}
	sortPostsByDateDesc(posts)
	return a.renderSitemap(c, posts, categories)
}

func (a *App) renderSitemap(c echo.Context, posts []content.Post, categories []content.Category) error {
	base := a.Config.SiteURL
	urls := []sitemapURL{
		{Loc: BuildURL(base, "blog")},
		{Loc: BuildURL(base, "about")},
	}
	for _, cat := range categories {
		urls = append(urls, sitemapURL{Loc: BuildURL(base, "blog") + "?category=" + strconv.FormatInt(cat.ID, 10)})
	}
	for _, p := range posts {
		urls = append(urls, sitemapURL{
			Loc:     BuildURL(base, "blog", strconv.FormatInt(p.ID, 10)),
			LastMod: views.FormatDate(p.PostDate),
		})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
