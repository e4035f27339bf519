package blogcms

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/blogcms/auth"
	"github.com/eringen/blogcms/content"
	"github.com/eringen/blogcms/views"
)

const noResults = "no results"

func handleHome(c echo.Context) error {
	return c.Redirect(http.StatusFound, "/blog")
}

func (a *App) handleAbout(c echo.Context) error {
	return Render(c, views.About(a.page(c)))
}

// publishedPosts lists published posts for the public pages, honouring the
// optional category query parameter.
func (a *App) publishedPosts(c echo.Context) ([]content.Post, error) {
	ctx := c.Request().Context()
	raw := c.QueryParam("category")
	if raw == "" {
		return a.Blog.PublishedPosts(ctx)
	}
	id, err := parseID(raw)
	if err != nil {
		return nil, err
	}
	return a.Blog.PublishedPostsByCategory(ctx, id)
}

func (a *App) handleBlog(c echo.Context) error {
	var data views.BlogData

	posts, err := a.publishedPosts(c)
	if err != nil {
		c.Logger().Warnf("blog: list posts: %v", err)
		data.Message = noResults
	} else {
		sortPostsByDateDesc(posts)
		data.Posts = posts
		if len(posts) > 0 {
			data.Post = &posts[0]
		}
	}

	a.loadCategories(c, &data)
	return Render(c, views.Blog(a.page(c), data))
}

func (a *App) handleBlogPost(c echo.Context) error {
	var data views.BlogData

	posts, err := a.publishedPosts(c)
	if err != nil {
		c.Logger().Warnf("blog: list posts: %v", err)
		data.Message = noResults
	} else {
		sortPostsByDateDesc(posts)
		data.Posts = posts
	}

	id, err := parseID(c.Param("id"))
	if err == nil {
		var post content.Post
		post, err = a.Blog.PublishedPostByID(c.Request().Context(), id)
		if err == nil {
			data.Post = &post
		}
	}
	if err != nil {
		if !errors.Is(err, content.ErrNotFound) && !errors.Is(err, errInvalidID) {
			c.Logger().Warnf("blog: get post %q: %v", c.Param("id"), err)
		}
		data.Message = noResults
	}

	a.loadCategories(c, &data)
	return Render(c, views.Blog(a.page(c), data))
}

func (a *App) loadCategories(c echo.Context, data *views.BlogData) {
	categories, err := a.Blog.Categories(c.Request().Context())
	if err != nil {
		c.Logger().Warnf("blog: list categories: %v", err)
		data.CategoriesMessage = noResults
		return
	}
	data.Categories = categories
}

func (a *App) handleLoginPage(c echo.Context) error {
	return Render(c, views.Login(a.page(c), views.FormData{}))
}

func (a *App) handleLogin(c echo.Context) error {
	in := auth.LoginInput{
		UserName:  c.FormValue("userName"),
		Password:  c.FormValue("password"),
		UserAgent: c.Request().UserAgent(),
	}

	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		a.metrics.login("throttled")
		return RenderStatus(c, http.StatusTooManyRequests, views.Login(a.page(c), views.FormData{
			UserName: in.UserName,
			Error:    "Too many login attempts. Please try again later.",
		}))
	}

	user, err := a.Auth.CheckUser(c.Request().Context(), in)
	if err != nil {
		a.loginLimiter.Record(ip)
		a.metrics.login("failure")
		msg := err.Error()
		if !isAuthRejection(err) {
			c.Logger().Errorf("login %q: %v", in.UserName, err)
			msg = "Unable to log in right now. Please try again later."
		}
		return Render(c, views.Login(a.page(c), views.FormData{UserName: in.UserName, Error: msg}))
	}

	if err := a.setSessionUser(c, auth.NewSessionUser(user)); err != nil {
		c.Logger().Errorf("login %q: save session: %v", in.UserName, err)
		a.metrics.login("error")
		return Render(c, views.Login(a.page(c), views.FormData{
			UserName: in.UserName,
			Error:    "Unable to log in right now. Please try again later.",
		}))
	}
	a.metrics.login("success")
	return c.Redirect(http.StatusSeeOther, "/posts")
}

func (a *App) handleLogout(c echo.Context) error {
	if err := clearSession(c); err != nil {
		c.Logger().Warnf("logout: %v", err)
	}
	return c.Redirect(http.StatusFound, "/")
}

func (a *App) handleRegisterPage(c echo.Context) error {
	return Render(c, views.Register(a.page(c), views.FormData{}))
}

func (a *App) handleRegister(c echo.Context) error {
	in := auth.RegisterInput{
		UserName:  c.FormValue("userName"),
		Email:     c.FormValue("email"),
		Password:  c.FormValue("password"),
		Password2: c.FormValue("password2"),
	}
	if _, err := a.Auth.RegisterUser(c.Request().Context(), in); err != nil {
		msg := err.Error()
		if !isAuthRejection(err) {
			c.Logger().Errorf("register %q: %v", in.UserName, err)
			msg = "Unable to register user. Please try again later."
		}
		return Render(c, views.Register(a.page(c), views.FormData{UserName: in.UserName, Error: msg}))
	}
	return Render(c, views.Register(a.page(c), views.FormData{Success: "User created"}))
}

// isAuthRejection reports whether err is a validation failure safe to show.
func isAuthRejection(err error) bool {
	for _, target := range []error{
		auth.ErrPasswordMismatch,
		auth.ErrUserNameTaken,
		auth.ErrMissingUserName,
		auth.ErrMissingPassword,
		auth.ErrUserNotFound,
		auth.ErrIncorrectPassword,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	isHTTP := errors.As(err, &he)
	if isHTTP && he.Code == http.StatusNotFound {
		_ = c.String(http.StatusNotFound, "Page Not Found")
		return
	}
	code := http.StatusInternalServerError
	if isHTTP {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, views.ServerError(a.page(c)))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
