package blogcms

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/blogcms/blog"
	"github.com/eringen/blogcms/content"
	"github.com/eringen/blogcms/media"
	"github.com/eringen/blogcms/views"
)

func (a *App) handlePosts(c echo.Context) error {
	q, err := ParsePostQuery(c.QueryParams())
	if err != nil {
		return echo.ErrNotFound
	}

	ctx := c.Request().Context()
	var posts []content.Post
	switch q.Kind {
	case PostQueryByCategory:
		posts, err = a.Blog.PostsByCategory(ctx, q.Category)
	case PostQueryByMinDate:
		posts, err = a.Blog.PostsByMinDate(ctx, q.MinDate)
	default:
		posts, err = a.Blog.AllPosts(ctx)
	}

	data := views.PostsData{Posts: posts}
	if err != nil {
		c.Logger().Warnf("posts: %v", err)
		data = views.PostsData{Message: noResults}
	}
	if categories, err := a.Blog.Categories(ctx); err == nil {
		data.Categories = categories
	} else {
		c.Logger().Warnf("posts: list categories: %v", err)
	}
	return Render(c, views.Posts(a.page(c), data))
}

func (a *App) handlePostJSON(c echo.Context) error {
	id, err := parseID(c.Param("value"))
	if err == nil {
		var post content.Post
		post, err = a.Blog.PostByID(c.Request().Context(), id)
		if err == nil {
			return c.JSON(http.StatusOK, post)
		}
	}
	c.Logger().Warnf("post %q: %v", c.Param("value"), err)
	if errors.Is(err, content.ErrNotFound) || errors.Is(err, errInvalidID) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "post not found"})
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "unable to load post"})
}

func (a *App) handleAddPostPage(c echo.Context) error {
	return Render(c, views.AddPost(a.page(c), views.AddPostData{Categories: a.categoriesOrEmpty(c)}))
}

func (a *App) categoriesOrEmpty(c echo.Context) []content.Category {
	categories, err := a.Blog.Categories(c.Request().Context())
	if err != nil {
		c.Logger().Warnf("list categories: %v", err)
		return []content.Category{}
	}
	return categories
}

func (a *App) handleAddPost(c echo.Context) error {
	in := blog.PostInput{
		Title:     c.FormValue("title"),
		Body:      c.FormValue("body"),
		Published: c.FormValue("published"),
		Category:  c.FormValue("category"),
	}
	fail := func(code int, msg string) error {
		return RenderStatus(c, code, views.AddPost(a.page(c), views.AddPostData{
			Categories: a.categoriesOrEmpty(c),
			Title:      in.Title,
			Body:       in.Body,
			Error:      msg,
		}))
	}

	if strings.TrimSpace(in.Title) == "" {
		return fail(http.StatusBadRequest, "A post needs a title.")
	}
	if raw := c.FormValue("postDate"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			return fail(http.StatusBadRequest, "Post date must be YYYY-MM-DD.")
		}
		in.PostDate = t
	}

	file, err := c.FormFile("featureImage")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		return fail(http.StatusBadRequest, "Unable to read the uploaded image.")
	default:
		url, err := a.uploadFeatureImage(c, file)
		switch {
		case errors.Is(err, media.ErrNotImage):
			a.metrics.upload("rejected")
			return fail(http.StatusBadRequest, "The feature image must be a JPEG, PNG, GIF or WebP file.")
		case errors.Is(err, media.ErrTooLarge):
			a.metrics.upload("rejected")
			return fail(http.StatusBadRequest, "The feature image is too large (max 10MB).")
		case err != nil:
			a.metrics.upload("error")
			c.Logger().Errorf("upload feature image: %v", err)
			return fail(http.StatusBadGateway, "Unable to upload the image. Please try again.")
		}
		a.metrics.upload("success")
		in.FeatureImage = url
	}

	if _, err := a.Blog.AddPost(c.Request().Context(), in); err != nil {
		if errors.Is(err, blog.ErrMissingTitle) || errors.Is(err, blog.ErrInvalidCategory) {
			return fail(http.StatusBadRequest, err.Error())
		}
		c.Logger().Errorf("add post: %v", err)
		return fail(http.StatusInternalServerError, "Unable to save the post.")
	}
	a.metrics.change("post", "add")
	return c.Redirect(http.StatusSeeOther, "/posts")
}

// uploadFeatureImage validates the file and hands it to the uploader.
func (a *App) uploadFeatureImage(c echo.Context, file *multipart.FileHeader) (string, error) {
	if file.Size > media.MaxUploadSize {
		return "", media.ErrTooLarge
	}
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	data, err := media.ReadImage(src)
	if err != nil {
		return "", err
	}
	return a.Uploader.Upload(c.Request().Context(), file.Filename, bytes.NewReader(data))
}

func (a *App) handleDeletePost(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err == nil {
		err = a.Blog.DeletePostByID(c.Request().Context(), id)
	}
	if err != nil {
		c.Logger().Warnf("delete post %q: %v", c.Param("id"), err)
		return c.String(http.StatusInternalServerError, "Unable to Remove Post / Post not found")
	}
	a.metrics.change("post", "delete")
	return c.Redirect(http.StatusFound, "/posts")
}

func (a *App) handleCategories(c echo.Context) error {
	data := views.CategoriesData{}
	categories, err := a.Blog.Categories(c.Request().Context())
	if err != nil {
		c.Logger().Warnf("categories: %v", err)
		data.Message = noResults
	} else {
		data.Categories = categories
	}
	return Render(c, views.Categories(a.page(c), data))
}

func (a *App) handleAddCategoryPage(c echo.Context) error {
	return Render(c, views.AddCategory(a.page(c), views.AddCategoryData{}))
}

func (a *App) handleAddCategory(c echo.Context) error {
	name := c.FormValue("category")
	if _, err := a.Blog.AddCategory(c.Request().Context(), name); err != nil {
		code, msg := http.StatusBadRequest, err.Error()
		if !errors.Is(err, blog.ErrMissingCategoryName) {
			c.Logger().Errorf("add category: %v", err)
			code, msg = http.StatusInternalServerError, "Unable to save the category."
		}
		return RenderStatus(c, code, views.AddCategory(a.page(c), views.AddCategoryData{Name: name, Error: msg}))
	}
	a.metrics.change("category", "add")
	return c.Redirect(http.StatusSeeOther, "/categories")
}

func (a *App) handleDeleteCategory(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err == nil {
		err = a.Blog.DeleteCategoryByID(c.Request().Context(), id)
	}
	if err != nil {
		c.Logger().Warnf("delete category %q: %v", c.Param("id"), err)
		return c.String(http.StatusInternalServerError, "Unable to Remove Category / Category not found")
	}
	a.metrics.change("category", "delete")
	return c.Redirect(http.StatusFound, "/categories")
}

func (a *App) handleUserHistory(c echo.Context) error {
	return Render(c, views.UserHistory(a.page(c)))
}
