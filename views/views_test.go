package views

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/blogcms/auth"
	"github.com/eringen/blogcms/content"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func testPage() Page {
	return Page{Site: SiteConfig{Name: "Test Blog", URL: "https://blog.example.com"}, CSRFToken: "tok123"}
}

func TestActiveRoute(t *testing.T) {
	tests := map[string]string{
		"/":               "/",
		"/blog":           "/blog",
		"/blog/12":        "/blog",
		"/categories/add": "/categories",
		"/posts/delete/3": "/posts",
		"/userHistory":    "/userHistory",
	}
	for in, want := range tests {
		if got := ActiveRoute(in); got != want {
			t.Errorf("ActiveRoute(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	if got := FormatDate(time.Date(2024, 3, 7, 23, 59, 0, 0, time.UTC)); got != "2024-03-07" {
		t.Errorf("FormatDate = %q", got)
	}
	if got := FormatDate(time.Time{}); got != "" {
		t.Errorf("FormatDate(zero) = %q, want empty", got)
	}
}

func TestCategoryName(t *testing.T) {
	cats := []content.Category{{ID: 1, Name: "Go"}}
	if got := CategoryName(cats, 1); got != "Go" {
		t.Errorf("CategoryName(1) = %q", got)
	}
	if got := CategoryName(cats, 7); got != "Uncategorised" {
		t.Errorf("CategoryName(7) = %q", got)
	}
}

func TestNavbarReflectsSession(t *testing.T) {
	p := testPage()
	p.ActiveRoute = "/blog"
	html := render(t, About(p))
	if !strings.Contains(html, `href="/login"`) || strings.Contains(html, `href="/logout"`) {
		t.Error("anonymous navbar should offer login only")
	}
	if !strings.Contains(html, `<li class="active"><a href="/blog">`) {
		t.Errorf("active link not marked: %s", html)
	}

	p.User = &auth.SessionUser{UserName: "alice"}
	html = render(t, About(p))
	if !strings.Contains(html, `href="/logout"`) || !strings.Contains(html, `href="/posts"`) {
		t.Error("signed-in navbar should offer logout and staff links")
	}
}

func TestBlogRendersFeaturedPost(t *testing.T) {
	p := testPage()
	p.ViewingCategory = 2
	featured := content.Post{ID: 5, Title: "Newest", Body: "**big** <script>alert(1)</script>", Category: 2, PostDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}
	older := content.Post{ID: 4, Title: "Older", Body: "plain", Category: 2}
	html := render(t, Blog(p, BlogData{
		Posts:      []content.Post{featured, older},
		Post:       &featured,
		Categories: []content.Category{{ID: 2, Name: "Go"}},
	}))

	for _, want := range []string{"<strong>big</strong>", "2024-05-01", `href="/blog/4?category=2"`, `<li class="active"><a href="/blog?category=2">Go</a>`, "application/ld+json"} {
		if !strings.Contains(html, want) {
			t.Errorf("blog page missing %q", want)
		}
	}
	if strings.Contains(html, "alert(1)") {
		t.Error("post body script was not stripped")
	}
}

func TestBlogMessages(t *testing.T) {
	html := render(t, Blog(testPage(), BlogData{Message: "no results", CategoriesMessage: "no results"}))
	if strings.Count(html, "no results") != 2 {
		t.Errorf("expected both messages, got %s", html)
	}
}

func TestPostsTable(t *testing.T) {
	html := render(t, Posts(testPage(), PostsData{
		Posts:      []content.Post{{ID: 9, Title: "Hello & bye", Category: 3, Published: false}},
		Categories: []content.Category{{ID: 1, Name: "Go"}},
	}))
	for _, want := range []string{"Hello &amp; bye", "Uncategorised", "Draft", `href="/posts/delete/9"`, `href="/post/9"`} {
		if !strings.Contains(html, want) {
			t.Errorf("posts table missing %q", want)
		}
	}

	empty := render(t, Posts(testPage(), PostsData{}))
	if !strings.Contains(empty, "no results") {
		t.Error("empty posts page should say no results")
	}
}

func TestFormsCarryCSRF(t *testing.T) {
	for name, c := range map[string]templ.Component{
		"login":        Login(testPage(), FormData{UserName: "bob", Error: "incorrect password"}),
		"register":     Register(testPage(), FormData{Success: "User created"}),
		"add post":     AddPost(testPage(), AddPostData{Categories: []content.Category{{ID: 1, Name: "Go"}}}),
		"add category": AddCategory(testPage(), AddCategoryData{}),
	} {
		html := render(t, c)
		if !strings.Contains(html, `name="_csrf" value="tok123"`) {
			t.Errorf("%s form missing csrf field", name)
		}
	}

	login := render(t, Login(testPage(), FormData{UserName: "bob", Error: "incorrect password"}))
	if !strings.Contains(login, `value="bob"`) || !strings.Contains(login, "incorrect password") {
		t.Error("login form should keep the user name and show the error")
	}
	addPost := render(t, AddPost(testPage(), AddPostData{}))
	if !strings.Contains(addPost, `enctype="multipart/form-data"`) || !strings.Contains(addPost, `name="featureImage"`) {
		t.Error("add post form must be multipart with a featureImage field")
	}
}

func TestUserHistory(t *testing.T) {
	p := testPage()
	p.User = &auth.SessionUser{
		UserName: "alice",
		Email:    "a@example.com",
		LoginHistory: []content.LoginEntry{
			{DateTime: time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC), UserAgent: "Mozilla/5.0"},
		},
	}
	html := render(t, UserHistory(p))
	if !strings.Contains(html, "2024-01-02 03:04 UTC") || !strings.Contains(html, "Mozilla/5.0") {
		t.Errorf("history page = %s", html)
	}
}

func TestBlogPostingJSONLD(t *testing.T) {
	site := SiteConfig{Name: "Test Blog", URL: "https://blog.example.com"}
	out := BlogPostingJSONLD(site, content.Post{ID: 3, Title: "</script>", FeatureImage: "/public/uploads/a.png"})
	if strings.Contains(out, "</script>") {
		t.Error("json-ld must escape closing script tags")
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(out), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data["url"] != "https://blog.example.com/blog/3" {
		t.Errorf("url = %v", data["url"])
	}
	if data["image"] != "https://blog.example.com/public/uploads/a.png" {
		t.Errorf("image = %v", data["image"])
	}
}
