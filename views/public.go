package views

import (
	"strconv"

	"github.com/a-h/templ"
	g "github.com/maragudk/gomponents"
	. "github.com/maragudk/gomponents/html"

	"github.com/eringen/blogcms/content"
	"github.com/eringen/blogcms/markdown"
)

// FormData carries a re-rendered auth form.
type FormData struct {
	UserName string
	Error    string
	Success  string
}

// BlogData is the public blog listing. Post is the featured or requested
// post; Message and CategoriesMessage report failures of the two lookups.
type BlogData struct {
	Posts             []content.Post
	Post              *content.Post
	Categories        []content.Category
	Message           string
	CategoriesMessage string
}

const excerptLength = 160

// About is the static about page.
func About(p Page) templ.Component {
	p.Title = "About"
	return Component(layout(p,
		H1(g.Text("About")),
		P(g.Textf("%s is a small blog. Staff write posts, sort them into categories and publish them when they are ready.", p.Site.Name)),
		g.If(p.Site.Description != "", P(g.Text(p.Site.Description))),
	))
}

// Login renders the sign-in form.
func Login(p Page, d FormData) templ.Component {
	p.Title = "Log In"
	return Component(layout(p,
		H1(g.Text("Log In")),
		errorMessage(d.Error),
		form("/login", p.CSRFToken,
			field("User Name", "userName", "text", d.UserName, Required(), g.Attr("autocomplete", "username")),
			field("Password", "password", "password", "", Required(), g.Attr("autocomplete", "current-password")),
			Button(Type("submit"), g.Text("Log In")),
		),
		P(g.Text("No account? "), A(Href("/register"), g.Text("Register"))),
	))
}

// Register renders the sign-up form.
func Register(p Page, d FormData) templ.Component {
	p.Title = "Register"
	return Component(layout(p,
		H1(g.Text("Register")),
		errorMessage(d.Error),
		successMessage(d.Success),
		form("/register", p.CSRFToken,
			field("User Name", "userName", "text", d.UserName, Required()),
			field("Email", "email", "email", ""),
			field("Password", "password", "password", "", Required(), g.Attr("autocomplete", "new-password")),
			field("Confirm Password", "password2", "password", "", Required(), g.Attr("autocomplete", "new-password")),
			Button(Type("submit"), g.Text("Register")),
		),
	))
}

// Blog renders the public listing with the featured post on top.
func Blog(p Page, d BlogData) templ.Component {
	if d.Post != nil {
		p.Title = d.Post.Title
	} else {
		p.Title = "Blog"
	}
	return Component(layout(p,
		Div(Class("blog"),
			Div(Class("blog-main"),
				featuredPost(p, d),
				postList(p, d),
			),
			categorySidebar(p, d),
		),
	))
}

func featuredPost(p Page, d BlogData) g.Node {
	if d.Post == nil {
		return message(orNoResults(d.Message))
	}
	post := d.Post
	return Article(Class("post"),
		g.Raw(`<script type="application/ld+json">`+BlogPostingJSONLD(p.Site, *post)+`</script>`),
		g.If(post.FeatureImage != "", Img(Class("feature-image"), Src(post.FeatureImage), Alt(post.Title))),
		H1(A(Href(post.Link()), g.Text(post.Title))),
		P(Class("post-meta"),
			g.Text(FormatDate(post.PostDate)),
			g.Text(" · "),
			A(Href(categoryHref(post.Category)), g.Text(CategoryName(d.Categories, post.Category))),
		),
		Div(Class("post-body"), g.Raw(markdown.ToHTML(post.Body))),
	)
}

func postList(p Page, d BlogData) g.Node {
	if len(d.Posts) == 0 {
		return nil
	}
	items := make([]g.Node, 0, len(d.Posts))
	for _, post := range d.Posts {
		if d.Post != nil && post.ID == d.Post.ID {
			continue
		}
		href := post.Link()
		if p.ViewingCategory != 0 {
			href += "?category=" + strconv.FormatInt(p.ViewingCategory, 10)
		}
		items = append(items, Li(Class("post-card"),
			H3(A(Href(href), g.Text(post.Title))),
			Small(g.Text(FormatDate(post.PostDate))),
			P(g.Text(markdown.Excerpt(post.Body, excerptLength))),
		))
	}
	if len(items) == 0 {
		return nil
	}
	return Section(Class("post-list"),
		H2(g.Text("More Posts")),
		Ul(g.Group(items)),
	)
}

func categorySidebar(p Page, d BlogData) g.Node {
	if d.CategoriesMessage != "" || len(d.Categories) == 0 {
		return Aside(Class("categories"), H3(g.Text("Categories")), message(orNoResults(d.CategoriesMessage)))
	}
	items := []g.Node{
		Li(g.If(p.ViewingCategory == 0, Class("active")), A(Href("/blog"), g.Text("All"))),
	}
	for _, c := range d.Categories {
		items = append(items, Li(
			g.If(c.ID == p.ViewingCategory, Class("active")),
			A(Href(categoryHref(c.ID)), g.Text(c.Name)),
		))
	}
	return Aside(Class("categories"),
		H3(g.Text("Categories")),
		Ul(g.Group(items)),
	)
}

func categoryHref(id int64) string {
	return "/blog?category=" + strconv.FormatInt(id, 10)
}

func orNoResults(msg string) string {
	if msg == "" {
		return "no results"
	}
	return msg
}

// ServerError is shown for unexpected failures.
func ServerError(p Page) templ.Component {
	p.Title = "Error"
	return Component(layout(p,
		H1(g.Text("Something went wrong")),
		P(g.Text("The server could not complete your request. Please try again later.")),
		P(A(Href("/"), g.Text("Back to the blog"))),
	))
}
