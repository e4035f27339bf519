package views

import (
	"strconv"

	"github.com/a-h/templ"
	g "github.com/maragudk/gomponents"
	. "github.com/maragudk/gomponents/html"

	"github.com/eringen/blogcms/content"
)

// PostsData is the staff post table. Categories resolve category names.
type PostsData struct {
	Posts      []content.Post
	Categories []content.Category
	Message    string
}

// CategoriesData is the staff category table.
type CategoriesData struct {
	Categories []content.Category
	Message    string
}

// AddPostData is the new-post form.
type AddPostData struct {
	Categories []content.Category
	Title      string
	Body       string
	Error      string
}

// AddCategoryData is the new-category form.
type AddCategoryData struct {
	Name  string
	Error string
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

// Posts renders every post in a table.
func Posts(p Page, d PostsData) templ.Component {
	p.Title = "Posts"
	return Component(layout(p,
		Div(Class("page-header"),
			H1(g.Text("Posts")),
			A(Class("button"), Href("/posts/add"), g.Text("Add Post")),
		),
		postsTable(d),
	))
}

func postsTable(d PostsData) g.Node {
	if len(d.Posts) == 0 {
		return message(orNoResults(d.Message))
	}
	rows := make([]g.Node, 0, len(d.Posts))
	for _, post := range d.Posts {
		status := "Draft"
		if post.Published {
			status = "Published"
		}
		rows = append(rows, Tr(
			Td(g.Text(itoa(post.ID))),
			Td(A(Href("/post/"+itoa(post.ID)), g.Text(post.Title))),
			Td(g.Text(FormatDate(post.PostDate))),
			Td(A(Href("/posts?category="+itoa(post.Category)), g.Text(CategoryName(d.Categories, post.Category)))),
			Td(g.Text(status)),
			Td(A(Class("danger"), Href("/posts/delete/"+itoa(post.ID)), g.Text("Remove"))),
		))
	}
	return Table(Class("table"),
		THead(Tr(
			Th(g.Text("ID")),
			Th(g.Text("Title")),
			Th(g.Text("Post Date")),
			Th(g.Text("Category")),
			Th(g.Text("Status")),
			Th(),
		)),
		TBody(g.Group(rows)),
	)
}

// Categories renders every category in a table.
func Categories(p Page, d CategoriesData) templ.Component {
	p.Title = "Categories"
	var body g.Node
	if len(d.Categories) == 0 {
		body = message(orNoResults(d.Message))
	} else {
		rows := make([]g.Node, 0, len(d.Categories))
		for _, c := range d.Categories {
			rows = append(rows, Tr(
				Td(g.Text(itoa(c.ID))),
				Td(A(Href("/posts?category="+itoa(c.ID)), g.Text(c.Name))),
				Td(A(Class("danger"), Href("/categories/delete/"+itoa(c.ID)), g.Text("Remove"))),
			))
		}
		body = Table(Class("table"),
			THead(Tr(Th(g.Text("ID")), Th(g.Text("Name")), Th())),
			TBody(g.Group(rows)),
		)
	}
	return Component(layout(p,
		Div(Class("page-header"),
			H1(g.Text("Categories")),
			A(Class("button"), Href("/categories/add"), g.Text("Add Category")),
		),
		body,
	))
}

// AddPost renders the multipart new-post form.
func AddPost(p Page, d AddPostData) templ.Component {
	p.Title = "Add Post"
	options := []g.Node{Option(Value(""), g.Text("Select Category"))}
	for _, c := range d.Categories {
		options = append(options, Option(Value(itoa(c.ID)), g.Text(c.Name)))
	}
	return Component(layout(p,
		H1(g.Text("Add Post")),
		errorMessage(d.Error),
		g.El("form", Method("post"), Action("/posts/add"), g.Attr("enctype", "multipart/form-data"),
			csrfField(p.CSRFToken),
			field("Title", "title", "text", d.Title, Required()),
			Div(Class("field"),
				g.El("label", g.Attr("for", "body"), g.Text("Body")),
				Textarea(ID("body"), Name("body"), g.Attr("rows", "12"), g.Text(d.Body)),
			),
			Div(Class("field"),
				g.El("label", g.Attr("for", "category"), g.Text("Category")),
				Select(ID("category"), Name("category"), g.Group(options)),
			),
			field("Post Date", "postDate", "date", ""),
			field("Feature Image", "featureImage", "file", "", g.Attr("accept", "image/*")),
			Div(Class("field checkbox"),
				Input(ID("published"), Name("published"), Type("checkbox"), Value("true"), Checked()),
				g.El("label", g.Attr("for", "published"), g.Text("Published")),
			),
			Button(Type("submit"), g.Text("Add Post")),
		),
	))
}

// AddCategory renders the new-category form.
func AddCategory(p Page, d AddCategoryData) templ.Component {
	p.Title = "Add Category"
	return Component(layout(p,
		H1(g.Text("Add Category")),
		errorMessage(d.Error),
		form("/categories/add", p.CSRFToken,
			field("Name", "category", "text", d.Name, Required()),
			Button(Type("submit"), g.Text("Add Category")),
		),
	))
}

// UserHistory lists the logins recorded in the session snapshot.
func UserHistory(p Page) templ.Component {
	p.Title = "Login History"
	if p.User == nil {
		return Component(layout(p, H1(g.Text("Login History")), message("no results")))
	}
	rows := make([]g.Node, 0, len(p.User.LoginHistory))
	for _, e := range p.User.LoginHistory {
		rows = append(rows, Tr(
			Td(g.Text(FormatDateTime(e.DateTime))),
			Td(g.Text(e.UserAgent)),
		))
	}
	var history g.Node = message("no results")
	if len(rows) > 0 {
		history = Table(Class("table"),
			THead(Tr(Th(g.Text("Login Date/Time")), Th(g.Text("Client Information")))),
			TBody(g.Group(rows)),
		)
	}
	return Component(layout(p,
		H1(g.Textf("%s (%s) Login History", p.User.UserName, p.User.Email)),
		history,
	))
}
