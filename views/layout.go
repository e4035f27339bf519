package views

import (
	g "github.com/maragudk/gomponents"
	. "github.com/maragudk/gomponents/html"
)

func navLink(p Page, href, text string) g.Node {
	return Li(
		g.If(ActiveRoute(href) == p.ActiveRoute, Class("active")),
		A(Href(href), g.Text(text)),
	)
}

func navbar(p Page) g.Node {
	links := []g.Node{
		navLink(p, "/blog", "Blog"),
		navLink(p, "/about", "About"),
	}
	if p.User != nil {
		links = append(links,
			navLink(p, "/posts", "Posts"),
			navLink(p, "/categories", "Categories"),
			navLink(p, "/posts/add", "Add Post"),
			navLink(p, "/categories/add", "Add Category"),
		)
	}

	var account g.Node
	if p.User != nil {
		account = Ul(Class("nav-account"),
			navLink(p, "/userHistory", p.User.UserName),
			Li(A(Href("/logout"), g.Text("Log Out"))),
		)
	} else {
		account = Ul(Class("nav-account"),
			navLink(p, "/login", "Log In"),
			navLink(p, "/register", "Register"),
		)
	}

	return Nav(Class("nav"),
		Div(Class("brand"), A(Href("/"), g.Text(p.Site.Name))),
		Ul(Class("nav-links"), g.Group(links)),
		account,
	)
}

func layout(p Page, children ...g.Node) g.Node {
	title := p.Site.Name
	if p.Title != "" {
		title = p.Title + " | " + p.Site.Name
	}
	return Doctype(
		HTML(
			Lang("en"),
			Head(
				Meta(Charset("utf-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
				g.If(p.Site.Description != "", Meta(Name("description"), Content(p.Site.Description))),
				Link(Rel("stylesheet"), Href("/public/site.css")),
				Link(Rel("alternate"), Type("application/rss+xml"), g.Attr("title", p.Site.Name), Href("/feed.xml")),
				TitleEl(g.Text(title)),
			),
			Body(
				Div(Class("container"),
					navbar(p),
					Main(g.Group(children)),
				),
				Footer(Class("footer"),
					P(Small(g.Text(p.Site.Name))),
				),
			),
		),
	)
}

func message(text string) g.Node {
	if text == "" {
		return nil
	}
	return P(Class("message"), g.Text(text))
}

func errorMessage(text string) g.Node {
	if text == "" {
		return nil
	}
	return Div(Class("alert alert-error"), g.Attr("role", "alert"), g.Text(text))
}

func successMessage(text string) g.Node {
	if text == "" {
		return nil
	}
	return Div(Class("alert alert-success"), g.Attr("role", "status"), g.Text(text))
}

func csrfField(token string) g.Node {
	return Input(Type("hidden"), Name("_csrf"), Value(token))
}

// field is a labelled input.
func field(label, name, typ, value string, extra ...g.Node) g.Node {
	return Div(Class("field"),
		g.El("label", g.Attr("for", name), g.Text(label)),
		Input(ID(name), Name(name), Type(typ), g.If(value != "", Value(value)), g.Group(extra)),
	)
}

func form(action, token string, children ...g.Node) g.Node {
	return g.El("form", Method("post"), Action(action),
		csrfField(token),
		g.Group(children),
	)
}
