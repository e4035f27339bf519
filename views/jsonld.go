package views

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"

	"github.com/eringen/blogcms/content"
)

// absoluteURL joins base with p. base may be empty.
func absoluteURL(base, p string) string {
	u, err := url.Parse(base)
	if err != nil || base == "" {
		return p
	}
	u.Path = path.Join(u.Path, p)
	return u.String()
}

// BlogPostingJSONLD produces a Schema.org BlogPosting block for a post.
// json.Marshal escapes <, > and &, so the result is safe inside a script tag.
func BlogPostingJSONLD(site SiteConfig, post content.Post) string {
	postURL := absoluteURL(site.URL, post.Link())
	data := map[string]any{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      post.Title,
		"datePublished": FormatDate(post.PostDate),
		"url":           postURL,
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  site.Name,
		},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	switch img := strings.TrimSpace(post.FeatureImage); {
	case img == "":
	case strings.HasPrefix(img, "http://"), strings.HasPrefix(img, "https://"):
		data["image"] = img
	default:
		data["image"] = absoluteURL(site.URL, img)
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
