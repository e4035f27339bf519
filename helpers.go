package blogcms

import (
	"cmp"
	"net/url"
	"path"
	"slices"

	"github.com/eringen/blogcms/content"
)

// BuildURL joins a base URL with path segments.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join("/", u.Path, path.Join(pathSegments...))
	return u.String()
}

// sortPostsByDateDesc orders posts newest first; equal dates keep the newer id first.
func sortPostsByDateDesc(posts []content.Post) {
	slices.SortStableFunc(posts, func(a, b content.Post) int {
		if c := b.PostDate.Compare(a.PostDate); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
}
