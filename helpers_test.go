package blogcms

import (
	"testing"
	"time"

	"github.com/eringen/blogcms/content"
)

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base string
		segs []string
		want string
	}{
		{"https://blog.example.test", []string{"blog", "7"}, "https://blog.example.test/blog/7"},
		{"https://blog.example.test/", []string{"about"}, "https://blog.example.test/about"},
		{"https://example.test/sub", []string{"blog"}, "https://example.test/sub/blog"},
		{"https://blog.example.test", nil, "https://blog.example.test/"},
		{"", []string{"feed.xml"}, "/feed.xml"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segs...); got != tt.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segs, got, tt.want)
		}
	}
}

func TestSortPostsByDateDesc(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	posts := []content.Post{
		{ID: 1, PostDate: day(1)},
		{ID: 2, PostDate: day(3)},
		{ID: 3, PostDate: day(2)},
		{ID: 4, PostDate: day(3)},
	}

	sortPostsByDateDesc(posts)

	want := []int64{4, 2, 3, 1}
	for i, id := range want {
		if posts[i].ID != id {
			t.Fatalf("position %d: got post %d, want %d (order %v)", i, posts[i].ID, id, ids(posts))
		}
	}
}

func ids(posts []content.Post) []int64 {
	out := make([]int64, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}
