package blog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eringen/blogcms/content"
)

// memRepo is an in-memory Repository that counts list calls and can be told
// to fail, either entirely or only for categories.
type memRepo struct {
	posts          []content.Post
	categories     []content.Category
	nextID         int64
	listCalls      int
	failWith       error
	failCategories error
}

func (r *memRepo) ListPosts(_ context.Context, f content.PostFilter) ([]content.Post, error) {
	r.listCalls++
	if r.failWith != nil {
		return nil, r.failWith
	}
	out := []content.Post{}
	for _, p := range r.posts {
		if f.PublishedOnly && !p.Published {
			continue
		}
		if f.Category != 0 && p.Category != f.Category {
			continue
		}
		if !f.MinDate.IsZero() && p.PostDate.Before(f.MinDate) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *memRepo) GetPost(_ context.Context, id int64) (content.Post, error) {
	if r.failWith != nil {
		return content.Post{}, r.failWith
	}
	for _, p := range r.posts {
		if p.ID == id {
			return p, nil
		}
	}
	return content.Post{}, content.ErrNotFound
}

func (r *memRepo) CreatePost(_ context.Context, p *content.Post) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.nextID++
	p.ID = r.nextID
	r.posts = append(r.posts, *p)
	return nil
}

func (r *memRepo) DeletePost(_ context.Context, id int64) error {
	for i, p := range r.posts {
		if p.ID == id {
			r.posts = append(r.posts[:i], r.posts[i+1:]...)
			return nil
		}
	}
	return content.ErrNotFound
}

func (r *memRepo) ListCategories(context.Context) ([]content.Category, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	if r.failCategories != nil {
		return nil, r.failCategories
	}
	return append([]content.Category{}, r.categories...), nil
}

func (r *memRepo) CreateCategory(_ context.Context, c *content.Category) error {
	r.nextID++
	c.ID = r.nextID
	r.categories = append(r.categories, *c)
	return nil
}

func (r *memRepo) DeleteCategory(_ context.Context, id int64) error {
	for i, c := range r.categories {
		if c.ID == id {
			r.categories = append(r.categories[:i], r.categories[i+1:]...)
			return nil
		}
	}
	return content.ErrNotFound
}

func day(d int) time.Time {
	return time.Date(2024, 2, d, 8, 0, 0, 0, time.UTC)
}

func seededRepo() *memRepo {
	return &memRepo{
		nextID:     10,
		categories: []content.Category{{ID: 1, Name: "Go"}, {ID: 2, Name: "SQL"}},
		posts: []content.Post{
			{ID: 1, Title: "a", Category: 1, Published: true, PostDate: day(1)},
			{ID: 2, Title: "b", Category: 1, Published: false, PostDate: day(2)},
			{ID: 3, Title: "c", Category: 2, Published: true, PostDate: day(3)},
		},
	}
}

func TestQueries(t *testing.T) {
	svc := NewService(seededRepo(), 0)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() ([]content.Post, error)
		want []int64
	}{
		{"all", func() ([]content.Post, error) { return svc.AllPosts(ctx) }, []int64{1, 2, 3}},
		{"published", func() ([]content.Post, error) { return svc.PublishedPosts(ctx) }, []int64{1, 3}},
		{"by category", func() ([]content.Post, error) { return svc.PostsByCategory(ctx, 1) }, []int64{1, 2}},
		{"published by category", func() ([]content.Post, error) { return svc.PublishedPostsByCategory(ctx, 1) }, []int64{1}},
		{"by min date", func() ([]content.Post, error) { return svc.PostsByMinDate(ctx, day(2)) }, []int64{2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.call()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d posts, want %d", len(got), len(tt.want))
			}
			for i, p := range got {
				if p.ID != tt.want[i] {
					t.Errorf("post[%d].ID = %d, want %d", i, p.ID, tt.want[i])
				}
			}
		})
	}
}

func TestPostByID(t *testing.T) {
	svc := NewService(seededRepo(), 0)
	ctx := context.Background()

	if p, err := svc.PostByID(ctx, 2); err != nil || p.Title != "b" {
		t.Fatalf("PostByID(2) = %+v, %v", p, err)
	}
	if _, err := svc.PostByID(ctx, 99); !errors.Is(err, content.ErrNotFound) {
		t.Errorf("PostByID(99) err = %v, want ErrNotFound", err)
	}
	if _, err := svc.PublishedPostByID(ctx, 2); !errors.Is(err, content.ErrNotFound) {
		t.Errorf("draft should be hidden, got %v", err)
	}
	if _, err := svc.PublishedPostByID(ctx, 3); err != nil {
		t.Errorf("PublishedPostByID(3): %v", err)
	}
}

func TestAddPostNormalisation(t *testing.T) {
	repo := seededRepo()
	svc := NewService(repo, 0)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	tests := []struct {
		published string
		want      bool
	}{
		{"", false},
		{"false", false},
		{"off", false},
		{"on", true},
		{"true", true},
		{"1", true},
	}
	for _, tt := range tests {
		p, err := svc.AddPost(ctx, PostInput{Title: "t", Body: "b", Published: tt.published, Category: "2"})
		if err != nil {
			t.Fatalf("AddPost(%q): %v", tt.published, err)
		}
		if p.Published != tt.want {
			t.Errorf("Published(%q) = %v, want %v", tt.published, p.Published, tt.want)
		}
		if !p.PostDate.Equal(now) {
			t.Errorf("PostDate = %v, want creation time %v", p.PostDate, now)
		}
		if p.Category != 2 {
			t.Errorf("Category = %d, want 2", p.Category)
		}
	}

	explicit := day(9)
	p, err := svc.AddPost(ctx, PostInput{Title: "dated", PostDate: explicit})
	if err != nil {
		t.Fatalf("AddPost: %v", err)
	}
	if !p.PostDate.Equal(explicit) {
		t.Errorf("PostDate = %v, want %v", p.PostDate, explicit)
	}
	if p.FeatureImage != "" {
		t.Errorf("FeatureImage = %q, want empty", p.FeatureImage)
	}
}

func TestAddPostValidation(t *testing.T) {
	svc := NewService(seededRepo(), 0)
	ctx := context.Background()

	if _, err := svc.AddPost(ctx, PostInput{Title: "   "}); !errors.Is(err, ErrMissingTitle) {
		t.Errorf("blank title err = %v, want ErrMissingTitle", err)
	}
	if _, err := svc.AddPost(ctx, PostInput{Title: "x", Category: "abc"}); !errors.Is(err, ErrInvalidCategory) {
		t.Errorf("bad category err = %v, want ErrInvalidCategory", err)
	}
	if _, err := svc.AddCategory(ctx, " "); !errors.Is(err, ErrMissingCategoryName) {
		t.Errorf("blank category err = %v, want ErrMissingCategoryName", err)
	}
}

func TestAddPostUpstreamFailure(t *testing.T) {
	repo := seededRepo()
	repo.failWith = errors.New("disk full")
	svc := NewService(repo, 0)

	_, err := svc.AddPost(context.Background(), PostInput{Title: "x"})
	if !errors.Is(err, repo.failWith) {
		t.Fatalf("err = %v, want wrapped upstream error", err)
	}
}

func TestDeletes(t *testing.T) {
	svc := NewService(seededRepo(), 0)
	ctx := context.Background()

	if err := svc.DeletePostByID(ctx, 1); err != nil {
		t.Fatalf("DeletePostByID: %v", err)
	}
	if err := svc.DeletePostByID(ctx, 1); !errors.Is(err, content.ErrNotFound) {
		t.Errorf("second DeletePostByID err = %v", err)
	}
	if err := svc.DeleteCategoryByID(ctx, 2); err != nil {
		t.Fatalf("DeleteCategoryByID: %v", err)
	}
	if err := svc.DeleteCategoryByID(ctx, 2); !errors.Is(err, content.ErrNotFound) {
		t.Errorf("second DeleteCategoryByID err = %v", err)
	}
}

func TestCacheServesAndInvalidates(t *testing.T) {
	repo := seededRepo()
	svc := NewService(repo, time.Minute)
	ctx := context.Background()

	if _, err := svc.PublishedPosts(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.PublishedPostsByCategory(ctx, 2); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Categories(ctx); err != nil {
		t.Fatal(err)
	}
	if repo.listCalls != 1 {
		t.Fatalf("listCalls = %d, want 1 (served from cache)", repo.listCalls)
	}

	if _, err := svc.AddPost(ctx, PostInput{Title: "new", Published: "on"}); err != nil {
		t.Fatal(err)
	}
	posts, err := svc.PublishedPosts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if repo.listCalls != 2 {
		t.Errorf("listCalls = %d, want 2 after invalidation", repo.listCalls)
	}
	if len(posts) != 3 {
		t.Errorf("published posts = %d, want 3", len(posts))
	}

	// callers get copies
	posts[0].Title = "mutated"
	again, _ := svc.PublishedPosts(ctx)
	if again[0].Title == "mutated" {
		t.Error("cache handed out its backing slice")
	}
}

func TestCacheDoesNotKeepFailures(t *testing.T) {
	repo := seededRepo()
	repo.failWith = errors.New("timeout")
	svc := NewService(repo, time.Minute)
	ctx := context.Background()

	if _, err := svc.Categories(ctx); err == nil {
		t.Fatal("expected error")
	}
	repo.failWith = nil
	cats, err := svc.Categories(ctx)
	if err != nil {
		t.Fatalf("Categories after recovery: %v", err)
	}
	if len(cats) != 2 {
		t.Errorf("categories = %d, want 2", len(cats))
	}
}

func TestCacheListsFailIndependently(t *testing.T) {
	repo := seededRepo()
	repo.failCategories = errors.New("categories table locked")
	svc := NewService(repo, time.Minute)
	ctx := context.Background()

	if _, err := svc.Categories(ctx); !errors.Is(err, repo.failCategories) {
		t.Fatalf("Categories err = %v, want %v", err, repo.failCategories)
	}
	posts, err := svc.PublishedPosts(ctx)
	if err != nil {
		t.Fatalf("PublishedPosts with failing categories: %v", err)
	}
	if len(posts) != 2 {
		t.Errorf("published posts = %d, want 2", len(posts))
	}

	repo.failCategories = nil
	cats, err := svc.Categories(ctx)
	if err != nil {
		t.Fatalf("Categories after recovery: %v", err)
	}
	if len(cats) != 2 {
		t.Errorf("categories = %d, want 2", len(cats))
	}
	if _, err := svc.PublishedPosts(ctx); err != nil {
		t.Fatal(err)
	}
	if repo.listCalls != 1 {
		t.Errorf("listCalls = %d, want 1 (posts stayed cached)", repo.listCalls)
	}
}
