// Package blog is the post and category façade used by the HTTP handlers.
package blog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/eringen/blogcms/content"
)

var (
	ErrMissingTitle        = errors.New("a post needs a title")
	ErrMissingCategoryName = errors.New("a category needs a name")
	ErrInvalidCategory     = errors.New("unknown category")
)

// Repository is the subset of the content store the service depends on.
type Repository interface {
	ListPosts(ctx context.Context, f content.PostFilter) ([]content.Post, error)
	GetPost(ctx context.Context, id int64) (content.Post, error)
	CreatePost(ctx context.Context, p *content.Post) error
	DeletePost(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]content.Category, error)
	CreateCategory(ctx context.Context, c *content.Category) error
	DeleteCategory(ctx context.Context, id int64) error
}

// PostInput is an add-post submission. Published and Category carry the raw
// form values; FeatureImage is the URL returned by the media uploader.
type PostInput struct {
	Title        string
	Body         string
	FeatureImage string
	Published    string
	Category     string
	PostDate     time.Time
}

// Service implements the blog operations over a Repository.
type Service struct {
	repo  Repository
	cache *listCache
	now   func() time.Time
}

// NewService creates a Service. A positive ttl enables caching of the
// published post list and the category list.
func NewService(repo Repository, ttl time.Duration) *Service {
	return &Service{
		repo:  repo,
		cache: newListCache(repo, ttl),
		now:   time.Now,
	}
}

// AllPosts returns every post, drafts included.
func (s *Service) AllPosts(ctx context.Context) ([]content.Post, error) {
	return s.repo.ListPosts(ctx, content.PostFilter{})
}

// PublishedPosts returns posts with the published flag set.
func (s *Service) PublishedPosts(ctx context.Context) ([]content.Post, error) {
	return s.cache.publishedPosts(ctx, 0)
}

// PostsByCategory returns every post in the category.
func (s *Service) PostsByCategory(ctx context.Context, category int64) ([]content.Post, error) {
	return s.repo.ListPosts(ctx, content.PostFilter{Category: category})
}

// PublishedPostsByCategory returns published posts in the category.
func (s *Service) PublishedPostsByCategory(ctx context.Context, category int64) ([]content.Post, error) {
	return s.cache.publishedPosts(ctx, category)
}

// PostsByMinDate returns posts dated on or after minDate.
func (s *Service) PostsByMinDate(ctx context.Context, minDate time.Time) ([]content.Post, error) {
	return s.repo.ListPosts(ctx, content.PostFilter{MinDate: minDate})
}

// PostByID returns a post regardless of its published flag.
func (s *Service) PostByID(ctx context.Context, id int64) (content.Post, error) {
	return s.repo.GetPost(ctx, id)
}

// PublishedPostByID returns a post only if it is published; drafts are reported
// as content.ErrNotFound.
func (s *Service) PublishedPostByID(ctx context.Context, id int64) (content.Post, error) {
	p, err := s.repo.GetPost(ctx, id)
	if err != nil {
		return content.Post{}, err
	}
	if !p.Published {
		return content.Post{}, content.ErrNotFound
	}
	return p, nil
}

// AddPost normalises and persists a new post.
func (s *Service) AddPost(ctx context.Context, in PostInput) (content.Post, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return content.Post{}, ErrMissingTitle
	}
	var category int64
	if v := strings.TrimSpace(in.Category); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id < 0 {
			return content.Post{}, ErrInvalidCategory
		}
		category = id
	}
	postDate := in.PostDate
	if postDate.IsZero() {
		postDate = s.now()
	}
	p := content.Post{
		Title:        title,
		Body:         in.Body,
		FeatureImage: strings.TrimSpace(in.FeatureImage),
		Published:    publishedFlag(in.Published),
		Category:     category,
		PostDate:     postDate.UTC(),
	}
	if err := s.repo.CreatePost(ctx, &p); err != nil {
		return content.Post{}, fmt.Errorf("add post: %w", err)
	}
	s.cache.invalidate()
	return p, nil
}

// DeletePostByID removes a post.
func (s *Service) DeletePostByID(ctx context.Context, id int64) error {
	if err := s.repo.DeletePost(ctx, id); err != nil {
		return err
	}
	s.cache.invalidate()
	return nil
}

// Categories returns every category.
func (s *Service) Categories(ctx context.Context) ([]content.Category, error) {
	return s.cache.allCategories(ctx)
}

// AddCategory persists a new category.
func (s *Service) AddCategory(ctx context.Context, name string) (content.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return content.Category{}, ErrMissingCategoryName
	}
	c := content.Category{Name: name}
	if err := s.repo.CreateCategory(ctx, &c); err != nil {
		return content.Category{}, fmt.Errorf("add category: %w", err)
	}
	s.cache.invalidate()
	return c, nil
}

// DeleteCategoryByID removes a category. Posts that reference it keep the
// dangling id.
func (s *Service) DeleteCategoryByID(ctx context.Context, id int64) error {
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.cache.invalidate()
	return nil
}

// publishedFlag maps a checkbox-style form value to a bool: absent or falsy
// values are false, anything else is true.
func publishedFlag(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false", "off", "no":
		return false
	}
	return true
}
