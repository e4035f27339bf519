package blog

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/eringen/blogcms/content"
)

// cachedList holds one list loaded from the repository for ttl. A failed
// load leaves the previous state untouched.
type cachedList[T any] struct {
	mu      sync.RWMutex
	items   []T
	loaded  bool
	fetched time.Time
}

func (l *cachedList[T]) valid(ttl time.Duration) bool {
	return l.loaded && time.Since(l.fetched) < ttl
}

func (l *cachedList[T]) reset() {
	l.mu.Lock()
	l.items = nil
	l.loaded = false
	l.mu.Unlock()
}

// ensureLoaded returns the cached items after refreshing them if stale.
// It tries a read lock first and only takes the write lock for a reload.
func (l *cachedList[T]) ensureLoaded(ctx context.Context, ttl time.Duration, load func(context.Context) ([]T, error)) ([]T, error) {
	l.mu.RLock()
	if l.valid(ttl) {
		items := l.items
		l.mu.RUnlock()
		return items, nil
	}
	l.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.valid(ttl) {
		return l.items, nil
	}
	items, err := load(ctx)
	if err != nil {
		return nil, err
	}
	l.items = items
	l.loaded = true
	l.fetched = time.Now()
	return items, nil
}

// listCache keeps the published post list and the category list in memory
// for ttl. The two lists load and fail independently. Callers always get
// copies so they may sort in place.
type listCache struct {
	ttl        time.Duration
	repo       Repository
	posts      cachedList[content.Post]
	categories cachedList[content.Category]
}

func newListCache(repo Repository, ttl time.Duration) *listCache {
	return &listCache{repo: repo, ttl: ttl}
}

func (c *listCache) enabled() bool {
	return c.ttl > 0
}

func (c *listCache) invalidate() {
	c.posts.reset()
	c.categories.reset()
}

func (c *listCache) loadPublished(ctx context.Context) ([]content.Post, error) {
	return c.repo.ListPosts(ctx, content.PostFilter{PublishedOnly: true})
}

// publishedPosts returns published posts, optionally restricted to one category.
func (c *listCache) publishedPosts(ctx context.Context, category int64) ([]content.Post, error) {
	if !c.enabled() {
		return c.repo.ListPosts(ctx, content.PostFilter{PublishedOnly: true, Category: category})
	}
	posts, err := c.posts.ensureLoaded(ctx, c.ttl, c.loadPublished)
	if err != nil {
		return nil, err
	}
	if category == 0 {
		return slices.Clone(posts), nil
	}
	filtered := []content.Post{}
	for _, p := range posts {
		if p.Category == category {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

func (c *listCache) allCategories(ctx context.Context) ([]content.Category, error) {
	if !c.enabled() {
		return c.repo.ListCategories(ctx)
	}
	categories, err := c.categories.ensureLoaded(ctx, c.ttl, c.repo.ListCategories)
	if err != nil {
		return nil, err
	}
	return slices.Clone(categories), nil
}
