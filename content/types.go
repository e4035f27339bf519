// Package content holds the blog's domain records and the SQL repository that
// persists them. Two dialects are supported: SQLite (modernc.org/sqlite) for
// single-node installs and PostgreSQL through the pgx stdlib driver.
package content

import (
	"errors"
	"strconv"
	"time"
)

var (
	// ErrNotFound is returned when a post, category or user does not exist.
	ErrNotFound = errors.New("content: not found")
	// ErrDuplicate is returned when a unique key (the user name) already exists.
	ErrDuplicate = errors.New("content: duplicate key")
)

// Post is a blog entry. FeatureImage is empty when the post has no image.
type Post struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	FeatureImage string    `json:"featureImage"`
	Published    bool      `json:"published"`
	Category     int64     `json:"category"`
	PostDate     time.Time `json:"postDate"`
}

// Link returns the public URL path of the post.
func (p Post) Link() string {
	return "/blog/" + strconv.FormatInt(p.ID, 10)
}

// Category is a named grouping for posts.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// User is a staff account. Password holds the bcrypt hash.
type User struct {
	UserName     string       `json:"userName"`
	Password     string       `json:"-"`
	Email        string       `json:"email"`
	LoginHistory []LoginEntry `json:"loginHistory"`
}

// LoginEntry records one successful login.
type LoginEntry struct {
	DateTime  time.Time `json:"dateTime"`
	UserAgent string    `json:"userAgent"`
}

// PostFilter narrows ListPosts. Zero values mean "no constraint".
type PostFilter struct {
	Category      int64
	MinDate       time.Time
	PublishedOnly bool
}
