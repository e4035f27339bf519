package content

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Store is the content repository: posts, categories and users in one SQL database.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// NewStore opens the database described by dsn and ensures the schema exists.
// For SQLite dsn is a file path whose directory is created on demand.
func NewStore(ctx context.Context, dialect Dialect, dsn string) (*Store, error) {
	if dialect == SQLite {
		path, _, _ := strings.Cut(dsn, "?")
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		dsn = sqliteDSN(dsn)
	}
	db, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, err
	}
	if dialect == SQLite {
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(4)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}
	s := &Store{db: db, dialect: dialect}
	if err := s.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// sqlitePragmas are applied by the driver to every new connection. WAL lets
// readers proceed during writes; busy_timeout makes writers wait instead of
// failing with SQLITE_BUSY.
var sqlitePragmas = []string{"busy_timeout(5000)", "journal_mode(WAL)", "synchronous(NORMAL)"}

// sqliteDSN appends the default pragmas unless dsn already sets its own.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	for _, p := range sqlitePragmas {
		dsn += sep + "_pragma=" + p
		sep = "&"
	}
	return dsn
}

// NewStoreFromDB wraps an already opened database without touching the schema.
func NewStoreFromDB(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema creates missing tables and indexes.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range s.dialect.statements() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (s *Store) query(ctx context.Context, q string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.dialect.rebind(q), args...)
}

func (s *Store) queryRow(ctx context.Context, q string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.dialect.rebind(q), args...)
}

func (s *Store) exec(ctx context.Context, q string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.dialect.rebind(q), args...)
}

// --- Posts ---

const postColumns = `id, title, body, feature_image, published, category, post_date`

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (Post, error) {
	var p Post
	var published int
	var postDate int64
	if err := row.Scan(&p.ID, &p.Title, &p.Body, &p.FeatureImage, &published, &p.Category, &postDate); err != nil {
		return Post{}, err
	}
	p.Published = published == 1
	p.PostDate = time.UnixMilli(postDate).UTC()
	return p, nil
}

// ListPosts returns posts matching f ordered by id.
func (s *Store) ListPosts(ctx context.Context, f PostFilter) ([]Post, error) {
	var where []string
	var args []any
	if f.PublishedOnly {
		where = append(where, "published = 1")
	}
	if f.Category != 0 {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if !f.MinDate.IsZero() {
		where = append(where, "post_date >= ?")
		args = append(args, f.MinDate.UnixMilli())
	}
	q := `SELECT ` + postColumns + ` FROM posts`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY id`

	rows, err := s.query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := []Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// GetPost returns a single post by id.
func (s *Store) GetPost(ctx context.Context, id int64) (Post, error) {
	p, err := scanPost(s.queryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Post{}, ErrNotFound
	}
	if err != nil {
		return Post{}, fmt.Errorf("get post %d: %w", id, err)
	}
	return p, nil
}

// CreatePost inserts p and fills in its generated id.
func (s *Store) CreatePost(ctx context.Context, p *Post) error {
	published := 0
	if p.Published {
		published = 1
	}
	err := s.queryRow(ctx,
		`INSERT INTO posts (title, body, feature_image, published, category, post_date) VALUES (?, ?, ?, ?, ?, ?) RETURNING id`,
		p.Title, p.Body, p.FeatureImage, published, p.Category, p.PostDate.UnixMilli(),
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

// DeletePost removes a post by id.
func (s *Store) DeletePost(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "posts", id)
}

// --- Categories ---

// ListCategories returns every category ordered by id.
func (s *Store) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.query(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// CreateCategory inserts c and fills in its generated id.
func (s *Store) CreateCategory(ctx context.Context, c *Category) error {
	if err := s.queryRow(ctx, `INSERT INTO categories (name) VALUES (?) RETURNING id`, c.Name).Scan(&c.ID); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// DeleteCategory removes a category by id. Posts referencing it are left untouched.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "categories", id)
}

func (s *Store) deleteByID(ctx context.Context, table string, id int64) error {
	res, err := s.exec(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Users ---

// CreateUser inserts a new user. A taken user name yields ErrDuplicate.
func (s *Store) CreateUser(ctx context.Context, u User) error {
	history, err := encodeHistory(u.LoginHistory)
	if err != nil {
		return err
	}
	_, err = s.exec(ctx, `INSERT INTO users (user_name, password, email, login_history) VALUES (?, ?, ?, ?)`,
		u.UserName, u.Password, u.Email, history)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUser returns the user with the given name.
func (s *Store) GetUser(ctx context.Context, userName string) (User, error) {
	var u User
	var history string
	err := s.queryRow(ctx, `SELECT user_name, password, email, login_history FROM users WHERE user_name = ?`, userName).
		Scan(&u.UserName, &u.Password, &u.Email, &history)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	if err := json.Unmarshal([]byte(history), &u.LoginHistory); err != nil {
		return User{}, fmt.Errorf("decode login history: %w", err)
	}
	return u, nil
}

// UpdateLoginHistory replaces the stored login history of a user.
func (s *Store) UpdateLoginHistory(ctx context.Context, userName string, history []LoginEntry) error {
	encoded, err := encodeHistory(history)
	if err != nil {
		return err
	}
	res, err := s.exec(ctx, `UPDATE users SET login_history = ? WHERE user_name = ?`, encoded, userName)
	if err != nil {
		return fmt.Errorf("update login history: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func encodeHistory(history []LoginEntry) (string, error) {
	if history == nil {
		history = []LoginEntry{}
	}
	b, err := json.Marshal(history)
	if err != nil {
		return "", fmt.Errorf("encode login history: %w", err)
	}
	return string(b), nil
}
