package letterpress

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/eringen/letterpress/newsletter"
)

// Store is the SQLite implementation of newsletter.Gateway. Every driver
// failure is reported as a *newsletter.PersistenceError.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

var _ newsletter.Gateway = (*Store)(nil)

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and applies pending migrations.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	// Pragmas go in the DSN so every pooled connection gets them; foreign
	// keys must be on for post deletion to cascade.
	dsn := "file:" + path +
		"?_pragma=foreign_keys(1)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_time_format=sqlite"
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if err := migrate(db.DB); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return &newsletter.PersistenceError{Op: "ping", Err: err}
	}
	return nil
}

type newsletterRow struct {
	ID           int64          `db:"id"`
	Title        string         `db:"title"`
	Status       string         `db:"status"`
	HeaderLogo   sql.NullString `db:"header_logo"`
	HeroImage    sql.NullString `db:"hero_image"`
	HeroTitle    sql.NullString `db:"hero_title"`
	HeroSubtitle sql.NullString `db:"hero_subtitle"`
	FooterText   sql.NullString `db:"footer_text"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	PublishedAt  sql.NullTime   `db:"published_at"`
}

func (r newsletterRow) toDomain() newsletter.Newsletter {
	return newsletter.Newsletter{
		ID:           r.ID,
		Title:        r.Title,
		Status:       newsletter.Status(r.Status),
		HeaderLogo:   newsletter.Image(r.HeaderLogo.String),
		HeroImage:    newsletter.Image(r.HeroImage.String),
		HeroTitle:    r.HeroTitle.String,
		HeroSubtitle: r.HeroSubtitle.String,
		FooterText:   r.FooterText.String,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		PublishedAt:  timePtr(r.PublishedAt),
	}
}

func newNewsletterRow(n newsletter.Newsletter) newsletterRow {
	return newsletterRow{
		ID:           n.ID,
		Title:        n.Title,
		Status:       string(n.Status),
		HeaderLogo:   nullString(n.HeaderLogo.String()),
		HeroImage:    nullString(n.HeroImage.String()),
		HeroTitle:    nullString(n.HeroTitle),
		HeroSubtitle: nullString(n.HeroSubtitle),
		FooterText:   nullString(n.FooterText),
		CreatedAt:    n.CreatedAt,
		UpdatedAt:    n.UpdatedAt,
		PublishedAt:  nullTime(n.PublishedAt),
	}
}

type summaryRow struct {
	ID          int64        `db:"id"`
	Title       string       `db:"title"`
	Status      string       `db:"status"`
	CreatedAt   time.Time    `db:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at"`
	PublishedAt sql.NullTime `db:"published_at"`
}

type postRow struct {
	ID           int64          `db:"id"`
	NewsletterID int64          `db:"newsletter_id"`
	Position     int            `db:"position"`
	Layout       string         `db:"layout"`
	Title        sql.NullString `db:"title"`
	Content      sql.NullString `db:"content"`
	Image        sql.NullString `db:"image"`
	Title2       sql.NullString `db:"title2"`
	Content2     sql.NullString `db:"content2"`
	Image2       sql.NullString `db:"image2"`
	StackWidth   int            `db:"stack_width"`
	CreatedAt    time.Time      `db:"created_at"`
}

func (r postRow) toDomain() (newsletter.Post, error) {
	f := newsletter.PostFields{
		Layout:     r.Layout,
		Title:      r.Title.String,
		Content:    r.Content.String,
		Image:      r.Image.String,
		Title2:     stringPtr(r.Title2),
		Content2:   stringPtr(r.Content2),
		Image2:     stringPtr(r.Image2),
		StackWidth: r.StackWidth,
	}
	layout, err := f.Build()
	if err != nil {
		return newsletter.Post{}, &newsletter.PersistenceError{Op: "decode post", Err: err}
	}
	return newsletter.Post{
		ID:           r.ID,
		NewsletterID: r.NewsletterID,
		Position:     r.Position,
		Layout:       layout,
	}, nil
}

func newPostRow(p newsletter.Post) postRow {
	f := p.Fields()
	return postRow{
		ID:           p.ID,
		NewsletterID: p.NewsletterID,
		Position:     p.Position,
		Layout:       f.Layout,
		Title:        nullString(f.Title),
		Content:      nullString(f.Content),
		Image:        nullString(f.Image),
		Title2:       nullStringPtr(f.Title2),
		Content2:     nullStringPtr(f.Content2),
		Image2:       nullStringPtr(f.Image2),
		StackWidth:   f.StackWidth,
	}
}

const (
	newsletterColumns = `id, title, status, header_logo, hero_image, hero_title, hero_subtitle, footer_text, created_at, updated_at, published_at`
	postColumns       = `id, newsletter_id, position, layout, title, content, image, title2, content2, image2, stack_width, created_at`
)

// LoadNewsletter returns a single newsletter by id.
func (s *Store) LoadNewsletter(ctx context.Context, id int64) (newsletter.Newsletter, error) {
	var row newsletterRow
	err := sqlx.GetContext(ctx, s.executor(ctx), &row, `SELECT `+newsletterColumns+` FROM newsletters WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return newsletter.Newsletter{}, &newsletter.NotFoundError{Kind: "newsletter", ID: id}
	}
	if err != nil {
		return newsletter.Newsletter{}, &newsletter.PersistenceError{Op: "load newsletter", Err: err}
	}
	return row.toDomain(), nil
}

// ListNewsletters returns every newsletter, most recently updated first.
func (s *Store) ListNewsletters(ctx context.Context) ([]newsletter.Summary, error) {
	var rows []summaryRow
	err := sqlx.SelectContext(ctx, s.executor(ctx), &rows,
		`SELECT id, title, status, created_at, updated_at, published_at FROM newsletters ORDER BY updated_at DESC, id DESC`)
	if err != nil {
		return nil, &newsletter.PersistenceError{Op: "list newsletters", Err: err}
	}
	out := make([]newsletter.Summary, 0, len(rows))
	for _, r := range rows {
		out = append(out, newsletter.Summary{
			ID:          r.ID,
			Title:       r.Title,
			Status:      newsletter.Status(r.Status),
			CreatedAt:   r.CreatedAt,
			UpdatedAt:   r.UpdatedAt,
			PublishedAt: timePtr(r.PublishedAt),
		})
	}
	return out, nil
}

// LoadPosts returns the posts of a newsletter ordered by position, then id.
func (s *Store) LoadPosts(ctx context.Context, newsletterID int64) ([]newsletter.Post, error) {
	var rows []postRow
	err := sqlx.SelectContext(ctx, s.executor(ctx), &rows,
		`SELECT `+postColumns+` FROM posts WHERE newsletter_id = ? ORDER BY position ASC, id ASC`, newsletterID)
	if err != nil {
		return nil, &newsletter.PersistenceError{Op: "load posts", Err: err}
	}
	posts := make([]newsletter.Post, 0, len(rows))
	for _, r := range rows {
		p, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// LoadPost returns a single post by id.
func (s *Store) LoadPost(ctx context.Context, id int64) (newsletter.Post, error) {
	var row postRow
	err := sqlx.GetContext(ctx, s.executor(ctx), &row, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return newsletter.Post{}, &newsletter.NotFoundError{Kind: "post", ID: id}
	}
	if err != nil {
		return newsletter.Post{}, &newsletter.PersistenceError{Op: "load post", Err: err}
	}
	return row.toDomain()
}

// NextPosition returns the position that appends a post to the end of the
// newsletter.
func (s *Store) NextPosition(ctx context.Context, newsletterID int64) (int, error) {
	var next int
	err := sqlx.GetContext(ctx, s.executor(ctx), &next,
		`SELECT COALESCE(MAX(position) + 1, 0) FROM posts WHERE newsletter_id = ?`, newsletterID)
	if err != nil {
		return 0, &newsletter.PersistenceError{Op: "next position", Err: err}
	}
	return next, nil
}

// SaveNewsletter inserts n when n.ID is zero and updates it otherwise.
func (s *Store) SaveNewsletter(ctx context.Context, n *newsletter.Newsletter) error {
	row := newNewsletterRow(*n)
	if n.ID == 0 {
		res, err := sqlx.NamedExecContext(ctx, s.executor(ctx), `
			INSERT INTO newsletters (title, status, header_logo, hero_image, hero_title, hero_subtitle, footer_text, created_at, updated_at, published_at)
			VALUES (:title, :status, :header_logo, :hero_image, :hero_title, :hero_subtitle, :footer_text, :created_at, :updated_at, :published_at)`, row)
		if err != nil {
			return &newsletter.PersistenceError{Op: "insert newsletter", Err: err}
		}
		id, err := res.LastInsertId()
		if err != nil {
			return &newsletter.PersistenceError{Op: "insert newsletter", Err: err}
		}
		n.ID = id
		return nil
	}

	res, err := sqlx.NamedExecContext(ctx, s.executor(ctx), `
		UPDATE newsletters SET
			title = :title, status = :status, header_logo = :header_logo, hero_image = :hero_image,
			hero_title = :hero_title, hero_subtitle = :hero_subtitle, footer_text = :footer_text,
			updated_at = :updated_at, published_at = :published_at
		WHERE id = :id`, row)
	if err != nil {
		return &newsletter.PersistenceError{Op: "update newsletter", Err: err}
	}
	return expectOne(res, "update newsletter", "newsletter", n.ID)
}

// SavePost inserts p when p.ID is zero and updates it otherwise. The owning
// newsletter's updated_at is touched in the same transaction.
func (s *Store) SavePost(ctx context.Context, p *newsletter.Post) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.runInTx(ctx, func(ctx context.Context) error {
		row := newPostRow(*p)
		if p.ID == 0 {
			if err := s.touchNewsletter(ctx, p.NewsletterID); err != nil {
				return err
			}
			row.CreatedAt = s.now()
			res, err := sqlx.NamedExecContext(ctx, s.executor(ctx), `
				INSERT INTO posts (newsletter_id, position, layout, title, content, image, title2, content2, image2, stack_width, created_at)
				VALUES (:newsletter_id, :position, :layout, :title, :content, :image, :title2, :content2, :image2, :stack_width, :created_at)`, row)
			if err != nil {
				return &newsletter.PersistenceError{Op: "insert post", Err: err}
			}
			id, err := res.LastInsertId()
			if err != nil {
				return &newsletter.PersistenceError{Op: "insert post", Err: err}
			}
			p.ID = id
			return nil
		}

		res, err := sqlx.NamedExecContext(ctx, s.executor(ctx), `
			UPDATE posts SET
				position = :position, layout = :layout, title = :title, content = :content, image = :image,
				title2 = :title2, content2 = :content2, image2 = :image2, stack_width = :stack_width
			WHERE id = :id`, row)
		if err != nil {
			return &newsletter.PersistenceError{Op: "update post", Err: err}
		}
		if err := expectOne(res, "update post", "post", p.ID); err != nil {
			return err
		}
		return s.touchNewsletter(ctx, p.NewsletterID)
	})
}

// SwapPositions stores the positions of a and b in a single transaction.
func (s *Store) SwapPositions(ctx context.Context, a, b *newsletter.Post) error {
	return s.runInTx(ctx, func(ctx context.Context) error {
		for _, p := range []*newsletter.Post{a, b} {
			res, err := s.executor(ctx).ExecContext(ctx, `UPDATE posts SET position = ? WHERE id = ?`, p.Position, p.ID)
			if err != nil {
				return &newsletter.PersistenceError{Op: "swap positions", Err: err}
			}
			if err := expectOne(res, "swap positions", "post", p.ID); err != nil {
				return err
			}
		}
		return s.touchNewsletter(ctx, a.NewsletterID)
	})
}

// DeleteNewsletter removes a newsletter; its posts go with it.
func (s *Store) DeleteNewsletter(ctx context.Context, id int64) error {
	res, err := s.executor(ctx).ExecContext(ctx, `DELETE FROM newsletters WHERE id = ?`, id)
	if err != nil {
		return &newsletter.PersistenceError{Op: "delete newsletter", Err: err}
	}
	return expectOne(res, "delete newsletter", "newsletter", id)
}

// DeletePost removes a single post.
func (s *Store) DeletePost(ctx context.Context, id int64) error {
	return s.runInTx(ctx, func(ctx context.Context) error {
		p, err := s.LoadPost(ctx, id)
		if err != nil {
			return err
		}
		res, err := s.executor(ctx).ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
		if err != nil {
			return &newsletter.PersistenceError{Op: "delete post", Err: err}
		}
		if err := expectOne(res, "delete post", "post", id); err != nil {
			return err
		}
		return s.touchNewsletter(ctx, p.NewsletterID)
	})
}

// DuplicateNewsletter copies a newsletter and all of its posts. The copy is a
// draft titled with newsletter.DuplicateSuffix.
func (s *Store) DuplicateNewsletter(ctx context.Context, id int64) (newsletter.Newsletter, error) {
	var dup newsletter.Newsletter
	err := s.runInTx(ctx, func(ctx context.Context) error {
		src, err := s.LoadNewsletter(ctx, id)
		if err != nil {
			return err
		}
		posts, err := s.LoadPosts(ctx, id)
		if err != nil {
			return err
		}

		dup = src.Duplicate(s.now())
		if err := s.SaveNewsletter(ctx, &dup); err != nil {
			return err
		}
		for _, p := range posts {
			p.ID = 0
			p.NewsletterID = dup.ID
			if err := s.SavePost(ctx, &p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return newsletter.Newsletter{}, err
	}
	return dup, nil
}

func (s *Store) touchNewsletter(ctx context.Context, id int64) error {
	res, err := s.executor(ctx).ExecContext(ctx, `UPDATE newsletters SET updated_at = ? WHERE id = ?`, s.now(), id)
	if err != nil {
		return &newsletter.PersistenceError{Op: "touch newsletter", Err: err}
	}
	return expectOne(res, "touch newsletter", "newsletter", id)
}

// expectOne maps "no row affected" to a *newsletter.NotFoundError.
func expectOne(res sql.Result, op, kind string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return &newsletter.PersistenceError{Op: op, Err: err}
	}
	if n == 0 {
		return &newsletter.NotFoundError{Kind: kind, ID: id}
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
