package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/sushihentaime/blogapi/internal/common"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateTitle = errors.New("blog title already exists")
	ErrEditConflict   = errors.New("edit conflict")
	ErrUserForeignKey = errors.New("author does not exist")
)

// blogColumns is selected from a relation aliased b joined to users aliased u.
const blogColumns = `
	b.id, b.title, b.description, b.author_id, b.state, b.read_count, b.reading_time, b.tags, b.body,
	b.created_at, b.updated_at, b.version, u.id, u.first_name, u.last_name, u.email, u.bio`

func newBlogModel(db *sql.DB) *BlogModel {
	return &BlogModel{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

// scanBlog reads blogColumns. The author's bio is kept only when withBio is set.
func scanBlog(row scanner, withBio bool) (*Blog, error) {
	var (
		blog Blog
		bio  string
	)

	err := row.Scan(
		&blog.ID,
		&blog.Title,
		&blog.Description,
		&blog.AuthorID,
		&blog.State,
		&blog.ReadCount,
		&blog.ReadingTime,
		pq.Array(&blog.Tags),
		&blog.Body,
		&blog.CreatedAt,
		&blog.UpdatedAt,
		&blog.Version,
		&blog.Author.ID,
		&blog.Author.FirstName,
		&blog.Author.LastName,
		&blog.Author.Email,
		&bio,
	)
	if err != nil {
		return nil, err
	}

	if blog.Tags == nil {
		blog.Tags = []string{}
	}

	if withBio {
		blog.Author.Bio = &bio
	}

	return &blog, nil
}

func (m *BlogModel) insert(ctx context.Context, blog *Blog) (*Blog, error) {
	query := `
		WITH b AS (
			INSERT INTO blogs (title, description, author_id, state, reading_time, tags, body)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING *
		)
		SELECT` + blogColumns + `
		FROM b
		JOIN users u ON u.id = b.author_id`

	args := []any{
		blog.Title,
		blog.Description,
		blog.AuthorID,
		string(blog.State),
		blog.ReadingTime,
		pq.Array(blog.Tags),
		blog.Body,
	}

	created, err := scanBlog(m.db.QueryRowContext(ctx, query, args...), false)
	if err != nil {
		switch {
		case common.UniqueViolation(err, "blogs_title_key"):
			return nil, ErrDuplicateTitle
		case common.ForeignKeyViolation(err, "blogs_author_id_fkey"):
			return nil, ErrUserForeignKey
		default:
			return nil, err
		}
	}

	return created, nil
}

// getBlogById returns a blog without touching its read count.
func (m *BlogModel) getBlogById(ctx context.Context, id uuid.UUID) (*Blog, error) {
	query := `
		SELECT` + blogColumns + `
		FROM blogs b
		JOIN users u ON u.id = b.author_id
		WHERE b.id = $1`

	blog, err := scanBlog(m.db.QueryRowContext(ctx, query, id), false)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return blog, nil
}

// viewBlog increments the read count and returns the incremented row in one statement.
func (m *BlogModel) viewBlog(ctx context.Context, id uuid.UUID) (*Blog, error) {
	query := `
		WITH b AS (
			UPDATE blogs
			SET read_count = read_count + 1
			WHERE id = $1
			RETURNING *
		)
		SELECT` + blogColumns + `
		FROM b
		JOIN users u ON u.id = b.author_id`

	blog, err := scanBlog(m.db.QueryRowContext(ctx, query, id), true)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return blog, nil
}

// updateBlog writes the editable fields when the version still matches.
func (m *BlogModel) updateBlog(ctx context.Context, blog *Blog) (*Blog, error) {
	query := `
		WITH b AS (
			UPDATE blogs
			SET title = $1, description = $2, state = $3, reading_time = $4, tags = $5, body = $6,
				updated_at = NOW(), version = version + 1
			WHERE id = $7 AND author_id = $8 AND version = $9
			RETURNING *
		)
		SELECT` + blogColumns + `
		FROM b
		JOIN users u ON u.id = b.author_id`

	args := []any{
		blog.Title,
		blog.Description,
		string(blog.State),
		blog.ReadingTime,
		pq.Array(blog.Tags),
		blog.Body,
		blog.ID,
		blog.AuthorID,
		blog.Version,
	}

	updated, err := scanBlog(m.db.QueryRowContext(ctx, query, args...), false)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, m.missedUpdateError(ctx, blog.ID)
		case common.UniqueViolation(err, "blogs_title_key"):
			return nil, ErrDuplicateTitle
		default:
			return nil, err
		}
	}

	return updated, nil
}

// missedUpdateError tells a blog deleted since it was read apart from one edited since it was read.
func (m *BlogModel) missedUpdateError(ctx context.Context, id uuid.UUID) error {
	var exists bool
	err := m.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM blogs WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return err
	}

	if !exists {
		return ErrRecordNotFound
	}

	return ErrEditConflict
}

func (m *BlogModel) deleteBlog(ctx context.Context, blogId, authorId uuid.UUID) error {
	query := `
		DELETE FROM blogs
		WHERE id = $1 AND author_id = $2`

	res, err := m.db.ExecContext(ctx, query, blogId, authorId)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows != 1 {
		switch {
		case rows == 0:
			return ErrRecordNotFound
		default:
			return fmt.Errorf("expected 1 row to be affected, got %d", rows)
		}
	}

	return nil
}

// listBlogs returns one page of blogs in scope and the total count, read from the same snapshot.
func (m *BlogModel) listBlogs(ctx context.Context, sc scope, f ListFilter) ([]*Blog, int, error) {
	where, args := whereClause(sc, f.Search)

	countQuery := `SELECT COUNT(*) FROM blogs b ` + where

	listQuery := fmt.Sprintf(`
		SELECT %s
		FROM blogs b
		JOIN users u ON u.id = b.author_id
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`, blogColumns, where, f.orderBy(), len(args)+1, len(args)+2)

	tx, err := m.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback()

	var total int
	err = tx.QueryRowContext(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count blogs: %w", err)
	}

	rows, err := tx.QueryContext(ctx, listQuery, append(args, f.Limit, f.offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list blogs: %w", err)
	}
	defer rows.Close()

	blogs := make([]*Blog, 0, f.Limit)
	for rows.Next() {
		blog, err := scanBlog(rows, false)
		if err != nil {
			return nil, 0, err
		}
		blogs = append(blogs, blog)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, err
	}

	return blogs, total, nil
}
