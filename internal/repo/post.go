package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/tokeley/researchlog/internal/models"
)

// ========================
// REPOSITORY STRUCT
// ========================

type PostRepo struct {
	DB *sql.DB
}

func NewPostRepo(db *sql.DB) *PostRepo {
	return &PostRepo{DB: db}
}

// postColumns selects a post with its author joined as u.
const postColumns = `p.id, p.title, p.caption, p.content, p.tags, p.status, p.created_at, p.updated_at,
	u.id, u.username, u.is_admin`

func scanPost(s rowScanner) (models.Post, error) {
	var p models.Post
	err := s.Scan(
		&p.ID,
		&p.Title,
		&p.Caption,
		&p.Content,
		pq.Array(&p.Tags),
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.Author.ID,
		&p.Author.Username,
		&p.Author.IsAdmin,
	)
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p, err
}

// ========================
// LIST POSTS (newest first)
// ========================

func (r *PostRepo) List(ctx context.Context, f models.ListFilter) ([]models.Post, error) {
	var where []string
	var args []any

	if !f.IncludeDrafts {
		where = append(where, "p.status = 'published'")
	}
	if f.Tag != "" {
		args = append(args, f.Tag)
		where = append(where, fmt.Sprintf("$%d = ANY(p.tags)", len(args)))
	}
	if f.Query != "" {
		args = append(args, likePattern(f.Query))
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(p.title ILIKE $%d OR p.caption ILIKE $%d OR EXISTS (SELECT 1 FROM unnest(p.tags) t WHERE t ILIKE $%d))",
			n, n, n))
	}

	query := `SELECT ` + postColumns + ` FROM posts p JOIN users u ON u.id = p.author_id`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY p.created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := []models.Post{}
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

// ========================
// GET POST BY ID (any status)
// ========================

func (r *PostRepo) Get(ctx context.Context, id string) (models.Post, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts p JOIN users u ON u.id = p.author_id WHERE p.id = $1`,
		id,
	)
	p, err := scanPost(row)
	return p, mapErr(err)
}

// ========================
// CREATE POST
// ========================

func (r *PostRepo) Create(ctx context.Context, post models.Post) (models.Post, error) {
	status := post.Status
	if status == "" {
		status = models.StatusDraft
	}
	tags := post.Tags
	if tags == nil {
		tags = []string{}
	}

	row := r.DB.QueryRowContext(ctx, `
		WITH p AS (
			INSERT INTO posts (title, caption, content, author_id, tags, status)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING *
		)
		SELECT `+postColumns+` FROM p JOIN users u ON u.id = p.author_id`,
		post.Title, post.Caption, post.Content, post.Author.ID, pq.Array(tags), status,
	)
	created, err := scanPost(row)
	return created, mapErr(err)
}

// ========================
// UPDATE POST (partial merge)
// ========================

func (r *PostRepo) Update(ctx context.Context, id string, patch models.PostPatch) (models.Post, error) {
	row := r.DB.QueryRowContext(ctx, `
		WITH p AS (
			UPDATE posts SET
				title = COALESCE($2, title),
				caption = COALESCE($3, caption),
				content = COALESCE($4, content),
				tags = COALESCE($5, tags),
				status = COALESCE($6, status),
				updated_at = now()
			WHERE id = $1
			RETURNING *
		)
		SELECT `+postColumns+` FROM p JOIN users u ON u.id = p.author_id`,
		id, patch.Title, patch.Caption, patch.Content, nullableArray(patch.Tags), patch.Status,
	)
	updated, err := scanPost(row)
	return updated, mapErr(err)
}

// ========================
// DELETE POST
// ========================

func (r *PostRepo) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	return affectedOne(result, err)
}

// ========================
// DISTINCT TAGS (all statuses)
// ========================

func (r *PostRepo) Tags(ctx context.Context) ([]string, error) {
	return distinctTags(ctx, r.DB, `SELECT DISTINCT t FROM posts, unnest(posts.tags) AS t ORDER BY t`)
}

func distinctTags(ctx context.Context, db *sql.DB, query string) ([]string, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
