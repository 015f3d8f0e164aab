package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/tokeley/researchlog/internal/models"
)

type PaperRepo struct {
	DB *sql.DB
}

func NewPaperRepo(db *sql.DB) *PaperRepo {
	return &PaperRepo{DB: db}
}

const paperColumns = `p.id, p.title, p.authors, p.year, p.abstract, p.url, p.is_read, p.notes, p.tags,
	p.created_at, p.updated_at, u.id, u.username, u.is_admin`

func scanPaper(s rowScanner) (models.Paper, error) {
	var p models.Paper
	err := s.Scan(
		&p.ID,
		&p.Title,
		pq.Array(&p.Authors),
		&p.Year,
		&p.Abstract,
		&p.URL,
		&p.IsRead,
		&p.Notes,
		pq.Array(&p.Tags),
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.AddedBy.ID,
		&p.AddedBy.Username,
		&p.AddedBy.IsAdmin,
	)
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p, err
}

// List returns papers newest first. Bibliography entries have no draft state.
func (r *PaperRepo) List(ctx context.Context, f models.ListFilter) ([]models.Paper, error) {
	var where []string
	var args []any

	if f.Tag != "" {
		args = append(args, f.Tag)
		where = append(where, fmt.Sprintf("$%d = ANY(p.tags)", len(args)))
	}
	if f.Query != "" {
		args = append(args, likePattern(f.Query))
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(p.title ILIKE $%d OR p.abstract ILIKE $%d"+
				" OR EXISTS (SELECT 1 FROM unnest(p.authors) a WHERE a ILIKE $%d)"+
				" OR EXISTS (SELECT 1 FROM unnest(p.tags) t WHERE t ILIKE $%d))",
			n, n, n, n))
	}

	query := `SELECT ` + paperColumns + ` FROM papers p JOIN users u ON u.id = p.added_by`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY p.created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list papers: %w", err)
	}
	defer rows.Close()

	papers := []models.Paper{}
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, fmt.Errorf("scan paper: %w", err)
		}
		papers = append(papers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list papers: %w", err)
	}
	return papers, nil
}

func (r *PaperRepo) Get(ctx context.Context, id string) (models.Paper, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+paperColumns+` FROM papers p JOIN users u ON u.id = p.added_by WHERE p.id = $1`,
		id,
	)
	p, err := scanPaper(row)
	return p, mapErr(err)
}

func (r *PaperRepo) Create(ctx context.Context, paper models.Paper) (models.Paper, error) {
	tags := paper.Tags
	if tags == nil {
		tags = []string{}
	}

	row := r.DB.QueryRowContext(ctx, `
		WITH p AS (
			INSERT INTO papers (title, authors, year, abstract, url, is_read, notes, tags, added_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING *
		)
		SELECT `+paperColumns+` FROM p JOIN users u ON u.id = p.added_by`,
		paper.Title, pq.Array(paper.Authors), paper.Year, paper.Abstract, paper.URL,
		paper.IsRead, paper.Notes, pq.Array(tags), paper.AddedBy.ID,
	)
	created, err := scanPaper(row)
	return created, mapErr(err)
}

// Update merges the non-nil fields of patch into the stored paper.
func (r *PaperRepo) Update(ctx context.Context, id string, patch models.PaperPatch) (models.Paper, error) {
	row := r.DB.QueryRowContext(ctx, `
		WITH p AS (
			UPDATE papers SET
				title = COALESCE($2, title),
				authors = COALESCE($3, authors),
				year = COALESCE($4, year),
				abstract = COALESCE($5, abstract),
				url = COALESCE($6, url),
				is_read = COALESCE($7, is_read),
				notes = COALESCE($8, notes),
				tags = COALESCE($9, tags),
				updated_at = now()
			WHERE id = $1
			RETURNING *
		)
		SELECT `+paperColumns+` FROM p JOIN users u ON u.id = p.added_by`,
		id, patch.Title, nullableArray(patch.Authors), patch.Year, patch.Abstract, patch.URL,
		patch.IsRead, patch.Notes, nullableArray(patch.Tags),
	)
	updated, err := scanPaper(row)
	return updated, mapErr(err)
}

// ToggleRead flips is_read in a single statement.
func (r *PaperRepo) ToggleRead(ctx context.Context, id string) (models.Paper, error) {
	row := r.DB.QueryRowContext(ctx, `
		WITH p AS (
			UPDATE papers SET is_read = NOT is_read, updated_at = now()
			WHERE id = $1
			RETURNING *
		)
		SELECT `+paperColumns+` FROM p JOIN users u ON u.id = p.added_by`,
		id,
	)
	updated, err := scanPaper(row)
	return updated, mapErr(err)
}

func (r *PaperRepo) SetNotes(ctx context.Context, id, notes string) (models.Paper, error) {
	row := r.DB.QueryRowContext(ctx, `
		WITH p AS (
			UPDATE papers SET notes = $2, updated_at = now()
			WHERE id = $1
			RETURNING *
		)
		SELECT `+paperColumns+` FROM p JOIN users u ON u.id = p.added_by`,
		id, notes,
	)
	updated, err := scanPaper(row)
	return updated, mapErr(err)
}

func (r *PaperRepo) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM papers WHERE id = $1`, id)
	return affectedOne(result, err)
}

func (r *PaperRepo) Tags(ctx context.Context) ([]string, error) {
	return distinctTags(ctx, r.DB, `SELECT DISTINCT t FROM papers, unnest(papers.tags) AS t ORDER BY t`)
}
