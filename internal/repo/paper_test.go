package repo

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/tokeley/researchlog/internal/models"
)

var paperCols = []string{
	"id", "title", "authors", "year", "abstract", "url", "is_read", "notes", "tags",
	"created_at", "updated_at", "id", "username", "is_admin",
}

func paperRow(id string, isRead bool, now time.Time) []driver.Value {
	return []driver.Value{id, "Attention", "{Vaswani,Shazeer}", 2017, "", "", isRead, "", "{nlp}", now, now, "u-1", "alice", true}
}

func TestPaperRepo_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`FROM papers p JOIN users u ON u.id = p.added_by ORDER BY p.created_at DESC`).
		WillReturnRows(sqlmock.NewRows(paperCols).AddRow(paperRow("pa-1", false, now)...))

	repo := NewPaperRepo(db)
	papers, err := repo.List(context.Background(), models.ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(papers) != 1 {
		t.Fatalf("unexpected papers: %+v", papers)
	}
	p := papers[0]
	if len(p.Authors) != 2 || p.Authors[0] != "Vaswani" || p.Year != 2017 || p.AddedBy.Username != "alice" {
		t.Errorf("unexpected paper: %+v", p)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPaperRepo_List_Search(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`WHERE \(p.title ILIKE \$1 OR p.abstract ILIKE \$1 OR EXISTS \(SELECT 1 FROM unnest\(p.authors\)`).
		WithArgs("%vaswani%").
		WillReturnRows(sqlmock.NewRows(paperCols))

	repo := NewPaperRepo(db)
	if _, err := repo.List(context.Background(), models.ListFilter{Query: "vaswani"}); err != nil {
		t.Fatalf("List: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPaperRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO papers \(title, authors, year, abstract, url, is_read, notes, tags, added_by\)`).
		WithArgs("Attention", pq.Array([]string{"Vaswani", "Shazeer"}), 2017, "", "", false, "", pq.Array([]string{"nlp"}), "u-1").
		WillReturnRows(sqlmock.NewRows(paperCols).AddRow(paperRow("pa-1", false, now)...))

	repo := NewPaperRepo(db)
	p, err := repo.Create(context.Background(), models.Paper{
		Title:   "Attention",
		Authors: []string{"Vaswani", "Shazeer"},
		Year:    2017,
		Tags:    []string{"nlp"},
		AddedBy: models.UserPublic{ID: "u-1"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.ID != "pa-1" || p.IsRead || p.AddedBy.ID != "u-1" {
		t.Errorf("unexpected paper: %+v", p)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPaperRepo_ToggleRead(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`UPDATE papers SET is_read = NOT is_read, updated_at = now\(\)`).
		WithArgs("pa-1").
		WillReturnRows(sqlmock.NewRows(paperCols).AddRow(paperRow("pa-1", true, now)...))
	mock.ExpectQuery(`UPDATE papers SET is_read = NOT is_read, updated_at = now\(\)`).
		WithArgs("pa-1").
		WillReturnRows(sqlmock.NewRows(paperCols).AddRow(paperRow("pa-1", false, now)...))

	repo := NewPaperRepo(db)
	first, err := repo.ToggleRead(context.Background(), "pa-1")
	if err != nil {
		t.Fatalf("ToggleRead: %v", err)
	}
	second, err := repo.ToggleRead(context.Background(), "pa-1")
	if err != nil {
		t.Fatalf("ToggleRead: %v", err)
	}
	if !first.IsRead || second.IsRead {
		t.Errorf("expected true then false, got %v then %v", first.IsRead, second.IsRead)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPaperRepo_ToggleRead_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`UPDATE papers SET is_read = NOT is_read`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	repo := NewPaperRepo(db)
	if _, err := repo.ToggleRead(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPaperRepo_Update_Partial(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	year := 2018
	mock.ExpectQuery(`UPDATE papers SET`).
		WithArgs("pa-1", nil, nil, 2018, nil, nil, nil, nil, pq.Array([]string{"nlp", "ml"})).
		WillReturnRows(sqlmock.NewRows(paperCols).AddRow(paperRow("pa-1", false, now)...))

	repo := NewPaperRepo(db)
	tags := []string{"nlp", "ml"}
	if _, err := repo.Update(context.Background(), "pa-1", models.PaperPatch{Year: &year, Tags: &tags}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPaperRepo_SetNotes(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	row := paperRow("pa-1", false, now)
	row[7] = "read section 3"
	mock.ExpectQuery(`UPDATE papers SET notes = \$2, updated_at = now\(\)`).
		WithArgs("pa-1", "read section 3").
		WillReturnRows(sqlmock.NewRows(paperCols).AddRow(row...))

	repo := NewPaperRepo(db)
	p, err := repo.SetNotes(context.Background(), "pa-1", "read section 3")
	if err != nil {
		t.Fatalf("SetNotes: %v", err)
	}
	if p.Notes != "read section 3" {
		t.Errorf("unexpected notes: %q", p.Notes)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPaperRepo_Update_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`UPDATE papers SET`).
		WillReturnError(sql.ErrNoRows)

	repo := NewPaperRepo(db)
	title := "renamed"
	if _, err := repo.Update(context.Background(), "missing", models.PaperPatch{Title: &title}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPaperRepo_SetNotes_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`UPDATE papers SET notes = \$2`).
		WithArgs("missing", "x").
		WillReturnError(sql.ErrNoRows)

	repo := NewPaperRepo(db)
	if _, err := repo.SetNotes(context.Background(), "missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPaperRepo_Create_UnknownOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO papers`).
		WillReturnError(&pq.Error{Code: "23503", Message: "violates foreign key constraint"})

	repo := NewPaperRepo(db)
	_, err = repo.Create(context.Background(), models.Paper{
		Title:   "Attention",
		Authors: []string{"Vaswani"},
		Year:    2017,
		AddedBy: models.UserPublic{ID: "gone"},
	})
	if !errors.Is(err, ErrUnknownOwner) {
		t.Errorf("expected ErrUnknownOwner, got: %v", err)
	}
}
