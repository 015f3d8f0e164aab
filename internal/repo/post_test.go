package repo

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/tokeley/researchlog/internal/models"
)

var postCols = []string{
	"id", "title", "caption", "content", "tags", "status", "created_at", "updated_at",
	"id", "username", "is_admin",
}

func TestPostRepo_List_PublishedOnly(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`FROM posts p JOIN users u ON u.id = p.author_id WHERE p.status = 'published' ORDER BY p.created_at DESC`).
		WillReturnRows(sqlmock.NewRows(postCols).
			AddRow("p-2", "second", "", "body", "{go,sql}", "published", now, now, "u-1", "alice", true).
			AddRow("p-1", "first", "cap", "body", "{}", "published", now.Add(-time.Hour), now, "u-1", "alice", true))

	repo := NewPostRepo(db)
	posts, err := repo.List(context.Background(), models.ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(posts) != 2 || posts[0].ID != "p-2" || posts[1].ID != "p-1" {
		t.Fatalf("unexpected posts: %+v", posts)
	}
	if len(posts[0].Tags) != 2 || posts[0].Tags[1] != "sql" {
		t.Errorf("unexpected tags: %v", posts[0].Tags)
	}
	if posts[0].Author.Username != "alice" || !posts[0].Author.IsAdmin {
		t.Errorf("author not resolved: %+v", posts[0].Author)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPostRepo_List_IncludeDraftsWithFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM posts p JOIN users u ON u.id = p.author_id WHERE \$1 = ANY\(p.tags\) AND \(p.title ILIKE \$2`).
		WithArgs("go", `%50\%%`).
		WillReturnRows(sqlmock.NewRows(postCols))

	repo := NewPostRepo(db)
	posts, err := repo.List(context.Background(), models.ListFilter{IncludeDrafts: true, Tag: "go", Query: "50%"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if posts == nil || len(posts) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", posts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPostRepo_Get_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`WHERE p.id = \$1`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	repo := NewPostRepo(db)
	_, err = repo.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPostRepo_Create_DefaultsToDraft(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO posts \(title, caption, content, author_id, tags, status\)`).
		WithArgs("hello", "", "world", "u-1", pq.Array([]string{}), "draft").
		WillReturnRows(sqlmock.NewRows(postCols).
			AddRow("p-1", "hello", "", "world", "{}", "draft", now, now, "u-1", "alice", true))

	repo := NewPostRepo(db)
	post, err := repo.Create(context.Background(), models.Post{
		Title:   "hello",
		Content: "world",
		Author:  models.UserPublic{ID: "u-1"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if post.ID != "p-1" || post.Status != models.StatusDraft || post.Author.Username != "alice" {
		t.Errorf("unexpected post: %+v", post)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPostRepo_Update_Partial(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	status := models.StatusPublished
	mock.ExpectQuery(`UPDATE posts SET`).
		WithArgs("p-1", nil, nil, nil, nil, "published").
		WillReturnRows(sqlmock.NewRows(postCols).
			AddRow("p-1", "hello", "", "world", "{}", "published", now, now, "u-1", "alice", true))

	repo := NewPostRepo(db)
	post, err := repo.Update(context.Background(), "p-1", models.PostPatch{Status: &status})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if post.Status != "published" || post.Title != "hello" {
		t.Errorf("unexpected post: %+v", post)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPostRepo_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`DELETE FROM posts WHERE id = \$1`).
		WithArgs("p-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM posts WHERE id = \$1`).
		WithArgs("p-9").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewPostRepo(db)
	if err := repo.Delete(context.Background(), "p-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(context.Background(), "p-9"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPostRepo_Tags(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT DISTINCT t FROM posts, unnest\(posts.tags\) AS t ORDER BY t`).
		WillReturnRows(sqlmock.NewRows([]string{"t"}).AddRow("go").AddRow("sql"))

	repo := NewPostRepo(db)
	tags, err := repo.Tags(context.Background())
	if err != nil {
		t.Fatalf("Tags: %v", err)
	}
	if len(tags) != 2 || tags[0] != "go" || tags[1] != "sql" {
		t.Errorf("unexpected tags: %v", tags)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
