package resumes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreateEncodesData(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()
	resume := Resume{
		ID:         "7c9e6679-7425-40de-944b-e07fc1f90ae7",
		UserID:     "user-1",
		Title:      "Jane Doe Resume",
		TemplateID: "modern",
		Data:       sampleData(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	mock.ExpectExec("INSERT INTO resumes").
		WithArgs(
			resume.ID,
			resume.UserID,
			resume.Title,
			resume.TemplateID,
			sqlmock.AnyArg(), // data
			resume.CreatedAt,
			resume.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), resume); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDDecodesData(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "user_id", "title", "template_id", "data", "created_at", "updated_at"}).
		AddRow("r-1", "user-1", "Title", "modern", []byte(`{"personalInfo":{"fullName":"Jane"},"summary":"hi","skills":["Go"]}`), now, now)
	mock.ExpectQuery("SELECT id, user_id, title, template_id, data").
		WithArgs("r-1", "user-1").
		WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), "user-1", "r-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Data.PersonalInfo.FullName != "Jane" || got.Data.Summary != "hi" || len(got.Data.Skills) != 1 {
		t.Fatalf("unexpected data: %+v", got.Data)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectQuery("SELECT id, user_id, title, template_id, data").
		WithArgs("missing", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "template_id", "data", "created_at", "updated_at"}))

	if _, err := repo.GetByID(context.Background(), "user-1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoUpdateNoRowsIsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectExec("UPDATE resumes").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.Update(context.Background(), Resume{ID: "r-1", UserID: "user-1", Title: "T", UpdatedAt: time.Now()})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoListTitlesAndSoftDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectQuery("SELECT id, title FROM resumes").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow("r-1", "A").AddRow("r-2", "B"))
	at := time.Now().UTC()
	mock.ExpectExec("UPDATE resumes SET deleted_at").
		WithArgs(at, "r-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	refs, err := repo.ListTitles(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListTitles: %v", err)
	}
	if len(refs) != 2 || refs[1].Title != "B" {
		t.Fatalf("unexpected refs: %+v", refs)
	}
	if err := repo.SoftDelete(context.Background(), "user-1", "r-1", at); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
