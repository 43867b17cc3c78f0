package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/avdeyev/sheetfin/internal/logger"
	"github.com/avdeyev/sheetfin/models"
)

func newTestAuthRequestRepo(t *testing.T) (*authRequestRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	l := logger.Nop()
	repo := &authRequestRepository{
		db:     &DB{DB: db, logger: l},
		logger: l,
	}
	return repo, mock, db
}

func TestAuthRequestCreate_InvalidatesPriorInSameTx(t *testing.T) {
	repo, mock, db := newTestAuthRequestRepo(t)
	defer db.Close()

	now := time.Now()
	req := models.AuthRequest{
		Token:     "tok-new",
		UserID:    5,
		CreatedAt: now,
		ExpiresAt: now.Add(15 * time.Minute),
	}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM auth_requests").
		WithArgs(req.UserID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO auth_requests").
		WithArgs(req.Token, req.UserID, req.CreatedAt, req.ExpiresAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.Create(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthRequestCreate_InsertFailureRollsBack(t *testing.T) {
	repo, mock, db := newTestAuthRequestRepo(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM auth_requests").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO auth_requests").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), models.AuthRequest{Token: "t", UserID: 5})
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthRequestConsume_Success(t *testing.T) {
	repo, mock, db := newTestAuthRequestRepo(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.
		NewRows([]string{"token", "user_id", "consumed", "created_at", "expires_at"}).
		AddRow("tok", int64(5), true, now.Add(-time.Minute), now.Add(10*time.Minute))

	mock.ExpectQuery("UPDATE auth_requests").
		WithArgs("tok", now).
		WillReturnRows(rows)

	req, err := repo.Consume(context.Background(), "tok", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.UserID != 5 {
		t.Fatalf("user id = %d, want 5", req.UserID)
	}
	if !req.Consumed {
		t.Fatalf("expected returned request to be marked consumed")
	}
}

func TestAuthRequestConsume_AlreadyConsumedOrExpired(t *testing.T) {
	repo, mock, db := newTestAuthRequestRepo(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("UPDATE auth_requests").
		WithArgs("tok", now).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Consume(context.Background(), "tok", now)
	if !errors.Is(err, ErrAuthRequestNotFound) {
		t.Fatalf("expected ErrAuthRequestNotFound, got %v", err)
	}
}

func TestAuthRequestDeleteStale(t *testing.T) {
	repo, mock, db := newTestAuthRequestRepo(t)
	defer db.Close()

	before := time.Now()
	mock.ExpectExec("DELETE FROM auth_requests").
		WillReturnResult(sqlmock.NewResult(0, 3))

	removed, err := repo.DeleteStale(context.Background(), before)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed != 3 {
		t.Fatalf("removed = %d, want 3", removed)
	}
}
