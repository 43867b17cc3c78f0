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

func newTestCredentialRepo(t *testing.T) (*credentialRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	l := logger.Nop()
	repo := &credentialRepository{
		db:     &DB{DB: db, logger: l},
		logger: l,
	}
	return repo, mock, db
}

func TestCredentialUpsert_Success(t *testing.T) {
	repo, mock, db := newTestCredentialRepo(t)
	defer db.Close()

	rec := models.CredentialRecord{
		UserID:     7,
		Ciphertext: []byte{0xDE, 0xAD},
		Expiry:     time.Now().Add(time.Hour),
	}

	mock.ExpectExec("INSERT INTO credentials").
		WithArgs(rec.UserID, rec.Ciphertext, rec.Expiry).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Upsert(context.Background(), rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCredentialUpsert_DBError(t *testing.T) {
	repo, mock, db := newTestCredentialRepo(t)
	defer db.Close()

	mock.ExpectExec("INSERT INTO credentials").
		WillReturnError(errors.New("connection reset"))

	err := repo.Upsert(context.Background(), models.CredentialRecord{UserID: 7})
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestCredentialGet_Success(t *testing.T) {
	repo, mock, db := newTestCredentialRepo(t)
	defer db.Close()

	now := time.Now()
	expiry := now.Add(time.Hour)
	rows := sqlmock.
		NewRows([]string{"user_id", "ciphertext", "expiry", "created_at", "updated_at"}).
		AddRow(int64(7), []byte{0x01, 0x02}, expiry, now, now)

	mock.ExpectQuery("SELECT user_id, ciphertext, expiry").
		WithArgs(int64(7)).
		WillReturnRows(rows)

	rec, err := repo.Get(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.UserID != 7 {
		t.Fatalf("user id = %d, want 7", rec.UserID)
	}
	if !rec.Expiry.Equal(expiry) {
		t.Fatalf("expiry = %v, want %v", rec.Expiry, expiry)
	}
}

func TestCredentialGet_NotFound(t *testing.T) {
	repo, mock, db := newTestCredentialRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT user_id, ciphertext, expiry").
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), 9)
	if !errors.Is(err, ErrCredentialNotFound) {
		t.Fatalf("expected ErrCredentialNotFound, got %v", err)
	}
}

func TestCredentialDelete_Idempotent(t *testing.T) {
	repo, mock, db := newTestCredentialRepo(t)
	defer db.Close()

	// zero rows affected is still success
	mock.ExpectExec("DELETE FROM credentials").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
