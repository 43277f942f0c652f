package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func mockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	db := sqlx.NewDb(raw, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestWithinTx_CommitsOnCleanReturn(t *testing.T) {
	db, mock := mockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE buoys").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := WithinTx(context.Background(), db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(context.Background(), `UPDATE buoys SET status = $1`, "active")
		return err
	})
	if err != nil {
		t.Fatalf("WithinTx() error = %v, want nil", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	db, mock := mockDB(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("constraint violation")
	err := WithinTx(context.Background(), db, func(tx *sqlx.Tx) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithinTx() error = %v, want the fn error", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestWithinTx_PropagatesCommitError(t *testing.T) {
	db, mock := mockDB(t)

	commitErr := errors.New("connection reset")
	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(commitErr)

	err := WithinTx(context.Background(), db, func(tx *sqlx.Tx) error {
		return nil
	})
	if err == nil || !errors.Is(err, commitErr) {
		t.Fatalf("WithinTx() error = %v, want wrapped commit error", err)
	}
}
