package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/linkkeeper/internal/common"
	"github.com/dmitrijs2005/linkkeeper/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const (
	insertQ   = `(?s)^INSERT\s+INTO\s+users\s*\(email,\s*password_hash,\s*first_name,\s*last_name\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*RETURNING\s+id,\s*active,\s*created_at\s*$`
	byEmailQ  = `(?s)^SELECT\s+id,.*FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s*$`
	byIDQ     = `(?s)^SELECT\s+id,.*FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`
	activateQ = `(?s)^UPDATE\s+users\s+SET\s+active\s*=\s*TRUE\s+WHERE\s+id\s*=\s*\$1\s+AND\s+active\s*=\s*FALSE\s*$`
	setResetQ = `(?s)^UPDATE\s+users\s+SET\s+reset_token\s*=\s*\$2,\s*reset_expires_at\s*=\s*\$3\s+WHERE\s+id\s*=\s*\$1\s*$`
	resetQ    = `(?s)^UPDATE\s+users\s+SET\s+password_hash\s*=\s*\$3,\s*reset_token\s*=\s*NULL,\s*reset_expires_at\s*=\s*NULL\s+WHERE\s+id\s*=\s*\$1\s+AND\s+reset_token\s*=\s*\$2\s+AND\s+reset_expires_at\s*>\s*\$4\s*$`
)

var userCols = []string{"id", "email", "password_hash", "first_name", "last_name", "active", "reset_token", "reset_expires_at", "created_at"}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(insertQ).
		WithArgs("a@b.c", "hash", "Ann", "Lee").
		WillReturnRows(sqlmock.NewRows([]string{"id", "active", "created_at"}).AddRow("u-1", false, created))

	got, err := repo.Create(context.Background(), &models.User{Email: "a@b.c", PasswordHash: "hash", FirstName: "Ann", LastName: "Lee"})
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)
	assert.False(t, got.Active)
	assert.Equal(t, created, got.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_Duplicate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).
		WithArgs("a@b.c", "hash", "Ann", "Lee").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := repo.Create(context.Background(), &models.User{Email: "a@b.c", PasswordHash: "hash", FirstName: "Ann", LastName: "Lee"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{Email: "a@b.c"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	exp := time.Now().Add(10 * time.Minute).UTC()
	mock.ExpectQuery(byEmailQ).
		WithArgs("a@b.c").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("u-1", "a@b.c", "hash", "Ann", "Lee", true, "tok", exp, time.Now()))

	got, err := repo.GetByEmail(context.Background(), "a@b.c")
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)
	assert.True(t, got.Active)
	require.NotNil(t, got.ResetToken)
	assert.Equal(t, "tok", *got.ResetToken)
	require.NotNil(t, got.ResetExpiresAt)
	assert.True(t, exp.Equal(*got.ResetExpiresAt))
}

func TestGetByEmail_NullResetFields(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(byEmailQ).
		WithArgs("a@b.c").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("u-1", "a@b.c", "hash", "Ann", "Lee", false, nil, nil, time.Now()))

	got, err := repo.GetByEmail(context.Background(), "a@b.c")
	require.NoError(t, err)
	assert.Nil(t, got.ResetToken)
	assert.Nil(t, got.ResetExpiresAt)
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(byEmailQ).
		WithArgs("ghost@b.c").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@b.c")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByID_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(byIDQ).
		WithArgs("u-1").
		WillReturnError(errors.New("db err"))

	_, err := repo.GetByID(context.Background(), "u-1")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestActivate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(activateQ).WithArgs("u-1").WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Activate(context.Background(), "u-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivate_AlreadyActive(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(activateQ).WithArgs("u-1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(byIDQ).WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("u-1", "a@b.c", "hash", "Ann", "Lee", true, nil, nil, time.Now()))

	err := repo.Activate(context.Background(), "u-1")
	assert.ErrorIs(t, err, common.ErrorAlreadyActive)
}

func TestActivate_Missing(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(activateQ).WithArgs("u-9").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(byIDQ).WithArgs("u-9").WillReturnError(sql.ErrNoRows)

	err := repo.Activate(context.Background(), "u-9")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSetResetToken(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	exp := time.Now().Add(10 * time.Minute)
	mock.ExpectExec(setResetQ).WithArgs("u-1", "tok", exp).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(setResetQ).WithArgs("u-2", "tok", exp).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.SetResetToken(context.Background(), "u-1", "tok", exp))
	assert.ErrorIs(t, repo.SetResetToken(context.Background(), "u-2", "tok", exp), common.ErrorNotFound)
}

func TestCompleteReset(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectExec(resetQ).WithArgs("u-1", "tok", "newhash", now).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(resetQ).WithArgs("u-1", "stale", "newhash", now).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(resetQ).WithArgs("u-1", "tok", "newhash", now).WillReturnError(errors.New("db err"))

	require.NoError(t, repo.CompleteReset(context.Background(), "u-1", "tok", "newhash", now))
	assert.ErrorIs(t, repo.CompleteReset(context.Background(), "u-1", "stale", "newhash", now), common.ErrorNotFound)

	err := repo.CompleteReset(context.Background(), "u-1", "tok", "newhash", now)
	assert.ErrorContains(t, err, "db error: db err")
	assert.NoError(t, mock.ExpectationsWereMet())
}
