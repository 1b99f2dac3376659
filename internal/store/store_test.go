package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/dirk.krummacker/contact-directory/internal/errs"
	"gitlab.com/dirk.krummacker/contact-directory/internal/model"
	api "gitlab.com/dirk.krummacker/contact-directory/pkg/model"
)

var columns = []string{"id", "name", "birth_date", "email", "phone", "address"}

// createMockStore builds a store on top of a mock database and returns the mock object for
// defining our expected SQL calls.
func createMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { db.Close() })

	expectPreparedStatements(mock)
	s, err := New(db, "sqlite3")
	require.NoError(t, err)
	return s, mock
}

// expectPreparedStatements instructs the mock object to expect that all statements are being
// prepared.
func expectPreparedStatements(mock sqlmock.Sqlmock) {
	mock.ExpectPrepare("INSERT INTO contatos")
	mock.ExpectPrepare("SELECT (.+) FROM contatos ORDER BY name")
	mock.ExpectPrepare("SELECT (.+) FROM contatos WHERE id")
	mock.ExpectPrepare("UPDATE contatos")
	mock.ExpectPrepare("DELETE FROM contatos WHERE id")
}

func assertExpectations(t *testing.T, mock sqlmock.Sqlmock) {
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func strPtr(s string) *string {
	return &s
}

func TestInsert(t *testing.T) {
	s, mock := createMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO contatos").
		WithArgs("c0ffee00-0000-4000-8000-000000000001", "Erika Mustermann", "1969-03-02", "erika@example.com", "+49 0815 4711", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.Insert(context.Background(), model.Contact{
		Id:        "c0ffee00-0000-4000-8000-000000000001",
		Name:      "Erika Mustermann",
		BirthDate: api.NewDate(1969, time.March, 2),
		Email:     "erika@example.com",
		Phone:     strPtr("+49 0815 4711"),
	})
	assert.NoError(t, err)
	assertExpectations(t, mock)
}

func TestInsertFailureRollsBack(t *testing.T) {
	s, mock := createMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO contatos").
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err := s.Insert(context.Background(), model.Contact{Id: "1", Name: "Ana", BirthDate: api.NewDate(2000, time.May, 20), Email: "ana@example.com"})
	var storageErr *errs.StorageError
	require.True(t, errors.As(err, &storageErr))
	assert.Equal(t, "insert", storageErr.Op)
	assertExpectations(t, mock)
}

func TestBeginFailure(t *testing.T) {
	s, mock := createMockStore(t)
	mock.ExpectBegin().WillReturnError(sql.ErrConnDone)

	_, err := s.SelectAll(context.Background())
	assert.ErrorIs(t, err, sql.ErrConnDone)
	var storageErr *errs.StorageError
	assert.True(t, errors.As(err, &storageErr))
	assertExpectations(t, mock)
}

func TestSelectAll(t *testing.T) {
	s, mock := createMockStore(t)
	rows := mock.NewRows(columns).
		AddRow("2", "Ana", "1990-01-01", "ana@example.com", nil, nil).
		AddRow("1", "Beto", time.Date(1980, time.June, 15, 0, 0, 0, 0, time.UTC), "beto@example.com", "+55 11 5555", "Rua A, 1")
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM contatos ORDER BY name ASC, id ASC").WillReturnRows(rows)
	mock.ExpectCommit()

	contacts, err := s.SelectAll(context.Background())
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "Ana", contacts[0].Name)
	assert.Equal(t, api.NewDate(1990, time.January, 1), contacts[0].BirthDate)
	assert.Nil(t, contacts[0].Phone)
	assert.Nil(t, contacts[0].Address)
	assert.Equal(t, "Beto", contacts[1].Name)
	assert.Equal(t, api.NewDate(1980, time.June, 15), contacts[1].BirthDate)
	assert.Equal(t, "+55 11 5555", *contacts[1].Phone)
	assert.Equal(t, "Rua A, 1", *contacts[1].Address)
	assertExpectations(t, mock)
}

func TestSelectAllEmpty(t *testing.T) {
	s, mock := createMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM contatos ORDER BY name").WillReturnRows(mock.NewRows(columns))
	mock.ExpectCommit()

	contacts, err := s.SelectAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, contacts)
	assert.Empty(t, contacts)
	assertExpectations(t, mock)
}

func TestSelectByIDNotFound(t *testing.T) {
	s, mock := createMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM contatos WHERE id").
		WithArgs("9999").
		WillReturnRows(mock.NewRows(columns))
	mock.ExpectRollback()

	_, err := s.SelectByID(context.Background(), "9999")
	assert.True(t, errs.IsNotFound(err))
	assertExpectations(t, mock)
}

func TestUpdate(t *testing.T) {
	s, mock := createMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE contatos").
		WithArgs("Rudi Völler", "1960-04-13", "rudi@example.com", nil, "Berlin", "17").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT (.+) FROM contatos WHERE id").
		WithArgs("17").
		WillReturnRows(mock.NewRows(columns).
			AddRow("17", "Rudi Völler", "1960-04-13", "rudi@example.com", nil, "Berlin"))
	mock.ExpectCommit()

	updated, err := s.Update(context.Background(), model.Contact{
		Id:        "17",
		Name:      "Rudi Völler",
		BirthDate: api.NewDate(1960, time.April, 13),
		Email:     "rudi@example.com",
		Address:   strPtr("Berlin"),
	})
	require.NoError(t, err)
	assert.Equal(t, "17", updated.Id)
	assert.Equal(t, "Rudi Völler", updated.Name)
	assert.Nil(t, updated.Phone)
	assert.Equal(t, "Berlin", *updated.Address)
	assertExpectations(t, mock)
}

func TestUpdateUnknownID(t *testing.T) {
	s, mock := createMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE contatos").
		WithArgs("Rudi Völler", "1960-04-13", "rudi@example.com", nil, nil, "9999").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := s.Update(context.Background(), model.Contact{
		Id:        "9999",
		Name:      "Rudi Völler",
		BirthDate: api.NewDate(1960, time.April, 13),
		Email:     "rudi@example.com",
	})
	assert.True(t, errs.IsNotFound(err))
	assertExpectations(t, mock)
}

func TestDelete(t *testing.T) {
	s, mock := createMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM contatos WHERE id").
		WithArgs("42").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM contatos WHERE id").
		WithArgs("42").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	assert.NoError(t, s.Delete(context.Background(), "42"))
	assert.True(t, errs.IsNotFound(s.Delete(context.Background(), "42")))
	assertExpectations(t, mock)
}

func TestCommitFailure(t *testing.T) {
	s, mock := createMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM contatos WHERE id").
		WithArgs("42").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(errors.New("database is locked"))

	err := s.Delete(context.Background(), "42")
	var storageErr *errs.StorageError
	assert.True(t, errors.As(err, &storageErr))
	assertExpectations(t, mock)
}

func TestOpenSqlite(t *testing.T) {
	ctx := context.Background()
	cfg := sqliteConfig(t)
	s, err := Open(ctx, cfg)
	require.NoError(t, err)

	contact := model.Contact{Id: "a", Name: "Ana", BirthDate: api.NewDate(2000, time.May, 20), Email: "ana@example.com"}
	require.NoError(t, s.Insert(ctx, contact))
	require.NoError(t, s.Close())

	// The file survives a restart and the schema is not created twice.
	s, err = Open(ctx, cfg)
	require.NoError(t, err)
	defer s.Close()
	stored, err := s.SelectByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, contact, stored)
	assert.NoError(t, s.Ping(ctx))
}
