package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"gitlab.com/dirk.krummacker/contact-directory/internal/config"
	"gitlab.com/dirk.krummacker/contact-directory/internal/errs"
	"gitlab.com/dirk.krummacker/contact-directory/internal/model"
)

// schema creates the contatos table. The statement is valid for both sqlite3 and mysql.
const schema = `
	CREATE TABLE IF NOT EXISTS contatos (
		id         VARCHAR(36)  NOT NULL PRIMARY KEY,
		name       VARCHAR(255) NOT NULL,
		birth_date DATE         NOT NULL,
		email      VARCHAR(255) NOT NULL,
		phone      VARCHAR(64),
		address    VARCHAR(512)
	)
`

// Store is the durable table of contacts. Every operation runs in its own transaction which is
// committed on success and rolled back on every error path, so the pooled connection is always
// released.
type Store struct {
	db *sqlx.DB

	// insert is a prepared statement for creating a contact.
	insert *sqlx.NamedStmt

	// selectAll is a prepared statement for listing all contacts ordered by name.
	selectAll *sqlx.Stmt

	// selectWhereId is a prepared statement for selecting the contact with a given id.
	selectWhereId *sqlx.Stmt

	// update is a prepared statement for replacing all mutable fields of a contact.
	update *sqlx.NamedStmt

	// deleteWhereId is a prepared statement for deleting the contact with a given id.
	deleteWhereId *sqlx.Stmt
}

// Open connects to the configured database, creates the contatos table if it does not exist yet
// and prepares all statements.
func Open(ctx context.Context, cfg config.Database) (*Store, error) {
	if cfg.Driver == "sqlite3" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("open store: create parent dir: %w", err)
		}
	}
	sqlDB, err := sql.Open(cfg.Driver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxOpenConns)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	if _, err := sqlDB.ExecContext(ctx, schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("open store: create schema: %w", err)
	}
	s, err := New(sqlDB, cfg.Driver)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing database handle and prepares all statements. The handle can be a real
// database for production use or a mock database within unit tests. The schema is expected to
// exist already.
func New(sqlDB *sql.DB, driverName string) (*Store, error) {
	var err error
	s := &Store{db: sqlx.NewDb(sqlDB, driverName)}

	// Prepared statements offer a significant speed increase if executed many times.
	s.insert, err = s.db.PrepareNamed(`
		INSERT INTO contatos (id, name, birth_date, email, phone, address)
		VALUES (:id, :name, :birth_date, :email, :phone, :address)
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	s.selectAll, err = s.db.Preparex(`
		SELECT id, name, birth_date, email, phone, address FROM contatos ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare select all: %w", err)
	}
	s.selectWhereId, err = s.db.Preparex(`
		SELECT id, name, birth_date, email, phone, address FROM contatos WHERE id = ?
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare select: %w", err)
	}
	s.update, err = s.db.PrepareNamed(`
		UPDATE contatos
		SET name = :name, birth_date = :birth_date, email = :email, phone = :phone, address = :address
		WHERE id = :id
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare update: %w", err)
	}
	s.deleteWhereId, err = s.db.Preparex(`
		DELETE FROM contatos WHERE id = ?
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare delete: %w", err)
	}
	return s, nil
}

// Close releases the prepared statements and the connection pool.
func (s *Store) Close() error {
	for _, stmt := range []interface{ Close() error }{s.insert, s.selectAll, s.selectWhereId, s.update, s.deleteWhereId} {
		_ = stmt.Close()
	}
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return errs.Storage("ping", s.db.PingContext(ctx))
}

// inTx runs fn inside a transaction. Errors that are not already classified are reported as
// storage errors.
func (s *Store) inTx(ctx context.Context, op string, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errs.Storage(op, err)
	}
	// No-op once the transaction is committed.
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return errs.Storage(op, err)
	}
	return errs.Storage(op, tx.Commit())
}

// Insert stores a new contact.
func (s *Store) Insert(ctx context.Context, contact model.Contact) error {
	return s.inTx(ctx, "insert", func(tx *sqlx.Tx) error {
		_, err := tx.NamedStmtContext(ctx, s.insert).ExecContext(ctx, contact)
		return err
	})
}

// SelectAll returns all contacts ordered by name. Contacts with equal names are ordered by id.
func (s *Store) SelectAll(ctx context.Context) ([]model.Contact, error) {
	contacts := []model.Contact{}
	err := s.inTx(ctx, "select all", func(tx *sqlx.Tx) error {
		return tx.StmtxContext(ctx, s.selectAll).SelectContext(ctx, &contacts)
	})
	if err != nil {
		return nil, err
	}
	return contacts, nil
}

// SelectByID returns the contact with the given id.
func (s *Store) SelectByID(ctx context.Context, id string) (model.Contact, error) {
	var contact model.Contact
	err := s.inTx(ctx, "select", func(tx *sqlx.Tx) error {
		return selectByID(ctx, tx.StmtxContext(ctx, s.selectWhereId), id, &contact)
	})
	return contact, err
}

// Update replaces all mutable fields of the contact with the same id and returns the stored
// version.
func (s *Store) Update(ctx context.Context, contact model.Contact) (model.Contact, error) {
	var updated model.Contact
	err := s.inTx(ctx, "update", func(tx *sqlx.Tx) error {
		result, err := tx.NamedStmtContext(ctx, s.update).ExecContext(ctx, contact)
		if err != nil {
			return err
		}
		if err := expectOneRow(result, contact.Id); err != nil {
			return err
		}
		return selectByID(ctx, tx.StmtxContext(ctx, s.selectWhereId), contact.Id, &updated)
	})
	return updated, err
}

// Delete removes the contact with the given id permanently.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.inTx(ctx, "delete", func(tx *sqlx.Tx) error {
		result, err := tx.StmtxContext(ctx, s.deleteWhereId).ExecContext(ctx, id)
		if err != nil {
			return err
		}
		return expectOneRow(result, id)
	})
}

// Exec runs a single arbitrary statement in its own transaction.
func (s *Store) Exec(ctx context.Context, query string) error {
	return s.inTx(ctx, "exec", func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, query)
		return err
	})
}

func selectByID(ctx context.Context, stmt *sqlx.Stmt, id string, dest *model.Contact) error {
	err := stmt.GetContext(ctx, dest, id)
	if errors.Is(err, sql.ErrNoRows) {
		return &errs.NotFoundError{Id: id}
	}
	return err
}

func expectOneRow(result sql.Result, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return &errs.NotFoundError{Id: id}
	}
	return nil
}
