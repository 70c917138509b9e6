package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/pkg/security"
)

// BaseRepository provides common functionality for all repositories. db is either the
// pool or the transaction of the current unit of work.
type BaseRepository struct {
	db sqlx.ExtContext
}

func NewBaseRepository(db sqlx.ExtContext) BaseRepository {
	return BaseRepository{db: db}
}

func (r *BaseRepository) getContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return sqlx.GetContext(ctx, r.db, dest, query, args...)
}

func (r *BaseRepository) selectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return sqlx.SelectContext(ctx, r.db, dest, query, args...)
}

func (r *BaseRepository) namedExec(ctx context.Context, query string, arg interface{}) (sql.Result, error) {
	return sqlx.NamedExecContext(ctx, r.db, query, arg)
}

// list runs the count and page queries for one filtered table
func (r *BaseRepository) list(ctx context.Context, dest interface{}, columns, table string, f *filter, orderBy string, page model.Pagination) (int64, error) {
	where := f.clause()

	var total int64
	countQuery := r.db.Rebind(fmt.Sprintf("SELECT COUNT(*) FROM %s %s", table, where))
	if err := sqlx.GetContext(ctx, r.db, &total, countQuery, f.args...); err != nil {
		return 0, err
	}

	args := append(append([]interface{}{}, f.args...), page.Limit(), page.Offset())
	pageQuery := r.db.Rebind(fmt.Sprintf("SELECT %s FROM %s %s ORDER BY %s LIMIT ? OFFSET ?", columns, table, where, orderBy))
	if err := sqlx.SelectContext(ctx, r.db, dest, pageQuery, args...); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *BaseRepository) count(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var n int64
	err := sqlx.GetContext(ctx, r.db, &n, r.db.Rebind(query), args...)
	return n, err
}

// filter accumulates WHERE conditions written with ? placeholders
type filter struct {
	conds []string
	args  []interface{}
}

func newFilter() *filter {
	return &filter{conds: []string{"deleted_at IS NULL"}}
}

func (f *filter) add(cond string, args ...interface{}) *filter {
	f.conds = append(f.conds, cond)
	f.args = append(f.args, args...)
	return f
}

// search matches term against every column with ILIKE
func (f *filter) search(term string, columns ...string) *filter {
	term = strings.TrimSpace(term)
	if term == "" {
		return f
	}
	pattern := "%" + term + "%"
	parts := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, c := range columns {
		parts[i] = c + " ILIKE ?"
		args[i] = pattern
	}
	return f.add("("+strings.Join(parts, " OR ")+")", args...)
}

func (f *filter) clause() string {
	return "WHERE " + strings.Join(f.conds, " AND ")
}

// UnitOfWork runs repository work inside one database transaction
type UnitOfWork struct {
	db        *sqlx.DB
	encryptor security.Encryptor
}

func NewUnitOfWork(db *sqlx.DB, encryptor security.Encryptor) *UnitOfWork {
	return &UnitOfWork{db: db, encryptor: encryptor}
}

var _ repository.UnitOfWork = (*UnitOfWork)(nil)

func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	return u.WithTx(ctx, func(tx *sqlx.Tx) error {
		return fn(ctx, NewRepositories(tx, u.encryptor))
	})
}

// WithTx executes a function within a transaction
func (u *UnitOfWork) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := u.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("failed to rollback transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (u *UnitOfWork) PingContext(ctx context.Context) error {
	return u.db.PingContext(ctx)
}

// NewRepositories binds every repository to db
func NewRepositories(db sqlx.ExtContext, encryptor security.Encryptor) repository.Repositories {
	base := NewBaseRepository(db)
	return repository.Repositories{
		Doctors:        &doctorRepository{base},
		Patients:       &patientRepository{base},
		Staff:          &staffRepository{base},
		Appointments:   &appointmentRepository{base},
		MedicalRecords: &medicalRecordRepository{BaseRepository: base, encryptor: encryptor},
		Bills:          &billRepository{base},
		Outbox:         &outboxRepository{base},
	}
}
