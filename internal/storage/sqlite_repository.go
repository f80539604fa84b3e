package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Fixed width so that created_at orders lexically.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

type SQLiteRepository struct {
	db *sql.DB
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// OpenSQLite opens path and brings its schema up to date.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) CreateRecord(ctx context.Context, in Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO records (id, table_name, title, is_completed, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		in.ID, in.Table, nullString(in.Title), nullBool(in.IsCompleted), formatTime(in.CreatedAt),
	)
	return err
}

func (r *SQLiteRepository) GetRecord(ctx context.Context, table, id string) (Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, table_name, title, is_completed, created_at
		FROM records WHERE table_name = ? AND id = ?`, table, id)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

func (r *SQLiteRepository) PatchRecord(ctx context.Context, table, id string, patch RecordPatch) (Record, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE records
		SET title = COALESCE(?, title), is_completed = COALESCE(?, is_completed)
		WHERE table_name = ? AND id = ?`,
		nullString(patch.Title), nullBool(patch.IsCompleted), table, id,
	)
	if err != nil {
		return Record{}, err
	}
	if err := checkRowsAffected(res); err != nil {
		return Record{}, err
	}
	return r.GetRecord(ctx, table, id)
}

func (r *SQLiteRepository) DeleteRecord(ctx context.Context, table, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE table_name = ? AND id = ?`, table, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

// ListRecords filters on a case-sensitive title substring and orders by the
// requested column, breaking ties by creation time and id.
func (r *SQLiteRepository) ListRecords(ctx context.Context, filter RecordListFilter) ([]Record, error) {
	query := `SELECT id, table_name, title, is_completed, created_at FROM records WHERE table_name = ?`
	args := []any{filter.Table}
	if filter.Search != "" {
		query += ` AND instr(COALESCE(title, ''), ?) > 0`
		args = append(args, filter.Search)
	}

	dir := "ASC"
	if filter.Descending {
		dir = "DESC"
	}
	switch filter.SortBy {
	case SortByTitle:
		query += fmt.Sprintf(` ORDER BY COALESCE(title, '') %s, created_at %s, id %s`, dir, dir, dir)
	default:
		query += fmt.Sprintf(` ORDER BY created_at %s, id %s`, dir, dir)
	}
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		rec, scanErr := scanRecord(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func applyPagination(args *[]any, limit, offset int) string {
	if limit <= 0 {
		if offset > 0 {
			*args = append(*args, offset)
			return ` LIMIT -1 OFFSET ?`
		}
		return ""
	}
	*args = append(*args, limit, offset)
	return ` LIMIT ? OFFSET ?`
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (Record, error) {
	var out Record
	var title sql.NullString
	var completed sql.NullInt64
	var created string
	if err := s.Scan(&out.ID, &out.Table, &title, &completed, &created); err != nil {
		return Record{}, err
	}
	createdAt, err := time.Parse(sqliteTimeLayout, created)
	if err != nil {
		return Record{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	if title.Valid {
		v := title.String
		out.Title = &v
	}
	if completed.Valid {
		v := completed.Int64 == 1
		out.IsCompleted = &v
	}
	out.CreatedAt = createdAt
	return out, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func nullString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullBool(v *bool) any {
	if v == nil {
		return nil
	}
	if *v {
		return 1
	}
	return 0
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
