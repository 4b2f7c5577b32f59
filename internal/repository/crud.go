package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/isagps/ProfAgendaBack/internal/models"
)

// table describes the SQL surface of an entity consumed by the generic
// helpers below. Every repository declares one and gets list pagination,
// filtering, lookup, and delete behavior for free.
type table struct {
	name        string
	columns     string
	searchable  []string
	sortable    map[string]bool
	defaultSort string
}

// QueryObserver records query latency per operation label.
type QueryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// observe reports the elapsed time for a query. Safe with a nil observer.
func observe(obs QueryObserver, label string, start time.Time) {
	if obs == nil {
		return
	}
	obs.ObserveDBQuery(label, time.Since(start))
}

// Postgres error code for invalid text representation, raised when a
// malformed value hits a typed column such as a uuid primary key.
const invalidTextRepresentation = "22P02"

// isInvalidInput reports whether the error means the value could not be cast
// to the column type. A malformed id can never match a row, so lookups treat
// it as not-found rather than a server failure.
func isInvalidInput(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == invalidTextRepresentation
}

// listPage runs the paginated list + count query pair shared by every
// repository. The filter parameter matches case-insensitively against the
// table's searchable columns; sort columns are whitelisted.
func listPage[T any](ctx context.Context, db *sqlx.DB, t table, obs QueryObserver, q models.PageQuery) ([]T, int, error) {
	defer observe(obs, t.name+"_list", time.Now())
	q = q.Normalize()

	base := fmt.Sprintf("FROM %s WHERE 1=1", t.name)
	var args []interface{}

	if q.Filter != "" && len(t.searchable) > 0 {
		args = append(args, "%"+strings.ToLower(q.Filter)+"%")
		clauses := make([]string, 0, len(t.searchable))
		for _, col := range t.searchable {
			clauses = append(clauses, fmt.Sprintf("LOWER(%s) LIKE $%d", col, len(args)))
		}
		base += " AND (" + strings.Join(clauses, " OR ") + ")"
	}

	sortBy := q.SortBy
	if sortBy == "" || !t.sortable[sortBy] {
		sortBy = t.defaultSort
	}
	order := strings.ToUpper(q.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d",
		t.columns, base, sortBy, order, q.PageSize, q.Offset())
	var items []T
	if err := db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", t.name, err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", t.name, err)
	}

	return items, total, nil
}

// getByID fetches a single row. sql.ErrNoRows passes through untouched so the
// service layer can translate it; a malformed id maps to the same.
func getByID[T any](ctx context.Context, db *sqlx.DB, t table, obs QueryObserver, id string) (*T, error) {
	defer observe(obs, t.name+"_get", time.Now())
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", t.columns, t.name)
	var item T
	if err := db.GetContext(ctx, &item, query, id); err != nil {
		if isInvalidInput(err) {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &item, nil
}

// listAll fetches every row without pagination.
func listAll[T any](ctx context.Context, db *sqlx.DB, t table, obs QueryObserver) ([]T, error) {
	defer observe(obs, t.name+"_list_all", time.Now())
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s ASC", t.columns, t.name, t.defaultSort)
	var items []T
	if err := db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list all %s: %w", t.name, err)
	}
	return items, nil
}

// countAll returns the total number of rows in the table.
func countAll(ctx context.Context, db *sqlx.DB, t table, obs QueryObserver) (int, error) {
	defer observe(obs, t.name+"_count", time.Now())
	var total int
	if err := db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM %s", t.name)); err != nil {
		return 0, fmt.Errorf("count %s: %w", t.name, err)
	}
	return total, nil
}

// deleteByID removes a row, mapping a zero-row result or a malformed id to
// sql.ErrNoRows.
func deleteByID(ctx context.Context, db *sqlx.DB, t table, obs QueryObserver, id string) error {
	defer observe(obs, t.name+"_delete", time.Now())
	res, err := db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", t.name), id)
	if err != nil {
		if isInvalidInput(err) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("delete %s: %w", t.name, err)
	}
	return requireRowsAffected(res)
}

// existsByName reports whether a row with the given name exists, optionally
// excluding one id. Backs the per-entity uniqueness policy.
func existsByName(ctx context.Context, db *sqlx.DB, t table, obs QueryObserver, name, excludeID string) (bool, error) {
	defer observe(obs, t.name+"_exists_name", time.Now())
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE LOWER(name) = LOWER($1)", t.name)
	args := []interface{}{name}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check %s name: %w", t.name, err)
	}
	return true, nil
}

// existsByID reports whether the row exists at all.
func existsByID(ctx context.Context, db *sqlx.DB, t table, obs QueryObserver, id string) (bool, error) {
	defer observe(obs, t.name+"_exists", time.Now())
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE id = $1 LIMIT 1", t.name)
	var exists int
	if err := db.GetContext(ctx, &exists, query, id); err != nil {
		if err == sql.ErrNoRows || isInvalidInput(err) {
			return false, nil
		}
		return false, fmt.Errorf("check %s id: %w", t.name, err)
	}
	return true, nil
}

// requireRowsAffected converts an empty write into sql.ErrNoRows so updates
// and deletes of missing rows surface as not-found.
func requireRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
