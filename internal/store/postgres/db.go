// Package postgres implements the store interfaces on PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jungianjournals/journals-backend/internal/store"
	"github.com/jungianjournals/journals-backend/types"
)

// DB is the subset of *pgxpool.Pool the stores use. pgxmock pools satisfy it
// as well.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// mapErr translates driver errors into store sentinels. Malformed uuids are
// reported as not found since they can never match a row.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return fmt.Errorf("%w: %s", store.ErrConflict, pgErr.ConstraintName)
		case pgerrcode.InvalidTextRepresentation:
			return store.ErrNotFound
		case pgerrcode.ForeignKeyViolation:
			return fmt.Errorf("%w: %s", store.ErrNotFound, pgErr.ConstraintName)
		}
	}
	return err
}

// whereBuilder accumulates AND-ed conditions with positional arguments.
type whereBuilder struct {
	conds []string
	args  []any
}

func (w *whereBuilder) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

func (w *whereBuilder) clause() string {
	if len(w.conds) == 0 {
		return ""
	}
	out := " WHERE " + w.conds[0]
	for _, c := range w.conds[1:] {
		out += " AND " + c
	}
	return out
}

// contentFilterWhere builds the conditions shared by the video and blog lists.
func contentFilterWhere(filter types.ContentFilter) whereBuilder {
	var w whereBuilder
	if filter.Category != "" {
		w.add("category = $%d", string(filter.Category))
	}
	if filter.Search != "" {
		w.add("(title ILIKE $%[1]d OR summary ILIKE $%[1]d OR EXISTS (SELECT 1 FROM unnest(keywords) k WHERE k ILIKE $%[1]d))",
			"%"+escapeLike(filter.Search)+"%")
	}
	if filter.Keyword != "" {
		w.add("$%d = ANY(keywords)", filter.Keyword)
	}
	return w
}

// escapeLike makes user input literal inside an ILIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// page appends LIMIT and OFFSET placeholders.
func (w *whereBuilder) page(limit, offset int) string {
	w.args = append(w.args, limit, offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(w.args)-1, len(w.args))
}
