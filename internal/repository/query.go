package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mentorlog/mentorlog-api/pkg/metrics"
	"github.com/mentorlog/mentorlog-api/pkg/tracing"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned on a unique constraint violation.
	ErrDuplicate = errors.New("duplicate record")
)

const uniqueViolation = "23505"

// mapError turns driver errors into repository sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}

// track starts a span for a repository call and returns the func that ends
// it and records DB metrics. Use as:
//
//	ctx, done := track(ctx, "op")
//	defer done(&err)
//
// ErrNotFound is a normal outcome and is not counted as a failure.
func track(ctx context.Context, operation string) (context.Context, func(*error)) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "db."+operation,
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", operation))

	return ctx, func(err *error) {
		var e error
		if err != nil && !errors.Is(*err, ErrNotFound) {
			e = *err
		}
		tracing.RecordError(span, e)
		span.End()
		metrics.ObserveDB(operation, start, e)
	}
}

// whereBuilder accumulates AND-ed conditions with numbered placeholders.
// Each clause uses "?" for its single argument.
type whereBuilder struct {
	clauses []string
	args    []interface{}
}

func (w *whereBuilder) add(clause string, arg interface{}) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, strings.Replace(clause, "?", fmt.Sprintf("$%d", len(w.args)), 1))
}

// addRaw adds a clause that takes no argument.
func (w *whereBuilder) addRaw(clause string) {
	w.clauses = append(w.clauses, clause)
}

// arg registers an argument and returns its placeholder, for clauses with
// more than one argument.
func (w *whereBuilder) arg(v interface{}) string {
	w.args = append(w.args, v)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *whereBuilder) sql() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// page appends LIMIT/OFFSET placeholders and returns the suffix.
func (w *whereBuilder) page(limit, offset int) (string, []interface{}) {
	args := append(append([]interface{}{}, w.args...), limit, offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(s)) + "%"
}
