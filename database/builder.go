package database

import (
	"fmt"
	"time"
)

// predicate is a rendered WHERE fragment. Conditions turn into SQL at chain
// time, so the executor side is a plain replay loop.
type predicate struct {
	expr string
	args []any
}

// OrderDirection is the sort direction accepted by OrderBy.
type OrderDirection string

const (
	ASC  OrderDirection = "ASC"
	DESC OrderDirection = "DESC"
)

// QueryBuilder accumulates filter, ordering and paging state for a model T
// and hands it to bun when a terminal method runs.
type QueryBuilder[T any] struct {
	db      *DB
	preds   []predicate
	sorts   []string
	limit   int
	offset  int
	timeout time.Duration
}

// Query starts a builder for model T.
func Query[T any](db *DB) *QueryBuilder[T] {
	return &QueryBuilder[T]{db: db, limit: -1, offset: -1}
}

// Where adds an equality condition.
func (q *QueryBuilder[T]) Where(column string, value any) *QueryBuilder[T] {
	return q.WhereOp(column, "=", value)
}

// WhereOp adds a condition with an explicit comparison operator.
func (q *QueryBuilder[T]) WhereOp(column, op string, value any) *QueryBuilder[T] {
	q.preds = append(q.preds, predicate{
		expr: fmt.Sprintf("%s %s ?", column, op),
		args: []any{value},
	})
	return q
}

// WhereRaw adds a hand-written condition for anything the simple forms
// cannot express, like grouped ORs or ILIKE across columns.
func (q *QueryBuilder[T]) WhereRaw(expr string, args ...any) *QueryBuilder[T] {
	q.preds = append(q.preds, predicate{expr: expr, args: args})
	return q
}

// OrderBy appends a sort key. Later calls break ties of earlier ones.
func (q *QueryBuilder[T]) OrderBy(column string, dir OrderDirection) *QueryBuilder[T] {
	q.sorts = append(q.sorts, fmt.Sprintf("%s %s", column, dir))
	return q
}

// Limit caps the result set.
func (q *QueryBuilder[T]) Limit(n int) *QueryBuilder[T] {
	q.limit = n
	return q
}

// Offset skips the first n rows.
func (q *QueryBuilder[T]) Offset(n int) *QueryBuilder[T] {
	q.offset = n
	return q
}

// Timeout bounds the terminal call with its own deadline on top of the
// caller's context.
func (q *QueryBuilder[T]) Timeout(d time.Duration) *QueryBuilder[T] {
	q.timeout = d
	return q
}
