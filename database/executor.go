package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

// run applies the optional per-query timeout and executes op under the
// SQLSTATE-aware retry policy.
func (q *QueryBuilder[T]) run(ctx context.Context, op func(context.Context) error) error {
	if q.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}
	return WithRetry(ctx, func() error { return op(ctx) })
}

func (q *QueryBuilder[T]) selectQuery(model any) *bun.SelectQuery {
	query := q.db.NewSelect().Model(model)
	for _, p := range q.preds {
		query = query.Where(p.expr, p.args...)
	}
	for _, s := range q.sorts {
		query = query.Order(s)
	}
	if q.limit >= 0 {
		query = query.Limit(q.limit)
	}
	if q.offset >= 0 {
		query = query.Offset(q.offset)
	}
	return query
}

// All returns every matching row.
func (q *QueryBuilder[T]) All(ctx context.Context) ([]T, error) {
	var rows []T
	err := q.run(ctx, func(ctx context.Context) error {
		rows = nil // retries start clean
		return q.selectQuery(&rows).Scan(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("select failed: %w", err)
	}
	return rows, nil
}

// First returns the first matching row, or nil when nothing matches.
func (q *QueryBuilder[T]) First(ctx context.Context) (*T, error) {
	var row T
	err := q.run(ctx, func(ctx context.Context) error {
		return q.selectQuery(&row).Limit(1).Scan(ctx)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select failed: %w", err)
	}
	return &row, nil
}

// Count returns the number of matching rows. Ordering and paging state is
// ignored.
func (q *QueryBuilder[T]) Count(ctx context.Context) (int, error) {
	var count int
	err := q.run(ctx, func(ctx context.Context) error {
		var err error
		count, err = q.selectQuery((*T)(nil)).Count(ctx)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("count failed: %w", err)
	}
	return count, nil
}

// Insert stores the row and returns it.
func (q *QueryBuilder[T]) Insert(ctx context.Context, row *T) (*T, error) {
	err := q.run(ctx, func(ctx context.Context) error {
		_, err := q.db.NewInsert().Model(row).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("insert failed: %w", err)
	}
	return row, nil
}

// Update applies the column map to every matching row and reports how many
// rows changed.
func (q *QueryBuilder[T]) Update(ctx context.Context, columns map[string]any) (int, error) {
	var affected int64
	err := q.run(ctx, func(ctx context.Context) error {
		query := q.db.NewUpdate().Model((*T)(nil))
		for col, val := range columns {
			query = query.Set("? = ?", bun.Ident(col), val)
		}
		for _, p := range q.preds {
			query = query.Where(p.expr, p.args...)
		}
		res, err := query.Exec(ctx)
		if err != nil {
			return err
		}
		affected, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("update failed: %w", err)
	}
	return int(affected), nil
}

// Delete removes every matching row and reports how many went away.
func (q *QueryBuilder[T]) Delete(ctx context.Context) (int, error) {
	var affected int64
	err := q.run(ctx, func(ctx context.Context) error {
		query := q.db.NewDelete().Model((*T)(nil))
		for _, p := range q.preds {
			query = query.Where(p.expr, p.args...)
		}
		res, err := query.Exec(ctx)
		if err != nil {
			return err
		}
		affected, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete failed: %w", err)
	}
	return int(affected), nil
}
