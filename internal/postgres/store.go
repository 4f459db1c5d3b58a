package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jeffzycode/LittleLemonAPI/internal/auth"
	"github.com/Jeffzycode/LittleLemonAPI/internal/cart"
	"github.com/Jeffzycode/LittleLemonAPI/internal/menu"
	"github.com/Jeffzycode/LittleLemonAPI/internal/orders"
	"github.com/Jeffzycode/LittleLemonAPI/internal/page"
	"github.com/Jeffzycode/LittleLemonAPI/internal/users"
)

// Store implements every repository interface on one pool.
type Store struct{ DB *pgxpool.Pool }

var (
	_ menu.Store        = (*Store)(nil)
	_ cart.Store        = (*Store)(nil)
	_ orders.Store      = (*Store)(nil)
	_ orders.Tx         = (*tx)(nil)
	_ orders.UserLookup = (*Store)(nil)
	_ users.Store       = (*Store)(nil)
	_ auth.Directory    = (*Store)(nil)
)

// InTx runs fn in a read-committed transaction. Cart rows read through the
// Tx are locked FOR UPDATE, so a concurrent placement of the same lines
// waits and then no longer sees them.
func (s *Store) InTx(ctx context.Context, fn func(orders.Tx) error) error {
	return s.inTx(ctx, func(t pgx.Tx) error { return fn(&tx{q: t}) })
}

func (s *Store) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	t, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = t.Rollback(ctx) }()

	if err := fn(t); err != nil {
		return err
	}
	return t.Commit(ctx)
}

// where accumulates AND-ed predicates with positional arguments.
type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.ReplaceAll(cond, "?", fmt.Sprintf("$%d", len(w.args))))
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// limit appends LIMIT/OFFSET placeholders for p and returns the clause.
func (w *where) limit(p page.Request) string {
	w.args = append(w.args, p.Limit(), p.Offset())
	n := len(w.args)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", n-1, n)
}

// orderBy renders fields against a whitelist of columns. Unknown names were
// already rejected when parsing, so they are skipped here.
func orderBy(fields []page.OrderField, cols map[string]string) string {
	parts := make([]string, 0, len(fields)+1)
	for _, f := range fields {
		col, ok := cols[f.Name]
		if !ok {
			continue
		}
		if f.Desc {
			col += " DESC"
		}
		parts = append(parts, col)
	}
	parts = append(parts, cols["id"])
	return " ORDER BY " + strings.Join(parts, ", ")
}

func count(ctx context.Context, q querier, from string, w *where) (int, error) {
	var n int
	err := q.QueryRow(ctx, `SELECT COUNT(*) `+from+w.String(), w.args...).Scan(&n)
	return n, err
}
