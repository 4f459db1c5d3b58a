package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/Jeffzycode/LittleLemonAPI/internal/apperr"
	"github.com/Jeffzycode/LittleLemonAPI/internal/cart"
	"github.com/Jeffzycode/LittleLemonAPI/internal/page"
)

const lineSelect = `
	SELECT l.id, l.user_id, l.quantity, l.unit_price,
	       m.id, m.title, m.price, m.featured, c.id, c.title
	FROM cart_lines l
	JOIN menu_items m ON m.id = l.menu_item_id
	JOIN categories c ON c.id = m.category_id`

func scanLine(row pgx.Row) (cart.Line, error) {
	var l cart.Line
	var qty int16
	err := row.Scan(&l.ID, &l.UserID, &qty, &l.UnitPrice,
		&l.MenuItem.ID, &l.MenuItem.Title, &l.MenuItem.Price, &l.MenuItem.Featured,
		&l.MenuItem.Category.ID, &l.MenuItem.Category.Title)
	l.Quantity = int(qty)
	return l, err
}

func collectLines(rows pgx.Rows) ([]cart.Line, error) {
	defer rows.Close()
	out := []cart.Line{}
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) ListLines(ctx context.Context, userID int64, p page.Request) ([]cart.Line, int, error) {
	w := &where{}
	if userID != 0 {
		w.add("l.user_id = ?", userID)
	}
	n, err := count(ctx, s.DB, `FROM cart_lines l`, w)
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.DB.Query(ctx, lineSelect+w.String()+` ORDER BY l.id`+w.limit(p), w.args...)
	if err != nil {
		return nil, 0, err
	}
	lines, err := collectLines(rows)
	return lines, n, err
}

func (s *Store) GetLine(ctx context.Context, id int64) (cart.Line, error) {
	l, err := scanLine(s.DB.QueryRow(ctx, lineSelect+` WHERE l.id=$1`, id))
	if err != nil {
		return cart.Line{}, notFound(err, "cart item")
	}
	return l, nil
}

func (s *Store) AddLine(ctx context.Context, in cart.NewLine) (cart.Line, error) {
	var id int64
	err := s.DB.QueryRow(ctx, `
		INSERT INTO cart_lines(user_id, menu_item_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		in.UserID, in.MenuItemID, in.Quantity, in.UnitPrice,
	).Scan(&id)
	if pgCode(err) == codeForeignKeyViolation {
		return cart.Line{}, apperr.NotFound("menu item")
	}
	if err != nil {
		return cart.Line{}, outOfRange(err, "quantity")
	}
	return s.GetLine(ctx, id)
}

func (s *Store) SetQuantity(ctx context.Context, id int64, quantity int) (cart.Line, error) {
	ct, err := s.DB.Exec(ctx, `UPDATE cart_lines SET quantity=$2 WHERE id=$1`, id, quantity)
	if err != nil {
		return cart.Line{}, outOfRange(err, "new_quantity")
	}
	if ct.RowsAffected() == 0 {
		return cart.Line{}, apperr.NotFound("cart item")
	}
	return s.GetLine(ctx, id)
}

func (s *Store) DeleteLine(ctx context.Context, id int64) error {
	ct, err := s.DB.Exec(ctx, `DELETE FROM cart_lines WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("cart item")
	}
	return nil
}
