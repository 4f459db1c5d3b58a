package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Jeffzycode/LittleLemonAPI/internal/cart"
	"github.com/Jeffzycode/LittleLemonAPI/internal/menu"
	"github.com/Jeffzycode/LittleLemonAPI/internal/orders"
	"github.com/Jeffzycode/LittleLemonAPI/internal/page"
)

// tx is the placement unit of work on top of a pgx transaction.
type tx struct{ q pgx.Tx }

func (t *tx) GetCartLine(ctx context.Context, id int64) (cart.Line, error) {
	l, err := scanLine(t.q.QueryRow(ctx, lineSelect+` WHERE l.id=$1 FOR UPDATE OF l`, id))
	if err != nil {
		return cart.Line{}, notFound(err, "cart item")
	}
	return l, nil
}

func (t *tx) ListCartLines(ctx context.Context, userID int64) ([]cart.Line, error) {
	rows, err := t.q.Query(ctx, lineSelect+` WHERE l.user_id=$1 ORDER BY l.id FOR UPDATE OF l`, userID)
	if err != nil {
		return nil, err
	}
	return collectLines(rows)
}

func (t *tx) CreateOrder(ctx context.Context, in orders.NewOrder) (orders.Order, error) {
	o := orders.Order{UserID: in.UserID, Status: orders.StatusPending, Total: in.Total, Price: in.Price}
	err := t.q.QueryRow(ctx, `
		INSERT INTO orders(user_id, status, total, price)
		VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		in.UserID, int16(orders.StatusPending), in.Total, in.Price,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return orders.Order{}, outOfRange(err, "total")
	}
	return o, nil
}

func (t *tx) CreateOrderItem(ctx context.Context, in orders.NewOrderItem) (orders.OrderItem, error) {
	it := orders.OrderItem{OrderID: in.OrderID, MenuItemID: in.MenuItemID, Status: in.Status, Total: in.Total, Date: in.Date}
	err := t.q.QueryRow(ctx, `
		INSERT INTO order_items(order_id, menu_item_id, status, total, date)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		in.OrderID, in.MenuItemID, int16(in.Status), in.Total, in.Date,
	).Scan(&it.ID)
	if err != nil {
		return orders.OrderItem{}, outOfRange(err, "total")
	}
	return it, nil
}

func (t *tx) DeleteCartLines(ctx context.Context, ids []int64) (int64, error) {
	ct, err := t.q.Exec(ctx, `DELETE FROM cart_lines WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

const orderSelect = `SELECT id, user_id, delivery_crew_id, status, total, price, created_at FROM orders`

func scanOrder(row pgx.Row) (orders.Order, error) {
	var o orders.Order
	var status int16
	if err := row.Scan(&o.ID, &o.UserID, &o.DeliveryCrew, &status, &o.Total, &o.Price, &o.CreatedAt); err != nil {
		return orders.Order{}, err
	}
	o.Status = orders.Status(status)
	return o, nil
}

func (s *Store) GetOrder(ctx context.Context, id int64) (orders.Order, error) {
	o, err := scanOrder(s.DB.QueryRow(ctx, orderSelect+` WHERE id=$1`, id))
	if err != nil {
		return orders.Order{}, notFound(err, "order")
	}
	return o, nil
}

// UpdateOrder writes the patched fields in a single statement.
func (s *Store) UpdateOrder(ctx context.Context, id int64, p orders.Patch) (orders.Order, error) {
	var status *int16
	if p.Status != nil {
		v := int16(*p.Status)
		status = &v
	}
	o, err := scanOrder(s.DB.QueryRow(ctx, `
		UPDATE orders
		SET status = COALESCE($2, status),
		    delivery_crew_id = COALESCE($3, delivery_crew_id)
		WHERE id=$1
		RETURNING id, user_id, delivery_crew_id, status, total, price, created_at`,
		id, status, p.DeliveryCrew,
	))
	if err != nil {
		return orders.Order{}, notFound(err, "order")
	}
	return o, nil
}

func (s *Store) ListOrders(ctx context.Context, f orders.OrderFilter, p page.Request) ([]orders.Order, int, error) {
	w := &where{}
	if f.DeliveryCrew != 0 {
		w.add("delivery_crew_id = ?", f.DeliveryCrew)
	}
	n, err := count(ctx, s.DB, `FROM orders`, w)
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.DB.Query(ctx, orderSelect+w.String()+` ORDER BY id`+w.limit(p), w.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []orders.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	return out, n, rows.Err()
}

const orderItemFrom = `
	FROM order_items oi
	JOIN orders o ON o.id = oi.order_id
	JOIN menu_items m ON m.id = oi.menu_item_id
	JOIN categories c ON c.id = m.category_id`

var orderItemCols = map[string]string{
	"id":       "oi.id",
	"order":    "oi.order_id",
	"menuitem": "oi.menu_item_id",
	"status":   "oi.status",
	"total":    "oi.total",
	"date":     "oi.date",
}

func (s *Store) ListOrderItems(ctx context.Context, f orders.OrderItemFilter, p page.Request) ([]orders.OrderItem, int, error) {
	w := &where{}
	if f.OwnerID != 0 {
		w.add("o.user_id = ?", f.OwnerID)
	}
	if f.IsDelivered != nil {
		w.add("oi.status = ?", int16(*f.IsDelivered))
	}
	n, err := count(ctx, s.DB, orderItemFrom, w)
	if err != nil {
		return nil, 0, err
	}

	q := `SELECT oi.id, oi.order_id, oi.status, oi.total, oi.date,
	             m.id, m.title, m.price, m.featured, c.id, c.title` +
		orderItemFrom + w.String() + orderBy(f.Ordering, orderItemCols)
	q += w.limit(p)
	rows, err := s.DB.Query(ctx, q, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	out := []orders.OrderItem{}
	for rows.Next() {
		var (
			it     orders.OrderItem
			mi     menu.MenuItem
			status int16
			date   time.Time
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &status, &it.Total, &date,
			&mi.ID, &mi.Title, &mi.Price, &mi.Featured, &mi.Category.ID, &mi.Category.Title); err != nil {
			return nil, 0, err
		}
		it.Status = orders.Status(status)
		it.Date = date
		it.MenuItemID = mi.ID
		it.MenuItem = &mi
		out = append(out, it)
	}
	return out, n, rows.Err()
}
