package postgres

import (
	"context"

	"github.com/Jeffzycode/LittleLemonAPI/internal/apperr"
	"github.com/Jeffzycode/LittleLemonAPI/internal/menu"
	"github.com/Jeffzycode/LittleLemonAPI/internal/page"
)

const menuFrom = `FROM menu_items m JOIN categories c ON c.id = m.category_id`

var menuOrderCols = map[string]string{
	"id":       "m.id",
	"title":    "m.title",
	"price":    "m.price",
	"featured": "m.featured",
	"category": "m.category_id",
}

func (s *Store) ListMenuItems(ctx context.Context, f menu.MenuFilter, p page.Request) ([]menu.MenuItem, int, error) {
	w := &where{}
	if f.Category != "" {
		w.add("c.title = ?", f.Category)
	}
	if f.ToPrice != nil {
		w.add("m.price <= ?", *f.ToPrice)
	}
	if f.Featured != nil {
		w.add("m.featured = ?", *f.Featured)
	}
	n, err := count(ctx, s.DB, menuFrom, w)
	if err != nil {
		return nil, 0, err
	}

	q := `SELECT m.id, m.title, m.price, m.featured, c.id, c.title ` + menuFrom + w.String() + orderBy(f.Ordering, menuOrderCols)
	q += w.limit(p)
	rows, err := s.DB.Query(ctx, q, w.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []menu.MenuItem{}
	for rows.Next() {
		var it menu.MenuItem
		if err := rows.Scan(&it.ID, &it.Title, &it.Price, &it.Featured, &it.Category.ID, &it.Category.Title); err != nil {
			return nil, 0, err
		}
		out = append(out, it)
	}
	return out, n, rows.Err()
}

func (s *Store) GetMenuItem(ctx context.Context, id int64) (menu.MenuItem, error) {
	return getMenuItem(ctx, s.DB, id)
}

func getMenuItem(ctx context.Context, q querier, id int64) (menu.MenuItem, error) {
	var it menu.MenuItem
	err := q.QueryRow(ctx, `SELECT m.id, m.title, m.price, m.featured, c.id, c.title `+menuFrom+` WHERE m.id=$1`, id).
		Scan(&it.ID, &it.Title, &it.Price, &it.Featured, &it.Category.ID, &it.Category.Title)
	if err != nil {
		return menu.MenuItem{}, notFound(err, "menu item")
	}
	return it, nil
}

func (s *Store) CreateMenuItem(ctx context.Context, in menu.NewMenuItem) (menu.MenuItem, error) {
	var id int64
	err := s.DB.QueryRow(ctx, `
		INSERT INTO menu_items(title, price, featured, category_id)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		in.Title, in.Price.Round(2), in.Featured, in.CategoryID,
	).Scan(&id)
	if pgCode(err) == codeForeignKeyViolation {
		return menu.MenuItem{}, apperr.NotFound("category")
	}
	if err != nil {
		return menu.MenuItem{}, err
	}
	return s.GetMenuItem(ctx, id)
}

func (s *Store) SetFeatured(ctx context.Context, id int64, featured bool) (menu.MenuItem, error) {
	ct, err := s.DB.Exec(ctx, `UPDATE menu_items SET featured=$2 WHERE id=$1`, id, featured)
	if err != nil {
		return menu.MenuItem{}, err
	}
	if ct.RowsAffected() == 0 {
		return menu.MenuItem{}, apperr.NotFound("menu item")
	}
	return s.GetMenuItem(ctx, id)
}

func (s *Store) ListCategories(ctx context.Context, f menu.CategoryFilter, p page.Request) ([]menu.Category, int, error) {
	w := &where{}
	if f.Title != "" {
		w.add("title = ?", f.Title)
	}
	n, err := count(ctx, s.DB, `FROM categories`, w)
	if err != nil {
		return nil, 0, err
	}
	q := `SELECT id, title FROM categories` + w.String() + ` ORDER BY id` + w.limit(p)
	rows, err := s.DB.Query(ctx, q, w.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []menu.Category{}
	for rows.Next() {
		var c menu.Category
		if err := rows.Scan(&c.ID, &c.Title); err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, n, rows.Err()
}

func (s *Store) GetCategory(ctx context.Context, id int64) (menu.Category, error) {
	var c menu.Category
	err := s.DB.QueryRow(ctx, `SELECT id, title FROM categories WHERE id=$1`, id).Scan(&c.ID, &c.Title)
	if err != nil {
		return menu.Category{}, notFound(err, "category")
	}
	return c, nil
}

func (s *Store) CreateCategory(ctx context.Context, in menu.NewCategory) (menu.Category, error) {
	c := menu.Category{Title: in.Title}
	if err := s.DB.QueryRow(ctx, `INSERT INTO categories(title) VALUES ($1) RETURNING id`, in.Title).Scan(&c.ID); err != nil {
		return menu.Category{}, err
	}
	return c, nil
}
