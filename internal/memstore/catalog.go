package memstore

import (
	"cmp"
	"context"
	"slices"

	"github.com/Jeffzycode/LittleLemonAPI/internal/apperr"
	"github.com/Jeffzycode/LittleLemonAPI/internal/menu"
	"github.com/Jeffzycode/LittleLemonAPI/internal/page"
)

func (s *Store) ListMenuItems(_ context.Context, f menu.MenuFilter, p page.Request) ([]menu.MenuItem, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []menu.MenuItem
	for _, r := range s.st.menu {
		it := s.st.menuItem(r)
		if f.Category != "" && it.Category.Title != f.Category {
			continue
		}
		if f.ToPrice != nil && it.Price.GreaterThan(*f.ToPrice) {
			continue
		}
		if f.Featured != nil && it.Featured != *f.Featured {
			continue
		}
		out = append(out, it)
	}
	sortBy(out, f.Ordering, compareMenuItems)
	return page.Slice(out, p), len(out), nil
}

func compareMenuItems(a, b menu.MenuItem, field string) int {
	switch field {
	case "title":
		return cmp.Compare(a.Title, b.Title)
	case "price":
		return a.Price.Cmp(b.Price)
	case "featured":
		return cmpBool(a.Featured, b.Featured)
	case "category":
		return cmp.Compare(a.Category.ID, b.Category.ID)
	}
	return cmp.Compare(a.ID, b.ID)
}

func (s *Store) GetMenuItem(_ context.Context, id int64) (menu.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.getMenuItem(id)
}

func (s *Store) CreateMenuItem(_ context.Context, in menu.NewMenuItem) (menu.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.st.category(in.CategoryID); !ok {
		return menu.MenuItem{}, apperr.NotFound("category")
	}
	r := menuRow{ID: s.st.next(), Title: in.Title, Price: in.Price.Round(2), Featured: in.Featured, CategoryID: in.CategoryID}
	s.st.menu = append(s.st.menu, r)
	return s.st.menuItem(r), nil
}

func (s *Store) SetFeatured(_ context.Context, id int64, featured bool) (menu.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.st.menu {
		if s.st.menu[i].ID == id {
			s.st.menu[i].Featured = featured
			return s.st.menuItem(s.st.menu[i]), nil
		}
	}
	return menu.MenuItem{}, apperr.NotFound("menu item")
}

func (s *Store) ListCategories(_ context.Context, f menu.CategoryFilter, p page.Request) ([]menu.Category, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []menu.Category
	for _, c := range s.st.categories {
		if f.Title != "" && c.Title != f.Title {
			continue
		}
		out = append(out, c)
	}
	return page.Slice(out, p), len(out), nil
}

func (s *Store) GetCategory(_ context.Context, id int64) (menu.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.st.category(id)
	if !ok {
		return menu.Category{}, apperr.NotFound("category")
	}
	return c, nil
}

func (s *Store) CreateCategory(_ context.Context, in menu.NewCategory) (menu.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := menu.Category{ID: s.st.next(), Title: in.Title}
	s.st.categories = append(s.st.categories, c)
	return c, nil
}

func (st *state) category(id int64) (menu.Category, bool) {
	i := slices.IndexFunc(st.categories, func(c menu.Category) bool { return c.ID == id })
	if i < 0 {
		return menu.Category{}, false
	}
	return st.categories[i], true
}

func (st *state) menuItem(r menuRow) menu.MenuItem {
	c, _ := st.category(r.CategoryID)
	return menu.MenuItem{ID: r.ID, Title: r.Title, Price: r.Price, Featured: r.Featured, Category: c}
}

func (st *state) getMenuItem(id int64) (menu.MenuItem, error) {
	for _, r := range st.menu {
		if r.ID == id {
			return st.menuItem(r), nil
		}
	}
	return menu.MenuItem{}, apperr.NotFound("menu item")
}

// sortBy applies a multi-field ordering, falling back to id order. The sort
// is stable so equal keys keep insertion order.
func sortBy[T any](items []T, fields []page.OrderField, compare func(a, b T, field string) int) {
	slices.SortStableFunc(items, func(a, b T) int {
		for _, f := range fields {
			c := compare(a, b, f.Name)
			if f.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return compare(a, b, "id")
	})
}

func cmpBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}
