package memstore

import (
	"context"
	"slices"

	"github.com/Jeffzycode/LittleLemonAPI/internal/apperr"
	"github.com/Jeffzycode/LittleLemonAPI/internal/cart"
	"github.com/Jeffzycode/LittleLemonAPI/internal/page"
)

func (s *Store) ListLines(_ context.Context, userID int64, p page.Request) ([]cart.Line, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.st.cartLines(userID)
	return page.Slice(out, p), len(out), nil
}

func (s *Store) GetLine(_ context.Context, id int64) (cart.Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.getLine(id)
}

func (s *Store) AddLine(_ context.Context, in cart.NewLine) (cart.Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.st.getMenuItem(in.MenuItemID); err != nil {
		return cart.Line{}, err
	}
	r := lineRow{ID: s.st.next(), UserID: in.UserID, MenuItemID: in.MenuItemID, Quantity: in.Quantity, UnitPrice: in.UnitPrice}
	s.st.lines = append(s.st.lines, r)
	return s.st.line(r), nil
}

func (s *Store) SetQuantity(_ context.Context, id int64, quantity int) (cart.Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.st.lines {
		if s.st.lines[i].ID == id {
			s.st.lines[i].Quantity = quantity
			return s.st.line(s.st.lines[i]), nil
		}
	}
	return cart.Line{}, apperr.NotFound("cart item")
}

func (s *Store) DeleteLine(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.st.deleteLines([]int64{id}) == 0 {
		return apperr.NotFound("cart item")
	}
	return nil
}

func (st *state) line(r lineRow) cart.Line {
	it, _ := st.getMenuItem(r.MenuItemID)
	return cart.Line{ID: r.ID, UserID: r.UserID, MenuItem: it, Quantity: r.Quantity, UnitPrice: r.UnitPrice}
}

func (st *state) getLine(id int64) (cart.Line, error) {
	for _, r := range st.lines {
		if r.ID == id {
			return st.line(r), nil
		}
	}
	return cart.Line{}, apperr.NotFound("cart item")
}

// cartLines returns the lines of userID, or all lines when userID is 0.
func (st *state) cartLines(userID int64) []cart.Line {
	var out []cart.Line
	for _, r := range st.lines {
		if userID != 0 && r.UserID != userID {
			continue
		}
		out = append(out, st.line(r))
	}
	return out
}

func (st *state) deleteLines(ids []int64) int64 {
	before := len(st.lines)
	st.lines = slices.DeleteFunc(st.lines, func(r lineRow) bool { return slices.Contains(ids, r.ID) })
	return int64(before - len(st.lines))
}
