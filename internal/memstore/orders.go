package memstore

import (
	"cmp"
	"context"

	"github.com/Jeffzycode/LittleLemonAPI/internal/apperr"
	"github.com/Jeffzycode/LittleLemonAPI/internal/cart"
	"github.com/Jeffzycode/LittleLemonAPI/internal/orders"
	"github.com/Jeffzycode/LittleLemonAPI/internal/page"
)

// tx runs with Store.mu already held.
type tx struct {
	s *Store
}

func (t *tx) GetCartLine(_ context.Context, id int64) (cart.Line, error) {
	return t.s.st.getLine(id)
}

func (t *tx) ListCartLines(_ context.Context, userID int64) ([]cart.Line, error) {
	if userID == 0 {
		return nil, nil
	}
	return t.s.st.cartLines(userID), nil
}

func (t *tx) CreateOrder(_ context.Context, in orders.NewOrder) (orders.Order, error) {
	o := orders.Order{
		ID:        t.s.st.next(),
		UserID:    in.UserID,
		Status:    orders.StatusPending,
		Total:     in.Total,
		Price:     in.Price,
		CreatedAt: t.s.now().UTC(),
	}
	t.s.st.orders = append(t.s.st.orders, o)
	return o, nil
}

func (t *tx) CreateOrderItem(_ context.Context, in orders.NewOrderItem) (orders.OrderItem, error) {
	if _, ok := t.s.st.order(in.OrderID); !ok {
		return orders.OrderItem{}, apperr.NotFound("order")
	}
	r := itemRow{ID: t.s.st.next(), OrderID: in.OrderID, MenuItemID: in.MenuItemID, Status: in.Status, Total: in.Total, Date: in.Date}
	t.s.st.items = append(t.s.st.items, r)
	return orderItem(r), nil
}

func (t *tx) DeleteCartLines(_ context.Context, ids []int64) (int64, error) {
	return t.s.st.deleteLines(ids), nil
}

func (s *Store) GetOrder(_ context.Context, id int64) (orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.st.order(id)
	if !ok {
		return orders.Order{}, apperr.NotFound("order")
	}
	return o, nil
}

func (s *Store) UpdateOrder(_ context.Context, id int64, p orders.Patch) (orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.st.orders {
		o := &s.st.orders[i]
		if o.ID != id {
			continue
		}
		if p.Status != nil {
			o.Status = *p.Status
		}
		if p.DeliveryCrew != nil {
			crew := *p.DeliveryCrew
			o.DeliveryCrew = &crew
		}
		return *o, nil
	}
	return orders.Order{}, apperr.NotFound("order")
}

func (s *Store) ListOrders(_ context.Context, f orders.OrderFilter, p page.Request) ([]orders.Order, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []orders.Order
	for _, o := range s.st.orders {
		if f.DeliveryCrew != 0 && (o.DeliveryCrew == nil || *o.DeliveryCrew != f.DeliveryCrew) {
			continue
		}
		out = append(out, o)
	}
	return page.Slice(out, p), len(out), nil
}

func (s *Store) ListOrderItems(_ context.Context, f orders.OrderItemFilter, p page.Request) ([]orders.OrderItem, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []orders.OrderItem
	for _, r := range s.st.items {
		if f.OwnerID != 0 {
			o, ok := s.st.order(r.OrderID)
			if !ok || o.UserID != f.OwnerID {
				continue
			}
		}
		if f.IsDelivered != nil && r.Status != *f.IsDelivered {
			continue
		}
		it := orderItem(r)
		if mi, err := s.st.getMenuItem(r.MenuItemID); err == nil {
			it.MenuItem = &mi
		}
		out = append(out, it)
	}
	sortBy(out, f.Ordering, compareOrderItems)
	return page.Slice(out, p), len(out), nil
}

func compareOrderItems(a, b orders.OrderItem, field string) int {
	switch field {
	case "order":
		return cmp.Compare(a.OrderID, b.OrderID)
	case "menuitem":
		return cmp.Compare(a.MenuItemID, b.MenuItemID)
	case "status":
		return cmp.Compare(a.Status, b.Status)
	case "total":
		return a.Total.Cmp(b.Total)
	case "date":
		return a.Date.Compare(b.Date)
	}
	return cmp.Compare(a.ID, b.ID)
}

func (st *state) order(id int64) (orders.Order, bool) {
	for _, o := range st.orders {
		if o.ID == id {
			return o, true
		}
	}
	return orders.Order{}, false
}

func orderItem(r itemRow) orders.OrderItem {
	return orders.OrderItem{ID: r.ID, OrderID: r.OrderID, MenuItemID: r.MenuItemID, Status: r.Status, Total: r.Total, Date: r.Date}
}
