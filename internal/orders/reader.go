package orders

import (
	"context"

	"github.com/Jeffzycode/LittleLemonAPI/internal/apperr"
	"github.com/Jeffzycode/LittleLemonAPI/internal/auth"
	"github.com/Jeffzycode/LittleLemonAPI/internal/page"
	"github.com/Jeffzycode/LittleLemonAPI/internal/policy"
)

type Reader struct {
	Store Store
}

// ListOrders returns every order to managers and superusers and only the
// assigned orders to delivery crew.
func (r *Reader) ListOrders(ctx context.Context, id auth.Identity, p page.Request) ([]Order, int, error) {
	var f OrderFilter
	switch policy.OrderReadScope(id) {
	case policy.ScopeAll:
	case policy.ScopeAssigned:
		f.DeliveryCrew = id.UserID
	default:
		return nil, 0, apperr.Forbidden()
	}
	return r.Store.ListOrders(ctx, f, p)
}

func (r *Reader) ListOrderItems(ctx context.Context, id auth.Identity, f OrderItemFilter, p page.Request) ([]OrderItem, int, error) {
	switch policy.OrderItemScope(id) {
	case policy.ScopeAll:
		f.OwnerID = 0
	case policy.ScopeOwned:
		f.OwnerID = id.UserID
	default:
		return nil, 0, apperr.Forbidden()
	}
	return r.Store.ListOrderItems(ctx, f, p)
}

// GetOrder returns one order if the caller may read it.
func (r *Reader) GetOrder(ctx context.Context, id auth.Identity, orderID int64) (Order, error) {
	scope := policy.OrderReadScope(id)
	if scope == policy.ScopeNone {
		return Order{}, apperr.Forbidden()
	}
	o, err := r.Store.GetOrder(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if scope == policy.ScopeAssigned && (o.DeliveryCrew == nil || *o.DeliveryCrew != id.UserID) {
		return Order{}, apperr.Forbidden()
	}
	return o, nil
}
