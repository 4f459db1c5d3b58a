package orders

import (
	"context"

	"github.com/Jeffzycode/LittleLemonAPI/internal/auth"
	"github.com/Jeffzycode/LittleLemonAPI/internal/cart"
	"github.com/Jeffzycode/LittleLemonAPI/internal/page"
)

// Store is the order side of the relational store. Missing rows are
// reported as apperr NotFound errors.
type Store interface {
	// InTx runs fn in one transaction, committing only when fn returns nil.
	InTx(ctx context.Context, fn func(tx Tx) error) error
	GetOrder(ctx context.Context, id int64) (Order, error)
	UpdateOrder(ctx context.Context, id int64, p Patch) (Order, error)
	ListOrders(ctx context.Context, f OrderFilter, p page.Request) ([]Order, int, error)
	ListOrderItems(ctx context.Context, f OrderItemFilter, p page.Request) ([]OrderItem, int, error)
}

// Tx is the placement unit of work. Cart reads inside a Tx lock the rows
// they return until the transaction ends.
type Tx interface {
	GetCartLine(ctx context.Context, id int64) (cart.Line, error)
	// ListCartLines returns the user's lines in insertion order.
	ListCartLines(ctx context.Context, userID int64) ([]cart.Line, error)
	CreateOrder(ctx context.Context, in NewOrder) (Order, error)
	CreateOrderItem(ctx context.Context, in NewOrderItem) (OrderItem, error)
	DeleteCartLines(ctx context.Context, ids []int64) (int64, error)
}

// UserLookup resolves delivery crew targets by username.
type UserLookup interface {
	IdentityByUsername(ctx context.Context, username string) (auth.Identity, error)
}
