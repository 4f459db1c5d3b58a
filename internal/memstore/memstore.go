// Package memstore is an in-process implementation of every store interface
// used by the services. It backs the memory driver and the handler tests.
package memstore

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Jeffzycode/LittleLemonAPI/internal/auth"
	"github.com/Jeffzycode/LittleLemonAPI/internal/cart"
	"github.com/Jeffzycode/LittleLemonAPI/internal/menu"
	"github.com/Jeffzycode/LittleLemonAPI/internal/orders"
	"github.com/Jeffzycode/LittleLemonAPI/internal/users"
)

type menuRow struct {
	ID         int64
	Title      string
	Price      decimal.Decimal
	Featured   bool
	CategoryID int64
}

type lineRow struct {
	ID         int64
	UserID     int64
	MenuItemID int64
	Quantity   int
	UnitPrice  decimal.Decimal
}

type itemRow struct {
	ID         int64
	OrderID    int64
	MenuItemID int64
	Status     orders.Status
	Total      decimal.Decimal
	Date       time.Time
}

// state holds rows in insertion order, which is also id order.
type state struct {
	seq        int64
	users      map[int64]users.User
	categories []menu.Category
	menu       []menuRow
	lines      []lineRow
	orders     []orders.Order
	items      []itemRow
}

func (s *state) clone() *state {
	cp := *s
	cp.users = maps.Clone(s.users)
	cp.categories = slices.Clone(s.categories)
	cp.menu = slices.Clone(s.menu)
	cp.lines = slices.Clone(s.lines)
	cp.orders = slices.Clone(s.orders)
	for i, o := range cp.orders {
		if o.DeliveryCrew != nil {
			v := *o.DeliveryCrew
			cp.orders[i].DeliveryCrew = &v
		}
	}
	cp.items = slices.Clone(s.items)
	return &cp
}

func (s *state) next() int64 {
	s.seq++
	return s.seq
}

// Store serializes every call on one mutex. A transaction holds the mutex
// for its whole duration.
type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

func New() *Store {
	return &Store{st: &state{users: map[int64]users.User{}}, now: time.Now}
}

// SetClock replaces the time source used for order timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) InTx(ctx context.Context, fn func(tx orders.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.st.clone()
	if err := fn(&tx{s: s}); err != nil {
		s.st = snap
		return err
	}
	if err := ctx.Err(); err != nil {
		s.st = snap
		return err
	}
	return nil
}

// Identity implements auth.Directory.
func (s *Store) Identity(ctx context.Context, userID int64) (auth.Identity, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return auth.Identity{}, auth.ErrUnknownUser
	}
	return u.Identity(), nil
}

// IdentityByUsername implements orders.UserLookup.
func (s *Store) IdentityByUsername(ctx context.Context, username string) (auth.Identity, error) {
	u, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		return auth.Identity{}, err
	}
	return u.Identity(), nil
}

var (
	_ menu.Store        = (*Store)(nil)
	_ cart.Store        = (*Store)(nil)
	_ orders.Store      = (*Store)(nil)
	_ orders.Tx         = (*tx)(nil)
	_ orders.UserLookup = (*Store)(nil)
	_ users.Store       = (*Store)(nil)
	_ auth.Directory    = (*Store)(nil)
)
