//go:build integration

package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Jeffzycode/LittleLemonAPI/internal/apperr"
	"github.com/Jeffzycode/LittleLemonAPI/internal/auth"
	"github.com/Jeffzycode/LittleLemonAPI/internal/cart"
	"github.com/Jeffzycode/LittleLemonAPI/internal/menu"
	"github.com/Jeffzycode/LittleLemonAPI/internal/orders"
	"github.com/Jeffzycode/LittleLemonAPI/internal/page"
	"github.com/Jeffzycode/LittleLemonAPI/internal/users"
)

var all = page.Request{Page: 1, PerPage: 100}

func setupStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	pg, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("littlelemon"),
		tcpostgres.WithUsername("app"),
		tcpostgres.WithPassword("secret"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pg.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	pool, err := Connect(ctx, dsn, 4)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	log, _ := test.NewNullLogger()
	applied, err := Migrate(ctx, pool, log)
	require.NoError(t, err)
	require.NotEmpty(t, applied)

	again, err := Migrate(ctx, pool, log)
	require.NoError(t, err)
	require.Empty(t, again, "migrations are applied once")

	return &Store{DB: pool}
}

func TestStore_CatalogQueries(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	mains, err := s.CreateCategory(ctx, menu.NewCategory{Title: "Mains"})
	require.NoError(t, err)
	desserts, err := s.CreateCategory(ctx, menu.NewCategory{Title: "Desserts"})
	require.NoError(t, err)
	for _, in := range []menu.NewMenuItem{
		{Title: "Pasta", Price: decimal.RequireFromString("12.50"), CategoryID: mains.ID},
		{Title: "Burger", Price: decimal.RequireFromString("9.00"), Featured: true, CategoryID: mains.ID},
		{Title: "Tiramisu", Price: decimal.RequireFromString("6.75"), CategoryID: desserts.ID},
	} {
		_, err := s.CreateMenuItem(ctx, in)
		require.NoError(t, err)
	}

	_, err = s.CreateMenuItem(ctx, menu.NewMenuItem{Title: "x", Price: decimal.NewFromInt(1), CategoryID: 9999})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	items, n, err := s.ListMenuItems(ctx, menu.MenuFilter{Category: "Mains", Ordering: []page.OrderField{{Name: "price", Desc: true}}}, all)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	assert.Equal(t, "Pasta", items[0].Title)
	assert.Equal(t, "12.50", items[0].Price.StringFixed(2))
	assert.Equal(t, "Mains", items[0].Category.Title)

	limit := decimal.RequireFromString("9")
	_, n, err = s.ListMenuItems(ctx, menu.MenuFilter{ToPrice: &limit}, all)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	items, n, err = s.ListMenuItems(ctx, menu.MenuFilter{}, page.Request{Page: 5, PerPage: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Empty(t, items)

	cats, n, err := s.ListCategories(ctx, menu.CategoryFilter{Title: "Desserts"}, all)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	assert.Equal(t, desserts.ID, cats[0].ID)
}

func TestStore_PlacementAndLifecycle(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	log, _ := test.NewNullLogger()

	alice, err := s.CreateUser(ctx, users.NewUser{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	crew, err := s.CreateUser(ctx, users.NewUser{Username: "crew", Groups: auth.NewGroupSet(auth.GroupDeliveryCrew)})
	require.NoError(t, err)
	manager, err := s.CreateUser(ctx, users.NewUser{Username: "manager", Groups: auth.NewGroupSet(auth.GroupManager)})
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, users.NewUser{Username: "alice"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	c, err := s.CreateCategory(ctx, menu.NewCategory{Title: "Mains"})
	require.NoError(t, err)
	pasta, err := s.CreateMenuItem(ctx, menu.NewMenuItem{Title: "Pasta", Price: decimal.RequireFromString("12.50"), CategoryID: c.ID})
	require.NoError(t, err)

	carts := &cart.Service{Store: s, Menu: s}
	for i := 0; i < 2; i++ {
		_, err := carts.Add(ctx, alice.Identity(), cart.AddRequest{MenuItemID: pasta.ID, Quantity: 2})
		require.NoError(t, err)
	}

	placer := &orders.Placer{Store: s, Events: orders.NopSink{}, Log: log}
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []orders.Result
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := placer.PlaceCart(ctx, alice.Identity())
			assert.NoError(t, err)
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
		}()
	}
	wg.Wait()

	var placed []orders.Result
	for _, r := range results {
		if !r.Empty {
			placed = append(placed, r)
		}
	}
	require.Len(t, placed, 1, "the cart is consumed exactly once")
	o := placed[0].Order
	assert.Equal(t, "50.00", o.Total.StringFixed(2))
	assert.Len(t, placed[0].Items, 2)

	lines, n, err := s.ListLines(ctx, alice.ID, all)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, lines)

	lc := &orders.Lifecycle{Store: s, Users: s, Events: orders.NopSink{}, Log: log}
	crewName := "crew"
	got, err := lc.Update(ctx, manager.Identity(), orders.UpdateRequest{OrderID: &o.ID, DeliveryCrew: &crewName})
	require.NoError(t, err)
	require.NotNil(t, got.DeliveryCrew)
	assert.Equal(t, crew.ID, *got.DeliveryCrew)
	assert.Equal(t, orders.StatusPending, got.Status)

	delivered := orders.StatusDelivered
	got, err = lc.Update(ctx, crew.Identity(), orders.UpdateRequest{OrderID: &o.ID, Status: &delivered})
	require.NoError(t, err)
	assert.Equal(t, orders.StatusDelivered, got.Status)
	assert.Equal(t, crew.ID, *got.DeliveryCrew, "a status-only patch keeps the crew")

	assigned, n, err := s.ListOrders(ctx, orders.OrderFilter{DeliveryCrew: crew.ID}, all)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	assert.Equal(t, o.ID, assigned[0].ID)

	items, n, err := s.ListOrderItems(ctx, orders.OrderItemFilter{OwnerID: alice.ID, Ordering: []page.OrderField{{Name: "id", Desc: true}}}, all)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	assert.Greater(t, items[0].ID, items[1].ID)
	require.NotNil(t, items[0].MenuItem)
	assert.Equal(t, "Pasta", items[0].MenuItem.Title)
}

func TestStore_InTxRollsBack(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	alice, err := s.CreateUser(ctx, users.NewUser{Username: "alice"})
	require.NoError(t, err)

	err = s.InTx(ctx, func(tx orders.Tx) error {
		if _, err := tx.CreateOrder(ctx, orders.NewOrder{UserID: alice.ID, Total: decimal.NewFromInt(1), Price: decimal.NewFromInt(1)}); err != nil {
			return err
		}
		return apperr.Forbidden()
	})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, n, err := s.ListOrders(ctx, orders.OrderFilter{}, all)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_Groups(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, users.NewUser{Username: "mario"})
	require.NoError(t, err)

	u, err = s.SetGroup(ctx, u.ID, auth.GroupDeliveryCrew, true)
	require.NoError(t, err)
	assert.True(t, u.Groups.Has(auth.GroupDeliveryCrew))

	id, err := s.Identity(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, id.IsDeliveryCrew())

	u, err = s.SetGroup(ctx, u.ID, auth.GroupDeliveryCrew, false)
	require.NoError(t, err)
	assert.False(t, u.Groups.Has(auth.GroupDeliveryCrew))

	_, err = s.Identity(ctx, 4242)
	assert.ErrorIs(t, err, auth.ErrUnknownUser)
}
