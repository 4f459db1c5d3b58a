package menu_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jeffzycode/LittleLemonAPI/internal/apperr"
	"github.com/Jeffzycode/LittleLemonAPI/internal/auth"
	"github.com/Jeffzycode/LittleLemonAPI/internal/memstore"
	"github.com/Jeffzycode/LittleLemonAPI/internal/menu"
	"github.com/Jeffzycode/LittleLemonAPI/internal/page"
)

var (
	all      = page.Request{Page: 1, PerPage: 100}
	admin    = auth.Identity{UserID: 1, Superuser: true}
	manager  = auth.Identity{UserID: 2, Groups: auth.NewGroupSet(auth.GroupManager)}
	customer = auth.Identity{UserID: 3}
)

func TestCreateAndListByCategory(t *testing.T) {
	svc := &menu.Service{Store: memstore.New()}
	ctx := context.Background()

	c, err := svc.CreateCategory(ctx, admin, menu.NewCategory{Title: "Mains"})
	require.NoError(t, err)
	item, err := svc.CreateMenuItem(ctx, admin, menu.NewMenuItem{Title: "Pasta", Price: decimal.RequireFromString("12.5"), CategoryID: c.ID})
	require.NoError(t, err)
	assert.Equal(t, "Mains", item.Category.Title)

	items, n, err := svc.ListMenuItems(ctx, auth.Identity{}, menu.MenuFilter{Category: "Mains"}, all)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	assert.Equal(t, item.ID, items[0].ID)

	_, n, err = svc.ListMenuItems(ctx, auth.Identity{}, menu.MenuFilter{Category: "Desserts"}, all)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreateMenuItem_Rules(t *testing.T) {
	svc := &menu.Service{Store: memstore.New()}
	ctx := context.Background()
	c, err := svc.CreateCategory(ctx, admin, menu.NewCategory{Title: "Mains"})
	require.NoError(t, err)

	_, err = svc.CreateMenuItem(ctx, manager, menu.NewMenuItem{Title: "x", Price: decimal.NewFromInt(1), CategoryID: c.ID})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = svc.CreateMenuItem(ctx, admin, menu.NewMenuItem{Title: "x", Price: decimal.Zero, CategoryID: c.ID})
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperr.KindValidation, ae.Kind)
	assert.Contains(t, ae.Fields, "price")

	_, err = svc.CreateMenuItem(ctx, admin, menu.NewMenuItem{Title: "x", Price: decimal.NewFromInt(1), CategoryID: 999})
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, ae.Fields, "category_id")

	_, err = svc.CreateCategory(ctx, customer, menu.NewCategory{Title: "Drinks"})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestSetFeatured(t *testing.T) {
	svc := &menu.Service{Store: memstore.New()}
	ctx := context.Background()
	c, err := svc.CreateCategory(ctx, admin, menu.NewCategory{Title: "Mains"})
	require.NoError(t, err)
	item, err := svc.CreateMenuItem(ctx, admin, menu.NewMenuItem{Title: "Pasta", Price: decimal.NewFromInt(9), CategoryID: c.ID})
	require.NoError(t, err)

	yes := true
	got, err := svc.SetFeatured(ctx, manager, &item.ID, &yes)
	require.NoError(t, err)
	assert.True(t, got.Featured)

	_, err = svc.SetFeatured(ctx, customer, &item.ID, &yes)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = svc.SetFeatured(ctx, manager, nil, &yes)
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))

	_, err = svc.SetFeatured(ctx, manager, &item.ID, nil)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	missing := int64(999)
	_, err = svc.SetFeatured(ctx, manager, &missing, &yes)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
