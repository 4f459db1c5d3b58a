package menu

import (
	"context"

	"github.com/Jeffzycode/LittleLemonAPI/internal/apperr"
	"github.com/Jeffzycode/LittleLemonAPI/internal/auth"
	"github.com/Jeffzycode/LittleLemonAPI/internal/page"
	"github.com/Jeffzycode/LittleLemonAPI/internal/policy"
	"github.com/Jeffzycode/LittleLemonAPI/internal/validate"
)

// Store is the catalog side of the relational store. Missing rows are
// reported as apperr NotFound errors.
type Store interface {
	ListMenuItems(ctx context.Context, f MenuFilter, p page.Request) ([]MenuItem, int, error)
	GetMenuItem(ctx context.Context, id int64) (MenuItem, error)
	CreateMenuItem(ctx context.Context, in NewMenuItem) (MenuItem, error)
	SetFeatured(ctx context.Context, id int64, featured bool) (MenuItem, error)
	ListCategories(ctx context.Context, f CategoryFilter, p page.Request) ([]Category, int, error)
	GetCategory(ctx context.Context, id int64) (Category, error)
	CreateCategory(ctx context.Context, in NewCategory) (Category, error)
}

type Service struct {
	Store Store
}

func (s *Service) ListMenuItems(ctx context.Context, id auth.Identity, f MenuFilter, p page.Request) ([]MenuItem, int, error) {
	if !policy.Allow(id, policy.Request{Resource: policy.MenuItem, Action: policy.Read}) {
		return nil, 0, apperr.Forbidden()
	}
	return s.Store.ListMenuItems(ctx, f, p)
}

func (s *Service) CreateMenuItem(ctx context.Context, id auth.Identity, in NewMenuItem) (MenuItem, error) {
	if !policy.Allow(id, policy.Request{Resource: policy.MenuItem, Action: policy.Create}) {
		return MenuItem{}, apperr.Forbidden()
	}
	extra := map[string]string{}
	if !in.Price.IsPositive() {
		extra["price"] = "Ensure this value is greater than 0."
	}
	if err := validate.Struct(in, extra); err != nil {
		return MenuItem{}, err
	}
	if _, err := s.Store.GetCategory(ctx, in.CategoryID); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return MenuItem{}, apperr.Validation(map[string]string{"category_id": "Category does not exist."})
		}
		return MenuItem{}, err
	}
	return s.Store.CreateMenuItem(ctx, in)
}

// SetFeatured toggles the featured flag of one item. Both arguments are
// required; nil means the caller did not send them.
func (s *Service) SetFeatured(ctx context.Context, id auth.Identity, itemID *int64, featured *bool) (MenuItem, error) {
	if !policy.Allow(id, policy.Request{Resource: policy.MenuItem, Action: policy.UpdateFeatured}) {
		return MenuItem{}, apperr.Forbidden()
	}
	if itemID == nil {
		return MenuItem{}, apperr.BadRequest("Please provide a valid menu item id")
	}
	if featured == nil {
		return MenuItem{}, apperr.Validation(map[string]string{"featured": "This field is required."})
	}
	return s.Store.SetFeatured(ctx, *itemID, *featured)
}

func (s *Service) ListCategories(ctx context.Context, id auth.Identity, f CategoryFilter, p page.Request) ([]Category, int, error) {
	if !policy.Allow(id, policy.Request{Resource: policy.Category, Action: policy.Read}) {
		return nil, 0, apperr.Forbidden()
	}
	return s.Store.ListCategories(ctx, f, p)
}

func (s *Service) CreateCategory(ctx context.Context, id auth.Identity, in NewCategory) (Category, error) {
	if !policy.Allow(id, policy.Request{Resource: policy.Category, Action: policy.Create}) {
		return Category{}, apperr.Forbidden()
	}
	if err := validate.Struct(in, nil); err != nil {
		return Category{}, err
	}
	return s.Store.CreateCategory(ctx, in)
}
