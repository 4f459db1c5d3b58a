package cart

import (
	"context"
	"fmt"

	"github.com/Jeffzycode/LittleLemonAPI/internal/apperr"
	"github.com/Jeffzycode/LittleLemonAPI/internal/auth"
	"github.com/Jeffzycode/LittleLemonAPI/internal/menu"
	"github.com/Jeffzycode/LittleLemonAPI/internal/page"
	"github.com/Jeffzycode/LittleLemonAPI/internal/policy"
	"github.com/Jeffzycode/LittleLemonAPI/internal/validate"
)

type Store interface {
	// ListLines returns lines owned by userID, or every line when userID is 0.
	ListLines(ctx context.Context, userID int64, p page.Request) ([]Line, int, error)
	GetLine(ctx context.Context, id int64) (Line, error)
	AddLine(ctx context.Context, in NewLine) (Line, error)
	SetQuantity(ctx context.Context, id int64, quantity int) (Line, error)
	DeleteLine(ctx context.Context, id int64) error
}

type MenuLookup interface {
	GetMenuItem(ctx context.Context, id int64) (menu.MenuItem, error)
}

type Service struct {
	Store Store
	Menu  MenuLookup
}

func (s *Service) List(ctx context.Context, id auth.Identity, p page.Request) ([]Line, int, error) {
	switch policy.CartScope(id) {
	case policy.ScopeAll:
		return s.Store.ListLines(ctx, 0, p)
	case policy.ScopeOwned:
		return s.Store.ListLines(ctx, id.UserID, p)
	default:
		return nil, 0, apperr.Forbidden()
	}
}

// Add creates a new line for the caller. Repeated adds of the same item
// create separate lines.
func (s *Service) Add(ctx context.Context, id auth.Identity, in AddRequest) (Line, error) {
	if !policy.Allow(id, policy.Request{Resource: policy.Cart, Action: policy.Create}) {
		return Line{}, apperr.Forbidden()
	}
	if err := validate.Struct(in, nil); err != nil {
		return Line{}, err
	}
	item, err := s.Menu.GetMenuItem(ctx, in.MenuItemID)
	if err != nil {
		return Line{}, err
	}
	return s.Store.AddLine(ctx, NewLine{
		UserID:     id.UserID,
		MenuItemID: item.ID,
		Quantity:   in.Quantity,
		UnitPrice:  item.Price,
	})
}

func (s *Service) UpdateQuantity(ctx context.Context, id auth.Identity, lineID *int64, quantity *int) (Line, error) {
	line, err := s.ownedLine(ctx, id, lineID, policy.Update)
	if err != nil {
		return Line{}, err
	}
	if quantity == nil || *quantity < 1 {
		return Line{}, apperr.Validation(map[string]string{"new_quantity": "Ensure this value is at least 1."})
	}
	if *quantity > MaxQuantity {
		return Line{}, apperr.Validation(map[string]string{"new_quantity": fmt.Sprintf("Ensure this value is less than or equal to %d.", MaxQuantity)})
	}
	return s.Store.SetQuantity(ctx, line.ID, *quantity)
}

func (s *Service) Remove(ctx context.Context, id auth.Identity, lineID *int64) error {
	line, err := s.ownedLine(ctx, id, lineID, policy.Delete)
	if err != nil {
		return err
	}
	return s.Store.DeleteLine(ctx, line.ID)
}

func (s *Service) ownedLine(ctx context.Context, id auth.Identity, lineID *int64, action policy.Action) (Line, error) {
	if !id.Authenticated() {
		return Line{}, apperr.Forbidden()
	}
	if lineID == nil {
		return Line{}, apperr.BadRequest("Please provide a valid cart id")
	}
	line, err := s.Store.GetLine(ctx, *lineID)
	if err != nil {
		return Line{}, err
	}
	if !policy.Allow(id, policy.Request{Resource: policy.Cart, Action: action, Owner: line.UserID}) {
		return Line{}, apperr.Forbidden()
	}
	return line, nil
}
