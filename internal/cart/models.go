package cart

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/Jeffzycode/LittleLemonAPI/internal/menu"
)

// Line is one pending selection. UnitPrice is frozen when the line is
// created and never follows later catalog price changes.
type Line struct {
	ID        int64
	UserID    int64
	MenuItem  menu.MenuItem
	Quantity  int
	UnitPrice decimal.Decimal
}

// Price is always derived, never stored independently of its factors.
func (l Line) Price() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (l Line) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID        int64           `json:"id"`
		User      int64           `json:"user"`
		MenuItem  menu.MenuItem   `json:"menuitem"`
		Quantity  int             `json:"quantity"`
		UnitPrice decimal.Decimal `json:"unit_price"`
		Price     decimal.Decimal `json:"price"`
	}{l.ID, l.UserID, l.MenuItem, l.Quantity, l.UnitPrice, l.Price()})
}

// NewLine is what the ledger persists; UnitPrice comes from the catalog.
type NewLine struct {
	UserID     int64
	MenuItemID int64
	Quantity   int
	UnitPrice  decimal.Decimal
}

// MaxQuantity is the largest quantity one line can hold.
const MaxQuantity = 32767

// AddRequest is the client payload for POST /cart. Any client-sent price is
// ignored by construction.
type AddRequest struct {
	MenuItemID int64 `json:"menuitem_id" validate:"required,gt=0"`
	Quantity   int   `json:"quantity" validate:"required,gte=1,lte=32767"`
}
