package menu

import (
	"github.com/shopspring/decimal"

	"github.com/Jeffzycode/LittleLemonAPI/internal/page"
)

type Category struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

type MenuItem struct {
	ID       int64           `json:"id"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	Featured bool            `json:"featured"`
	Category Category        `json:"category"`
}

// NewMenuItem is the create payload; the category is referenced by id.
type NewMenuItem struct {
	Title      string          `json:"title" validate:"required,max=255"`
	Price      decimal.Decimal `json:"price"`
	Featured   bool            `json:"featured"`
	CategoryID int64           `json:"category_id" validate:"required,gt=0"`
}

type NewCategory struct {
	Title string `json:"title" validate:"required,max=255"`
}

// MenuFilter selects menu items; nil pointers and empty strings do not filter.
type MenuFilter struct {
	Category string
	ToPrice  *decimal.Decimal
	Featured *bool
	Ordering []page.OrderField
}

type CategoryFilter struct {
	Title string
}

// MenuOrderFields are the names accepted by the `ordering` parameter.
var MenuOrderFields = []string{"id", "title", "price", "featured", "category"}
