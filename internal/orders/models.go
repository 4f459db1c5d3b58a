package orders

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Jeffzycode/LittleLemonAPI/internal/menu"
	"github.com/Jeffzycode/LittleLemonAPI/internal/page"
)

type Order struct {
	ID           int64           `json:"id"`
	UserID       int64           `json:"user"`
	DeliveryCrew *int64          `json:"delivery_crew"`
	Status       Status          `json:"status"`
	Total        decimal.Decimal `json:"total"`
	Price        decimal.Decimal `json:"price"`
	CreatedAt    time.Time       `json:"created_at"`
}

// OrderItem is frozen at placement time. MenuItem is only populated by
// listing queries.
type OrderItem struct {
	ID         int64
	OrderID    int64
	MenuItemID int64
	MenuItem   *menu.MenuItem
	Status     Status
	Total      decimal.Decimal
	Date       time.Time
}

func (oi OrderItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID         int64           `json:"id"`
		Order      int64           `json:"order"`
		MenuItemID int64           `json:"menuitem_id"`
		MenuItem   *menu.MenuItem  `json:"menuitem,omitempty"`
		Status     Status          `json:"status"`
		Total      decimal.Decimal `json:"total"`
		Date       string          `json:"date"`
	}{oi.ID, oi.OrderID, oi.MenuItemID, oi.MenuItem, oi.Status, oi.Total, oi.Date.Format(time.DateOnly)})
}

type NewOrder struct {
	UserID int64
	Total  decimal.Decimal
	Price  decimal.Decimal
}

type NewOrderItem struct {
	OrderID    int64
	MenuItemID int64
	Status     Status
	Total      decimal.Decimal
	Date       time.Time
}

// Patch carries the lifecycle fields to change; nil leaves a field as is.
type Patch struct {
	Status       *Status
	DeliveryCrew *int64
}

type OrderFilter struct {
	// DeliveryCrew, when non-zero, keeps orders assigned to that user.
	DeliveryCrew int64
}

type OrderItemFilter struct {
	// OwnerID, when non-zero, keeps items of orders owned by that user.
	OwnerID     int64
	IsDelivered *Status
	Ordering    []page.OrderField
}

var OrderItemOrderFields = []string{"id", "order", "menuitem", "status", "total", "date"}
