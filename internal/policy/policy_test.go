package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Jeffzycode/LittleLemonAPI/internal/auth"
)

var (
	anon     = auth.Identity{}
	customer = auth.Identity{UserID: 10, Username: "tilly"}
	admin    = auth.Identity{UserID: 1, Username: "admin", Superuser: true}
	manager  = auth.Identity{UserID: 2, Username: "adrian", Groups: auth.NewGroupSet(auth.GroupManager)}
	crew     = auth.Identity{UserID: 3, Username: "mario", Groups: auth.NewGroupSet(auth.GroupDeliveryCrew)}
)

func TestAllow(t *testing.T) {
	tests := []struct {
		name string
		id   auth.Identity
		req  Request
		want bool
	}{
		{"anonymous reads menu", anon, Request{Resource: MenuItem, Action: Read}, true},
		{"anonymous reads categories", anon, Request{Resource: Category, Action: Read}, true},
		{"admin creates menu item", admin, Request{Resource: MenuItem, Action: Create}, true},
		{"manager cannot create menu item", manager, Request{Resource: MenuItem, Action: Create}, false},
		{"customer cannot create category", customer, Request{Resource: Category, Action: Create}, false},
		{"manager features item", manager, Request{Resource: MenuItem, Action: UpdateFeatured}, true},
		{"crew cannot feature item", crew, Request{Resource: MenuItem, Action: UpdateFeatured}, false},
		{"category has no featured flag", admin, Request{Resource: Category, Action: UpdateFeatured}, false},
		{"anonymous cannot read cart", anon, Request{Resource: Cart, Action: Read}, false},
		{"customer adds to cart", customer, Request{Resource: Cart, Action: Create}, true},
		{"owner updates line", customer, Request{Resource: Cart, Action: Update, Owner: 10}, true},
		{"other user cannot delete line", crew, Request{Resource: Cart, Action: Delete, Owner: 10}, false},
		{"superuser deletes any line", admin, Request{Resource: Cart, Action: Delete, Owner: 10}, true},
		{"manager cannot update others line", manager, Request{Resource: Cart, Action: Update, Owner: 10}, false},
		{"customer cannot read orders", customer, Request{Resource: Order, Action: Read}, false},
		{"crew reads orders", crew, Request{Resource: Order, Action: Read}, true},
		{"customer places order", customer, Request{Resource: Order, Action: Create}, true},
		{"anonymous cannot place order", anon, Request{Resource: Order, Action: Create}, false},
		{"crew updates status", crew, Request{Resource: Order, Action: UpdateStatus}, true},
		{"customer cannot update status", customer, Request{Resource: Order, Action: UpdateStatus}, false},
		{"crew cannot assign crew", crew, Request{Resource: Order, Action: UpdateDeliveryCrew}, false},
		{"manager assigns crew", manager, Request{Resource: Order, Action: UpdateDeliveryCrew}, true},
		{"customer reads order items", customer, Request{Resource: OrderItem, Action: Read}, true},
		{"anonymous cannot read order items", anon, Request{Resource: OrderItem, Action: Read}, false},
		{"manager assigns groups", manager, Request{Resource: Assignment, Action: Update}, true},
		{"crew cannot assign groups", crew, Request{Resource: Assignment, Action: Update}, false},
		{"unauthenticated superuser flag is ignored", auth.Identity{Superuser: true}, Request{Resource: MenuItem, Action: Create}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allow(tt.id, tt.req))
		})
	}
}

func TestOrderReadScope(t *testing.T) {
	assert.Equal(t, ScopeAll, OrderReadScope(admin))
	assert.Equal(t, ScopeAll, OrderReadScope(manager))
	assert.Equal(t, ScopeAssigned, OrderReadScope(crew))
	assert.Equal(t, ScopeNone, OrderReadScope(customer))
	assert.Equal(t, ScopeNone, OrderReadScope(anon))
}

func TestOrderItemScope(t *testing.T) {
	assert.Equal(t, ScopeAll, OrderItemScope(admin))
	assert.Equal(t, ScopeOwned, OrderItemScope(manager))
	assert.Equal(t, ScopeOwned, OrderItemScope(customer))
	assert.Equal(t, ScopeNone, OrderItemScope(anon))
}

func TestAssignDeliveryCrew(t *testing.T) {
	assert.Equal(t, Allowed, AssignDeliveryCrew(manager, crew))
	assert.Equal(t, TargetNotCrew, AssignDeliveryCrew(admin, customer))
	assert.Equal(t, Denied, AssignDeliveryCrew(crew, crew))
	assert.Equal(t, Denied, AssignDeliveryCrew(customer, crew))
}
