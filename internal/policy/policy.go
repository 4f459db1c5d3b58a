// Package policy decides who may do what. Every function is pure and total:
// an anonymous identity is simply denied wherever authentication is needed.
package policy

import "github.com/Jeffzycode/LittleLemonAPI/internal/auth"

type Resource int

const (
	MenuItem Resource = iota + 1
	Category
	Cart
	Order
	OrderItem
	Assignment
)

type Action int

const (
	Read Action = iota + 1
	Create
	Update
	Delete
	UpdateFeatured
	UpdateStatus
	UpdateDeliveryCrew
)

// Request describes one access check. Owner is the user owning the target
// record, when the rule depends on ownership.
type Request struct {
	Resource Resource
	Action   Action
	Owner    int64
}

func Allow(id auth.Identity, req Request) bool {
	switch req.Resource {
	case MenuItem, Category:
		switch req.Action {
		case Read:
			return true
		case Create:
			return isAdmin(id)
		case UpdateFeatured:
			return req.Resource == MenuItem && (isAdmin(id) || id.IsManager())
		}
	case Cart:
		switch req.Action {
		case Read, Create:
			return id.Authenticated()
		case Update, Delete:
			return id.Authenticated() && (id.Superuser || req.Owner == id.UserID)
		}
	case Order:
		switch req.Action {
		case Read:
			return OrderReadScope(id) != ScopeNone
		case Create:
			return id.Authenticated()
		case UpdateStatus:
			return isAdmin(id) || id.IsManager() || id.IsDeliveryCrew()
		case UpdateDeliveryCrew:
			return isAdmin(id) || id.IsManager()
		}
	case OrderItem:
		return req.Action == Read && id.Authenticated()
	case Assignment:
		return req.Action == Update && (isAdmin(id) || id.IsManager())
	}
	return false
}

type Scope int

const (
	ScopeNone Scope = iota
	// ScopeAssigned limits orders to those delivered by the caller.
	ScopeAssigned
	// ScopeOwned limits records to those owned by the caller.
	ScopeOwned
	ScopeAll
)

// OrderReadScope: managers and superusers see every order, delivery crew
// only the orders assigned to them, everybody else nothing.
func OrderReadScope(id auth.Identity) Scope {
	switch {
	case isAdmin(id) || id.IsManager():
		return ScopeAll
	case id.IsDeliveryCrew():
		return ScopeAssigned
	default:
		return ScopeNone
	}
}

func OrderItemScope(id auth.Identity) Scope {
	switch {
	case isAdmin(id):
		return ScopeAll
	case id.Authenticated():
		return ScopeOwned
	default:
		return ScopeNone
	}
}

// CartScope mirrors OrderItemScope: superusers read every cart line.
func CartScope(id auth.Identity) Scope {
	return OrderItemScope(id)
}

type Decision int

const (
	Allowed Decision = iota
	Denied
	// TargetNotCrew means the caller may assign but the target may not deliver.
	TargetNotCrew
)

func AssignDeliveryCrew(caller, target auth.Identity) Decision {
	if !Allow(caller, Request{Resource: Order, Action: UpdateDeliveryCrew}) {
		return Denied
	}
	if !target.IsDeliveryCrew() {
		return TargetNotCrew
	}
	return Allowed
}

func isAdmin(id auth.Identity) bool {
	return id.Authenticated() && id.Superuser
}
