package auth

import (
	"context"
	"errors"
	"sort"
	"strings"
)

type Group uint8

const (
	GroupManager Group = iota + 1
	GroupDeliveryCrew
)

func (g Group) String() string {
	switch g {
	case GroupManager:
		return "Manager"
	case GroupDeliveryCrew:
		return "Delivery Crew"
	default:
		return ""
	}
}

var ErrUnknownGroup = errors.New("unknown group")

// ParseGroup accepts the display name of a group, case-insensitively.
func ParseGroup(name string) (Group, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "manager":
		return GroupManager, nil
	case "delivery crew", "delivery_crew", "delivery-crew":
		return GroupDeliveryCrew, nil
	}
	return 0, ErrUnknownGroup
}

// GroupSet is a small bitset of groups.
type GroupSet uint8

func NewGroupSet(groups ...Group) GroupSet {
	var s GroupSet
	for _, g := range groups {
		s = s.Add(g)
	}
	return s
}

func (s GroupSet) Has(g Group) bool        { return g != 0 && s&(1<<g) != 0 }
func (s GroupSet) Add(g Group) GroupSet    { return s | 1<<g }
func (s GroupSet) Remove(g Group) GroupSet { return s &^ (1 << g) }

func (s GroupSet) Names() []string {
	var out []string
	for _, g := range []Group{GroupManager, GroupDeliveryCrew} {
		if s.Has(g) {
			out = append(out, g.String())
		}
	}
	sort.Strings(out)
	return out
}

// Identity is the caller of a single request. The zero value is anonymous.
type Identity struct {
	UserID    int64
	Username  string
	Superuser bool
	Groups    GroupSet
}

func (id Identity) Authenticated() bool { return id.UserID != 0 }

func (id Identity) InGroup(g Group) bool { return id.Authenticated() && id.Groups.Has(g) }

func (id Identity) IsManager() bool { return id.InGroup(GroupManager) }

func (id Identity) IsDeliveryCrew() bool { return id.InGroup(GroupDeliveryCrew) }

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity attached by Middleware, or anonymous.
func FromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(ctxKey{}).(Identity)
	return id
}
