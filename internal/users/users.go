package users

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Jeffzycode/LittleLemonAPI/internal/apperr"
	"github.com/Jeffzycode/LittleLemonAPI/internal/auth"
	"github.com/Jeffzycode/LittleLemonAPI/internal/policy"
	"github.com/Jeffzycode/LittleLemonAPI/internal/validate"
)

type User struct {
	ID        int64
	Username  string
	Email     string
	Superuser bool
	Groups    auth.GroupSet
}

func (u User) Identity() auth.Identity {
	return auth.Identity{UserID: u.ID, Username: u.Username, Superuser: u.Superuser, Groups: u.Groups}
}

// Public is the shape exposed over the API.
type Public struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Groups   []string `json:"groups"`
}

func (u User) Public() Public {
	return Public{ID: u.ID, Username: u.Username, Email: u.Email, Groups: u.Groups.Names()}
}

type NewUser struct {
	Username  string `json:"username" validate:"required,max=150"`
	Email     string `json:"email" validate:"omitempty,email"`
	Superuser bool   `json:"is_superuser"`
	Groups    auth.GroupSet
}

type Store interface {
	GetUser(ctx context.Context, id int64) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
	CreateUser(ctx context.Context, in NewUser) (User, error)
	SetGroup(ctx context.Context, userID int64, g auth.Group, member bool) (User, error)
}

// AssignRequest toggles Delivery Crew membership. Any is_delivery_crew value
// other than an explicit false adds the user to the group.
type AssignRequest struct {
	Username       string `json:"username"`
	IsDeliveryCrew any    `json:"is_delivery_crew"`
}

func (r AssignRequest) member() bool {
	switch v := r.IsDeliveryCrew.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "false", "0":
			return false
		}
	case float64:
		return v != 0
	case json.Number:
		return v.String() != "0"
	}
	return true
}

type Service struct {
	Store Store
	Log   logrus.FieldLogger
}

// Identity implements auth.Directory.
func (s *Service) Identity(ctx context.Context, userID int64) (auth.Identity, error) {
	u, err := s.Store.GetUser(ctx, userID)
	if apperr.Is(err, apperr.KindNotFound) {
		return auth.Identity{}, auth.ErrUnknownUser
	}
	if err != nil {
		return auth.Identity{}, err
	}
	return u.Identity(), nil
}

func (s *Service) IdentityByUsername(ctx context.Context, username string) (auth.Identity, error) {
	u, err := s.Store.GetUserByUsername(ctx, username)
	if err != nil {
		return auth.Identity{}, err
	}
	return u.Identity(), nil
}

func (s *Service) Create(ctx context.Context, in NewUser) (User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := validate.Struct(in, nil); err != nil {
		return User{}, err
	}
	return s.Store.CreateUser(ctx, in)
}

func (s *Service) SetDeliveryCrew(ctx context.Context, id auth.Identity, req AssignRequest) (User, error) {
	if !policy.Allow(id, policy.Request{Resource: policy.Assignment, Action: policy.Update}) {
		return User{}, apperr.Forbidden()
	}
	if req.Username == "" {
		return User{}, apperr.BadRequest("Please provide a username")
	}
	u, err := s.Store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return User{}, err
	}
	member := req.member()
	u, err = s.Store.SetGroup(ctx, u.ID, auth.GroupDeliveryCrew, member)
	if err != nil {
		return User{}, err
	}
	if s.Log != nil {
		s.Log.WithFields(logrus.Fields{"user": u.Username, "delivery_crew": member, "by": id.UserID}).Info("group membership changed")
	}
	return u, nil
}

// DuplicateUsername is returned by stores when CreateUser hits an existing name.
func DuplicateUsername() error {
	return apperr.Validation(map[string]string{"username": "A user with that username already exists."})
}
