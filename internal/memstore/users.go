package memstore

import (
	"context"

	"github.com/Jeffzycode/LittleLemonAPI/internal/apperr"
	"github.com/Jeffzycode/LittleLemonAPI/internal/auth"
	"github.com/Jeffzycode/LittleLemonAPI/internal/users"
)

func (s *Store) GetUser(_ context.Context, id int64) (users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.st.users[id]
	if !ok {
		return users.User{}, apperr.NotFound("user")
	}
	return u, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.st.users {
		if u.Username == username {
			return u, nil
		}
	}
	return users.User{}, apperr.NotFound("user")
}

func (s *Store) CreateUser(_ context.Context, in users.NewUser) (users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.st.users {
		if u.Username == in.Username {
			return users.User{}, users.DuplicateUsername()
		}
	}
	u := users.User{ID: s.st.next(), Username: in.Username, Email: in.Email, Superuser: in.Superuser, Groups: in.Groups}
	s.st.users[u.ID] = u
	return u, nil
}

func (s *Store) SetGroup(_ context.Context, userID int64, g auth.Group, member bool) (users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.st.users[userID]
	if !ok {
		return users.User{}, apperr.NotFound("user")
	}
	if member {
		u.Groups = u.Groups.Add(g)
	} else {
		u.Groups = u.Groups.Remove(g)
	}
	s.st.users[userID] = u
	return u, nil
}
