package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/Jeffzycode/LittleLemonAPI/internal/apperr"
	"github.com/Jeffzycode/LittleLemonAPI/internal/auth"
	"github.com/Jeffzycode/LittleLemonAPI/internal/users"
)

const userSelect = `
	SELECT u.id, u.username, u.email, u.is_superuser,
	       COALESCE(array_agg(g.group_name) FILTER (WHERE g.group_name IS NOT NULL), '{}')
	FROM users u
	LEFT JOIN user_groups g ON g.user_id = u.id`

func (s *Store) getUser(ctx context.Context, cond string, arg any) (users.User, error) {
	var (
		u     users.User
		names []string
	)
	err := s.DB.QueryRow(ctx, userSelect+` WHERE `+cond+` GROUP BY u.id`, arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.Superuser, &names)
	if err != nil {
		return users.User{}, notFound(err, "user")
	}
	for _, n := range names {
		if g, err := auth.ParseGroup(n); err == nil {
			u.Groups = u.Groups.Add(g)
		}
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (users.User, error) {
	return s.getUser(ctx, "u.id=$1", id)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (users.User, error) {
	return s.getUser(ctx, "u.username=$1", username)
}

// Identity implements auth.Directory. Group membership is read on every
// call, so changes apply from the next request.
func (s *Store) Identity(ctx context.Context, userID int64) (auth.Identity, error) {
	u, err := s.GetUser(ctx, userID)
	if apperr.Is(err, apperr.KindNotFound) {
		return auth.Identity{}, auth.ErrUnknownUser
	}
	if err != nil {
		return auth.Identity{}, err
	}
	return u.Identity(), nil
}

func (s *Store) IdentityByUsername(ctx context.Context, username string) (auth.Identity, error) {
	u, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		return auth.Identity{}, err
	}
	return u.Identity(), nil
}

func (s *Store) CreateUser(ctx context.Context, in users.NewUser) (users.User, error) {
	var id int64
	err := s.inTx(ctx, func(q pgx.Tx) error {
		err := q.QueryRow(ctx, `
			INSERT INTO users(username, email, is_superuser) VALUES ($1, $2, $3) RETURNING id`,
			in.Username, in.Email, in.Superuser,
		).Scan(&id)
		if pgCode(err) == codeUniqueViolation {
			return users.DuplicateUsername()
		}
		if err != nil {
			return err
		}
		for _, name := range in.Groups.Names() {
			if _, err := q.Exec(ctx, `INSERT INTO user_groups(user_id, group_name) VALUES ($1, $2)`, id, name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return users.User{}, err
	}
	return s.GetUser(ctx, id)
}

func (s *Store) SetGroup(ctx context.Context, userID int64, g auth.Group, member bool) (users.User, error) {
	var err error
	if member {
		_, err = s.DB.Exec(ctx, `
			INSERT INTO user_groups(user_id, group_name) VALUES ($1, $2)
			ON CONFLICT (user_id, group_name) DO NOTHING`, userID, g.String())
	} else {
		_, err = s.DB.Exec(ctx, `DELETE FROM user_groups WHERE user_id=$1 AND group_name=$2`, userID, g.String())
	}
	if pgCode(err) == codeForeignKeyViolation {
		return users.User{}, apperr.NotFound("user")
	}
	if err != nil {
		return users.User{}, err
	}
	return s.GetUser(ctx, userID)
}
