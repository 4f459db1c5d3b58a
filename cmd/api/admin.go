package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Jeffzycode/LittleLemonAPI/internal/auth"
	"github.com/Jeffzycode/LittleLemonAPI/internal/config"
	"github.com/Jeffzycode/LittleLemonAPI/internal/postgres"
	"github.com/Jeffzycode/LittleLemonAPI/internal/users"
)

var (
	tokenTTL time.Duration

	userEmail  string
	userSuper  bool
	userGroups []string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending PostgreSQL migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		db, err := connectPostgres(ctx)
		if err != nil {
			return err
		}
		defer db.Close()
		applied, err := postgres.Migrate(ctx, db, log)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		}
		for _, name := range applied {
			fmt.Fprintln(cmd.OutOrStdout(), "applied", name)
		}
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token <username>",
	Short: "Mint a bearer token for an existing user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUsers(func(ctx context.Context, us *users.Service) error {
			id, err := us.IdentityByUsername(ctx, args[0])
			if err != nil {
				return err
			}
			ttl := tokenTTL
			if ttl <= 0 {
				ttl = cfg.JWTTTL
			}
			tok, err := auth.NewIssuer(cfg.JWTSecret).Mint(id.UserID, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		})
	},
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Create a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var groups auth.GroupSet
		for _, name := range userGroups {
			g, err := auth.ParseGroup(strings.TrimSpace(name))
			if err != nil {
				return fmt.Errorf("%w: %q", err, name)
			}
			groups = groups.Add(g)
		}
		return withUsers(func(ctx context.Context, us *users.Service) error {
			u, err := us.Create(ctx, users.NewUser{Username: args[0], Email: userEmail, Superuser: userSuper, Groups: groups})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %d %s %v\n", u.ID, u.Username, u.Groups.Names())
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd, tokenCmd, userCmd)
	userCmd.AddCommand(userAddCmd)

	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (default JWT_TTL)")

	userAddCmd.Flags().StringVar(&userEmail, "email", "", "email address")
	userAddCmd.Flags().BoolVar(&userSuper, "superuser", false, "grant superuser")
	userAddCmd.Flags().StringSliceVar(&userGroups, "group", nil, `group membership, "Manager" or "Delivery Crew" (repeatable)`)
}

// withUsers runs fn against the PostgreSQL user store. The memory driver has
// nothing to administer between processes.
func withUsers(fn func(ctx context.Context, us *users.Service) error) error {
	if cfg.StoreDriver != config.DriverPostgres {
		return fmt.Errorf("user commands need STORE_DRIVER=%s", config.DriverPostgres)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	db, err := connectPostgres(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(ctx, &users.Service{Store: &postgres.Store{DB: db}, Log: log})
}
