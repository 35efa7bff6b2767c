// Command admin manages PieTracker users from the console, directly on
// the data directory. The server should not be writing the same files
// while it runs.
//
// Usage:
//
//	admin list-users
//	admin create-admin <email> <password>
//	admin activate-user <email>
//	admin deactivate-user <email>
//	admin delete-user <email>
//	admin stats
//
// The data directory defaults to ./data and can be set with DATA_DIR.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/LSkevi/PieTracker/internal/auth"
	"github.com/LSkevi/PieTracker/internal/email"
	"github.com/LSkevi/PieTracker/internal/errorz"
	"github.com/LSkevi/PieTracker/internal/storage/jsonfile"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func usage() {
	fmt.Fprintln(os.Stderr, strings.TrimSpace(`
Usage:
  admin list-users
  admin create-admin <email> <password>
  admin activate-user <email>
  admin deactivate-user <email>
  admin delete-user <email>
  admin stats
`))
}

func run(args []string) int {
	if len(args) < 1 {
		usage()
		return 2
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	cli, err := newCLI(dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	ctx := context.Background()

	switch args[0] {
	case "list-users":
		err = cli.listUsers(ctx)
	case "create-admin":
		if len(args) != 3 {
			usage()
			return 2
		}
		err = cli.createAdmin(ctx, args[1], args[2])
	case "activate-user":
		if len(args) != 2 {
			usage()
			return 2
		}
		err = cli.setActive(ctx, args[1], true)
	case "deactivate-user":
		if len(args) != 2 {
			usage()
			return 2
		}
		err = cli.setActive(ctx, args[1], false)
	case "delete-user":
		if len(args) != 2 {
			usage()
			return 2
		}
		err = cli.deleteUser(ctx, args[1])
	case "stats":
		err = cli.stats(ctx)
	default:
		usage()
		return 2
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	return 0
}

type cli struct {
	users      *jsonfile.Users
	expenses   *jsonfile.Expenses
	categories *jsonfile.Categories
}

func newCLI(dataDir string) (*cli, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	users, err := jsonfile.OpenUsers(dataDir)
	if err != nil {
		return nil, err
	}

	expenses, err := jsonfile.OpenExpenses(dataDir)
	if err != nil {
		return nil, err
	}

	categories, err := jsonfile.OpenCategories(dataDir, logger)
	if err != nil {
		return nil, err
	}

	return &cli{
		users:      users,
		expenses:   expenses,
		categories: categories,
	}, nil
}

func (c *cli) listUsers(ctx context.Context) error {
	users, err := c.users.List(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Total users: %d\n\n", len(users))
	fmt.Printf("%-36s %-30s %-12s %-10s %s\n", "ID", "Email", "Role", "Status", "Last login")

	for _, u := range users {
		status := "active"
		if !u.IsActive {
			status = "inactive"
		}
		lastLogin := "never"
		if u.LastLogin != nil {
			lastLogin = u.LastLogin.Format(time.DateOnly)
		}
		fmt.Printf("%-36s %-30s %-12s %-10s %s\n", u.ID, u.Email, u.Role, status, lastLogin)
	}

	return nil
}

func (c *cli) createAdmin(ctx context.Context, rawEmail, rawPassword string) error {
	addr, err := email.ParseAddress(rawEmail)
	if err != nil {
		return err
	}

	pwd, err := auth.ParsePassword(rawPassword)
	if err != nil {
		return err
	}

	_, err = c.users.FindByEmail(ctx, addr)
	if err == nil {
		return fmt.Errorf("user %s already exists", addr)
	}
	if !errors.Is(err, errorz.ErrNotFound) {
		return err
	}

	hash, err := pwd.Hash()
	if err != nil {
		return err
	}

	username, _, _ := strings.Cut(string(addr), "@")

	user := auth.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        addr,
		PasswordHash: hash,
		Role:         auth.RoleAdmin,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}

	if err := c.users.Upsert(ctx, user); err != nil {
		return err
	}

	fmt.Printf("admin user %s created\n", addr)
	return nil
}

func (c *cli) setActive(ctx context.Context, rawEmail string, active bool) error {
	addr, err := email.ParseAddress(rawEmail)
	if err != nil {
		return err
	}

	user, err := c.users.FindByEmail(ctx, addr)
	if err != nil {
		return fmt.Errorf("user %s: %w", addr, err)
	}

	user.IsActive = active
	if err := c.users.Upsert(ctx, user); err != nil {
		return err
	}

	state := "activated"
	if !active {
		state = "deactivated"
	}
	fmt.Printf("user %s %s\n", addr, state)
	return nil
}

func (c *cli) deleteUser(ctx context.Context, rawEmail string) error {
	addr, err := email.ParseAddress(rawEmail)
	if err != nil {
		return err
	}

	user, err := c.users.FindByEmail(ctx, addr)
	if err != nil {
		return fmt.Errorf("user %s: %w", addr, err)
	}

	if err := c.expenses.PurgeUser(ctx, user.ID); err != nil {
		return err
	}
	if err := c.categories.DeleteNamespace(ctx, user.ID); err != nil {
		return err
	}
	if err := c.users.Delete(ctx, user.ID); err != nil {
		return err
	}

	fmt.Printf("user %s and all data deleted\n", addr)
	return nil
}

func (c *cli) stats(ctx context.Context) error {
	users, err := c.users.List(ctx)
	if err != nil {
		return err
	}

	active, admins := 0, 0
	for _, u := range users {
		if u.IsActive {
			active++
		}
		if u.Role.IsAdmin() {
			admins++
		}
	}

	withData, err := c.expenses.UsersWithData(ctx)
	if err != nil {
		return err
	}

	fmt.Println("PieTracker statistics")
	fmt.Printf("Total users:    %d\n", len(users))
	fmt.Printf("Active users:   %d\n", active)
	fmt.Printf("Inactive users: %d\n", len(users)-active)
	fmt.Printf("Admin users:    %d\n", admins)
	fmt.Printf("Users with data: %d\n", withData)

	return nil
}
