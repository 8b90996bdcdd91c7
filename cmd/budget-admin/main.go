package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"budget/internal/cli"
	"budget/internal/config"
	"budget/internal/core"
	applog "budget/internal/log"
	"budget/internal/services"
	"budget/internal/storage"
)

const usage = `usage: budget-admin <command> [flags]

commands:
  migrate                                 bring the database schema up to date
  create-user -username U -password P     create an account
  passwd -user-id N -password P           reset an account password
  users                                   list accounts
`

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentAdmin)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.Load()
	if err := run(context.Background(), cfg.SQLiteDBPath, os.Args[1], os.Args[2:], os.Stdout); err != nil {
		logger.Error("Command failed", applog.FieldOperation, os.Args[1], applog.FieldError, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, dbPath, command string, args []string, out io.Writer) error {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.SetOutput(out)
	db := fs.String("db", dbPath, "SQLite database path")
	username := fs.String("username", "", "account username")
	password := fs.String("password", "", "account password")
	userID := fs.Int64("user-id", 0, "account id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch command {
	case "migrate", "create-user", "passwd", "users":
	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}

	repo, err := storage.NewSQLiteRepository(*db)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer repo.Close()
	accounts := services.NewAccountService(repo)

	switch command {
	case "migrate":
		n, err := repo.CountUsers(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "schema up to date: %s (%d users)\n", *db, n)

	case "create-user":
		if err := core.ValidateNewAccount(*username, *password, *password); err != nil {
			return err
		}
		created, err := accounts.CreateUser(ctx, *username, *password)
		if err != nil {
			return err
		}
		if !created {
			return fmt.Errorf("username %q already taken", *username)
		}
		fmt.Fprintf(out, "created user %s\n", *username)

	case "passwd":
		if *userID <= 0 {
			return fmt.Errorf("-user-id is required")
		}
		if err := core.ValidatePassword(*password, *password); err != nil {
			return err
		}
		user, found, err := accounts.LookupUser(ctx, *userID)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("no user with id %d", *userID)
		}
		if err := accounts.ChangePassword(ctx, *userID, *password); err != nil {
			return err
		}
		fmt.Fprintf(out, "password updated for %s\n", user.Username)

	case "users":
		users, err := accounts.ListUsers(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tUSERNAME")
		for _, u := range users {
			fmt.Fprintf(tw, "%d\t%s\n", u.ID, u.Username)
		}
		return tw.Flush()
	}
	return nil
}
