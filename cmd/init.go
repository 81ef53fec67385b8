package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"syscall"

	"github.com/bucu0368/Webhook-Create/webhookcreate"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gorm.io/gorm"
)

// passwordReader is a function type for reading passwords. It's really only
// here to make testing easier.
type passwordReader func() ([]byte, error)

var customPasswordReader passwordReader

var resetAdmin bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the database and set admin credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if cfg.DatabaseType == "" {
			return errors.New("database type not set (must be one of: sqlite, postgres)")
		}
		if cfg.Database == "" {
			return errors.New(
				"database not set (must be a valid database connection " +
					"string or sqlite file path)",
			)
		}
		db, err := webhookcreate.CreateDB(ctx, cfg.DatabaseType, cfg.Database)
		if err != nil {
			return fmt.Errorf("error creating database: %w", err)
		}
		if sqlDB, e := db.DB(); e == nil {
			defer sqlDB.Close()
		}

		out := cmd.OutOrStdout()
		_, err = webhookcreate.GetAdminCredentials(ctx, db)
		switch {
		case err == nil && !resetAdmin:
			fmt.Fprintln(out, "Admin credentials are already set.")
		case err == nil || errors.Is(err, gorm.ErrRecordNotFound):
			if err != nil {
				fmt.Fprintln(out, "Admin credentials are not set. Let's set them up.")
			}
			username, password, promptErr := promptCredentials(cmd)
			if promptErr != nil {
				return promptErr
			}
			if err = webhookcreate.SetAdminCredentials(ctx, db, username, password); err != nil {
				return fmt.Errorf("error setting admin credentials: %w", err)
			}
			fmt.Fprintln(out, "Admin credentials set successfully.")
		default:
			return fmt.Errorf("error retrieving admin credentials: %w", err)
		}

		fmt.Fprintln(
			out,
			"Initialization complete. You can now start the bot with the 'run' subcommand.",
		)
		return nil
	},
}

// promptCredentials reads the admin username from stdin, then the
// password (twice, without echo) until both entries match.
func promptCredentials(cmd *cobra.Command) (string, string, error) {
	out := cmd.OutOrStdout()
	reader := bufio.NewReader(cmd.InOrStdin())

	fmt.Fprint(out, "Enter admin username: ")
	username, _ := reader.ReadString('\n')
	username = strings.TrimSpace(username)
	if username == "" {
		return "", "", errors.New("admin username is required")
	}

	readPassword := customPasswordReader
	if readPassword == nil {
		readPassword = func() ([]byte, error) {
			return term.ReadPassword(int(syscall.Stdin))
		}
	}
	for {
		fmt.Fprint(out, "Enter admin password: ")
		passwordBytes, err := readPassword()
		if err != nil {
			return "", "", fmt.Errorf("error reading password: %w", err)
		}
		fmt.Fprintln(out)

		fmt.Fprint(out, "Confirm admin password: ")
		confirmBytes, err := readPassword()
		if err != nil {
			return "", "", fmt.Errorf("error reading password: %w", err)
		}
		fmt.Fprintln(out)

		password := string(passwordBytes)
		switch {
		case password == "":
			fmt.Fprintln(out, "Password can't be empty. Please try again.")
		case password != string(confirmBytes):
			fmt.Fprintln(out, "Passwords do not match. Please try again.")
		default:
			return username, password, nil
		}
	}
}

//nolint:gochecknoinits
func init() {
	initCmd.Flags().BoolVar(
		&resetAdmin,
		"reset-admin",
		false,
		"Replace the admin credentials, if already set",
	)
	rootCmd.AddCommand(initCmd)
}
