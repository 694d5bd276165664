// Package admin implements the operator command line: schema migrations and
// account maintenance against the server's database.
package admin

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/healthtracker/internal/server/services"
	"github.com/spf13/cobra"
)

type cli struct {
	open   Opener
	reader *bufio.Reader
	out    io.Writer

	dsn string
	yes bool
}

// NewRootCmd builds the healthtracker-admin command tree.
func NewRootCmd(open Opener, in io.Reader, out io.Writer) *cobra.Command {
	a := &cli{open: open, reader: bufio.NewReader(in), out: out}

	root := &cobra.Command{
		Use:           "healthtracker-admin",
		Short:         "Maintenance tasks for the health tracker server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(out)
	root.SetIn(in)

	root.PersistentFlags().StringVar(&a.dsn, "dsn", "", "PostgreSQL DSN (overrides configuration)")
	root.PersistentFlags().BoolVarP(&a.yes, "yes", "y", false, "do not ask for confirmation")
	// Read by the config loader straight from os.Args; declared so cobra accepts it.
	root.PersistentFlags().StringP("config", "c", "", "path to a JSON or YAML config file")

	root.AddCommand(a.migrateCmd(), a.usersCmd())
	return root
}

func (a *cli) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or revert schema migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDeps(cmd, func(d *Deps) error {
				if err := d.Migrator.Up(cmd.Context()); err != nil {
					return fmt.Errorf("migrate up: %w", err)
				}
				fmt.Fprintln(a.out, "Migrations applied")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Revert the most recent migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if ok, err := a.confirm("Revert the most recent migration?"); !ok {
				return err
			}
			return a.withDeps(cmd, func(d *Deps) error {
				if err := d.Migrator.Down(cmd.Context()); err != nil {
					return fmt.Errorf("migrate down: %w", err)
				}
				fmt.Fprintln(a.out, "Last migration reverted")
				return nil
			})
		},
	})

	return cmd
}

func (a *cli) usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Account maintenance",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <phone>",
		Short: "Permanently delete an account and everything it owns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if ok, err := a.confirm(fmt.Sprintf("Permanently delete the account of %s?", args[0])); !ok {
				return err
			}
			return a.withDeps(cmd, func(d *Deps) error {
				err := d.Maintenance.DeleteUserByPhone(cmd.Context(), args[0])
				if errors.Is(err, services.ErrUserNotFound) {
					return fmt.Errorf("no account for %s", args[0])
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, "Account deleted")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Permanently delete every soft-deleted account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if ok, err := a.confirm("Permanently delete all soft-deleted accounts?"); !ok {
				return err
			}
			return a.withDeps(cmd, func(d *Deps) error {
				n, err := d.Maintenance.PurgeDeleted(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Purged %d account(s)\n", n)
				return nil
			})
		},
	})

	return cmd
}

// confirm returns (false, nil) when the operator declines.
func (a *cli) confirm(question string) (bool, error) {
	if a.yes {
		return true, nil
	}
	ok, err := confirm(a.reader, a.out, question)
	if err != nil {
		return false, err
	}
	if !ok {
		fmt.Fprintln(a.out, "Aborted")
	}
	return ok, nil
}

func (a *cli) withDeps(cmd *cobra.Command, fn func(d *Deps) error) error {
	d, err := a.open(cmd.Context(), a.dsn)
	if err != nil {
		return err
	}
	defer d.Close()

	return fn(d)
}
