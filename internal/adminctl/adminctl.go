// Package adminctl implements the rbacctl maintenance commands.
package adminctl

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/punit-mobi/RBAC-project/internal/flagx"
	"github.com/punit-mobi/RBAC-project/internal/server/services"
)

const usage = `usage: rbacctl <command> [flags]

commands:
  migrate            apply database migrations
  seed               install default roles and master data
  create-admin       create an admin user (-email, -first-name; password is prompted)
  purge-tokens       delete expired password reset tokens
  sync-master-data   bump the version of active master data
`

const minPasswordLength = 8

// ErrUsage is returned for a missing or unknown command.
var ErrUsage = errors.New("invalid usage")

// Backend is the server functionality the commands drive.
type Backend interface {
	Migrate(ctx context.Context) error
	Seed(ctx context.Context) (*services.SeedReport, error)
	CreateAdmin(ctx context.Context, email, firstName, password string) (*services.RegisterResult, error)
	PurgeResetTokens(ctx context.Context) (int64, error)
	SyncMasterData(ctx context.Context) (*services.MasterDataSnapshot, error)
}

type CLI struct {
	backend Backend
	in      *bufio.Reader
	out     io.Writer
}

func New(b Backend, in io.Reader, out io.Writer) *CLI {
	return &CLI{backend: b, in: bufio.NewReader(in), out: out}
}

// Usage prints the command summary.
func Usage(w io.Writer) {
	fmt.Fprint(w, usage)
}

// Run executes the command named by args[0].
func (c *CLI) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		Usage(c.out)
		return ErrUsage
	}

	switch args[0] {
	case "migrate":
		if err := c.backend.Migrate(ctx); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "migrations applied")
	case "seed":
		return c.seed(ctx)
	case "create-admin":
		return c.createAdmin(ctx, args[1:])
	case "purge-tokens":
		n, err := c.backend.PurgeResetTokens(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "purged %d expired reset token(s)\n", n)
	case "sync-master-data":
		snap, err := c.backend.SyncMasterData(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "synchronized %d master data record(s)\n", snap.TotalRecords)
	case "help", "-h", "--help":
		Usage(c.out)
	default:
		Usage(c.out)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
	return nil
}

func (c *CLI) seed(ctx context.Context) error {
	if err := c.backend.Migrate(ctx); err != nil {
		return err
	}
	report, err := c.backend.Seed(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "roles created: %d, master data created: %d, users assigned a default role: %d\n",
		report.RolesCreated, report.MasterDataCreated, report.UsersAssigned)
	return nil
}

func (c *CLI) createAdmin(ctx context.Context, args []string) error {
	var email, firstName string
	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	fs.SetOutput(c.out)
	fs.StringVar(&email, "email", "", "admin email")
	fs.StringVar(&firstName, "first-name", "Admin", "admin first name")
	if err := fs.Parse(flagx.FilterArgs(args, []string{"-email", "-first-name", "--email", "--first-name"})); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	var err error
	if email == "" {
		if email, err = getSimpleText(c.in, "Admin email", c.out); err != nil {
			return err
		}
	}
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrUsage)
	}

	password, err := getPassword(c.out, "Password")
	if err != nil {
		return err
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	confirm, err := getPassword(c.out, "Repeat password")
	if err != nil {
		return err
	}
	if confirm != password {
		return errors.New("passwords do not match")
	}

	// roles must exist before an admin can be assigned one
	if err := c.backend.Migrate(ctx); err != nil {
		return err
	}
	if _, err := c.backend.Seed(ctx); err != nil {
		return err
	}

	res, err := c.backend.CreateAdmin(ctx, email, firstName, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "admin %s created with role %s\n", res.User.Email, res.RoleName)
	return nil
}
