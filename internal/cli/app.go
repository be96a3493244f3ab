// Package cli implements the authctl subcommands. Interactive commands
// drive the step machines in internal/flow from a prompt loop.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"matdepot/authctl/internal/api"
	"matdepot/authctl/internal/auth"
	"matdepot/authctl/internal/config"
	"matdepot/authctl/internal/session"
	"matdepot/authctl/internal/store"
)

type App struct {
	cfg      *config.AppConfig
	log      zerolog.Logger
	client   *api.Client
	manager  *auth.Manager
	sessions *session.Manager

	in  *bufio.Reader
	out io.Writer
}

func New(ctx context.Context, cfg *config.AppConfig, log zerolog.Logger) (*App, error) {
	creds, err := newCredentialStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	tokens := auth.NewTokenSource()
	client := api.NewClient(cfg.API, tokens.Token, log)
	manager := auth.NewManager(client, creds, tokens, log)
	sessions := session.NewManager(client, tokens.SessionID, log)

	return &App{
		cfg:      cfg,
		log:      log,
		client:   client,
		manager:  manager,
		sessions: sessions,
		in:       bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}, nil
}

func newCredentialStore(ctx context.Context, cfg *config.AppConfig) (store.CredentialStore, error) {
	switch cfg.Store.Backend {
	case "redis":
		return store.NewRedisStore(ctx, cfg.Redis)
	case "file", "":
		return store.NewFileStore(cfg.Store.Path, cfg.Store.Secret), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage()
		return nil
	}

	// Startup session restore: a stale or rejected token silently
	// resolves to anonymous.
	a.manager.Initialize(ctx)

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return a.cmdLogin(ctx, rest)
	case "register":
		return a.cmdRegister(ctx)
	case "logout":
		return a.cmdLogout(ctx)
	case "whoami":
		return a.cmdWhoami()
	case "sessions":
		return a.cmdSessions(ctx)
	case "revoke":
		return a.cmdRevoke(ctx, rest)
	case "revoke-others":
		return a.cmdRevokeOthers(ctx)
	case "reset-password":
		return a.cmdResetPassword(ctx)
	case "change-email":
		return a.cmdChangeEmail(ctx)
	case "2fa":
		return a.cmdToggle2FA(ctx)
	case "token":
		return a.cmdToken()
	case "serve":
		return a.cmdServe(ctx)
	default:
		a.usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *App) usage() {
	fmt.Fprintln(a.out, `usage: authctl <command>

commands:
  login [--otp]    sign in (password, or passwordless with --otp)
  register         create an account
  logout           sign out and clear stored credentials
  whoami           show the signed-in user
  sessions         list active sessions
  revoke <id>      terminate one non-current session
  revoke-others    terminate every session except this one
  reset-password   recover a forgotten password via emailed code
  change-email     change the account email via emailed code
  2fa              toggle two-factor authentication
  token            show details of the stored token
  serve            run the local session-management API`)
}

func (a *App) prompt(label string) (string, error) {
	fmt.Fprintf(a.out, "%s: ", label)
	line, err := a.in.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (a *App) requireAuth() error {
	if a.manager.State() != auth.StateAuthenticated {
		return fmt.Errorf("not logged in")
	}
	return nil
}
