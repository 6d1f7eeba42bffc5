// Package cli is the terminal front end of BookHub. It talks to the library
// API directly and keeps the session in a local file between runs.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Astemirdum/bookhub/gateway/config"
	"github.com/Astemirdum/bookhub/gateway/internal/broker"
	"github.com/Astemirdum/bookhub/gateway/internal/errs"
	"github.com/Astemirdum/bookhub/gateway/internal/notify"
	"github.com/Astemirdum/bookhub/gateway/internal/reconciler"
	"github.com/Astemirdum/bookhub/gateway/internal/role"
	"github.com/Astemirdum/bookhub/gateway/internal/service/library"
	"github.com/Astemirdum/bookhub/gateway/internal/session"
	"github.com/Astemirdum/bookhub/gateway/internal/view"
	"github.com/Astemirdum/bookhub/pkg/logger"
	"github.com/Astemirdum/bookhub/pkg/validate"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// App holds what every command needs. It is filled in by the root command's
// PersistentPreRunE, so --help works without config or a session file.
type App struct {
	cfg       config.Config
	log       *zap.Logger
	sessions  *session.Manager
	api       *library.Service
	catalog   *view.Catalog
	events    *broker.Broker
	returns   *reconciler.Reconciler
	notifier  notify.Notifier
	term      *Terminal
	validator *validate.CustomValidator

	persister    session.Persister
	readPassword func() (string, error)
	now          func() time.Time

	apiURL      string
	sessionFile string
	logLevel    string
	timeout     time.Duration
	cancel      context.CancelFunc
}

type Option func(a *App)

// WithPersister replaces the session file, e.g. with a MemoryPersister.
func WithPersister(p session.Persister) Option {
	return func(a *App) {
		a.persister = p
	}
}

func WithPasswordReader(fn func() (string, error)) Option {
	return func(a *App) {
		a.readPassword = fn
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}

// reported is an error whose notification was already printed.
type reported struct {
	error
}

func (r reported) Unwrap() error { return r.error }

// NewRootCmd builds the command tree.
func NewRootCmd(opts ...Option) *cobra.Command {
	a := &App{
		readPassword: readPassword,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	rootCmd := &cobra.Command{
		Use:   "bookhub",
		Short: "BookHub library client",
		Long: `bookhub is a terminal client of the BookHub library API.

Librarians manage the catalog and the borrower roster, borrowers borrow
and return books. Log in first; the session is kept until logout or until
the API rejects it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.cancel != nil {
				a.cancel()
			}
			if a.events != nil {
				a.events.Close()
			}
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.apiURL, "api", "", "Library API base URL (or set LIBRARY_API_URL)")
	rootCmd.PersistentFlags().StringVar(&a.sessionFile, "session", "", "Session file (or set "+session.EnvSessionFile+")")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "error", "Log level written to stderr")
	rootCmd.PersistentFlags().DurationVar(&a.timeout, "timeout", 30*time.Second, "Operation timeout")

	rootCmd.AddCommand(a.loginCmd(), a.logoutCmd(), a.whoamiCmd())
	rootCmd.AddCommand(a.booksCmd())
	rootCmd.AddCommand(a.borrowCmd(), a.returnCmd(), a.historyCmd(), a.loansCmd())
	rootCmd.AddCommand(a.borrowersCmd(), a.statsCmd())
	rootCmd.AddCommand(a.watchCmd())
	return rootCmd
}

// Execute runs the command tree on os.Args and returns the exit code.
func Execute() int {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		var r reported
		if !errors.As(err, &r) {
			fmt.Fprintln(cmd.ErrOrStderr(), NewTerminal(cmd.ErrOrStderr()).Render(notify.Error(err.Error())))
		}
		return 1
	}
	return 0
}

func (a *App) init(cmd *cobra.Command) error {
	level, err := zapcore.ParseLevel(a.logLevel)
	if err != nil {
		return errors.Wrap(err, "log level")
	}
	ops := []config.Option{config.WithLogLevel(level)}
	if a.apiURL != "" {
		ops = append(ops, config.WithLibraryAPI(a.apiURL))
	}
	cfg, err := config.Load(ops...)
	if err != nil {
		return errors.Wrap(err, "config")
	}

	a.cfg = cfg
	a.log = logger.NewLogger(cfg.Log, "bookhub")
	a.validator = validate.NewCustomValidator()
	a.term = NewTerminal(cmd.OutOrStdout())
	a.notifier = a.term

	if a.persister == nil {
		path := a.sessionFile
		if path == "" {
			if path, err = session.DefaultPath(); err != nil {
				return err
			}
		}
		a.persister = session.NewFilePersister(path)
	}
	a.sessions = session.NewManager(a.persister, a.log)

	a.api = library.NewService(a.log, cfg, library.OnUnauthorized(func(ctx context.Context, err error) {
		if _, ok := session.FromContext(ctx); !ok {
			return
		}
		a.sessions.Invalidate(err)
		notify.Dispatch(ctx, a.notifier, notify.Warning("Session expired, log in again"))
	}))
	a.catalog = view.NewCatalog()
	a.events = broker.New(a.log)
	a.returns = reconciler.New(a.api, a.catalog, a.events, a.notifier, a.log)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if a.timeout > 0 {
		ctx, a.cancel = context.WithTimeout(ctx, a.timeout)
	}
	cmd.SetContext(ctx)
	return nil
}

// authorize restores the session into the command context. With roles given,
// the resolved role must be one of them.
func (a *App) authorize(cmd *cobra.Command, roles ...role.Role) (context.Context, session.Session, error) {
	s, err := a.sessions.Restore()
	if err != nil {
		if errors.Is(err, errs.ErrNoSession) {
			return nil, session.Session{}, errors.New("not logged in, run `bookhub login` first")
		}
		return nil, session.Session{}, err
	}
	if len(roles) > 0 && !hasRole(s.Role(), roles) {
		return nil, session.Session{}, errors.Wrapf(errs.ErrForbiddenRole, "logged in as %s", s.Role())
	}
	return session.WithContext(cmd.Context(), s), s, nil
}

// optional restores the session when there is one.
func (a *App) optional(cmd *cobra.Command) context.Context {
	s, err := a.sessions.Restore()
	if err != nil {
		return cmd.Context()
	}
	return session.WithContext(cmd.Context(), s)
}

func hasRole(r role.Role, roles []role.Role) bool {
	for _, want := range roles {
		if r == want {
			return true
		}
	}
	return false
}

// fail prints err as an error notification and marks it reported. A 401 on
// a session was already announced by the unauthorized hook.
func (a *App) fail(ctx context.Context, err error) error {
	if _, ok := session.FromContext(ctx); ok && errors.Is(err, errs.ErrUnauthorized) {
		return reported{err}
	}
	notify.Dispatch(ctx, a.notifier, notify.Error(errs.Message(err)))
	return reported{err}
}

func (a *App) succeed(ctx context.Context, msg, fallback string) {
	if msg == "" {
		msg = fallback
	}
	notify.Dispatch(ctx, a.notifier, notify.Success(msg))
}

func readPassword() (string, error) {
	return readPasswordFrom(os.Stdin, os.Stderr)
}
