// Package cmd holds the filtrage CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"pkgconsole/internal/filtrage"
	"pkgconsole/internal/infrastructure/client/filters"
	"pkgconsole/internal/infrastructure/storage/local"
	"pkgconsole/pkg/logger"
)

const (
	storeFlag    = "store"
	apiURLFlag   = "api-url"
	logLevelFlag = "log-level"
	viewFlag     = "view"
)

// NewApp builds the CLI application.
func NewApp() *cli.App {
	return &cli.App{
		Name:  "filtrage",
		Usage: "Filter result rows with column filter expressions",
		Description: `Applies column filters to JSON rows the same way the console grids do.

Filters are kept per view in a local store, so a later run without --term
reuses the filters of the previous one. Saved filters live in the saved
filter API.

Example:
  filtrage filter --view packages --term 'status=!Active' --input rows.json`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    storeFlag,
				Usage:   "Path of the local filter store",
				Value:   "filtrage.db",
				EnvVars: []string{"FILTRAGE_STORE"},
			},
			&cli.StringFlag{
				Name:    apiURLFlag,
				Usage:   "Base URL of the saved filter API",
				EnvVars: []string{"FILTRAGE_API_URL"},
			},
			&cli.StringFlag{
				Name:    logLevelFlag,
				Usage:   "Log level: debug, info, warn, error",
				Value:   "warn",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			FilterCommand(),
			SavedCommand(),
			ParseCommand(),
		},
		// Filter expressions may contain commas.
		DisableSliceFlagSeparator: true,
	}
}

func viewKeyFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     viewFlag,
		Aliases:  []string{"k"},
		Usage:    "View key the filters belong to",
		Required: true,
	}
}

func newLogger(c *cli.Context) *logger.Logger {
	return logger.New(logger.Config{
		Level:  c.String(logLevelFlag),
		Output: c.App.ErrWriter,
	})
}

// env is what a command needs to work on filters.
type env struct {
	log   *logger.Logger
	kv    *local.SQLiteStore
	store *filtrage.Store
}

func (e *env) Close() error {
	_ = e.log.Sync()
	return e.kv.Close()
}

// openEnv opens the local store. withRemote requires --api-url and wires
// the saved filter client.
func openEnv(c *cli.Context, withRemote bool) (*env, error) {
	log := newLogger(c)

	var remote filtrage.Remote
	if withRemote {
		apiURL := c.String(apiURLFlag)
		if apiURL == "" {
			return nil, errors.New("--api-url (or FILTRAGE_API_URL) is required for saved filters")
		}
		remote = filters.New(apiURL)
	}

	kv, err := local.NewSQLiteStore(c.String(storeFlag))
	if err != nil {
		return nil, err
	}
	return &env{log: log, kv: kv, store: filtrage.NewStore(kv, remote, log)}, nil
}

func openInput(c *cli.Context, path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return c.App.Reader, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
