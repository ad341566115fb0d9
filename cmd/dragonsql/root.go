package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/stefanak-michal/dragondb"
	"github.com/stefanak-michal/dragondb/sentryhook"
)

type app struct {
	envFile string
	driver  string
	dsn     string
	nested  bool
	verbose bool

	db *dragondb.DB
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "dragonsql",
		Short:         "Render and run SQL templates",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open()
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			sentry.Flush(2 * time.Second)
			if a.db == nil {
				return nil
			}
			return a.db.Disconnect()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", ".env", "file with DB_* variables, loaded if present")
	flags.StringVar(&a.driver, "driver", "", "database driver: mysql, sqlite3 or pgx (overrides DB_DRIVER)")
	flags.StringVar(&a.dsn, "dsn", "", "connection string (overrides DB_DSN)")
	flags.BoolVar(&a.nested, "nested", false, "use savepoints for nested transactions")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log every statement")

	root.AddCommand(
		newRenderCmd(a),
		newQueryCmd(a),
		newExecCmd(a),
		newTablesCmd(a),
		newColumnsCmd(a),
	)
	return root
}

// open loads the configuration and creates the DB. Nothing connects until
// the first statement.
func (a *app) open() error {
	if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", a.envFile, err)
	}

	cfg, err := dragondb.LoadConfig()
	if err != nil && (a.driver == "" || !errors.Is(err, dragondb.ErrUnknownDriver)) {
		return err
	}
	if a.driver != "" {
		cfg.Driver = a.driver
	}
	if a.dsn != "" {
		cfg.DSN = a.dsn
	}
	if a.nested {
		cfg.NestedTransactions = true
	}

	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	a.db, err = dragondb.New(cfg, dragondb.WithLogger(log))
	if err != nil {
		return err
	}

	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         dsn,
			Environment: os.Getenv("SENTRY_ENVIRONMENT"),
		}); err != nil {
			log.Error("failed to initialize Sentry", slog.String("error", err.Error()))
		} else {
			sentryhook.Install(a.db, nil)
		}
	}
	return nil
}
