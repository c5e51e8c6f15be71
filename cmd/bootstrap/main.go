package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"aerodb/config"
	"aerodb/db"
	"aerodb/logging"
	"aerodb/seed"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	exitArgument = 1
	exitPath     = 2
	exitFailure  = 3

	backupFileExt = ".bak"
)

// ArgumentError reports a bad command line.
type ArgumentError struct {
	Msg string
}

func (e *ArgumentError) Error() string { return e.Msg }

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run executes the bootstrap command and returns the process exit code.
func run(args []string, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stderr)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return 0
	}
	_, _ = fmt.Fprintf(stderr, "error: %v\n", err)

	var argErr *ArgumentError
	var pathErr *db.PathError
	switch {
	case errors.As(err, &argErr):
		return exitArgument
	case errors.As(err, &pathErr):
		return exitPath
	default:
		return exitFailure
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "bootstrap <db-file>",
		Short:         "Create the aerodb SQLite database and load the seed dataset into it",
		Long:          "Create the aerodb SQLite database at <db-file> and load the seed dataset into it.\nAn existing file at <db-file> is replaced.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			switch len(args) {
			case 0:
				return &ArgumentError{Msg: "no filename in arguments"}
			case 1:
				return nil
			default:
				return &ArgumentError{Msg: fmt.Sprintf("expected one filename, got %d arguments", len(args))}
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.NewViper(cmd.Flags())
			if err != nil {
				return err
			}
			cfg, err := config.Load(v)
			if err != nil {
				return &ArgumentError{Msg: err.Error()}
			}
			logger, err := logging.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			data, err := seed.LoadOrDefault(cfg.SeedFile)
			if err != nil {
				return err
			}

			dbPath := args[0]
			if cfg.Backup {
				if err := backupExisting(dbPath, cfg.MaxBackups, logger); err != nil {
					return fmt.Errorf("failed to create DB backup: %w", err)
				}
			}

			report, err := db.BootstrapSQLite(cmd.Context(), dbPath, data, db.BootstrapOptions{
				Logger: logger,
				Strict: cfg.Strict,
			})
			if err != nil {
				return err
			}
			for _, ref := range report.Unresolved {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", ref)
			}
			return nil
		},
	}
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ArgumentError{Msg: err.Error()}
	})
	config.RegisterFlags(rootCmd.Flags())
	return rootCmd
}

// backupExisting copies an existing database file aside before it is replaced.
func backupExisting(dbPath string, maxBackups int, logger *zap.SugaredLogger) error {
	info, err := os.Stat(dbPath)
	if err != nil {
		return nil
	}
	logger.Infow("existing database file", "path", dbPath, "size", info.Size())
	backupPath := fmt.Sprintf("%s.%s%s", dbPath, time.Now().Format("20060102-150405.000000000"), backupFileExt)
	if err := copyFile(dbPath, backupPath); err != nil {
		return err
	}
	logger.Infow("existing database backed up", "backup", backupPath)
	pruneOldBackups(dbPath, maxBackups, logger)
	return nil
}

func copyFile(src, dst string) error {
	sourceFileStat, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !sourceFileStat.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", src)
	}

	source, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = source.Close() }()

	destination, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := destination.ReadFrom(source); err != nil {
		_ = destination.Close()
		return err
	}
	return destination.Close()
}

func pruneOldBackups(dbPath string, max int, logger *zap.SugaredLogger) {
	dir := filepath.Dir(dbPath)
	prefix := filepath.Base(dbPath) + "."
	files, err := os.ReadDir(dir)
	if err != nil {
		logger.Warnw("failed to read backup directory", "dir", dir, "error", err)
		return
	}

	var backups []string
	for _, f := range files {
		if strings.HasPrefix(f.Name(), prefix) && strings.HasSuffix(f.Name(), backupFileExt) {
			backups = append(backups, filepath.Join(dir, f.Name()))
		}
	}
	if len(backups) <= max {
		return
	}

	sort.Strings(backups)
	for _, file := range backups[:len(backups)-max] {
		if err := os.Remove(file); err != nil {
			logger.Warnw("failed to remove old backup", "backup", file, "error", err)
		} else {
			logger.Infow("removed old backup", "backup", file)
		}
	}
}
