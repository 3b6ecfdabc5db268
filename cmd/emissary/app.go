package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/azdolinski/emissary/internal/config"
	"github.com/azdolinski/emissary/internal/log"
	"github.com/azdolinski/emissary/internal/model"
	"github.com/azdolinski/emissary/internal/store"
)

// app holds what most commands need: configuration, logger and the store.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *store.SQLite
	repo   *store.Repository

	logCloser io.Closer
}

// newApp loads configuration, sets up logging and opens the database.
// The caller must Close the returned app.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, logCloser, err := log.New(log.Options{
		Writer:  cmd.ErrOrStderr(),
		Verbose: cfg.Verbose,
		File:    cfg.LogFile,
	})
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	db, err := store.Open(cfg.DBDir, store.DefaultOptions())
	if err != nil {
		_ = logCloser.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Debug("database opened", "path", db.Path())

	return &app{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		repo:      store.NewRepository(db),
		logCloser: logCloser,
	}, nil
}

// Close releases the database and the log file.
func (a *app) Close() error {
	return errors.Join(a.db.Close(), a.logCloser.Close())
}

// buildConfig layers the global flags over the loaded configuration.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("verbose") {
		if cfg.Verbose, err = flags.GetBool("verbose"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("db-dir") {
		if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("log-file") {
		if cfg.LogFile, err = flags.GetString("log-file"); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// findProfile loads the profiles and looks up ref by ID or exact name.
func (a *app) findProfile(ctx context.Context, ref string) (model.Profile, []model.Profile, error) {
	profiles, err := a.repo.Profiles(ctx)
	if err != nil {
		return model.Profile{}, nil, err
	}
	p, _, ok := model.FindProfile(profiles, ref)
	if !ok {
		return model.Profile{}, nil, fmt.Errorf("%w: %s", model.ErrProfileNotFound, ref)
	}
	return p, profiles, nil
}

// updateProfile applies fn to the profile named by ref and saves the result.
func (a *app) updateProfile(ctx context.Context, ref string, fn func(model.Profile) (model.Profile, error)) (model.Profile, error) {
	p, profiles, err := a.findProfile(ctx, ref)
	if err != nil {
		return model.Profile{}, err
	}
	updated, err := fn(p)
	if err != nil {
		return model.Profile{}, err
	}
	profiles, err = model.ReplaceProfile(profiles, updated)
	if err != nil {
		return model.Profile{}, err
	}
	if err := a.repo.SaveProfiles(ctx, profiles); err != nil {
		return model.Profile{}, err
	}
	return updated, nil
}

// withApp wraps a command body that needs an app.
func withApp(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := a.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		return fn(cmd, args, a)
	}
}

// parseIndex parses an action index argument.
func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("%w: invalid index %q", model.ErrActionNotFound, s)
	}
	return i, nil
}

// parsePair splits "key=value" on the first '='. The key is trimmed and
// must not be empty; the value is kept as is.
func parsePair(s string) (string, string, error) {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("%w: %q (want key=value)", model.ErrEmptyKey, s)
	}
	return key, value, nil
}

// parsePairs parses repeated key=value flags into Fields.
func parsePairs(pairs []string) (model.Fields, error) {
	out := make(model.Fields, len(pairs))
	for _, p := range pairs {
		k, v, err := parsePair(p)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}
