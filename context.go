package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"coursevault-backend/config"
	"coursevault-backend/logging"
	"coursevault-backend/services"
)

// commandContext lazily builds the shared configuration, logger and services
// for whichever command runs.
type commandContext struct {
	configFlag *string

	cfg    *config.Config
	logger *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	path := ""
	if c.configFlag != nil {
		path = *c.configFlag
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	c.cfg = cfg
	return cfg, nil
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	if c.logger != nil {
		return c.logger, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	if err != nil {
		return nil, err
	}
	c.logger = logger
	return logger, nil
}

// app holds the wired services for one command invocation.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	lock    *flock.Flock
	cache   *services.TitleCache
	titles  *services.TitleService
	courses *services.CourseService
}

// buildApp wires the services. With exclusive set, the titles directory lock
// is taken before the cache is read and held until close.
func (c *commandContext) buildApp(exclusive bool) (*app, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirs(); err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger}
	if exclusive {
		if a.lock, err = lockTitlesDir(cfg.TitlesDir); err != nil {
			return nil, err
		}
	}

	cache := services.NewTitleCache(cfg.TitlesDir, logger)
	if err := cache.LoadAll(); err != nil {
		a.close()
		return nil, fmt.Errorf("load title cache: %w", err)
	}

	resolver := services.NewTitleResolver(cfg.Wistia.BaseURL, cfg.Wistia.Account,
		services.WithTimeout(cfg.TitleTimeout()),
		services.WithUserAgent(cfg.Wistia.UserAgent),
		services.WithLogger(logger))

	a.cache = cache
	a.titles = services.NewTitleService(cache, resolver, logger)
	a.courses = services.NewCourseService(cfg.CoursesDir, cache, logger)
	return a, nil
}

// close releases the titles directory lock, if held.
func (a *app) close() {
	if a.lock == nil {
		return
	}
	if err := a.lock.Unlock(); err != nil {
		a.logger.Warn("failed to release titles lock", logging.Error(err))
	}
	a.lock = nil
}

var errTitlesDirBusy = errors.New("titles directory is in use by another coursevault process")

// lockTitlesDir takes the exclusive instance lock on the titles directory.
// Commands that write the cache hold it for their whole run.
func lockTitlesDir(dir string) (*flock.Flock, error) {
	lock := flock.New(filepath.Join(dir, ".lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire titles lock: %w", err)
	}
	if !ok {
		return nil, errTitlesDirBusy
	}
	return lock, nil
}
