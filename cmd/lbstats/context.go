package main

import (
	"context"
	"os"
	"strings"
	"sync"

	"lbstats/internal/config"
	"lbstats/lib/cache"
	"lbstats/lib/scrapers/letterboxd"
	"lbstats/lib/scrapers/tmdb"
	"lbstats/lib/telemetry"
)

type commandContext struct {
	configFlag  *string
	verboseFlag *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	clientOnce sync.Once
	store      *cache.Store
	client     *letterboxd.Client
	clientErr  error

	telemetry telemetry.Telemetry
}

func newCommandContext(configFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		verboseFlag: verboseFlag,
	}
}

// setup runs once before any command body: logging always, traces
// only when a telemetry.json5 is discoverable.
func (c *commandContext) setup(ctx context.Context) error {
	verbose := c.verboseFlag != nil && *c.verboseFlag
	telemetry.InitSlog(verbose)

	tel, err := telemetry.SetupFromEnv(ctx, "lbstats")
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	c.telemetry = tel
	return nil
}

func (c *commandContext) shutdown(ctx context.Context) error {
	if c.store != nil {
		c.store.Close()
	}
	return c.telemetry.Shutdown(ctx)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureClient(ctx context.Context) (*letterboxd.Client, error) {
	c.clientOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.clientErr = err
			return
		}
		store, err := cache.Open(cfg.Paths.CacheDB)
		if err != nil {
			c.clientErr = err
			return
		}
		client, err := letterboxd.NewClient(ctx, letterboxd.ClientOptions{
			Username: cfg.Letterboxd.Username,
			Password: cfg.Letterboxd.Password,
			Cache:    store,
		})
		if err != nil {
			store.Close()
			c.clientErr = err
			return
		}
		c.store = store
		c.client = client
	})
	return c.client, c.clientErr
}

// ensureLoggedIn is ensureClient plus authentication, for commands
// that mutate account state or read private data.
func (c *commandContext) ensureLoggedIn(ctx context.Context) (*letterboxd.Client, error) {
	client, err := c.ensureClient(ctx)
	if err != nil {
		return nil, err
	}
	if !client.Session.Authenticated() {
		err = client.Session.Login(ctx)
		if err != nil {
			return nil, err
		}
	}
	return client, nil
}

func (c *commandContext) tmdbClient() (*tmdb.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return tmdb.NewClient(tmdb.Options{
		APIKey:   cfg.TMDB.APIKey,
		BaseURL:  cfg.TMDB.BaseURL,
		Language: cfg.TMDB.Language,
	})
}
