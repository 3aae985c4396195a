package main

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"time"

	"github.com/awnumar/memguard"
	"github.com/urfave/cli"

	"github.com/kochabx/sealstore/app"
	"github.com/kochabx/sealstore/cas"
	"github.com/kochabx/sealstore/config"
	"github.com/kochabx/sealstore/core/crypto/keyfile"
	"github.com/kochabx/sealstore/core/keymanager"
	"github.com/kochabx/sealstore/errors"
	"github.com/kochabx/sealstore/log"
	"github.com/kochabx/sealstore/metrics"
)

const (
	metaRuntime = "runtime"

	envPassphrase = "SEALSTORE_PASSPHRASE"
)

var version = "dev"

// runtime carries what Before prepared to the command actions
type runtime struct {
	config     *Config
	loader     *config.Config
	logger     *log.Logger
	passphrase []byte
}

// session is one opened store for the duration of a command
type session struct {
	cas     *cas.Store
	keys    *keymanager.Manager
	workers int
}

func newApp() *cli.App {
	a := cli.NewApp()
	a.Name = "sealstore"
	a.Usage = "encrypted content-addressed blob storage"
	a.Version = version
	a.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "config, c",
			Value:  config.DefaultPath,
			Usage:  "configuration file",
			EnvVar: "SEALSTORE_CONFIG",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "override log.level (trace, debug, info, warn, error)",
		},
		cli.StringFlag{
			Name:  "passphrase-file",
			Usage: "file holding the secret key passphrase (default $" + envPassphrase + ")",
		},
	}
	a.Before = before
	a.After = after
	a.Commands = []cli.Command{
		keyCommand(),
		putCommand(),
		getCommand(),
		metaCommand(),
		existsCommand(),
		deleteCommand(),
		verifyCommand(),
		eventsCommand(),
	}
	a.Metadata = map[string]any{}
	// exit codes are decided in main
	a.ExitErrHandler = func(*cli.Context, error) {}
	return a
}

func before(c *cli.Context) error {
	cfg, loader, err := loadConfig(c.GlobalString("config"))
	if err != nil {
		return err
	}
	if level := c.GlobalString("log-level"); level != "" {
		cfg.Log.Level = level
	}

	logger, err := log.Setup(cfg.Log)
	if err != nil {
		return errors.Wrap(err, errors.CodeInvalidArgument, "failed to set up logging")
	}
	if loader == nil {
		logger.Debug().Str("path", c.GlobalString("config")).Msg("config file not found, using defaults")
	}

	passphrase, err := readPassphrase(c.GlobalString("passphrase-file"))
	if err != nil {
		return err
	}

	c.App.Metadata[metaRuntime] = &runtime{
		config:     cfg,
		loader:     loader,
		logger:     logger,
		passphrase: passphrase,
	}
	return nil
}

func after(c *cli.Context) error {
	rt, ok := c.App.Metadata[metaRuntime].(*runtime)
	if !ok {
		return nil
	}
	memguard.WipeBytes(rt.passphrase)
	return rt.logger.Close()
}

func runtimeFrom(c *cli.Context) *runtime {
	return c.App.Metadata[metaRuntime].(*runtime)
}

// readPassphrase reads the passphrase file, falling back to the environment.
// A trailing newline is stripped.
func readPassphrase(path string) ([]byte, error) {
	var raw []byte
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.WrapWithMetadata(err, errors.CodeInvalidArgument,
				map[string]string{"path": path}, "passphrase file not readable")
		}
		raw = b
	} else if env, ok := os.LookupEnv(envPassphrase); ok {
		raw = []byte(env)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	trimmed := bytes.TrimRight(raw, "\r\n")
	passphrase := make([]byte, len(trimmed))
	copy(passphrase, trimmed)
	memguard.WipeBytes(raw)
	return passphrase, nil
}

// withSession opens the configured backend, loads the key directory and runs
// fn under a signal-aware context. Everything opened is closed afterwards.
func withSession(c *cli.Context, fn func(ctx context.Context, s *session) error) error {
	rt := runtimeFrom(c)
	lc := app.New(
		app.WithLogger(rt.logger),
		app.WithCloseTimeout(rt.config.CloseTimeout),
	)

	return lc.Run(func(ctx context.Context) error {
		s, err := rt.open(ctx, lc)
		if err != nil {
			return err
		}
		return fn(ctx, s)
	})
}

func (rt *runtime) open(ctx context.Context, lc *app.Application) (*session, error) {
	cfg := rt.config

	adapter, err := openAdapter(ctx, &cfg.Backend, lc, rt.logger)
	if err != nil {
		return nil, err
	}

	keys := keymanager.New(keymanager.WithLogger(rt.logger))
	if err := lc.RegisterClose("keys", func(context.Context) error {
		keys.Purge()
		return nil
	}, 0); err != nil {
		return nil, err
	}
	rt.loadKeys(keys)

	notifier, err := openNotifier(&cfg.Events, lc, rt.logger)
	if err != nil {
		return nil, err
	}

	collector, err := rt.metrics(lc)
	if err != nil {
		return nil, err
	}

	s, err := cas.New(adapter, keys,
		cas.WithLogger(rt.logger),
		cas.WithMetrics(collector),
		cas.WithNotifier(notifier),
	)
	if err != nil {
		return nil, err
	}
	return &session{cas: s, keys: keys, workers: cfg.Workers}, nil
}

func (rt *runtime) loadKeys(keys *keymanager.Manager) {
	dir := rt.config.Keys.Dir
	if dir == "" {
		return
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		rt.logger.Debug().Str("dir", dir).Msg("key directory not found, no keys loaded")
		return
	}

	// keys loaded before a failing file are kept; a later lookup reports
	// the missing one
	fps, err := keyfile.LoadDir(dir, rt.passphrase, keys)
	if err != nil {
		rt.logger.Warn().Err(err).Str("dir", dir).Int("loaded", len(fps)).Msg("key directory partially loaded")
		return
	}
	rt.logger.Debug().Str("dir", dir).Int("keys", len(fps)).Msg("keys loaded")
}

// metrics returns a collector when a textfile is configured and arranges for
// it to be written on close.
func (rt *runtime) metrics(lc *app.Application) (*metrics.Collector, error) {
	path := rt.config.Metrics.Textfile
	if path == "" {
		return nil, nil
	}

	prom := metrics.New().WithGoCollector()
	collector := metrics.NewCollector(prom.Registry(), rt.config.Metrics.Namespace)
	err := lc.RegisterClose("metrics", func(context.Context) error {
		return prom.WriteTextfile(path)
	}, 5*time.Second)
	if err != nil {
		return nil, err
	}
	return collector, nil
}
