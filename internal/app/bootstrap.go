package app

import (
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dshills/stylus/internal/command"
	"github.com/dshills/stylus/internal/config"
	"github.com/dshills/stylus/internal/extension/lua"
	"github.com/dshills/stylus/internal/logging"
	"github.com/dshills/stylus/internal/term"
)

// bootstrap initializes the components that do not need a screen, in
// dependency order.
func (app *Application) bootstrap() error {
	// 1. Logging
	if err := app.initLogging(); err != nil {
		return err
	}

	// 2. Document
	doc, err := OpenDocument(app.opts.Path)
	if err != nil {
		return err
	}
	term.Normalize(doc.Root)
	doc.MarkClean()
	app.doc = doc

	// 3. Options
	app.config, err = config.Load(app.opts.ConfigPath, nil)
	if err != nil {
		return err
	}

	// 4. Extensions
	app.exts, app.cliNames, err = app.loadExtensions(app.config)
	return err
}

// ValidateLogLevel checks a log level name.
func ValidateLogLevel(level string) error {
	switch strings.ToLower(level) {
	case "", "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("%w %q (must be debug, info, warn, or error)", ErrInvalidLogLevel, level)
}

func (app *Application) initLogging() error {
	if err := ValidateLogLevel(app.opts.LogLevel); err != nil {
		return err
	}
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(app.opts.LogLevel)
	switch {
	case app.opts.LogFile != "":
		f, err := os.OpenFile(app.opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return NewOperationError("open", app.opts.LogFile, err)
		}
		app.logFile = f
		cfg.Output = f
	case app.opts.LogOutput != nil:
		cfg.Output = app.opts.LogOutput
	default:
		cfg.Output = io.Discard
	}
	app.log = logging.New(cfg).WithComponent("app")
	return nil
}

// loadExtensions loads the scripts named in o, resolved against the
// options file's directory, then the scripts given on the command line.
// It also returns the names of the command-line scripts.
func (app *Application) loadExtensions(o config.Options) (map[string]*lua.Extension, []string, error) {
	exts := make(map[string]*lua.Extension)
	opts := []lua.Option{
		lua.WithLogger(app.log),
		lua.WithActiveClass(o.ActiveButtonClass),
	}
	load := func(name, path string) (*lua.Extension, error) {
		ext, err := lua.Load(name, path, opts...)
		if err != nil {
			app.closeExtensions(exts)
			return nil, NewOperationError("extension", path, err)
		}
		if old, dup := exts[ext.Name()]; dup {
			old.Close()
		}
		exts[ext.Name()] = ext
		return ext, nil
	}

	base := ""
	if app.opts.ConfigPath != "" {
		base = filepath.Dir(app.opts.ConfigPath)
	}
	for _, name := range slices.Sorted(maps.Keys(o.Extensions)) {
		path := o.Extensions[name]
		if !filepath.IsAbs(path) && base != "" {
			path = filepath.Join(base, path)
		}
		if _, err := load(name, path); err != nil {
			return nil, nil, err
		}
	}

	var cli []string
	for _, path := range app.opts.Extensions {
		ext, err := load("", path)
		if err != nil {
			return nil, nil, err
		}
		cli = append(cli, ext.Name())
	}
	if len(exts) > 0 {
		app.log.Info("loaded %d extensions", len(exts))
	}
	return exts, cli, nil
}

// options returns o with a toolbar button for every command-line script.
func (app *Application) options(o config.Options) config.Options {
	o = o.Clone()
	for _, name := range app.cliNames {
		if !slices.Contains(o.Buttons, name) {
			o.Buttons = append(o.Buttons, name)
		}
	}
	return o
}

func commands(exts map[string]*lua.Extension) map[string]command.Command {
	if len(exts) == 0 {
		return nil
	}
	out := make(map[string]command.Command, len(exts))
	for name, ext := range exts {
		out[name] = ext
	}
	return out
}

func (app *Application) closeExtensions(exts map[string]*lua.Extension) {
	for _, ext := range exts {
		ext.Close()
	}
}
