package app

import (
	"errors"
	"io/fs"
	"os"

	"github.com/dshills/stylus/internal/config"
	"github.com/dshills/stylus/internal/selection"
)

// watch reloads the options whenever the options file changes. The
// callback runs on the watcher goroutine, so the reload is posted to the
// loop.
func (app *Application) watch() error {
	w, err := config.NewWatcher(app.opts.ConfigPath,
		func() { app.loop.Post(app.Reload) },
		config.WithErrorHandler(func(err error) {
			app.log.Warn("watch %s: %v", app.opts.ConfigPath, err)
		}),
	)
	if err != nil {
		return err
	}
	app.watcher = w
	return nil
}

// Reload reads the options file and the extensions again and reconfigures
// the engine. On failure the previous configuration stays in place.
func (app *Application) Reload() {
	o, err := config.Load(app.opts.ConfigPath, nil)
	if err != nil {
		app.reloadFailed(err)
		return
	}
	exts, cli, err := app.loadExtensions(o)
	if err != nil {
		app.reloadFailed(err)
		return
	}

	oldCLI := app.cliNames
	app.cliNames = cli
	if app.editor != nil {
		if err := app.editor.Reconfigure(app.options(o), commands(exts)); err != nil {
			app.closeExtensions(exts)
			app.cliNames = oldCLI
			if rerr := app.editor.Reconfigure(app.options(app.config), commands(app.exts)); rerr != nil {
				app.log.Error("restore previous configuration: %v", rerr)
			}
			app.reloadFailed(err)
			return
		}
	}
	app.closeExtensions(app.exts)
	app.exts = exts
	app.config = o
	app.log.Info("configuration reloaded")
	app.setStatus("configuration reloaded")
}

func (app *Application) reloadFailed(err error) {
	app.log.Warn("reload: %v", err)
	app.setStatus("reload failed: " + err.Error())
}

// restoreState selects the range stored by a previous session. A missing
// state file is not an error.
func (app *Application) restoreState() error {
	if app.opts.StatePath == "" {
		return nil
	}
	data, err := os.ReadFile(app.opts.StatePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return NewOperationError("load-state", app.opts.StatePath, err)
	}
	s, err := selection.Decode(data)
	if err != nil {
		return NewOperationError("load-state", app.opts.StatePath, err)
	}
	if !app.editor.RestoreSnapshot(s) {
		app.log.Debug("stored selection %+v no longer fits the document", s)
		return nil
	}
	app.editor.CheckSelection()
	app.log.Debug("restored selection %+v", s)
	return nil
}

// saveState stores the live selection for the next session.
func (app *Application) saveState() error {
	if app.opts.StatePath == "" || app.editor == nil || app.editor.Selection() == nil {
		return nil
	}
	s, ok := app.editor.Selection().Save()
	if !ok {
		return nil
	}
	data, err := selection.Encode(s)
	if err != nil {
		return NewOperationError("save-state", app.opts.StatePath, err)
	}
	if err := writeFileAtomic(app.opts.StatePath, data); err != nil {
		return NewOperationError("save-state", app.opts.StatePath, err)
	}
	return nil
}
