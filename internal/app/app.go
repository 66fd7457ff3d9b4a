// Package app wires an HTML document, the editing engine, Lua extensions
// and the terminal host into the stylus command-line editor, and manages
// the application lifecycle.
package app

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/stylus/internal/config"
	"github.com/dshills/stylus/internal/editor"
	"github.com/dshills/stylus/internal/extension/lua"
	"github.com/dshills/stylus/internal/logging"
	"github.com/dshills/stylus/internal/sched"
	"github.com/dshills/stylus/internal/term"
)

// DefaultSelector marks the elements edited when no selector is given.
const DefaultSelector = "[data-editable]"

// Options configures the application.
type Options struct {
	// Path is the HTML file to edit.
	Path string

	// ConfigPath is the editor options file (TOML, YAML or JSON).
	ConfigPath string

	// Watch reloads the options file when it changes.
	Watch bool

	// Extensions are Lua scripts loaded in addition to the configured ones.
	Extensions []string

	// StatePath stores the selection between sessions.
	StatePath string

	// Selector picks the editable elements. See Document.Surfaces.
	Selector string

	// Theme overrides colours by role name.
	Theme map[string]string

	// LogLevel is debug, info, warn or error.
	LogLevel string

	// LogFile receives log output. Without it the log goes to LogOutput.
	LogFile string

	// LogOutput receives log output when LogFile is empty. Nil discards.
	LogOutput io.Writer
}

// Application is the running editor for one document.
type Application struct {
	opts    Options
	log     *logging.Logger
	logFile *os.File

	doc      *Document
	config   config.Options
	exts     map[string]*lua.Extension
	cliNames []string

	loop    *sched.Loop
	host    *term.Host
	editor  *editor.Editor
	session *term.Session
	watcher *config.Watcher

	quitArmed bool

	shutdown    sync.Once
	shutdownErr error
}

// New opens the document and loads the options and extensions.
func New(opts Options) (*Application, error) {
	app := &Application{opts: opts}
	if err := app.bootstrap(); err != nil {
		app.closeExtensions(app.exts)
		app.closeLog()
		return nil, err
	}
	return app, nil
}

// Document returns the open document.
func (app *Application) Document() *Document { return app.doc }

// Editor returns the engine, or nil before Attach.
func (app *Application) Editor() *editor.Editor { return app.editor }

// Session returns the terminal session, or nil before Attach.
func (app *Application) Session() *term.Session { return app.session }

// Config returns the options currently applied.
func (app *Application) Config() config.Options { return app.config.Clone() }

// Attach creates the engine over the document on an initialised screen.
// The application takes ownership of the screen.
func (app *Application) Attach(screen tcell.Screen) error {
	return app.attach(screen, sched.NewLoop(0))
}

// attach is Attach with the loop supplied; tests drive a Virtual clock
// through the host instead.
func (app *Application) attach(screen tcell.Screen, s sched.Scheduler) error {
	if app.session != nil {
		return ErrAlreadyAttached
	}
	surfaces := app.doc.Surfaces(app.opts.Selector)
	if len(surfaces) == 0 {
		return NewOperationError("open", app.doc.Path, ErrNoSurfaces)
	}

	theme := term.DefaultTheme()
	if err := theme.Apply(app.opts.Theme); err != nil {
		return err
	}

	if loop, ok := s.(*sched.Loop); ok {
		app.loop = loop
	}
	cols, rows := screen.Size()
	app.host = term.NewHost(app.doc.Root, s, cols, max(rows-1, 1))

	ed, err := editor.New(app.host, surfaces,
		editor.WithOptions(app.options(app.config)),
		editor.WithLogger(app.log),
		editor.WithExtensions(commands(app.exts)),
	)
	if err != nil {
		return err
	}
	app.editor = ed

	app.session = term.NewSession(screen, app.host,
		term.WithTheme(theme),
		term.WithLogger(app.log),
		term.WithTitle(app.doc.Name),
		term.WithActiveClass(app.config.ActiveButtonClass),
		term.WithQuitCheck(app.confirmQuit),
		term.WithShortcut(tcell.KeyCtrlS, app.Save),
		term.WithShortcut(tcell.KeyCtrlB, func() { app.exec("bold") }),
		term.WithShortcut(tcell.KeyCtrlU, func() { app.exec("underline") }),
		term.WithShortcut(tcell.KeyCtrlK, func() { app.exec(editor.ActionAnchor) }),
	)

	if err := app.restoreState(); err != nil {
		app.log.Warn("%v", err)
	}
	if app.opts.Watch && app.opts.ConfigPath != "" && app.loop != nil {
		if err := app.watch(); err != nil {
			app.log.Warn("watch %s: %v", app.opts.ConfigPath, err)
		}
	}
	app.log.Info("editing %s (%d surfaces)", app.doc.Path, len(surfaces))
	return nil
}

// Run processes input until ctx is cancelled or the user quits.
func (app *Application) Run(ctx context.Context) error {
	if app.session == nil || app.loop == nil {
		return ErrNotAttached
	}
	return app.session.Run(ctx, app.loop)
}

// Save writes the document and reports the result on the status line.
func (app *Application) Save() {
	if err := app.doc.Save(); err != nil {
		app.log.Error("%v", err)
		app.setStatus(err.Error())
		return
	}
	app.quitArmed = false
	app.log.Info("saved %s", app.doc.Path)
	app.setStatus("saved " + app.doc.Name)
}

// exec runs a toolbar action from a keyboard shortcut.
func (app *Application) exec(action string) {
	if app.editor == nil || app.editor.Selection() == nil {
		return
	}
	if _, ok := app.editor.Selection().Save(); !ok {
		return
	}
	app.editor.ExecAction(action)
	app.editor.CheckSelection()
}

// confirmQuit lets the user quit unless there are unsaved changes, in
// which case a second request is needed.
func (app *Application) confirmQuit() bool {
	if app.quitArmed || !app.doc.IsModified() {
		return true
	}
	app.quitArmed = true
	app.setStatus("unsaved changes: ^S to save, ^Q again to quit")
	return false
}

func (app *Application) setStatus(msg string) {
	if app.session != nil {
		app.session.SetStatus(msg)
	}
}

// Shutdown stores the selection, stops the watcher, releases the engine
// and the screen and closes the log. It is safe to call more than once.
func (app *Application) Shutdown() error {
	app.shutdown.Do(func() {
		var errs ErrorList
		if app.watcher != nil {
			errs.Add(app.watcher.Close())
		}
		errs.Add(app.saveState())
		if app.editor != nil {
			app.editor.Deactivate()
		}
		if app.session != nil {
			app.session.Close()
		}
		app.closeExtensions(app.exts)
		app.exts = nil
		if app.log != nil {
			app.log.Info("shutdown")
		}
		app.closeLog()
		app.shutdownErr = errs.AsError()
	})
	return app.shutdownErr
}

func (app *Application) closeLog() {
	if app.logFile != nil {
		app.logFile.Close()
		app.logFile = nil
	}
}
