package term

import (
	"context"
	"errors"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/net/html"

	"github.com/dshills/stylus/internal/command"
	"github.com/dshills/stylus/internal/dom"
	"github.com/dshills/stylus/internal/logging"
	"github.com/dshills/stylus/internal/sched"
	"github.com/dshills/stylus/internal/ui"
)

// FrameInterval is how often a running session redraws without input.
const FrameInterval = 50 * time.Millisecond

// NewScreen opens the terminal with mouse and bracketed paste enabled.
func NewScreen() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnableMouse()
	screen.EnablePaste()
	return screen, nil
}

// Option configures a Session.
type Option func(*Session)

// WithTheme sets the colours.
func WithTheme(t Theme) Option {
	return func(s *Session) { s.theme = t }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithActiveClass sets the class marking active toolbar buttons.
func WithActiveClass(class string) Option {
	return func(s *Session) { s.activeClass = class }
}

// WithTitle sets the text at the start of the status line.
func WithTitle(title string) Option {
	return func(s *Session) { s.title = title }
}

// WithShortcut binds a control key to fn. Ctrl-Q and Ctrl-C always quit.
func WithShortcut(key tcell.Key, fn func()) Option {
	return func(s *Session) { s.shortcuts[key] = fn }
}

// WithQuitCheck sets a function consulted when the user asks to quit. The
// session keeps running while it returns false.
func WithQuitCheck(fn func() bool) Option {
	return func(s *Session) { s.canQuit = fn }
}

// Session draws a host on a screen and feeds it input.
type Session struct {
	screen      tcell.Screen
	host        *Host
	theme       Theme
	log         *logging.Logger
	activeClass string
	title       string
	status      string
	shortcuts   map[tcell.Key]func()
	canQuit     func() bool

	regions []region

	// mouse state
	pressed  bool
	pressUI  *ui.Element
	dragFrom dom.Point
	dragOK   bool

	// keyboard selection, as offsets into anchorRoot
	anchorRoot *html.Node
	anchor     int
	focus      int
}

// NewSession creates a session over an initialised screen and sizes the
// host's viewport to it.
func NewSession(screen tcell.Screen, h *Host, opts ...Option) *Session {
	s := &Session{
		screen:      screen,
		host:        h,
		theme:       DefaultTheme(),
		log:         logging.Null(),
		activeClass: command.DefaultActiveButtonClass,
		title:       "stylus",
		shortcuts:   make(map[tcell.Key]func()),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithComponent("term")
	w, hgt := screen.Size()
	h.Resize(w, max(hgt-1, 1))
	return s
}

// Host returns the host.
func (s *Session) Host() *Host { return s.host }

// SetStatus sets the message shown on the status line.
func (s *Session) SetStatus(msg string) { s.status = msg }

// Run processes screen events and redraws on loop until ctx is cancelled
// or the user quits. It returns nil on quit.
func (s *Session) Run(ctx context.Context, loop *sched.Loop) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		for {
			ev := s.screen.PollEvent()
			if ev == nil {
				return
			}
			ok := loop.Post(func() {
				if s.Handle(ev) {
					cancel()
					return
				}
				s.Draw()
			})
			if !ok {
				return
			}
		}
	}()

	frame := loop.Every(FrameInterval, s.Draw)
	defer frame.Cancel()
	loop.Post(s.Draw)

	s.log.Info("session started")
	err := loop.Run(ctx)
	s.log.Info("session stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close restores the terminal.
func (s *Session) Close() {
	s.screen.Fini()
}
