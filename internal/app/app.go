package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/Linh35/kumo-shell/internal/config"
	"github.com/Linh35/kumo-shell/internal/event/signal"
	"github.com/Linh35/kumo-shell/internal/plugin/hook"
	"github.com/Linh35/kumo-shell/internal/renderer/backend"
	"github.com/Linh35/kumo-shell/internal/renderer/core"
	"github.com/Linh35/kumo-shell/internal/renderer/decoration"
	"github.com/Linh35/kumo-shell/internal/renderer/frame"
	"github.com/Linh35/kumo-shell/internal/renderer/surface"
	"github.com/Linh35/kumo-shell/internal/renderer/viewport"
	"github.com/Linh35/kumo-shell/internal/terminal/buffer"
)

// ErrQuit reports a user-requested exit.
var ErrQuit = errors.New("quit requested")

// Options configures the application.
type Options struct {
	// ConfigPath is the TOML config file; empty uses defaults.
	ConfigPath string

	// ScriptPath is an optional Lua render-hook script.
	ScriptPath string

	// LogLevel overrides the configured level when non-empty.
	LogLevel string

	// Watch enables live config reload.
	Watch bool
}

// App owns the terminal, the buffer pair, and the decoration overlay
// engine, and drives them from one event loop goroutine.
type App struct {
	opts Options
	cfg  config.Config
	log  *Logger

	term     *backend.Terminal
	set      *buffer.Set
	vp       *viewport.Service
	registry *decoration.Registry
	sched    *frame.Queue
	renderer *decoration.Renderer
	hooks    *hook.Engine
	watcher  *config.Watcher
	hookSubs signal.Group

	reloads chan config.Config
	logFile io.Closer

	shutdown bool
}

// New loads configuration and prepares the application. The terminal
// is not touched until Run.
func New(opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}

	a := &App{
		opts:    opts,
		cfg:     cfg,
		reloads: make(chan config.Config, 1),
	}

	var out io.Writer
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		out = f
		a.logFile = f
	}
	a.log = NewLogger(out, ParseLogLevel(level))

	return a, nil
}

// Run takes over the terminal and blocks until the user quits or an
// error occurs. Returns ErrQuit on a normal exit request.
func (a *App) Run() error {
	term, err := backend.NewTerminal()
	if err != nil {
		return fmt.Errorf("creating terminal: %w", err)
	}
	if err := term.Init(); err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	a.term = term

	cols, rows := term.Size()
	a.vp = viewport.NewService(viewport.Dimensions{
		Rows:       rows,
		Cols:       cols,
		CellWidth:  a.cfg.Renderer.CellWidth,
		CellHeight: a.cfg.Renderer.CellHeight,
	})
	a.set = buffer.NewSet(rows, a.cfg.Renderer.Scrollback)
	a.registry = decoration.NewRegistry()
	a.sched = frame.NewQueue()
	a.renderer = decoration.NewRenderer(term, a.registry, a.vp, a.set, a.sched)

	if a.opts.ScriptPath != "" {
		engine, err := hook.NewEngine(hook.WithErrorHandler(func(err error) {
			a.log.WithComponent("hook").Error("%v", err)
		}))
		if err != nil {
			return err
		}
		a.hooks = engine
		if err := engine.LoadFile(a.opts.ScriptPath); err != nil {
			return err
		}
	}

	a.applyDecorations(a.cfg.Decorations)

	if a.opts.Watch && a.opts.ConfigPath != "" {
		w, err := config.NewWatcher(a.opts.ConfigPath, func(cfg config.Config) {
			select {
			case a.reloads <- cfg:
			default:
			}
		}, config.WithErrorHandler(func(err error) {
			a.log.WithComponent("config").Error("%v", err)
		}))
		if err != nil {
			a.log.WithComponent("config").Warn("watch disabled: %v", err)
		} else {
			a.watcher = w
		}
	}

	a.log.Info("overlay engine running: %dx%d cells, %d decorations",
		cols, rows, a.registry.Len())

	return a.loop()
}

// loop is the single-threaded heart: terminal events, frame ticks, the
// output feed and config reloads all land on this goroutine.
func (a *App) loop() error {
	maxFPS := a.cfg.Renderer.MaxFPS
	if maxFPS <= 0 {
		maxFPS = frame.DefaultMaxFPS
	}
	frames := time.NewTicker(time.Second / time.Duration(maxFPS))
	defer frames.Stop()

	// Simulated shell output, standing in for the text pipeline.
	feed := time.NewTicker(400 * time.Millisecond)
	defer feed.Stop()

	events := a.term.Events()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := a.handleEvent(ev); err != nil {
				return err
			}

		case <-frames.C:
			a.sched.RunFrame()
			a.draw()

		case <-feed.C:
			a.set.Normal().AppendLines(1)
			if !a.set.IsAlt() {
				a.vp.InvalidateRender()
			}

		case cfg := <-a.reloads:
			a.applyConfig(cfg)
		}
	}
}

func (a *App) handleEvent(ev tcell.Event) error {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		cols, rows := ev.Size()
		a.set.Resize(rows)
		a.vp.Resize(rows, cols)

	case *tcell.EventKey:
		return a.handleKey(ev)
	}
	return nil
}

func (a *App) handleKey(ev *tcell.EventKey) error {
	active := a.set.Active()

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return ErrQuit
	case tcell.KeyUp:
		active.ScrollBy(-1)
		a.vp.InvalidateRender()
	case tcell.KeyDown:
		active.ScrollBy(1)
		a.vp.InvalidateRender()
	case tcell.KeyPgUp:
		active.ScrollBy(-a.vp.Rows())
		a.vp.InvalidateRender()
	case tcell.KeyPgDn:
		active.ScrollBy(a.vp.Rows())
		a.vp.InvalidateRender()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return ErrQuit
		case 'a':
			if a.set.IsAlt() {
				a.set.Activate(buffer.KindNormal)
			} else {
				a.set.Activate(buffer.KindAlt)
			}
		case 'd':
			a.addDecorationAtBottom()
		case 'r':
			a.renderer.RefreshDecorations()
		}
	}
	return nil
}

// addDecorationAtBottom drops a marker on the last visible line.
func (a *App) addDecorationAtBottom() {
	buf := a.set.Normal()
	line := buf.YDisp() + a.vp.Rows() - 1
	if line >= buf.Length() {
		line = buf.Length() - 1
	}

	m := buf.AddMarker(line)
	d := a.registry.Register(m, decoration.Options{Anchor: decoration.AnchorRight, X: 1})
	if d == nil {
		return
	}
	style := core.NewStyle(core.ColorFromRGB(0x28, 0xc8, 0x40)).Bold()
	d.OnRender(func(el *surface.Element) {
		el.SetText("*")
		el.SetStyle(style)
	})
	a.log.WithComponent("overlay").Debug("decoration added at line %d", line)
}

// applyDecorations registers the configured decoration presets.
func (a *App) applyDecorations(presets []config.DecorationConfig) {
	for _, preset := range presets {
		buf := a.set.Normal()
		line := preset.Line
		if line >= buf.Length() {
			line = buf.Length() - 1
		}

		anchor := decoration.AnchorLeft
		if preset.Anchor == "right" {
			anchor = decoration.AnchorRight
		}
		d := a.registry.Register(buf.AddMarker(line), decoration.Options{
			Width:  preset.Width,
			Height: preset.Height,
			X:      preset.X,
			Anchor: anchor,
		})
		if d == nil {
			continue
		}

		if preset.Hook != "" && a.hooks != nil && a.hooks.Has(preset.Hook) {
			sub, err := a.hooks.Bind(preset.Hook, d)
			if err == nil {
				a.hookSubs.Add(sub)
				continue
			}
			a.log.WithComponent("hook").Warn("binding %q: %v", preset.Hook, err)
		}

		style := core.DefaultStyle()
		if preset.Color != "" {
			if c, err := core.ColorFromHex(preset.Color); err == nil {
				style = core.NewStyle(c)
			} else {
				a.log.WithComponent("overlay").Warn("decoration color: %v", err)
			}
		}
		text := preset.Text
		a.hookSubs.Add(d.OnRender(func(el *surface.Element) {
			el.SetText(text)
			el.SetStyle(style)
		}))
	}
}

// applyConfig swaps in a live-reloaded configuration: existing
// decorations are disposed and the presets re-registered. Renderer
// cadence changes need a restart.
func (a *App) applyConfig(cfg config.Config) {
	a.log.WithComponent("config").Info("configuration reloaded")
	a.hookSubs.Cancel()
	a.registry.Dispose()
	a.cfg = cfg
	a.applyDecorations(cfg.Decorations)
}

// draw paints one frame: base content, then the overlay surfaces.
func (a *App) draw() {
	a.term.Clear()

	dims := a.vp.Dimensions()
	active := a.set.Active()
	base := core.DefaultStyle().Dim()

	if a.set.IsAlt() {
		a.term.SetText(2, 1, "[alt screen] decorations suppressed; press 'a' to return", base)
	} else {
		for row := 0; row < dims.Rows; row++ {
			abs := active.YDisp() + row
			if abs >= active.Length() {
				break
			}
			a.term.SetText(0, row, fmt.Sprintf("%6d  â”‚", abs), base)
		}
	}

	a.term.PaintOverlays(dims)
	a.term.Show()
}

// Shutdown releases everything Run acquired. Safe to call on every
// exit path, including before Run.
func (a *App) Shutdown() {
	if a.shutdown {
		return
	}
	a.shutdown = true

	if a.watcher != nil {
		_ = a.watcher.Close()
	}
	a.hookSubs.Cancel()
	if a.renderer != nil {
		a.renderer.Dispose()
	}
	if a.hooks != nil {
		a.hooks.Close()
	}
	if a.term != nil {
		a.term.Shutdown()
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}
