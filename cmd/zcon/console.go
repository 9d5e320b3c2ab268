package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/daviddao/zcon/internal/compose"
	"github.com/daviddao/zcon/internal/config"
	"github.com/daviddao/zcon/internal/frame"
	"github.com/daviddao/zcon/internal/logging"
	"github.com/daviddao/zcon/internal/logstore"
	"github.com/daviddao/zcon/internal/render"
	"github.com/daviddao/zcon/internal/session"
)

// consoleOptions holds the flags of the interactive console.
type consoleOptions struct {
	kind  string
	space string
}

func (o *consoleOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.kind, "kind", "", "initial frame kind: command, event, message (default from config)")
	cmd.Flags().StringVar(&o.space, "space", "", "initial target space (default: first configured space)")
}

func runConsole(cmd *cobra.Command, opts *globalOptions, run *consoleOptions) error {
	cfg, path, err := opts.load()
	if err != nil {
		return err
	}
	kind, err := resolveKind(cfg, run.kind)
	if err != nil {
		return err
	}
	spaces, space := resolveSpaces(cfg, run.space)

	logger, closeLog, err := logging.New(logging.ForTerminalUI(cfg.Logger))
	if err != nil {
		return err
	}
	defer closeLog()

	tr, err := openTranscript(cfg)
	if err != nil {
		return err
	}
	if tr != nil {
		defer tr.Close()
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	inbox := newMailbox()
	sess := session.New(session.WebSocketDialer{}, cfg.Hub.URL, inbox.handler(),
		session.WithSubscribe(cfg.Hub.Subscribe),
		session.WithLogger(logger),
	)
	defer sess.Close()

	m := newModel(ctx, sess, inbox, consoleSetup{
		url:         cfg.Hub.URL,
		kind:        kind,
		spaces:      spaces,
		space:       space,
		echoSent:    cfg.Console.EchoSent,
		storeOpts:   append(transcriptSink(tr, sess), logstore.WithLogger(logger)),
		logger:      logger,
		configPath:  path,
		reloadFn:    func() (*config.Config, error) { return opts.reload(path) },
		startedAtFn: time.Now,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())

	// Feed config edits into the console.
	if path != "" {
		w, err := config.NewWatcher(path)
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("config watch disabled")
		} else {
			defer w.Close()
			go func() {
				for range w.Changes() {
					p.Send(configChangedMsg{})
				}
			}()
		}
	}

	_, err = p.Run()
	return err
}

// --- Messages ---

type configChangedMsg struct{}

type configReloadedMsg struct {
	cfg *config.Config
	err error
}

type tickMsg struct{}

// --- Key bindings ---

type keyMap struct {
	Send      key.Binding
	NextSpace key.Binding
	PrevSpace key.Binding
	NextKind  key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	Help      key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Send:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
	NextSpace: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next space")),
	PrevSpace: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev space")),
	NextKind:  key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "next kind")),
	PageUp:    key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
	PageDown:  key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdown", "scroll down")),
	Help:      key.NewBinding(key.WithKeys("ctrl+h"), key.WithHelp("ctrl+h", "help")),
	Quit:      key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.NextSpace, k.NextKind, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Send, k.NextKind, k.NextSpace, k.PrevSpace},
		{k.PageUp, k.PageDown, k.Help, k.Quit},
	}
}

// --- Composer input ---

// composerInput holds the operator's selections. It is shared by pointer
// between the model copies and the composer, and only touched from Update.
type composerInput struct {
	field    textinput.Model
	kinds    []frame.Kind
	kind     int
	spaces   []string
	space    int
	selected bool // text kept after a send; the next keystroke replaces it
}

func newComposerInput(kind frame.Kind, spaces []string, space int) *composerInput {
	field := textinput.New()
	field.Placeholder = "frame name"
	field.Prompt = "> "
	field.Focus()

	kinds := slices.Clone(frame.Kinds)
	k := slices.Index(kinds, kind)
	if k < 0 {
		kinds = append(kinds, kind)
		k = len(kinds) - 1
	}
	return &composerInput{field: field, kinds: kinds, kind: k, spaces: spaces, space: space}
}

func (in *composerInput) Kind() frame.Kind { return in.kinds[in.kind] }
func (in *composerInput) Text() string     { return in.field.Value() }

func (in *composerInput) Space() string {
	if len(in.spaces) == 0 {
		return ""
	}
	return in.spaces[in.space]
}

// PrepareNext refocuses the field and selects its text.
func (in *composerInput) PrepareNext() {
	in.field.Focus()
	in.field.CursorEnd()
	in.selected = in.field.Value() != ""
}

func (in *composerInput) cycleKind() {
	in.kind = (in.kind + 1) % len(in.kinds)
}

func (in *composerInput) cycleSpace(delta int) {
	if n := len(in.spaces); n > 0 {
		in.space = ((in.space+delta)%n + n) % n
	}
}

// setSpaces replaces the space list, keeping the current selection when
// it is still listed.
func (in *composerInput) setSpaces(spaces []string) {
	current := in.Space()
	in.spaces = spaces
	in.space = max(0, slices.Index(spaces, current))
}

func (in *composerInput) update(msg tea.Msg) tea.Cmd {
	if km, ok := msg.(tea.KeyMsg); ok && in.selected {
		in.selected = false
		switch km.Type {
		case tea.KeyRunes, tea.KeySpace, tea.KeyBackspace, tea.KeyDelete:
			in.field.SetValue("")
			if km.Type == tea.KeyBackspace || km.Type == tea.KeyDelete {
				return nil
			}
		}
	}
	var cmd tea.Cmd
	in.field, cmd = in.field.Update(msg)
	return cmd
}

// --- Log view ---

// logView is the scrollable log pane. It is the store's revealer: every
// append clips the new entry to the pane width and scrolls to it. The
// viewport only ever holds the visible window, so an append costs the
// same on a long log as on an empty one.
type logView struct {
	store  *logstore.Store
	styled []string // one per store line, unclipped
	lines  []string // display lines clipped to width
	width  int
	height int
	offset int // first visible display line
	vp     viewport.Model
}

func newLogView() *logView {
	return &logView{vp: viewport.New(0, 0), height: 1}
}

func (v *logView) RevealLatest() {
	v.sync()
	v.offset = v.maxOffset()
	v.show()
}

// sync styles and clips store lines not seen yet.
func (v *logView) sync() {
	for i := len(v.styled); i < v.store.Len(); i++ {
		line, _ := v.store.At(i)
		s := styleEntry(line.Entry)
		v.styled = append(v.styled, s)
		v.lines = appendClipped(v.lines, s, v.width)
	}
}

func appendClipped(lines []string, styled string, width int) []string {
	return append(lines, strings.Split(truncateLines(styled, width), "\n")...)
}

func (v *logView) maxOffset() int {
	return max(0, len(v.lines)-v.height)
}

func (v *logView) atBottom() bool {
	return v.offset >= v.maxOffset()
}

// visible returns the display lines inside the pane.
func (v *logView) visible() []string {
	end := min(len(v.lines), v.offset+v.height)
	return v.lines[v.offset:end]
}

func (v *logView) show() {
	v.vp.SetContent(strings.Join(v.visible(), "\n"))
	v.vp.GotoTop()
}

// scroll moves the window by delta lines, clamped to the log.
func (v *logView) scroll(delta int) {
	v.offset = min(max(0, v.offset+delta), v.maxOffset())
	v.show()
}

// resize re-clips every line when the width changes.
func (v *logView) resize(width, height int) {
	bottom := v.atBottom()
	v.height = max(1, height)
	v.vp.Width = width
	v.vp.Height = v.height
	if width != v.width {
		v.width = width
		v.lines = v.lines[:0]
		for _, s := range v.styled {
			v.lines = appendClipped(v.lines, s, width)
		}
	}
	v.sync()
	if bottom {
		v.offset = v.maxOffset()
	}
	v.scroll(0)
}

// --- Model ---

// consoleSetup carries everything newModel needs besides the session.
type consoleSetup struct {
	url         string
	kind        frame.Kind
	spaces      []string
	space       int
	echoSent    bool
	storeOpts   []logstore.Option
	logger      zerolog.Logger
	configPath  string
	reloadFn    func() (*config.Config, error)
	startedAtFn func() time.Time
}

type uiModel struct {
	ctx      context.Context
	sess     *session.Session
	inbox    *mailbox
	store    *logstore.Store
	log      *logView
	renderer *render.Renderer
	input    *composerInput
	composer *compose.Composer
	logger   zerolog.Logger

	url        string
	configPath string
	reload     func() (*config.Config, error)
	echoSent   bool

	state     session.State
	malformed int
	lastErr   error
	startedAt time.Time

	width    int
	height   int
	help     help.Model
	showHelp bool
}

func newModel(ctx context.Context, sess *session.Session, inbox *mailbox, setup consoleSetup) uiModel {
	lv := newLogView()
	store := logstore.New(append(setup.storeOpts, logstore.WithRevealer(lv))...)
	lv.store = store

	input := newComposerInput(setup.kind, setup.spaces, setup.space)
	now := time.Now
	if setup.startedAtFn != nil {
		now = setup.startedAtFn
	}

	return uiModel{
		ctx:        ctx,
		sess:       sess,
		inbox:      inbox,
		store:      store,
		log:        lv,
		renderer:   render.New(render.DefaultTable()),
		input:      input,
		composer:   compose.New(input, sess),
		logger:     setup.logger.With().Str("component", "console").Logger(),
		url:        setup.url,
		configPath: setup.configPath,
		reload:     setup.reloadFn,
		echoSent:   setup.echoSent,
		state:      session.Connecting,
		startedAt:  now(),
		help:       help.New(),
	}
}

func (m uiModel) Init() tea.Cmd {
	sess, ctx := m.sess, m.ctx
	return tea.Batch(
		textinput.Blink,
		m.inbox.next(),
		func() tea.Msg { return runDoneMsg{err: sess.Run(ctx)} },
		tickEvery(),
	)
}

func tickEvery() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m uiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.sess.Close()
			return m, tea.Quit

		case key.Matches(msg, keys.Send):
			m.submit()
			return m, nil

		case key.Matches(msg, keys.NextKind):
			m.input.cycleKind()
			return m, nil

		case key.Matches(msg, keys.NextSpace):
			m.input.cycleSpace(1)
			return m, nil

		case key.Matches(msg, keys.PrevSpace):
			m.input.cycleSpace(-1)
			return m, nil

		case key.Matches(msg, keys.PageUp):
			m.log.scroll(-m.log.height)
			return m, nil

		case key.Matches(msg, keys.PageDown):
			m.log.scroll(m.log.height)
			return m, nil

		case key.Matches(msg, keys.Help):
			m.showHelp = !m.showHelp
			m.layout()
			return m, nil
		}
		return m, m.input.update(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.field.Width = max(1, msg.Width-4)
		m.layout()
		return m, nil

	case stateMsg, frameMsg, sentMsg, malformedMsg, errMsg:
		m.applySessionMsg(msg)
		return m, m.inbox.next()

	case runDoneMsg:
		if msg.err != nil {
			m.lastErr = msg.err
		}
		return m, nil

	case configChangedMsg:
		return m, m.reloadConfig()

	case configReloadedMsg:
		if msg.err != nil {
			m.lastErr = fmt.Errorf("reload config: %w", msg.err)
			return m, nil
		}
		m.input.setSpaces(slices.Clone(msg.cfg.Console.Spaces))
		m.echoSent = msg.cfg.Console.EchoSent
		m.logger.Info().Str("path", m.configPath).Strs("spaces", msg.cfg.Console.Spaces).Msg("config reloaded")
		return m, nil

	case tickMsg:
		return m, tickEvery()
	}

	return m, m.input.update(msg)
}

// applySessionMsg handles one session event. Log appends happen only here.
func (m *uiModel) applySessionMsg(msg tea.Msg) {
	switch msg := msg.(type) {
	case stateMsg:
		m.state = msg.state
	case frameMsg:
		m.store.Append(m.renderer.Render(msg.frame))
	case sentMsg:
		if m.echoSent {
			m.store.Append(m.renderer.RenderSent(msg.frame))
		}
	case malformedMsg:
		m.malformed++
		m.lastErr = msg.err
	case errMsg:
		m.lastErr = msg.err
	}
}

// submit sends the composer's current values.
func (m *uiModel) submit() {
	if strings.TrimSpace(m.input.Text()) == "" {
		return
	}
	f, err := m.composer.Submit(m.ctx)
	if err != nil {
		m.logger.Warn().Err(err).Stringer("kind", f.Kind).Str("name", f.Name).Msg("send failed")
		m.lastErr = err
		return
	}
	m.lastErr = nil
}

func (m uiModel) reloadConfig() tea.Cmd {
	reload := m.reload
	if reload == nil {
		return nil
	}
	return func() tea.Msg {
		cfg, err := reload()
		return configReloadedMsg{cfg: cfg, err: err}
	}
}

// layout sizes the log pane: title, input and status lines are fixed.
func (m *uiModel) layout() {
	if m.width == 0 {
		return
	}
	reserved := 3
	if m.showHelp {
		reserved += 2
	}
	m.log.resize(m.width, m.height-reserved)
}

// --- View rendering ---

func (m uiModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(m.renderTitleBar())
	b.WriteRune('\n')

	b.WriteString(m.log.vp.View())
	b.WriteRune('\n')

	b.WriteString(truncateLines(m.renderInput(), m.width))
	b.WriteRune('\n')

	if m.showHelp {
		b.WriteString(m.help.View(keys))
	} else {
		b.WriteString(m.renderStatusBar())
	}

	return b.String()
}

func (m uiModel) renderTitleBar() string {
	title := titleStyle.Render("zcon")
	stats := dimStyle.Render(fmt.Sprintf("%s | %s lines | %s malformed",
		m.url,
		humanize.Comma(int64(m.store.Len())),
		humanize.Comma(int64(m.malformed)),
	))
	gap := strings.Repeat(" ", max(0, m.width-lipgloss.Width(title)-lipgloss.Width(stats)-1))
	return truncateLines(title+gap+stats, m.width)
}

func (m uiModel) renderInput() string {
	kind := selectorStyle.Render(m.input.Kind().String())
	space := selectorStyle.Render("@" + m.input.Space())
	return kind + " " + space + " " + m.input.field.View()
}

func (m uiModel) renderStatusBar() string {
	st := stateStyles[m.state.String()].Render("● " + m.state.String())
	left := " " + st
	if m.lastErr != nil {
		left += " " + errorStyle.Render(errorText(m.lastErr))
	}
	right := fmt.Sprintf("up %s | ctrl+h: help ", strings.TrimSuffix(humanize.RelTime(m.startedAt, time.Now(), "", ""), " "))
	gap := strings.Repeat(" ", max(0, m.width-lipgloss.Width(left)-lipgloss.Width(right)))
	return truncateLines(statusBarStyle.Render(left+gap+right), m.width)
}

// errorText shortens well-known errors for the status bar.
func errorText(err error) string {
	switch {
	case errors.Is(err, session.ErrNotConnected):
		return "not connected"
	case errors.Is(err, frame.ErrMalformedFrame):
		return "discarded malformed frame"
	}
	return err.Error()
}
