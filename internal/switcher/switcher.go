// Package switcher implements the schema switcher of an input method: a modal
// menu, opened by a hotkey, that lists the configured schemas and option
// toggles, and applies the chosen one to the attached input session.
//
// A Switcher is driven by one serialized key event stream. Nothing in it is
// safe for concurrent use; hosts that also reload settings from another
// goroutine must serialize the two themselves.
package switcher

import (
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"imeswitch/internal/component"
	"imeswitch/internal/composition"
	"imeswitch/internal/config"
	"imeswitch/internal/keyevent"
	"imeswitch/internal/logging"
	"imeswitch/internal/menu"
	"imeswitch/internal/schema"
	"imeswitch/internal/store"
)

// Context is the input session a switcher attaches to.
type Context = component.Context

// Component names looked up in the registry, in creation order.
const (
	KeyBinderName            = "key_binder"
	SelectorName             = "selector"
	SchemaListTranslatorName = "schema_list_translator"
	SwitchTranslatorName     = "switch_translator"
)

// Tag added to the menu segment while schemas are being cycled.
const TagPaging = "paging"

// Config holds the collaborators of a Switcher.
type Config struct {
	// Settings is the settings tree read by LoadSettings. It may be nil.
	Settings *config.Source

	// UserSettings persists option values and the last chosen schema. It
	// may be nil, in which case nothing is restored or saved.
	UserSettings store.Settings

	// Registry resolves processors and translators by name. Missing
	// components are logged and skipped.
	Registry *component.Registry

	// Logger defaults to the process logger.
	Logger *slog.Logger
}

// Switcher is the activation state machine.
type Switcher struct {
	settings *config.Source
	user     store.Settings
	logger   *slog.Logger
	id       string

	ctx    Context
	active bool

	caption     string
	hotkeys     []keyevent.KeyEvent
	saveOptions map[string]struct{}

	processors  []component.Processor
	translators []component.Translator
	schemaList  component.Translator

	subscribed []Context
}

var _ component.Engine = (*Switcher)(nil)

// New creates an inactive, detached switcher, builds its components and
// loads its settings.
func New(cfg Config) *Switcher {
	id := uuid.NewString()
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default().WithComponent("switcher").Logger
	}
	s := &Switcher{
		settings:    cfg.Settings,
		user:        cfg.UserSettings,
		logger:      logger.With("session_id", id),
		id:          id,
		caption:     DefaultCaption,
		saveOptions: make(map[string]struct{}),
	}
	s.InitializeComponents(cfg.Registry)
	s.LoadSettings()
	return s
}

// InitializeComponents rebuilds the processors and translators from reg.
func (s *Switcher) InitializeComponents(reg *component.Registry) {
	s.processors = nil
	s.translators = nil
	s.schemaList = nil

	for _, name := range []string{KeyBinderName, SelectorName} {
		f, ok := reg.Processor(name)
		if !ok {
			s.logger.Warn("processor not available", "name", name)
			continue
		}
		if p := f(component.Ticket{Engine: s, Name: name}); p != nil {
			s.processors = append(s.processors, p)
		}
	}
	for _, name := range []string{SchemaListTranslatorName, SwitchTranslatorName} {
		f, ok := reg.Translator(name)
		if !ok {
			s.logger.Warn("translator not available", "name", name)
			continue
		}
		t := f(component.Ticket{Engine: s, Name: name})
		if t == nil {
			continue
		}
		s.translators = append(s.translators, t)
		if name == SchemaListTranslatorName {
			s.schemaList = t
		}
	}
	s.logger.Debug("components initialized",
		"processors", len(s.processors), "translators", len(s.translators))
}

// SessionID identifies this switcher in logs.
func (s *Switcher) SessionID() string { return s.id }

// Active reports whether the menu is open.
func (s *Switcher) Active() bool { return s.active }

// Attached reports whether a context is attached.
func (s *Switcher) Attached() bool { return s.ctx != nil }

// Context returns the attached context, or nil.
func (s *Switcher) Context() Context { return s.ctx }

// Config returns the settings tree, or nil.
func (s *Switcher) Config() *config.Source { return s.settings }

// UserSettings returns the user settings store, or nil.
func (s *Switcher) UserSettings() store.Settings { return s.user }

// Attach binds ctx and restores every auto-save option that has a persisted
// value. Options without one are left as they are. The context is borrowed;
// passing nil detaches.
func (s *Switcher) Attach(ctx Context) {
	if s.active && ctx != s.ctx {
		s.Deactivate()
	}
	s.ctx = ctx
	if ctx == nil {
		return
	}
	s.subscribe(ctx)

	if s.user == nil {
		return
	}
	for _, name := range s.SaveOptions() {
		if value, ok := s.user.GetBool(store.OptionKey(name)); ok {
			ctx.SetOption(name, value)
			s.logger.Debug("option restored", "option", name, "value", value)
		}
	}
}

func (s *Switcher) subscribe(ctx Context) {
	for _, c := range s.subscribed {
		if c == ctx {
			return
		}
	}
	s.subscribed = append(s.subscribed, ctx)
	ctx.OnSelect(func() { s.onSelect(ctx) })
}

// ProcessKeyEvent handles one key event and reports whether it was consumed.
// Hotkeys are always consumed. While the menu is open every event is
// consumed; otherwise non-hotkeys pass through.
func (s *Switcher) ProcessKeyEvent(ev keyevent.KeyEvent) bool {
	for _, hotkey := range s.hotkeys {
		if ev != hotkey {
			continue
		}
		if !s.active && s.ctx != nil {
			s.Activate()
		} else if s.active {
			s.HighlightNextSchema()
		}
		return true
	}
	if !s.active {
		return false
	}
	for _, p := range s.processors {
		if p.ProcessKeyEvent(ev) != component.Noop {
			return true
		}
	}
	if ev.Release() || ev.Ctrl() || ev.Alt() {
		return true
	}
	switch ev.Keycode {
	case keyevent.XKSpace, keyevent.XKReturn:
		if s.ctx != nil && !s.ctx.ConfirmCurrentSelection() {
			s.logger.Debug("nothing to confirm")
		}
	case keyevent.XKEscape:
		s.Deactivate()
	}
	return true
}

// Activate opens the menu on the last segment of the attached context,
// seeding a placeholder segment that shows the caption when nothing is being
// composed.
func (s *Switcher) Activate() {
	if s.ctx == nil {
		return
	}
	comp := s.ctx.Composition()
	if comp.Empty() {
		// a single space keeps the host composing
		s.ctx.SetInput(" ")
		seg := composition.NewSegment(0, 0)
		seg.Prompt = s.caption
		comp.AddSegment(seg)
	}
	seg := comp.Back()
	m := menu.New()
	seg.Menu = m
	seg.SelectedIndex = 0
	for _, t := range s.translators {
		if tr := t.Query("", seg); tr != nil {
			m.AddTranslation(tr)
		}
	}
	s.active = true
	s.logger.Info("switcher activated")
}

// Deactivate clears the attached composition and closes the menu. It is safe
// to call when already inactive.
func (s *Switcher) Deactivate() {
	if s.ctx != nil {
		s.ctx.Clear()
	}
	if s.active {
		s.logger.Info("switcher deactivated")
	}
	s.active = false
}

// HighlightNextSchema moves the highlight to the next schema candidate after
// the current one. Running off the end of the menu wraps to the first
// candidate, whatever its type.
func (s *Switcher) HighlightNextSchema() {
	if s.ctx == nil {
		return
	}
	comp := s.ctx.Composition()
	if comp == nil || comp.Empty() || comp.Back().Menu == nil {
		return
	}
	seg := comp.Back()
	index := seg.SelectedIndex
	for {
		index++
		if seg.Menu.Prepare(index+1) <= index {
			index = 0
			break
		}
		if c := seg.GetCandidateAt(index); c != nil && c.Type() == TypeSchema {
			break
		}
	}
	seg.SelectedIndex = index
	seg.AddTag(TagPaging)
}

func (s *Switcher) onSelect(ctx Context) {
	if ctx != s.ctx {
		return
	}
	comp := ctx.Composition()
	if comp == nil || comp.Empty() {
		return
	}
	cmd, ok := comp.Back().GetSelectedCandidate().(Command)
	if !ok {
		return
	}
	s.logger.Info("switcher option selected", "type", cmd.Type(), "text", cmd.Text())
	if s.ctx != nil {
		cmd.Apply(s)
	}
	s.Deactivate()
}

// CreateSchema picks the schema to start a session with: the previously
// selected one when it is still listed, else the first listed schema. It
// returns nil when schema_list has no usable entry.
func (s *Switcher) CreateSchema() *schema.Schema {
	list, ok := schema.List(s.settings)
	if !ok {
		s.logger.Warn("schema list not configured")
		return nil
	}
	previous := ""
	if s.user != nil {
		previous, _ = s.user.GetString(store.KeyPreviouslySelectedSchema)
	}
	var recent *schema.Schema
	for _, sc := range list {
		if previous == "" || previous == sc.ID {
			return sc
		}
		if recent == nil {
			recent = sc
		}
	}
	if recent == nil {
		s.logger.Warn("no schema available")
	}
	return recent
}

// ApplySchema closes the menu if open and hands sc to the attached context.
// A nil schema is ignored.
func (s *Switcher) ApplySchema(sc *schema.Schema) {
	if sc == nil {
		return
	}
	if s.active {
		s.Deactivate()
	}
	if s.ctx == nil {
		s.logger.Warn("no context attached", "schema", sc.ID)
		return
	}
	s.ctx.ApplySchema(sc)
}

// SelectNextSchema applies the schema listed right after the current one,
// without opening the menu.
func (s *Switcher) SelectNextSchema() {
	if s.schemaList == nil {
		return
	}
	m := menu.New()
	m.AddTranslation(s.schemaList.Query("", composition.NewSegment(0, 0)))
	if m.Prepare(2) < 2 {
		return
	}
	cmd, ok := m.GetCandidateAt(1).(Command)
	if !ok {
		return
	}
	cmd.Apply(s)
}

// IsAutoSave reports whether option values are persisted per user.
func (s *Switcher) IsAutoSave(option string) bool {
	_, ok := s.saveOptions[option]
	return ok
}

// SaveOptions returns the auto-save option names, sorted.
func (s *Switcher) SaveOptions() []string {
	names := make([]string, 0, len(s.saveOptions))
	for name := range s.saveOptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Caption returns the prompt shown on the placeholder segment.
func (s *Switcher) Caption() string { return s.caption }

// Hotkeys returns a copy of the configured hotkeys.
func (s *Switcher) Hotkeys() []keyevent.KeyEvent {
	return append([]keyevent.KeyEvent(nil), s.hotkeys...)
}

// Segment returns the segment holding the menu while active, or nil.
func (s *Switcher) Segment() *composition.Segment {
	if !s.active || s.ctx == nil {
		return nil
	}
	return s.ctx.Composition().Back()
}
