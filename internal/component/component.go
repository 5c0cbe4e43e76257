// Package component defines the processor and translator plug-in contracts
// of the switcher and a name-keyed registry of their factories.
package component

import (
	"sort"
	"sync"

	"imeswitch/internal/composition"
	"imeswitch/internal/config"
	"imeswitch/internal/keyevent"
	"imeswitch/internal/menu"
	"imeswitch/internal/schema"
)

// ProcessResult is the outcome of offering a key event to a processor.
type ProcessResult int

const (
	// Noop means the processor ignored the event.
	Noop ProcessResult = iota
	// Accepted means the processor consumed the event.
	Accepted
	// Rejected means the processor consumed the event and refused it.
	Rejected
)

func (r ProcessResult) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	default:
		return "noop"
	}
}

// Context is the host input session a switcher is attached to. It is
// borrowed: the surrounding engine owns it and controls its lifetime.
type Context interface {
	SetOption(name string, value bool)
	GetOption(name string) bool

	ApplySchema(s *schema.Schema)
	Schema() *schema.Schema

	Composition() *composition.Composition
	SetInput(input string)
	Clear()

	// Select highlights index on the last segment and confirms it.
	Select(index int) bool
	// ConfirmCurrentSelection confirms the highlighted candidate and fires
	// the select notification synchronously. It reports false when nothing
	// was selectable.
	ConfirmCurrentSelection() bool
	// OnSelect subscribes to select notifications.
	OnSelect(fn func())
}

// Engine is what a component sees of the engine that created it.
type Engine interface {
	// ProcessKeyEvent feeds a key event back through the engine.
	ProcessKeyEvent(ev keyevent.KeyEvent) bool
	// Config returns the settings tree, or nil.
	Config() *config.Source
	// Context returns the attached context, or nil when detached.
	Context() Context
}

// Ticket carries what a factory needs to build a component.
type Ticket struct {
	Engine Engine
	Name   string
}

// Processor handles key events ahead of the engine's own handling.
type Processor interface {
	ProcessKeyEvent(ev keyevent.KeyEvent) ProcessResult
}

// Translator produces candidates for an input pattern on a segment. It
// returns nil when it has nothing to offer.
type Translator interface {
	Query(input string, seg *composition.Segment) menu.Translation
}

// ProcessorFactory builds a processor for a ticket.
type ProcessorFactory func(t Ticket) Processor

// TranslatorFactory builds a translator for a ticket.
type TranslatorFactory func(t Ticket) Translator

// Registry maps component names to factories. It is safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	processors  map[string]ProcessorFactory
	translators map[string]TranslatorFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		processors:  make(map[string]ProcessorFactory),
		translators: make(map[string]TranslatorFactory),
	}
}

// RegisterProcessor binds name to f, replacing any previous binding.
func (r *Registry) RegisterProcessor(name string, f ProcessorFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processors[name] = f
}

// RegisterTranslator binds name to f, replacing any previous binding.
func (r *Registry) RegisterTranslator(name string, f TranslatorFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.translators[name] = f
}

// Processor looks up a processor factory.
func (r *Registry) Processor(name string) (ProcessorFactory, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.processors[name]
	return f, ok
}

// Translator looks up a translator factory.
func (r *Registry) Translator(name string) (TranslatorFactory, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.translators[name]
	return f, ok
}

// Names returns the registered processor and translator names, sorted.
func (r *Registry) Names() (processors, translators []string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name := range r.processors {
		processors = append(processors, name)
	}
	for name := range r.translators {
		translators = append(translators, name)
	}
	sort.Strings(processors)
	sort.Strings(translators)
	return processors, translators
}
