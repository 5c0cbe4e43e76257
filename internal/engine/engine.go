// Package engine is the host side of an input session: it owns the
// composition context and the current schema, and it is what a switcher
// attaches to.
package engine

import (
	"log/slog"

	"imeswitch/internal/component"
	"imeswitch/internal/composition"
	"imeswitch/internal/logging"
	"imeswitch/internal/schema"
)

// SchemaHandler is invoked after a schema has been applied.
type SchemaHandler func(s *schema.Schema)

// Engine is a single input session. It is not safe for concurrent use.
type Engine struct {
	ctx    *composition.Context
	schema *schema.Schema
	logger *slog.Logger

	schemaHandlers []SchemaHandler
}

var _ component.Context = (*Engine)(nil)

// New creates an engine with an empty composition and no schema. A nil
// logger uses the process default.
func New(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.Default().WithComponent("engine").Logger
	}
	return &Engine{
		ctx:    composition.NewContext(),
		logger: logger,
	}
}

// Schema returns the current schema, or nil before the first ApplySchema.
func (e *Engine) Schema() *schema.Schema {
	return e.schema
}

// ApplySchema makes s the current schema. The composition is discarded and
// schema change handlers run in subscription order. A nil schema is ignored.
func (e *Engine) ApplySchema(s *schema.Schema) {
	if s == nil {
		return
	}
	prev := ""
	if e.schema != nil {
		prev = e.schema.ID
	}
	e.schema = s
	e.ctx.Clear()
	e.logger.Info("schema applied", "schema", s.ID, "previous", prev)
	for _, h := range e.schemaHandlers {
		h(s)
	}
}

// OnSchemaChange subscribes to schema changes.
func (e *Engine) OnSchemaChange(h SchemaHandler) {
	e.schemaHandlers = append(e.schemaHandlers, h)
}

func (e *Engine) SetOption(name string, value bool) {
	e.ctx.SetOption(name, value)
}

func (e *Engine) GetOption(name string) bool {
	return e.ctx.GetOption(name)
}

// OptionNames returns every option set so far, sorted.
func (e *Engine) OptionNames() []string {
	return e.ctx.OptionNames()
}

// OnOptionUpdate subscribes to option changes.
func (e *Engine) OnOptionUpdate(fn func(name string, value bool)) {
	e.ctx.OnOptionUpdate(func(_ *composition.Context, name string, value bool) {
		fn(name, value)
	})
}

func (e *Engine) Composition() *composition.Composition {
	return e.ctx.Composition()
}

// Input returns the raw input.
func (e *Engine) Input() string {
	return e.ctx.Input()
}

func (e *Engine) SetInput(input string) {
	e.ctx.SetInput(input)
}

// IsComposing reports whether input or segments are pending.
func (e *Engine) IsComposing() bool {
	return e.ctx.IsComposing()
}

func (e *Engine) Clear() {
	e.ctx.Clear()
}

// Highlight moves the selection of the last segment without confirming it.
func (e *Engine) Highlight(index int) bool {
	return e.ctx.Highlight(index)
}

func (e *Engine) Select(index int) bool {
	return e.ctx.Select(index)
}

func (e *Engine) ConfirmCurrentSelection() bool {
	return e.ctx.ConfirmCurrentSelection()
}

func (e *Engine) OnSelect(fn func()) {
	e.ctx.OnSelect(func(*composition.Context) { fn() })
}
