package composition

import (
	"sort"
)

// SelectHandler is invoked synchronously when a candidate is selected.
type SelectHandler func(ctx *Context)

// OptionHandler is invoked synchronously after an option value changes.
type OptionHandler func(ctx *Context, name string, value bool)

// Context is the session state of one input engine. It is not safe for
// concurrent use; one key event stream drives it.
type Context struct {
	input       string
	composition Composition
	options     map[string]bool

	selectHandlers []SelectHandler
	optionHandlers []OptionHandler
}

// NewContext creates an empty context.
func NewContext() *Context {
	return &Context{options: make(map[string]bool)}
}

// Input returns the raw input string.
func (c *Context) Input() string {
	return c.input
}

// SetInput replaces the raw input string.
func (c *Context) SetInput(input string) {
	c.input = input
}

// IsComposing reports whether there is pending input.
func (c *Context) IsComposing() bool {
	return c.input != "" || !c.composition.Empty()
}

// Composition returns the segment stack.
func (c *Context) Composition() *Composition {
	return &c.composition
}

// Clear drops the input and every segment.
func (c *Context) Clear() {
	c.input = ""
	c.composition.Reset()
}

// SetOption sets a boolean option and notifies option handlers.
func (c *Context) SetOption(name string, value bool) {
	c.options[name] = value
	for _, h := range c.optionHandlers {
		h(c, name, value)
	}
}

// GetOption returns the option value; unset options read as false.
func (c *Context) GetOption(name string) bool {
	return c.options[name]
}

// OptionNames returns the names of every option set so far, sorted.
func (c *Context) OptionNames() []string {
	names := make([]string, 0, len(c.options))
	for name := range c.options {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Highlight moves the selection of the last segment to index without
// confirming it. It fails when index is not a realized candidate.
func (c *Context) Highlight(index int) bool {
	seg := c.composition.Back()
	if seg == nil || seg.GetCandidateAt(index) == nil {
		return false
	}
	seg.SelectedIndex = index
	return true
}

// Select highlights index on the last segment and confirms it.
func (c *Context) Select(index int) bool {
	if !c.Highlight(index) {
		return false
	}
	return c.ConfirmCurrentSelection()
}

// ConfirmCurrentSelection confirms the highlighted candidate of the last
// segment and fires the select notification. It reports false, without
// notifying, when nothing is selectable.
func (c *Context) ConfirmCurrentSelection() bool {
	seg := c.composition.Back()
	if seg == nil || seg.GetSelectedCandidate() == nil {
		return false
	}
	seg.Selected = true
	for _, h := range c.selectHandlers {
		h(c)
	}
	return true
}

// OnSelect subscribes to select notifications.
func (c *Context) OnSelect(h SelectHandler) {
	c.selectHandlers = append(c.selectHandlers, h)
}

// OnOptionUpdate subscribes to option changes.
func (c *Context) OnOptionUpdate(h OptionHandler) {
	c.optionHandlers = append(c.optionHandlers, h)
}
