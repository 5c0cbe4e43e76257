package switcher

import (
	"imeswitch/internal/menu"
	"imeswitch/internal/schema"
	"imeswitch/internal/store"
)

// Candidate types produced by the switcher translators.
const (
	TypeSchema = "schema"
	TypeSwitch = "switch"
)

// Command is a menu candidate with an effect on the switcher.
type Command interface {
	menu.Candidate
	Apply(s *Switcher)
}

// SchemaSelection switches the attached context to a schema and remembers it
// as the user's choice.
type SchemaSelection struct {
	SchemaID    string
	Name        string
	CommentText string
}

// NewSchemaSelection creates a selection for sc.
func NewSchemaSelection(sc *schema.Schema) *SchemaSelection {
	return &SchemaSelection{SchemaID: sc.ID, Name: sc.Name}
}

func (c *SchemaSelection) Type() string { return TypeSchema }

func (c *SchemaSelection) Text() string {
	if c.Name != "" {
		return c.Name
	}
	return c.SchemaID
}

func (c *SchemaSelection) Comment() string { return c.CommentText }

// Apply records the schema as previously selected, then applies it.
func (c *SchemaSelection) Apply(s *Switcher) {
	if s.user != nil {
		if err := s.user.SetString(store.KeyPreviouslySelectedSchema, c.SchemaID); err != nil {
			s.logger.Warn("failed to save selected schema", "schema", c.SchemaID, "error", err)
		}
	}
	s.ApplySchema(&schema.Schema{ID: c.SchemaID, Name: c.Name})
}

// OptionSwitch sets a boolean option on the attached context.
type OptionSwitch struct {
	Option      string
	TargetState bool
	TextValue   string
	CommentText string
}

func (c *OptionSwitch) Type() string    { return TypeSwitch }
func (c *OptionSwitch) Text() string    { return c.TextValue }
func (c *OptionSwitch) Comment() string { return c.CommentText }

// Apply sets the option and, for auto-save options, persists the new value.
func (c *OptionSwitch) Apply(s *Switcher) {
	if s.ctx == nil {
		return
	}
	s.ctx.SetOption(c.Option, c.TargetState)
	if !s.IsAutoSave(c.Option) || s.user == nil {
		return
	}
	if err := s.user.SetBool(store.OptionKey(c.Option), c.TargetState); err != nil {
		s.logger.Warn("failed to save option", "option", c.Option, "error", err)
	}
}

var (
	_ Command = (*SchemaSelection)(nil)
	_ Command = (*OptionSwitch)(nil)
)
