package switcher

import (
	"fmt"

	"imeswitch/internal/component"
	"imeswitch/internal/composition"
	"imeswitch/internal/menu"
	"imeswitch/internal/schema"
)

// SwitchesKey is the settings path of the option toggles.
const SwitchesKey = "switches"

// CommentCurrent marks the schema in use.
const CommentCurrent = "current"

// RegisterDefaults adds the schema list and switch translators to reg.
func RegisterDefaults(reg *component.Registry) {
	reg.RegisterTranslator(SchemaListTranslatorName, func(t component.Ticket) component.Translator {
		return &SchemaListTranslator{engine: t.Engine}
	})
	reg.RegisterTranslator(SwitchTranslatorName, func(t component.Ticket) component.Translator {
		return &SwitchTranslator{engine: t.Engine}
	})
}

// SchemaListTranslator lists the configured schemas, the one in use first and
// the others in configuration order.
type SchemaListTranslator struct {
	engine component.Engine
}

func (t *SchemaListTranslator) Query(input string, seg *composition.Segment) menu.Translation {
	list, ok := schema.List(t.engine.Config())
	if !ok || len(list) == 0 {
		return nil
	}

	var current *schema.Schema
	if ctx := t.engine.Context(); ctx != nil {
		current = ctx.Schema()
	}

	fifo := menu.NewFifoTranslation()
	if current != nil {
		if sc, ok := schema.Find(list, current.ID); ok {
			c := NewSchemaSelection(sc)
			c.CommentText = CommentCurrent
			fifo.Append(c)
		} else {
			current = nil
		}
	}
	for _, sc := range list {
		if current != nil && sc.ID == current.ID {
			continue
		}
		fifo.Append(NewSchemaSelection(sc))
	}
	return fifo
}

// SwitchTranslator lists the configured option toggles. Each entry is
// {name, states: [off, on]}; the candidate flips the option's current value
// on the attached context.
type SwitchTranslator struct {
	engine component.Engine
}

func (t *SwitchTranslator) Query(input string, seg *composition.Segment) menu.Translation {
	ctx := t.engine.Context()
	src := t.engine.Config()
	if ctx == nil || src == nil {
		return nil
	}
	items, ok := src.GetList(SwitchesKey)
	if !ok {
		return nil
	}

	fifo := menu.NewFifoTranslation()
	for _, item := range items {
		name, ok := item.Get("name").AsString()
		if !ok || name == "" {
			continue
		}
		states, ok := item.Get("states").AsList()
		if !ok || len(states) != 2 {
			continue
		}
		off, _ := states[0].AsString()
		on, _ := states[1].AsString()
		labels := [2]string{off, on}

		current := ctx.GetOption(name)
		fifo.Append(&OptionSwitch{
			Option:      name,
			TargetState: !current,
			TextValue:   fmt.Sprintf("%s → %s", labels[b2i(current)], labels[b2i(!current)]),
		})
	}
	if fifo.Size() == 0 {
		return nil
	}
	return fifo
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
