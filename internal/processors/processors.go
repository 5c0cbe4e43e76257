// Package processors provides the key processors a switcher forwards events
// to while its menu is open.
package processors

import (
	"imeswitch/internal/component"
)

// Register adds the selector and key_binder factories to reg.
func Register(reg *component.Registry) {
	reg.RegisterProcessor("selector", func(t component.Ticket) component.Processor {
		return NewSelector(t.Engine)
	})
	reg.RegisterProcessor("key_binder", func(t component.Ticket) component.Processor {
		return NewKeyBinder(t.Engine)
	})
}
