package processors

import (
	"imeswitch/internal/component"
	"imeswitch/internal/keyevent"
	"imeswitch/internal/logging"
)

// BindingsKey is the settings path of the key bindings.
const BindingsKey = "key_binder/bindings"

// Binding rewrites an accepted chord into another one.
type Binding struct {
	Accept keyevent.KeyEvent
	Send   keyevent.KeyEvent
}

// KeyBinder replays bound chords through the engine. Bindings are read from
// the settings on every event so that reloads take effect at once.
type KeyBinder struct {
	engine      component.Engine
	redirecting bool
}

// NewKeyBinder creates a key binder bound to engine.
func NewKeyBinder(engine component.Engine) *KeyBinder {
	return &KeyBinder{engine: engine}
}

// Bindings returns the valid configured bindings in order.
func (p *KeyBinder) Bindings() []Binding {
	src := p.engine.Config()
	if src == nil {
		return nil
	}
	items, ok := src.GetList(BindingsKey)
	if !ok {
		return nil
	}
	out := make([]Binding, 0, len(items))
	for _, item := range items {
		accept, ok1 := item.Get("accept").AsString()
		send, ok2 := item.Get("send").AsString()
		if !ok1 || !ok2 {
			continue
		}
		a, err := keyevent.Parse(accept)
		if err != nil {
			logging.Debug("invalid key binding", "accept", accept, "error", err)
			continue
		}
		s, err := keyevent.Parse(send)
		if err != nil {
			logging.Debug("invalid key binding", "send", send, "error", err)
			continue
		}
		out = append(out, Binding{Accept: a, Send: s})
	}
	return out
}

func (p *KeyBinder) ProcessKeyEvent(ev keyevent.KeyEvent) component.ProcessResult {
	if p.redirecting {
		return component.Noop
	}
	for _, b := range p.Bindings() {
		if ev != b.Accept {
			continue
		}
		p.redirecting = true
		p.engine.ProcessKeyEvent(b.Send)
		p.redirecting = false
		return component.Accepted
	}
	return component.Noop
}
