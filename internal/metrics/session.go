package metrics

import (
	"time"
)

// SessionMetrics are the metrics of one switcher session.
type SessionMetrics struct {
	KeysHandled   *Counter
	KeysPassed    *Counter
	Activations   *Counter
	SchemaChanges *Counter
	OptionChanges *Counter
	Active        *Gauge
	KeyLatency    *Summary
}

// NewSessionMetrics registers the session metrics in r.
func NewSessionMetrics(r *Registry) *SessionMetrics {
	const keys = "key_events_total"
	const keysHelp = "Key events offered to the switcher"
	return &SessionMetrics{
		KeysHandled:   r.Counter(keys, keysHelp, Labels{"handled": "true"}),
		KeysPassed:    r.Counter(keys, keysHelp, Labels{"handled": "false"}),
		Activations:   r.Counter("activations_total", "Times the switcher menu was opened", nil),
		SchemaChanges: r.Counter("schema_changes_total", "Schemas applied to the session", nil),
		OptionChanges: r.Counter("option_changes_total", "Option values set on the session", nil),
		Active:        r.Gauge("active", "Whether the switcher menu is open", nil),
		KeyLatency:    r.Summary("key_event_seconds", "Time spent handling key events", nil),
	}
}

// ObserveKey records one key event. wasActive and active are the switcher
// state before and after it.
func (m *SessionMetrics) ObserveKey(handled, wasActive, active bool, took time.Duration) {
	if handled {
		m.KeysHandled.Inc()
	} else {
		m.KeysPassed.Inc()
	}
	if active && !wasActive {
		m.Activations.Inc()
	}
	if active {
		m.Active.Set(1)
	} else {
		m.Active.Set(0)
	}
	m.KeyLatency.Observe(took)
}
