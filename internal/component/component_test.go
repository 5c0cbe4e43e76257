package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imeswitch/internal/composition"
	"imeswitch/internal/keyevent"
	"imeswitch/internal/menu"
)

type noopProcessor struct{ name string }

func (noopProcessor) ProcessKeyEvent(keyevent.KeyEvent) ProcessResult { return Noop }

type emptyTranslator struct{}

func (emptyTranslator) Query(string, *composition.Segment) menu.Translation { return nil }

func TestRegistryLookup(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterProcessor("selector", func(t Ticket) Processor { return noopProcessor{name: t.Name} })
	reg.RegisterTranslator("switch_translator", func(Ticket) Translator { return emptyTranslator{} })

	f, ok := reg.Processor("selector")
	require.True(t, ok)
	p := f(Ticket{Name: "selector"})
	assert.Equal(t, "selector", p.(noopProcessor).name)
	assert.Equal(t, Noop, p.ProcessKeyEvent(keyevent.KeyEvent{}))

	_, ok = reg.Processor("key_binder")
	assert.False(t, ok)

	tf, ok := reg.Translator("switch_translator")
	require.True(t, ok)
	assert.Nil(t, tf(Ticket{}).Query("", nil))

	_, ok = reg.Translator("selector")
	assert.False(t, ok, "processor and translator namespaces are separate")

	procs, xlators := reg.Names()
	assert.Equal(t, []string{"selector"}, procs)
	assert.Equal(t, []string{"switch_translator"}, xlators)
}

func TestNilRegistry(t *testing.T) {
	var reg *Registry
	_, ok := reg.Processor("selector")
	assert.False(t, ok)
	_, ok = reg.Translator("schema_list_translator")
	assert.False(t, ok)
}

func TestProcessResultString(t *testing.T) {
	assert.Equal(t, "noop", Noop.String())
	assert.Equal(t, "accepted", Accepted.String())
	assert.Equal(t, "rejected", Rejected.String())
}
