package switcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imeswitch/internal/component"
	"imeswitch/internal/composition"
	"imeswitch/internal/config"
	"imeswitch/internal/engine"
	"imeswitch/internal/keyevent"
	"imeswitch/internal/logging"
	"imeswitch/internal/processors"
	"imeswitch/internal/schema"
	"imeswitch/internal/store"
)

const testSettings = `
switcher:
  caption: "〔方案选单〕"
  hotkeys:
    - F4
    - Control+grave
  save_options:
    - ascii_mode
schema_list:
  - schema: pinyin
    name: Pinyin
  - schema: english
  - schema: cangjie
switches:
  - name: ascii_mode
    states: [中文, 西文]
  - name: full_shape
    states: [半角, 全角]
`

type fixture struct {
	sw      *Switcher
	eng     *engine.Engine
	user    *store.Memory
	src     *config.Source
	applied []string
}

func parseSettings(t *testing.T, doc string) *config.Source {
	t.Helper()
	node, err := config.Parse([]byte(doc), config.FormatYAML)
	require.NoError(t, err)
	src := config.NewSource(nil)
	src.Replace(node)
	return src
}

func defaultRegistry() *component.Registry {
	reg := component.NewRegistry()
	processors.Register(reg)
	RegisterDefaults(reg)
	return reg
}

func newFixture(t *testing.T, doc string) *fixture {
	t.Helper()
	f := &fixture{
		eng:  engine.New(logging.Discard().Logger),
		user: store.NewMemory(),
		src:  parseSettings(t, doc),
	}
	f.eng.OnSchemaChange(func(s *schema.Schema) { f.applied = append(f.applied, s.ID) })
	f.sw = New(Config{
		Settings:     f.src,
		UserSettings: f.user,
		Registry:     defaultRegistry(),
		Logger:       logging.Discard().Logger,
	})
	return f
}

func (f *fixture) attach() *fixture {
	f.sw.Attach(f.eng)
	return f
}

func (f *fixture) press(t *testing.T, chord string) bool {
	t.Helper()
	return f.sw.ProcessKeyEvent(keyevent.MustParse(chord))
}

func (f *fixture) selectedIndex(t *testing.T) int {
	t.Helper()
	seg := f.eng.Composition().Back()
	require.NotNil(t, seg)
	return seg.SelectedIndex
}

func TestNewLoadsSettings(t *testing.T) {
	f := newFixture(t, testSettings)
	assert.Equal(t, "〔方案选单〕", f.sw.Caption())
	assert.Equal(t, []keyevent.KeyEvent{
		keyevent.MustParse("F4"),
		keyevent.MustParse("Control+grave"),
	}, f.sw.Hotkeys())
	assert.True(t, f.sw.IsAutoSave("ascii_mode"))
	assert.False(t, f.sw.IsAutoSave("full_shape"))
	assert.False(t, f.sw.Active())
	assert.False(t, f.sw.Attached())
	assert.NotEmpty(t, f.sw.SessionID())
}

func TestHotkeyIsAlwaysHandled(t *testing.T) {
	f := newFixture(t, testSettings)

	// detached: swallowed, no activation
	assert.True(t, f.press(t, "F4"))
	assert.False(t, f.sw.Active())

	f.attach()
	assert.True(t, f.press(t, "Control+grave"))
	assert.True(t, f.sw.Active())
	assert.True(t, f.press(t, "F4"))
	assert.True(t, f.sw.Active())
}

func TestInactivePassesThrough(t *testing.T) {
	f := newFixture(t, testSettings).attach()
	assert.False(t, f.press(t, "a"))
	assert.False(t, f.press(t, "Return"))
	assert.False(t, f.press(t, "Escape"))
	assert.False(t, f.sw.Active())
}

func TestActivateSeedsPlaceholderSegment(t *testing.T) {
	f := newFixture(t, testSettings).attach()
	f.eng.ApplySchema(schema.New("english"))

	f.sw.Activate()
	require.True(t, f.sw.Active())
	assert.Equal(t, " ", f.eng.Input())
	assert.True(t, f.eng.IsComposing())

	seg := f.sw.Segment()
	require.NotNil(t, seg)
	assert.Equal(t, "〔方案选单〕", seg.Prompt)
	require.NotNil(t, seg.Menu)
	assert.Equal(t, 0, seg.SelectedIndex)

	require.Equal(t, 5, seg.Menu.Prepare(10))
	first := seg.GetCandidateAt(0)
	assert.Equal(t, TypeSchema, first.Type())
	assert.Equal(t, "english", first.Text())
	assert.Equal(t, CommentCurrent, first.Comment())
	assert.Equal(t, "Pinyin", seg.GetCandidateAt(1).Text())
	assert.Equal(t, "cangjie", seg.GetCandidateAt(2).Text())
	assert.Equal(t, TypeSwitch, seg.GetCandidateAt(3).Type())
	assert.Equal(t, "中文 → 西文", seg.GetCandidateAt(3).Text())
	assert.Equal(t, "半角 → 全角", seg.GetCandidateAt(4).Text())
}

func TestActivateReusesOpenComposition(t *testing.T) {
	f := newFixture(t, testSettings).attach()
	f.eng.SetInput("nihao")
	f.eng.Composition().AddSegment(composition.NewSegment(0, 5))

	f.sw.Activate()
	assert.Equal(t, 1, f.eng.Composition().Len())
	assert.Equal(t, "nihao", f.eng.Input())
	assert.NotNil(t, f.eng.Composition().Back().Menu)
}

func TestHighlightNextSchemaVisitsInOrderAndWraps(t *testing.T) {
	f := newFixture(t, testSettings).attach()

	f.press(t, "F4")
	assert.Equal(t, 0, f.selectedIndex(t))

	f.press(t, "F4")
	assert.Equal(t, 1, f.selectedIndex(t))
	assert.True(t, f.eng.Composition().Back().HasTag(TagPaging))

	f.press(t, "F4")
	assert.Equal(t, 2, f.selectedIndex(t))

	// the switches after the last schema are skipped, then the menu wraps
	f.press(t, "F4")
	assert.Equal(t, 0, f.selectedIndex(t))

	f.press(t, "F4")
	assert.Equal(t, 1, f.selectedIndex(t))
}

func TestHighlightNextSchemaSingleSchemaWrapsToSelf(t *testing.T) {
	f := newFixture(t, `
switcher:
  hotkeys: [F4]
schema_list:
  - schema: pinyin
switches:
  - name: ascii_mode
    states: [off, on]
`).attach()

	f.press(t, "F4")
	require.True(t, f.sw.Active())
	for i := 0; i < 3; i++ {
		f.press(t, "F4")
		assert.Equal(t, 0, f.selectedIndex(t))
	}
}

func TestHighlightNextSchemaWithoutMenu(t *testing.T) {
	f := newFixture(t, testSettings)
	f.sw.HighlightNextSchema()

	f.attach()
	f.sw.HighlightNextSchema()
	assert.True(t, f.eng.Composition().Empty())
}

func TestEscapeDeactivates(t *testing.T) {
	f := newFixture(t, testSettings).attach()
	f.press(t, "F4")
	require.True(t, f.sw.Active())

	assert.True(t, f.press(t, "Escape"))
	assert.False(t, f.sw.Active())
	assert.True(t, f.eng.Composition().Empty())
	assert.Equal(t, "", f.eng.Input())

	// idempotent
	f.sw.Deactivate()
	assert.False(t, f.sw.Active())
}

func TestConfirmWithSelectionDeactivates(t *testing.T) {
	for _, key := range []string{"Return", "space"} {
		t.Run(key, func(t *testing.T) {
			f := newFixture(t, testSettings).attach()
			f.press(t, "F4")
			f.press(t, "F4")

			assert.True(t, f.press(t, key))
			assert.False(t, f.sw.Active())
			assert.Equal(t, []string{"english"}, f.applied)

			prev, ok := f.user.GetString(store.KeyPreviouslySelectedSchema)
			require.True(t, ok)
			assert.Equal(t, "english", prev)
		})
	}
}

func TestConfirmWithoutSelectionStaysActive(t *testing.T) {
	f := newFixture(t, `
switcher:
  hotkeys: [F4]
`).attach()

	f.press(t, "F4")
	require.True(t, f.sw.Active())
	assert.True(t, f.press(t, "Return"))
	assert.True(t, f.sw.Active())
	assert.Empty(t, f.applied)
}

func TestActiveSwallowsSpuriousChords(t *testing.T) {
	f := newFixture(t, testSettings).attach()
	f.press(t, "F4")

	for _, chord := range []string{"Release+a", "Control+Return", "Alt+space", "x"} {
		assert.True(t, f.press(t, chord), chord)
		assert.True(t, f.sw.Active(), chord)
	}
	assert.Empty(t, f.applied)
}

func TestAttachRestoresSavedOptions(t *testing.T) {
	f := newFixture(t, testSettings)
	require.NoError(t, f.user.SetBool(store.OptionKey("ascii_mode"), true))
	require.NoError(t, f.user.SetBool(store.OptionKey("full_shape"), true))

	f.attach()
	assert.True(t, f.eng.GetOption("ascii_mode"))
	assert.False(t, f.eng.GetOption("full_shape"), "not an auto-save option")
}

func TestAttachLeavesUnsavedOptionsAlone(t *testing.T) {
	f := newFixture(t, testSettings)
	f.eng.SetOption("ascii_mode", true)

	f.attach()
	assert.True(t, f.eng.GetOption("ascii_mode"))
	assert.Equal(t, []string{"ascii_mode"}, f.eng.OptionNames())
}

func TestCreateSchema(t *testing.T) {
	doc := `
schema_list:
  - schema: A
  - schema: B
  - schema: C
`
	cases := []struct {
		previous string
		set      bool
		want     string
	}{
		{"B", true, "B"},
		{"", true, "A"},
		{"Z", true, "A"},
		{"", false, "A"},
		{"C", true, "C"},
	}
	for _, tc := range cases {
		t.Run("previous="+tc.previous, func(t *testing.T) {
			f := newFixture(t, doc)
			if tc.set {
				require.NoError(t, f.user.SetString(store.KeyPreviouslySelectedSchema, tc.previous))
			}
			sc := f.sw.CreateSchema()
			require.NotNil(t, sc)
			assert.Equal(t, tc.want, sc.ID)
		})
	}
}

func TestCreateSchemaNoneAvailable(t *testing.T) {
	f := newFixture(t, `switcher: {}`)
	assert.Nil(t, f.sw.CreateSchema())

	f = newFixture(t, `
schema_list:
  - name: unnamed
  - schema: ""
`)
	assert.Nil(t, f.sw.CreateSchema())

	sw := New(Config{Logger: logging.Discard().Logger})
	assert.Nil(t, sw.CreateSchema())
}

func TestCreateSchemaSkipsMalformedEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "switcher.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
switcher:
  hotkeys: [F4, 12]
schema_list:
  - stray
  - schema: english
menu:
  page_size: 12
`), 0600))

	src, err := config.Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, src.Issues())

	sw := New(Config{
		Settings:     src,
		UserSettings: store.NewMemory(),
		Registry:     defaultRegistry(),
		Logger:       logging.Discard().Logger,
	})
	sc := sw.CreateSchema()
	require.NotNil(t, sc)
	assert.Equal(t, "english", sc.ID)
	assert.Equal(t, []keyevent.KeyEvent{keyevent.MustParse("F4")}, sw.Hotkeys())
}

func TestApplySchema(t *testing.T) {
	f := newFixture(t, testSettings)
	f.sw.ApplySchema(schema.New("english"))
	assert.Empty(t, f.applied, "detached")

	f.attach()
	f.sw.ApplySchema(nil)
	assert.Empty(t, f.applied)

	f.press(t, "F4")
	require.True(t, f.sw.Active())
	f.sw.ApplySchema(schema.New("english"))
	assert.False(t, f.sw.Active())
	assert.True(t, f.eng.Composition().Empty())
	assert.Equal(t, []string{"english"}, f.applied)
}

func TestSelectNextSchema(t *testing.T) {
	f := newFixture(t, testSettings).attach()
	f.eng.ApplySchema(schema.New("pinyin"))
	f.applied = nil

	f.sw.SelectNextSchema()
	assert.Equal(t, []string{"english"}, f.applied)
	assert.False(t, f.sw.Active())

	// english is now current, so the next one is the first other entry
	f.sw.SelectNextSchema()
	assert.Equal(t, []string{"english", "pinyin"}, f.applied)
}

func TestSelectNextSchemaNeedsTwoSchemas(t *testing.T) {
	f := newFixture(t, `
schema_list:
  - schema: pinyin
switches:
  - name: ascii_mode
    states: [off, on]
`).attach()
	f.sw.SelectNextSchema()
	assert.Empty(t, f.applied)
}

func TestToggleOptionFromMenu(t *testing.T) {
	f := newFixture(t, testSettings).attach()

	f.press(t, "F4")
	// three schemas, then ascii_mode
	for i := 0; i < 3; i++ {
		assert.True(t, f.press(t, "Down"))
	}
	require.Equal(t, 3, f.selectedIndex(t))

	f.press(t, "Return")
	assert.False(t, f.sw.Active())
	assert.True(t, f.eng.GetOption("ascii_mode"))
	saved, ok := f.user.GetBool(store.OptionKey("ascii_mode"))
	require.True(t, ok)
	assert.True(t, saved)

	// reopening offers the reverse toggle
	f.press(t, "F4")
	seg := f.sw.Segment()
	seg.Menu.Prepare(4)
	assert.Equal(t, "西文 → 中文", seg.GetCandidateAt(3).Text())
}

func TestToggleNonAutoSaveOptionIsNotPersisted(t *testing.T) {
	f := newFixture(t, testSettings).attach()

	f.press(t, "F4")
	// full_shape is the fifth candidate, number 5 on the first page
	assert.True(t, f.press(t, "5"))
	assert.False(t, f.sw.Active())
	assert.True(t, f.eng.GetOption("full_shape"))
	_, ok := f.user.GetBool(store.OptionKey("full_shape"))
	assert.False(t, ok)
}

func TestKeyBinderRedirect(t *testing.T) {
	f := newFixture(t, testSettings+`
key_binder:
  bindings:
    - {accept: Control+n, send: Down}
`).attach()

	f.press(t, "F4")
	assert.True(t, f.press(t, "Control+n"))
	assert.Equal(t, 1, f.selectedIndex(t))
}

func TestMissingComponentsDegrade(t *testing.T) {
	eng := engine.New(logging.Discard().Logger)
	sw := New(Config{
		Settings: parseSettings(t, testSettings),
		Registry: component.NewRegistry(),
		Logger:   logging.Discard().Logger,
	})
	sw.Attach(eng)

	assert.True(t, sw.ProcessKeyEvent(keyevent.MustParse("F4")))
	require.True(t, sw.Active())
	assert.True(t, sw.Segment().Menu.Empty())

	sw.SelectNextSchema()
	assert.Nil(t, eng.Schema())
}

func TestEndToEnd(t *testing.T) {
	f := newFixture(t, `
switcher:
  hotkeys: [F4]
  save_options: []
schema_list:
  - schema: pinyin
  - schema: english
switches:
  - name: ascii_mode
    states: [中文, 西文]
`).attach()

	assert.True(t, f.press(t, "F4"))
	require.True(t, f.sw.Active())
	seg := f.sw.Segment()
	assert.Equal(t, 3, seg.Menu.Prepare(3))

	assert.True(t, f.press(t, "F4"))
	assert.Equal(t, 1, f.selectedIndex(t))

	assert.True(t, f.press(t, "Return"))
	assert.Equal(t, []string{"english"}, f.applied)
	assert.False(t, f.sw.Active())
	assert.Equal(t, "english", f.eng.Schema().ID)
}
