package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlSettings = `
switcher:
  caption: "〔方案选单〕"
  hotkeys:
    - F4
    - Control+grave
  save_options:
    - ascii_mode
    - full_shape
schema_list:
  - schema: pinyin
    name: Pinyin
  - schema: english
menu:
  page_size: 7
switches:
  - name: ascii_mode
    states: [中文, 西文]
`

const tomlSettings = `
[switcher]
caption = ":-)"
hotkeys = ["F4"]
save_options = ["ascii_mode"]

[[schema_list]]
schema = "pinyin"

[[schema_list]]
schema = "english"

[menu]
page_size = 7
`

const jsonSettings = `{
  "switcher": {"hotkeys": ["F4"], "save_options": ["ascii_mode"]},
  "schema_list": [{"schema": "pinyin"}, {"schema": "english"}],
  "menu": {"page_size": 7}
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadFormats(t *testing.T) {
	cases := []struct {
		name    string
		file    string
		content string
	}{
		{"yaml", "switcher.yaml", yamlSettings},
		{"toml", "switcher.toml", tomlSettings},
		{"json", "switcher.json", jsonSettings},
		{"auto-json", "switcher.conf", jsonSettings},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src, err := Load(writeFile(t, tc.file, tc.content))
			require.NoError(t, err)

			hotkeys, ok := src.GetList("switcher/hotkeys")
			require.True(t, ok)
			first, ok := hotkeys[0].AsString()
			require.True(t, ok)
			assert.Equal(t, "F4", first)

			id, ok := src.GetString("schema_list/@1/schema")
			require.True(t, ok)
			assert.Equal(t, "english", id)

			size, ok := src.GetInt("menu/page_size")
			require.True(t, ok)
			assert.Equal(t, 7, size)
		})
	}
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	src, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	_, ok := src.GetString("switcher/caption")
	assert.False(t, ok)
	_, ok = src.GetList("schema_list")
	assert.False(t, ok)
}

func TestLoadKeepsInvalidEntries(t *testing.T) {
	doc := `
switcher:
  hotkeys: [F4, 7]
schema_list:
  - schema: pinyin
  - english
menu:
  page_size: 12
`
	src, err := Load(writeFile(t, "mixed.yaml", doc))
	require.NoError(t, err)

	id, ok := src.GetString("schema_list/@0/schema")
	require.True(t, ok)
	assert.Equal(t, "pinyin", id)
	size, ok := src.GetInt("menu/page_size")
	require.True(t, ok)
	assert.Equal(t, 12, size)

	var fields []string
	for _, issue := range src.Issues() {
		fields = append(fields, issue.Field)
	}
	assert.Contains(t, fields, "/switcher/hotkeys/1")
	assert.Contains(t, fields, "/schema_list/1")
	assert.NotContains(t, fields, "/menu/page_size")
}

func TestValidateSwitcher(t *testing.T) {
	node, err := Parse([]byte("switcher:\n  hotkeys: F4\n"), FormatYAML)
	require.NoError(t, err)
	err = ValidateSwitcher(node)
	var issues ValidationErrors
	require.ErrorAs(t, err, &issues)
	require.NotEmpty(t, issues)
	assert.Equal(t, "/switcher/hotkeys", issues[0].Field)

	node, err = Parse([]byte("switches:\n  - states: [a, b]\n"), FormatYAML)
	require.NoError(t, err)
	assert.Error(t, ValidateSwitcher(node))

	node, err = Parse([]byte(yamlSettings), FormatYAML)
	require.NoError(t, err)
	assert.NoError(t, ValidateSwitcher(node))
	assert.NoError(t, ValidateSwitcher(Node{}))
}

func TestLoadUnparseableFileFails(t *testing.T) {
	_, err := Load(writeFile(t, "broken.yaml", "switcher: [unclosed"))
	assert.Error(t, err)
}

func TestSourceLookup(t *testing.T) {
	src := NewSource(map[string]any{
		"switcher": map[string]any{
			"caption": "",
			"enabled": true,
			"count":   3,
		},
		"list": []any{"a", "b", "c"},
		"var": map[any]any{
			"option": map[string]any{"ascii_mode": "true"},
		},
	})

	caption, ok := src.GetString("switcher/caption")
	assert.True(t, ok)
	assert.Equal(t, "", caption)

	enabled, ok := src.GetBool("switcher/enabled")
	assert.True(t, ok)
	assert.True(t, enabled)

	n, ok := src.GetInt("switcher/count")
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	s, ok := src.GetString("switcher/count")
	assert.True(t, ok)
	assert.Equal(t, "3", s)

	last, ok := src.GetString("list/@last")
	assert.True(t, ok)
	assert.Equal(t, "c", last)

	_, ok = src.GetString("list/@3")
	assert.False(t, ok)
	_, ok = src.GetString("list/0")
	assert.False(t, ok)

	b, ok := src.GetBool("var/option/ascii_mode")
	assert.True(t, ok)
	assert.True(t, b)

	_, ok = src.GetList("switcher")
	assert.False(t, ok, "a map is not a list")
	_, ok = src.GetString("switcher/missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"caption", "count", "enabled"}, src.Keys("switcher"))
}

func TestLoaderReloadsOnWrite(t *testing.T) {
	path := writeFile(t, "switcher.yaml", "switcher:\n  caption: one\n")

	loader := NewLoader(path)
	defer loader.Close()

	src, err := loader.Load()
	require.NoError(t, err)
	caption, _ := src.GetString("switcher/caption")
	require.Equal(t, "one", caption)

	changed := make(chan string, 1)
	loader.OnChange(func(s *Source) {
		c, _ := s.GetString("switcher/caption")
		select {
		case changed <- c:
		default:
		}
	})
	require.NoError(t, loader.Watch())

	require.NoError(t, os.WriteFile(path, []byte("switcher:\n  caption: two\n"), 0600))

	select {
	case got := <-changed:
		assert.Equal(t, "two", got)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	// the same Source is updated in place
	caption, _ = src.GetString("switcher/caption")
	assert.Equal(t, "two", caption)
}

func TestDefaultAppConfig(t *testing.T) {
	cfg := DefaultAppConfig()
	require.NotNil(t, cfg)
	assert.True(t, strings.HasSuffix(cfg.SchemaConfig, "switcher.yaml"))
	assert.True(t, strings.HasSuffix(cfg.UserDB, "user.db"))
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadAppConfig(t *testing.T) {
	path := writeFile(t, "imeswitch.toml", `
schema_config = "/etc/imeswitch/switcher.yaml"
user_db = "/tmp/user.db"
watch = false

[logging]
level = "debug"
format = "json"
`)
	t.Setenv("IMESWITCH_USER_DB", "/var/lib/imeswitch/user.db")
	t.Setenv("IMESWITCH_LOG_OUTPUT", "stdout")

	cfg, err := LoadAppConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/etc/imeswitch/switcher.yaml", cfg.SchemaConfig)
	assert.Equal(t, "/var/lib/imeswitch/user.db", cfg.UserDB)
	assert.False(t, cfg.Watch)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)
	assert.Equal(t, "org.imeswitch.Switcher", cfg.DBus.BusName)
}

func TestLoadAppConfigMissingFile(t *testing.T) {
	cfg, err := LoadAppConfig(filepath.Join(t.TempDir(), "none.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultAppConfig().DBus.BusName, cfg.DBus.BusName)
}

func TestValidateAppConfig(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.Logging.Level = "loud"
	cfg.Logging.Output = "file"
	cfg.Logging.FilePath = ""

	err := cfg.Validate()
	require.Error(t, err)
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultAppConfig()
	cfg.UserDB = filepath.Join(dir, "nested", "user.db")
	require.NoError(t, cfg.EnsureDirectories())
	_, err := os.Stat(filepath.Join(dir, "nested"))
	assert.NoError(t, err)
}
