package store

import (
	"bytes"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "user.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenAndClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close should not error: %v", err)
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "nested", "test.db")

	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()
}

func TestSettingsRoundTrip(t *testing.T) {
	u := openTestStore(t).Scope("alice")

	_, ok := u.GetString(KeyPreviouslySelectedSchema)
	assert.False(t, ok)

	require.NoError(t, u.SetString(KeyPreviouslySelectedSchema, "pinyin"))
	require.NoError(t, u.SetBool(OptionKey("ascii_mode"), true))

	v, ok := u.GetString(KeyPreviouslySelectedSchema)
	require.True(t, ok)
	assert.Equal(t, "pinyin", v)

	b, ok := u.GetBool(OptionKey("ascii_mode"))
	require.True(t, ok)
	assert.True(t, b)

	// overwrite
	require.NoError(t, u.SetBool(OptionKey("ascii_mode"), false))
	b, ok = u.GetBool(OptionKey("ascii_mode"))
	require.True(t, ok)
	assert.False(t, b)
}

func TestScopesAreIsolated(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Scope("alice").SetString(KeyPreviouslySelectedSchema, "pinyin"))

	_, ok := s.Scope("bob").GetString(KeyPreviouslySelectedSchema)
	assert.False(t, ok)
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Scope("u").SetBool(OptionKey("full_shape"), true))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	b, ok := s.Scope("u").GetBool(OptionKey("full_shape"))
	require.True(t, ok)
	assert.True(t, b)
}

func TestNonBooleanReadsAsAbsent(t *testing.T) {
	u := openTestStore(t).Scope("u")
	require.NoError(t, u.SetString(OptionKey("ascii_mode"), "maybe"))
	_, ok := u.GetBool(OptionKey("ascii_mode"))
	assert.False(t, ok)
}

func TestListAndDelete(t *testing.T) {
	u := openTestStore(t).Scope("u")
	require.NoError(t, u.SetBool(OptionKey("b"), true))
	require.NoError(t, u.SetBool(OptionKey("a"), false))
	require.NoError(t, u.SetString(KeyPreviouslySelectedSchema, "x"))

	entries, err := u.List("var/option/")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, OptionKey("a"), entries[0].Key)
	assert.Equal(t, "false", entries[0].Value)

	require.NoError(t, u.Delete(OptionKey("a")))
	entries, err = u.List("var/option/")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestClosedStore(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "user.db"))
	require.NoError(t, err)
	var buf bytes.Buffer
	s.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	require.NoError(t, s.Close())

	u := s.Scope("u")
	err = u.SetString("k", "v")
	assert.True(t, errors.Is(err, ErrClosed))
	_, ok := u.GetString("k")
	assert.False(t, ok)
	assert.Contains(t, buf.String(), "user setting unreadable")
	assert.Contains(t, buf.String(), "key=k")
}

func TestListNonASCIIPrefix(t *testing.T) {
	u := openTestStore(t).Scope("u")
	require.NoError(t, u.SetBool(OptionKey("全角"), true))
	require.NoError(t, u.SetBool(OptionKey("全角_extra"), false))
	require.NoError(t, u.SetBool(OptionKey("ascii_mode"), true))

	entries, err := u.List(OptionKey("全角"))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, OptionKey("全角"), entries[0].Key)

	all, err := u.List("")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMemory(t *testing.T) {
	var s Settings = NewMemory()
	require.NoError(t, s.SetBool(OptionKey("ascii_mode"), true))
	b, ok := s.GetBool(OptionKey("ascii_mode"))
	assert.True(t, ok)
	assert.True(t, b)

	_, ok = s.GetString("missing")
	assert.False(t, ok)
}
