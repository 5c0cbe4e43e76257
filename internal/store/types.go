// Package store persists per-user switcher settings: the remembered schema
// and the values of auto-saved options.
package store

import (
	"errors"
	"strconv"
)

// Well-known keys.
const (
	KeyPreviouslySelectedSchema = "var/previously_selected_schema"
	optionKeyPrefix             = "var/option/"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store: closed")

// OptionKey returns the key under which option name is persisted.
func OptionKey(name string) string {
	return optionKeyPrefix + name
}

// Settings is a per-user key/value store. Getters report whether the key is
// present; a read failure reads as absent.
type Settings interface {
	GetString(key string) (string, bool)
	GetBool(key string) (bool, bool)
	SetString(key, value string) error
	SetBool(key string, value bool) error
}

// Entry is one stored setting.
type Entry struct {
	Key       string
	Value     string
	UpdatedNs int64
}

func formatBool(v bool) string {
	return strconv.FormatBool(v)
}

func parseBool(s string) (bool, bool) {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, false
	}
	return b, true
}
