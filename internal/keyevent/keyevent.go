// Package keyevent models key chords as delivered by the input-method host:
// an X11 keysym plus an IBus-style modifier mask.
//
// Chords have a compact text form used by configuration files:
//
//	F4
//	Control+grave
//	Control+Shift+4
//	Release+Shift_L
//
// Modifier names come first, joined by '+', and the last token is a keysym
// name (or a 0x-prefixed hexadecimal keysym).
package keyevent

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Modifier is a bit mask of held modifiers, laid out like IBus key state.
type Modifier uint32

// Modifier bits.
const (
	ShiftMask   Modifier = 1 << 0
	LockMask    Modifier = 1 << 1
	ControlMask Modifier = 1 << 2
	AltMask     Modifier = 1 << 3 // Mod1
	SuperMask   Modifier = 1 << 26
	HyperMask   Modifier = 1 << 27
	MetaMask    Modifier = 1 << 28
	ReleaseMask Modifier = 1 << 30

	// ModifierMask covers every bit a chord may carry.
	ModifierMask = ShiftMask | LockMask | ControlMask | AltMask |
		SuperMask | HyperMask | MetaMask | ReleaseMask
)

// modifierNames lists modifiers in the order they are printed.
var modifierNames = []struct {
	name string
	mask Modifier
}{
	{"Shift", ShiftMask},
	{"Lock", LockMask},
	{"Control", ControlMask},
	{"Alt", AltMask},
	{"Super", SuperMask},
	{"Hyper", HyperMask},
	{"Meta", MetaMask},
	{"Release", ReleaseMask},
}

// modifierAliases accepts the X11 spelling of some modifiers.
var modifierAliases = map[string]Modifier{
	"Mod1": AltMask,
	"Ctrl": ControlMask,
}

// ErrInvalidKey is returned when a chord cannot be parsed.
var ErrInvalidKey = errors.New("invalid key chord")

// KeyEvent is an immutable key chord. Two chords are equal when both the
// keysym and the modifier mask match, so KeyEvent values can be compared
// with ==.
type KeyEvent struct {
	Keycode  uint32
	Modifier Modifier
}

// New returns a key event for keysym with the given modifiers.
func New(keycode uint32, mods Modifier) KeyEvent {
	return KeyEvent{Keycode: keycode, Modifier: mods & ModifierMask}
}

// Shift reports whether Shift is held.
func (k KeyEvent) Shift() bool { return k.Modifier&ShiftMask != 0 }

// Ctrl reports whether Control is held.
func (k KeyEvent) Ctrl() bool { return k.Modifier&ControlMask != 0 }

// Alt reports whether Alt is held.
func (k KeyEvent) Alt() bool { return k.Modifier&AltMask != 0 }

// Super reports whether Super is held.
func (k KeyEvent) Super() bool { return k.Modifier&SuperMask != 0 }

// Release reports whether this is a key release.
func (k KeyEvent) Release() bool { return k.Modifier&ReleaseMask != 0 }

// Rune returns the character the keysym stands for, or 0 when it is not a
// character key.
func (k KeyEvent) Rune() rune {
	switch {
	case k.Keycode >= 0x20 && k.Keycode <= 0x7e:
		return rune(k.Keycode)
	case k.Keycode >= 0xa0 && k.Keycode <= 0xff:
		return rune(k.Keycode)
	case k.Keycode >= 0x01000000:
		return rune(k.Keycode - 0x01000000)
	}
	return 0
}

// String returns the chord in the same syntax Parse accepts.
func (k KeyEvent) String() string {
	var b strings.Builder
	for _, m := range modifierNames {
		if k.Modifier&m.mask != 0 {
			b.WriteString(m.name)
			b.WriteByte('+')
		}
	}
	b.WriteString(KeysymName(k.Keycode))
	return b.String()
}

// Parse reads a chord such as "Control+Shift+grave".
func Parse(repr string) (KeyEvent, error) {
	repr = strings.TrimSpace(repr)
	if repr == "" {
		return KeyEvent{}, fmt.Errorf("%w: empty", ErrInvalidKey)
	}

	// A lone "+" or a trailing "+" names the plus key itself.
	var tokens []string
	if strings.HasSuffix(repr, "++") || repr == "+" {
		tokens = strings.Split(strings.TrimSuffix(repr, "+"), "+")
		tokens[len(tokens)-1] = "plus"
	} else {
		tokens = strings.Split(repr, "+")
	}

	var mods Modifier
	for _, tok := range tokens[:len(tokens)-1] {
		m, ok := parseModifier(tok)
		if !ok {
			return KeyEvent{}, fmt.Errorf("%w: unknown modifier %q in %q", ErrInvalidKey, tok, repr)
		}
		mods |= m
	}

	name := tokens[len(tokens)-1]
	code, ok := Keysym(name)
	if !ok {
		return KeyEvent{}, fmt.Errorf("%w: unknown key %q in %q", ErrInvalidKey, name, repr)
	}
	return KeyEvent{Keycode: code, Modifier: mods}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level tables.
func MustParse(repr string) KeyEvent {
	k, err := Parse(repr)
	if err != nil {
		panic(err)
	}
	return k
}

func parseModifier(tok string) (Modifier, bool) {
	for _, m := range modifierNames {
		if m.name == tok {
			return m.mask, true
		}
	}
	m, ok := modifierAliases[tok]
	return m, ok
}

// Keysym resolves a keysym name. Names are case sensitive ("a" and "A" are
// different keys); a 0x-prefixed hexadecimal value is accepted as well.
func Keysym(name string) (uint32, bool) {
	if code, ok := keysymByName[name]; ok {
		return code, true
	}
	if strings.HasPrefix(name, "0x") || strings.HasPrefix(name, "0X") {
		v, err := strconv.ParseUint(name[2:], 16, 32)
		if err == nil {
			return uint32(v), true
		}
	}
	return 0, false
}

// KeysymName returns the canonical name of a keysym, falling back to its
// hexadecimal form.
func KeysymName(code uint32) string {
	if name, ok := nameByKeysym[code]; ok {
		return name
	}
	return fmt.Sprintf("0x%04x", code)
}
