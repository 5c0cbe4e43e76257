package keyevent

import "fmt"

// Keysyms used by the switcher and its processors.
const (
	XKSpace     uint32 = 0x0020
	XKMinus     uint32 = 0x002d
	XK0         uint32 = 0x0030
	XK1         uint32 = 0x0031
	XK9         uint32 = 0x0039
	XKEqual     uint32 = 0x003d
	XKBackSpace uint32 = 0xff08
	XKTab       uint32 = 0xff09
	XKReturn    uint32 = 0xff0d
	XKEscape    uint32 = 0xff1b
	XKHome      uint32 = 0xff50
	XKLeft      uint32 = 0xff51
	XKUp        uint32 = 0xff52
	XKRight     uint32 = 0xff53
	XKDown      uint32 = 0xff54
	XKPageUp    uint32 = 0xff55
	XKPageDown  uint32 = 0xff56
	XKEnd       uint32 = 0xff57
	XKKPEnter   uint32 = 0xff8d
	XKF1        uint32 = 0xffbe
	XKDelete    uint32 = 0xffff
)

// keysymNames is the canonical name list; the first name registered for a
// keysym is the one String prints.
var keysymNames = []struct {
	name string
	code uint32
}{
	{"space", 0x0020},
	{"exclam", 0x0021},
	{"quotedbl", 0x0022},
	{"numbersign", 0x0023},
	{"dollar", 0x0024},
	{"percent", 0x0025},
	{"ampersand", 0x0026},
	{"apostrophe", 0x0027},
	{"parenleft", 0x0028},
	{"parenright", 0x0029},
	{"asterisk", 0x002a},
	{"plus", 0x002b},
	{"comma", 0x002c},
	{"minus", 0x002d},
	{"period", 0x002e},
	{"slash", 0x002f},
	{"colon", 0x003a},
	{"semicolon", 0x003b},
	{"less", 0x003c},
	{"equal", 0x003d},
	{"greater", 0x003e},
	{"question", 0x003f},
	{"at", 0x0040},
	{"bracketleft", 0x005b},
	{"backslash", 0x005c},
	{"bracketright", 0x005d},
	{"asciicircum", 0x005e},
	{"underscore", 0x005f},
	{"grave", 0x0060},
	{"braceleft", 0x007b},
	{"bar", 0x007c},
	{"braceright", 0x007d},
	{"asciitilde", 0x007e},

	{"BackSpace", XKBackSpace},
	{"Tab", XKTab},
	{"Linefeed", 0xff0a},
	{"Clear", 0xff0b},
	{"Return", XKReturn},
	{"Pause", 0xff13},
	{"Scroll_Lock", 0xff14},
	{"Escape", XKEscape},
	{"Home", XKHome},
	{"Left", XKLeft},
	{"Up", XKUp},
	{"Right", XKRight},
	{"Down", XKDown},
	{"Page_Up", XKPageUp},
	{"Prior", XKPageUp},
	{"Page_Down", XKPageDown},
	{"Next", XKPageDown},
	{"End", XKEnd},
	{"Begin", 0xff58},
	{"Insert", 0xff63},
	{"Menu", 0xff67},
	{"KP_Enter", XKKPEnter},
	{"Shift_L", 0xffe1},
	{"Shift_R", 0xffe2},
	{"Control_L", 0xffe3},
	{"Control_R", 0xffe4},
	{"Caps_Lock", 0xffe5},
	{"Shift_Lock", 0xffe6},
	{"Meta_L", 0xffe7},
	{"Meta_R", 0xffe8},
	{"Alt_L", 0xffe9},
	{"Alt_R", 0xffea},
	{"Super_L", 0xffeb},
	{"Super_R", 0xffec},
	{"Hyper_L", 0xffed},
	{"Hyper_R", 0xffee},
	{"Delete", XKDelete},
}

var (
	keysymByName = make(map[string]uint32)
	nameByKeysym = make(map[uint32]string)
)

func register(name string, code uint32) {
	keysymByName[name] = code
	if _, ok := nameByKeysym[code]; !ok {
		nameByKeysym[code] = name
	}
}

func init() {
	for _, k := range keysymNames {
		register(k.name, k.code)
	}
	for c := '0'; c <= '9'; c++ {
		register(string(c), uint32(c))
	}
	for c := 'a'; c <= 'z'; c++ {
		register(string(c), uint32(c))
	}
	for c := 'A'; c <= 'Z'; c++ {
		register(string(c), uint32(c))
	}
	for i := uint32(1); i <= 35; i++ {
		register(fmt.Sprintf("F%d", i), XKF1+i-1)
	}
}
