package switcher

import (
	"imeswitch/internal/keyevent"
)

// Settings paths.
const (
	CaptionKey     = "switcher/caption"
	HotkeysKey     = "switcher/hotkeys"
	SaveOptionsKey = "switcher/save_options"
)

// DefaultCaption is shown when no caption is configured.
const DefaultCaption = ":-)"

// LoadSettings reads the caption, the hotkeys and the auto-save options, in
// that order. Each present list replaces the current value in full. A missing
// hotkeys list stops the load before save_options is read, keeping the
// current hotkeys and save options; a missing save_options list keeps the
// current save options.
func (s *Switcher) LoadSettings() {
	if s.settings == nil {
		s.logger.Debug("no settings to load")
		return
	}

	caption, ok := s.settings.GetString(CaptionKey)
	if !ok || caption == "" {
		caption = DefaultCaption
	}
	s.caption = caption

	items, ok := s.settings.GetList(HotkeysKey)
	if !ok {
		s.logger.Warn("no hotkeys configured", "path", HotkeysKey)
		return
	}
	hotkeys := make([]keyevent.KeyEvent, 0, len(items))
	for _, item := range items {
		repr, ok := item.AsString()
		if !ok {
			continue
		}
		ev, err := keyevent.Parse(repr)
		if err != nil {
			s.logger.Warn("invalid hotkey", "hotkey", repr, "error", err)
			continue
		}
		hotkeys = append(hotkeys, ev)
	}
	s.hotkeys = hotkeys

	items, ok = s.settings.GetList(SaveOptionsKey)
	if !ok {
		s.logger.Debug("no auto-save options configured", "path", SaveOptionsKey)
		return
	}
	options := make(map[string]struct{}, len(items))
	for _, item := range items {
		name, ok := item.AsString()
		if !ok || name == "" {
			continue
		}
		options[name] = struct{}{}
	}
	s.saveOptions = options

	s.logger.Debug("settings loaded",
		"caption", s.caption, "hotkeys", len(s.hotkeys), "save_options", len(s.saveOptions))
}
