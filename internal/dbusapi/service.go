// Package dbusapi exposes a switcher session on the D-Bus session bus so that
// an input method framework can feed it key events.
package dbusapi

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"imeswitch/internal/engine"
	"imeswitch/internal/keyevent"
	"imeswitch/internal/logging"
	"imeswitch/internal/schema"
	"imeswitch/internal/switcher"
)

// D-Bus names.
const (
	DefaultBusName = "org.imeswitch.Switcher"
	Interface      = "org.imeswitch.Switcher"
	ObjectPath     = dbus.ObjectPath("/org/imeswitch/Switcher")
)

// IBus key event state masks.
const (
	IBusShiftMask   uint32 = 1 << 0
	IBusLockMask    uint32 = 1 << 1
	IBusControlMask uint32 = 1 << 2
	IBusMod1Mask    uint32 = 1 << 3 // Alt
	IBusMod4Mask    uint32 = 1 << 6 // Super
	IBusSuperMask   uint32 = 1 << 26
	IBusHyperMask   uint32 = 1 << 27
	IBusMetaMask    uint32 = 1 << 28
	IBusReleaseMask uint32 = 1 << 30
)

const introspectXML = `
<node>
	<interface name="` + Interface + `">
		<method name="ProcessKeyEvent">
			<arg direction="in" type="u" name="keyval"/>
			<arg direction="in" type="u" name="keycode"/>
			<arg direction="in" type="u" name="state"/>
			<arg direction="out" type="b" name="handled"/>
		</method>
		<method name="SelectNextSchema"/>
		<method name="CurrentSchema">
			<arg direction="out" type="s" name="schema"/>
		</method>
		<method name="Active">
			<arg direction="out" type="b" name="active"/>
		</method>
		<signal name="SchemaChanged">
			<arg type="s" name="schema"/>
		</signal>
		<signal name="OptionChanged">
			<arg type="s" name="name"/>
			<arg type="b" name="value"/>
		</signal>
	</interface>` + introspect.IntrospectDataString + `</node>`

// StateToModifier converts an IBus state mask into a key event modifier.
func StateToModifier(state uint32) keyevent.Modifier {
	var mods keyevent.Modifier
	pairs := []struct {
		ibus uint32
		mod  keyevent.Modifier
	}{
		{IBusShiftMask, keyevent.ShiftMask},
		{IBusLockMask, keyevent.LockMask},
		{IBusControlMask, keyevent.ControlMask},
		{IBusMod1Mask, keyevent.AltMask},
		{IBusMod4Mask, keyevent.SuperMask},
		{IBusSuperMask, keyevent.SuperMask},
		{IBusHyperMask, keyevent.HyperMask},
		{IBusMetaMask, keyevent.MetaMask},
		{IBusReleaseMask, keyevent.ReleaseMask},
	}
	for _, p := range pairs {
		if state&p.ibus != 0 {
			mods |= p.mod
		}
	}
	return mods
}

// KeyObserver is told about every key event the service handles.
type KeyObserver interface {
	ObserveKey(handled, wasActive, active bool, took time.Duration)
}

// Service serializes every call into one switcher session.
type Service struct {
	// Observer, when set, sees every key event.
	Observer KeyObserver

	mu      sync.Mutex
	sw      *switcher.Switcher
	eng     *engine.Engine
	busName string
	logger  *slog.Logger

	conn *dbus.Conn
	emit func(member string, args ...any)
}

// New wires sw and eng into a service. sw is attached to eng unless it
// already is.
func New(sw *switcher.Switcher, eng *engine.Engine, busName string, logger *slog.Logger) *Service {
	if busName == "" {
		busName = DefaultBusName
	}
	if logger == nil {
		logger = logging.Default().WithComponent("dbus").Logger
	}
	s := &Service{
		sw:      sw,
		eng:     eng,
		busName: busName,
		logger:  logger,
		emit:    func(string, ...any) {},
	}
	if sw.Context() != eng {
		sw.Attach(eng)
	}
	eng.OnSchemaChange(func(sc *schema.Schema) {
		s.emit("SchemaChanged", sc.ID)
	})
	eng.OnOptionUpdate(func(name string, value bool) {
		s.emit("OptionChanged", name, value)
	})
	return s
}

// Start connects to the session bus, claims the bus name and exports the
// service object.
func (s *Service) Start() error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("connect to session bus: %w", err)
	}

	reply, err := conn.RequestName(s.busName, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return fmt.Errorf("request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return errors.New("bus name already taken")
	}

	if err := conn.Export(s, ObjectPath, Interface); err != nil {
		conn.Close()
		return fmt.Errorf("export service: %w", err)
	}
	if err := conn.Export(introspect.Introspectable(introspectXML), ObjectPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		conn.Close()
		return fmt.Errorf("export introspection: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.emit = func(member string, args ...any) {
		if err := conn.Emit(ObjectPath, Interface+"."+member, args...); err != nil {
			s.logger.Warn("emit signal failed", "signal", member, "error", err)
		}
	}
	s.mu.Unlock()

	s.logger.Info("dbus service started", "bus_name", s.busName, "path", ObjectPath)
	return nil
}

// Stop releases the bus name and closes the connection.
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}
	if _, err := s.conn.ReleaseName(s.busName); err != nil {
		s.logger.Warn("release bus name failed", "error", err)
	}
	err := s.conn.Close()
	s.conn = nil
	s.emit = func(string, ...any) {}
	return err
}

// Do runs fn with the service lock held, e.g. to reload settings between
// key events.
func (s *Service) Do(fn func(sw *switcher.Switcher)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.sw)
}

// ProcessKeyEvent feeds an IBus key event to the switcher. The hardware
// keycode is ignored; keyval is the keysym.
func (s *Service) ProcessKeyEvent(keyval, keycode, state uint32) (bool, *dbus.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	wasActive := s.sw.Active()
	ev := keyevent.New(keyval, StateToModifier(state))
	handled := s.sw.ProcessKeyEvent(ev)
	if s.Observer != nil {
		s.Observer.ObserveKey(handled, wasActive, s.sw.Active(), time.Since(start))
	}
	s.logger.Debug("key event", "key", ev.String(), "handled", handled, "active", s.sw.Active())
	return handled, nil
}

// SelectNextSchema switches to the schema after the current one.
func (s *Service) SelectNextSchema() *dbus.Error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sw.SelectNextSchema()
	return nil
}

// CurrentSchema returns the id of the schema in use, or "".
func (s *Service) CurrentSchema() (string, *dbus.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sc := s.eng.Schema(); sc != nil {
		return sc.ID, nil
	}
	return "", nil
}

// Active reports whether the switcher menu is open.
func (s *Service) Active() (bool, *dbus.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sw.Active(), nil
}
