// Package notify shows desktop notifications over the session D-Bus.
package notify

import (
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	destination = "org.freedesktop.Notifications"
	objectPath  = dbus.ObjectPath("/org/freedesktop/Notifications")
	method      = destination + ".Notify"

	// defaultTimeout is in milliseconds; -1 leaves it to the server.
	defaultTimeout = int32(-1)
)

// Caller is the D-Bus object the notifier calls. dbus.BusObject satisfies it.
type Caller interface {
	Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// Notifier sends notifications through org.freedesktop.Notifications. The
// session bus is connected on first use.
type Notifier struct {
	appName string
	icon    string

	mu     sync.Mutex
	caller Caller
	dial   func() (Caller, error)
}

// New creates a notifier that connects to the session bus lazily.
func New(appName string) *Notifier {
	return &Notifier{
		appName: appName,
		icon:    "dialog-warning",
		dial:    dialSession,
	}
}

// NewWithCaller creates a notifier over an existing D-Bus object.
func NewWithCaller(appName string, caller Caller) *Notifier {
	return &Notifier{appName: appName, icon: "dialog-warning", caller: caller}
}

func dialSession() (Caller, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, err
	}
	return conn.Object(destination, objectPath), nil
}

// Notify shows a notification with summary and body.
func (n *Notifier) Notify(summary, body string) error {
	caller, err := n.object()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	call := caller.Call(method, 0,
		n.appName,
		uint32(0), // replaces_id
		n.icon,
		summary,
		body,
		[]string{},
		map[string]dbus.Variant{"urgency": dbus.MakeVariant(byte(1))},
		defaultTimeout,
	)
	if call.Err != nil {
		return fmt.Errorf("failed to send notification: %w", call.Err)
	}
	return nil
}

func (n *Notifier) object() (Caller, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.caller != nil {
		return n.caller, nil
	}
	caller, err := n.dial()
	if err != nil {
		return nil, err
	}
	n.caller = caller
	return caller, nil
}
