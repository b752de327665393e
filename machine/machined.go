package machine

import (
	"context"
	"fmt"
	"strings"
	"syscall"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	machinedDest  = "org.freedesktop.machine1"
	machinedPath  = dbus.ObjectPath("/org/freedesktop/machine1")
	machinedIface = "org.freedesktop.machine1.Manager"

	systemdDest  = "org.freedesktop.systemd1"
	systemdPath  = dbus.ObjectPath("/org/freedesktop/systemd1")
	systemdIface = "org.freedesktop.systemd1.Manager"
)

// caller is the part of dbus.BusObject the backend needs.
type caller interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...any) *dbus.Call
}

// Machined talks to systemd-machined and systemd over the system bus.
type Machined struct {
	conn     *dbus.Conn
	machined caller
	systemd  caller
}

// NewMachined connects to the system bus.
func NewMachined() (*Machined, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("connect system bus: %w", err)
	}
	return &Machined{
		conn:     conn,
		machined: conn.Object(machinedDest, machinedPath),
		systemd:  conn.Object(systemdDest, systemdPath),
	}, nil
}

func (m *Machined) Close() error {
	if m.conn == nil {
		return nil
	}
	return m.conn.Close()
}

// wire layout of ListImages: a(ssbttto)
type imageRecord struct {
	Name     string
	Type     string
	ReadOnly bool
	Created  uint64
	Modified uint64
	Usage    uint64
	Path     dbus.ObjectPath
}

// wire layout of ListMachines: a(ssso)
type machineRecord struct {
	Name    string
	Class   string
	Service string
	Path    dbus.ObjectPath
}

func (m *Machined) ListImages(ctx context.Context) ([]Image, error) {
	var recs []imageRecord
	err := m.machined.CallWithContext(ctx, machinedIface+".ListImages", 0).Store(&recs)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	images := make([]Image, 0, len(recs))
	for _, r := range recs {
		images = append(images, Image{
			Name:     r.Name,
			Type:     r.Type,
			ReadOnly: r.ReadOnly,
			Created:  fromUsec(r.Created),
			Modified: fromUsec(r.Modified),
			Size:     r.Usage,
			Path:     r.Path,
		})
	}
	return images, nil
}

func (m *Machined) ListMachines(ctx context.Context) ([]Machine, error) {
	var recs []machineRecord
	err := m.machined.CallWithContext(ctx, machinedIface+".ListMachines", 0).Store(&recs)
	if err != nil {
		return nil, fmt.Errorf("list machines: %w", err)
	}
	machines := make([]Machine, 0, len(recs))
	for _, r := range recs {
		machines = append(machines, Machine{
			Name:  r.Name,
			Class: r.Class,
			ID:    r.Service,
			Path:  r.Path,
		})
	}
	return machines, nil
}

// Start boots the image through its systemd-nspawn@ template unit,
// the same way machinectl start does.
func (m *Machined) Start(ctx context.Context, name string) error {
	var job dbus.ObjectPath
	err := m.systemd.CallWithContext(ctx, systemdIface+".StartUnit", 0, NspawnUnit(name), "replace").Store(&job)
	if err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	return nil
}

// Stop sends sig to the machine's leader process.
func (m *Machined) Stop(ctx context.Context, name string, sig syscall.Signal) error {
	call := m.machined.CallWithContext(ctx, machinedIface+".KillMachine", 0, name, "leader", int32(sig))
	if call.Err != nil {
		return fmt.Errorf("kill %s: %w", name, call.Err)
	}
	return nil
}

// NspawnUnit returns the systemd-nspawn@ instance unit for an image.
func NspawnUnit(name string) string {
	return "systemd-nspawn@" + EscapeUnitName(name) + ".service"
}

// EscapeUnitName applies systemd's unit name escaping: '/' becomes '-',
// a leading '.' and every byte outside [A-Za-z0-9:_.] become \xNN.
func EscapeUnitName(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '/':
			b.WriteByte('-')
		case c == '.' && i == 0:
			fmt.Fprintf(&b, `\x%02x`, c)
		case isUnitChar(c):
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, `\x%02x`, c)
		}
	}
	return b.String()
}

func isUnitChar(c byte) bool {
	return c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' ||
		c == ':' || c == '_' || c == '.'
}

// machined reports timestamps in µs since the epoch, 0 meaning unknown.
func fromUsec(v uint64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	return time.UnixMicro(int64(v))
}
