// Package machine models the images and running machines known to
// systemd-machined and builds the sorted snapshot the dashboard displays.
package machine

import (
	"context"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/samber/lo"
)

// HiddenPrefix marks internal images that never show up in a listing.
const HiddenPrefix = "."

// Signals sent to a machine's leader process. systemd-nspawn treats
// SIGRTMIN+4 as poweroff and SIGINT as reboot.
const (
	SignalPowerOff = syscall.Signal(38)
	SignalReboot   = syscall.SIGINT
)

// Image is a container or VM image exposed by the backend.
type Image struct {
	Name     string
	Type     string // "directory", "subvolume", "raw", "block"
	ReadOnly bool
	Created  time.Time
	Modified time.Time
	Size     uint64
	Path     dbus.ObjectPath

	// Machine is the running instance of this image, if any.
	// Only valid within the Snapshot that set it.
	Machine *Machine
}

// Running reports whether the image has a live machine.
func (i Image) Running() bool { return i.Machine != nil }

// Mode returns "ro" or "rw".
func (i Image) Mode() string {
	if i.ReadOnly {
		return "ro"
	}
	return "rw"
}

// Machine is a running instance registered with machined.
type Machine struct {
	Name  string
	Class string
	ID    string
	Path  dbus.ObjectPath
}

// Source lists images and machines and changes their state.
// Every call is a point-in-time query bounded by ctx.
type Source interface {
	ListImages(ctx context.Context) ([]Image, error)
	ListMachines(ctx context.Context) ([]Machine, error)
	Start(ctx context.Context, name string) error
	Stop(ctx context.Context, name string, sig syscall.Signal) error
}

// Snapshot is the filtered, sorted, associated view of a single refresh.
// The zero value is an empty snapshot.
type Snapshot struct {
	images []Image
}

// NewSnapshot filters hidden images, sorts the rest by name and associates
// each image with the machine of the same name.
func NewSnapshot(images []Image, machines []Machine) Snapshot {
	owned := slices.Clone(machines)
	byName := make(map[string]*Machine, len(owned))
	for i := range owned {
		// first registration wins; machined never reports duplicates
		if _, ok := byName[owned[i].Name]; !ok {
			byName[owned[i].Name] = &owned[i]
		}
	}

	visible := lo.Filter(images, func(img Image, _ int) bool {
		return !strings.HasPrefix(img.Name, HiddenPrefix)
	})
	for i := range visible {
		visible[i].Machine = byName[visible[i].Name]
	}
	slices.SortStableFunc(visible, func(a, b Image) int {
		return strings.Compare(a.Name, b.Name)
	})

	return Snapshot{images: visible}
}

func (s Snapshot) Len() int { return len(s.images) }

// At returns the i-th image. It panics if i is out of range.
func (s Snapshot) At(i int) Image { return s.images[i] }

// Images returns a copy of the snapshot's images in display order.
func (s Snapshot) Images() []Image { return slices.Clone(s.images) }

// Names returns image names in display order.
func (s Snapshot) Names() []string {
	return lo.Map(s.images, func(img Image, _ int) string { return img.Name })
}

// Running returns the number of images with a live machine.
func (s Snapshot) Running() int {
	return lo.CountBy(s.images, func(img Image) bool { return img.Running() })
}

// Load queries src for both listings and builds a fresh snapshot.
// Either listing failing fails the whole load so callers can keep
// their previous snapshot intact.
func Load(ctx context.Context, src Source) (Snapshot, error) {
	machines, err := src.ListMachines(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	images, err := src.ListImages(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return NewSnapshot(images, machines), nil
}
