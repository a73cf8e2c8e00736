package preflight

import (
	"context"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	nmService      = "org.freedesktop.NetworkManager"
	nmPath         = dbus.ObjectPath("/org/freedesktop/NetworkManager")
	nmIface        = "org.freedesktop.NetworkManager"
	nmActiveIface  = "org.freedesktop.NetworkManager.Connection.Active"
	nmWifiIface    = "org.freedesktop.NetworkManager.Device.Wireless"
	nmAPIface      = "org.freedesktop.NetworkManager.AccessPoint"
	nmWirelessType = "802-11-wireless"

	busTimeout = 3 * time.Second
)

// propertyReader reads a single D-Bus property from the NetworkManager service.
type propertyReader interface {
	Property(ctx context.Context, path dbus.ObjectPath, iface, name string) (dbus.Variant, error)
}

type busReader struct {
	conn *dbus.Conn
}

func (b busReader) Property(ctx context.Context, path dbus.ObjectPath, iface, name string) (dbus.Variant, error) {
	var v dbus.Variant
	err := b.conn.Object(nmService, path).
		CallWithContext(ctx, "org.freedesktop.DBus.Properties.Get", 0, iface, name).
		Store(&v)
	return v, err
}

// NetworkManagerDetector reads the SSID of the active wireless connection
// from NetworkManager on the system bus.
type NetworkManagerDetector struct {
	connect func(ctx context.Context) (propertyReader, func(), error)
	timeout time.Duration
}

// NewNetworkManagerDetector creates a detector that opens a private system
// bus connection per lookup.
func NewNetworkManagerDetector() *NetworkManagerDetector {
	return &NetworkManagerDetector{
		connect: func(ctx context.Context) (propertyReader, func(), error) {
			conn, err := dbus.ConnectSystemBus(dbus.WithContext(ctx))
			if err != nil {
				return nil, nil, fmt.Errorf("failed to connect to system bus: %w", err)
			}
			return busReader{conn: conn}, func() { _ = conn.Close() }, nil
		},
		timeout: busTimeout,
	}
}

// SSID implements SSIDDetector.
// The whole lookup is bounded by the detector timeout.
func (d *NetworkManagerDetector) SSID(ctx context.Context) (string, error) {
	timeout := d.timeout
	if timeout <= 0 {
		timeout = busTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reader, closeFn, err := d.connect(ctx)
	if err != nil {
		return "", err
	}
	defer closeFn()
	return activeWirelessSSID(ctx, reader)
}

func activeWirelessSSID(ctx context.Context, r propertyReader) (string, error) {
	v, err := r.Property(ctx, nmPath, nmIface, "ActiveConnections")
	if err != nil {
		return "", fmt.Errorf("failed to list active connections: %w", err)
	}
	active, _ := v.Value().([]dbus.ObjectPath)

	for _, conn := range active {
		tv, err := r.Property(ctx, conn, nmActiveIface, "Type")
		if err != nil {
			continue
		}
		if t, _ := tv.Value().(string); t != nmWirelessType {
			continue
		}

		dv, err := r.Property(ctx, conn, nmActiveIface, "Devices")
		if err != nil {
			continue
		}
		devices, _ := dv.Value().([]dbus.ObjectPath)
		for _, dev := range devices {
			apv, err := r.Property(ctx, dev, nmWifiIface, "ActiveAccessPoint")
			if err != nil {
				continue
			}
			ap, _ := apv.Value().(dbus.ObjectPath)
			if ap == "" || ap == "/" {
				continue
			}
			sv, err := r.Property(ctx, ap, nmAPIface, "Ssid")
			if err != nil {
				continue
			}
			if ssid, _ := sv.Value().([]byte); len(ssid) > 0 {
				return string(ssid), nil
			}
		}
	}
	return "", nil
}
