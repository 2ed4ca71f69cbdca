package tunnel

import (
	"errors"
	"log/slog"
	"os"

	"github.com/treykane/wg-manager/internal/model"
	"golang.zx2c4.com/wireguard/wgctrl"
	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"
)

// DeviceSource abstracts wgctrl device lookups for testing.
type DeviceSource interface {
	Device(name string) (*wgtypes.Device, error)
}

// Inspector reads live interface state from the kernel (or a userspace
// WireGuard implementation) through wgctrl.
type Inspector struct {
	src    DeviceSource
	closer func() error
	err    error
}

// NewInspector opens a wgctrl client. When that fails (no netlink, no
// privileges) the inspector still works and reports every tunnel as unknown.
func NewInspector() *Inspector {
	c, err := wgctrl.New()
	if err != nil {
		slog.Debug("wgctrl unavailable", "error", err)
		return &Inspector{err: err}
	}
	return &Inspector{src: c, closer: c.Close}
}

// NewInspectorWith wraps an existing device source.
func NewInspectorWith(src DeviceSource) *Inspector {
	return &Inspector{src: src}
}

// Err returns why wgctrl could not be opened, or nil.
func (i *Inspector) Err() error {
	return i.err
}

// Close releases the wgctrl client.
func (i *Inspector) Close() error {
	if i.closer == nil {
		return nil
	}
	return i.closer()
}

// Status returns the live state of one tunnel.
func (i *Inspector) Status(name string) model.TunnelStatus {
	st := model.TunnelStatus{Name: name, State: model.TunnelUnknown}
	if i.src == nil {
		if i.err != nil {
			st.LastError = i.err.Error()
		}
		return st
	}
	dev, err := i.src.Device(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			st.State = model.TunnelDown
			return st
		}
		st.LastError = err.Error()
		return st
	}
	st.State = model.TunnelUp
	st.ListenPort = dev.ListenPort
	st.Peers = len(dev.Peers)
	for _, p := range dev.Peers {
		if st.Endpoint == "" && p.Endpoint != nil {
			st.Endpoint = p.Endpoint.String()
		}
		if p.LastHandshakeTime.After(st.LastHandshake) {
			st.LastHandshake = p.LastHandshakeTime
		}
		st.RxBytes += p.ReceiveBytes
		st.TxBytes += p.TransmitBytes
	}
	return st
}

// Snapshot returns the status of every name, in the given order.
func (i *Inspector) Snapshot(names []string) []model.TunnelStatus {
	out := make([]model.TunnelStatus, 0, len(names))
	for _, n := range names {
		out = append(out, i.Status(n))
	}
	return out
}
