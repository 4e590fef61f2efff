package presence

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultHostapdTimeout is the per-command timeout for the hostapd
// control interface
const DefaultHostapdTimeout = time.Second

// Hostapd reports the stations currently associated with a wireless
// access point managed by hostapd. It walks the station list via the
// STA-FIRST and STA-NEXT commands of the hostapd control socket
type Hostapd struct {
	// SocketPath is the path of the hostapd control socket, usually
	// /var/run/hostapd/<iface>
	SocketPath string

	// Timeout is the per-command timeout. DefaultHostapdTimeout is
	// used when unset
	Timeout time.Duration
}

// NewHostapd creates a new presence source for the given hostapd
// control socket
func NewHostapd(socketPath string) *Hostapd {
	return &Hostapd{SocketPath: socketPath}
}

// Stations implements the Source interface
func (h *Hostapd) Stations(ctx context.Context) ([]net.HardwareAddr, error) {
	local, err := os.CreateTemp("", "nexttether-hostapd-*")
	if err != nil {
		return nil, err
	}
	localPath := local.Name()
	local.Close()
	os.Remove(localPath)
	defer os.Remove(localPath)

	laddr := &net.UnixAddr{Name: localPath, Net: "unixgram"}
	raddr := &net.UnixAddr{Name: h.SocketPath, Net: "unixgram"}

	conn, err := net.DialUnix("unixgram", laddr, raddr)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var stations []net.HardwareAddr

	reply, err := h.command(ctx, conn, "STA-FIRST")
	for err == nil {
		hw, perr := parseStation(reply)
		if perr != nil {
			// empty or FAIL reply, the walk is done
			break
		}

		stations = append(stations, hw)
		reply, err = h.command(ctx, conn, "STA-NEXT "+hw.String())
	}
	if err != nil {
		return nil, err
	}

	return stations, nil
}

func (h *Hostapd) command(ctx context.Context, conn *net.UnixConn, cmd string) (string, error) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = DefaultHostapdTimeout
	}

	deadline := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return "", err
	}

	if _, err := conn.Write([]byte(cmd)); err != nil {
		return "", err
	}

	buf := make([]byte, 4096)
	n, err := conn.Read(buf)
	if err != nil {
		return "", err
	}

	return string(buf[:n]), nil
}

// parseStation extracts the station hardware address from a STA-FIRST
// or STA-NEXT reply. The address is the first token of the first line
func parseStation(reply string) (net.HardwareAddr, error) {
	reply = strings.TrimSpace(reply)
	if reply == "" || reply == "FAIL" {
		return nil, fmt.Errorf("no more stations")
	}

	first := reply
	if idx := strings.IndexByte(reply, '\n'); idx >= 0 {
		first = reply[:idx]
	}
	if idx := strings.IndexByte(first, ' '); idx >= 0 {
		first = first[:idx]
	}

	return net.ParseMAC(strings.TrimSpace(first))
}

// SocketForInterface returns the conventional hostapd control socket
// path for the given interface name
func SocketForInterface(ifaceName string) string {
	return filepath.Join("/var/run/hostapd", ifaceName)
}
