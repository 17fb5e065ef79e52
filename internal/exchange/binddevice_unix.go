//go:build !windows

package exchange

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// bindToDeviceControl returns a net.Dialer Control function that binds the
// outbound socket to device (e.g. "eth0") via SO_BINDTODEVICE, the same
// raw-fd-via-syscall.RawConn pattern the teacher uses for SO_REUSEPORT in
// internal/dns/server/reuseport_unix.go.
func bindToDeviceControl(device string) func(string, string, syscall.RawConn) error {
	return func(_, _ string, c syscall.RawConn) error {
		var ctrlErr error
		err := c.Control(func(fd uintptr) {
			ctrlErr = unix.BindToDevice(int(fd), device)
		})
		if err != nil {
			return err
		}
		return ctrlErr
	}
}
