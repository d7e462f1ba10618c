//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package progress

import (
	"os"

	"golang.org/x/sys/unix"
)

// isTerminal asks the tty driver for the termios of f. Character devices
// such as /dev/null fail the ioctl.
func isTerminal(f *os.File) bool {
	_, err := unix.IoctlGetTermios(int(f.Fd()), ioctlReadTermios)
	return err == nil
}
