//go:build !linux && !darwin && !dragonfly && !freebsd && !netbsd && !openbsd

package progress

import "os"

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
