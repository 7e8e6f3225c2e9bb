//go:build darwin || linux

package provenance

import (
	"errors"

	"golang.org/x/sys/unix"
)

const maxGetxattrAttempts = 3

// getxattr reads attr from path. Absent attributes and filesystems without
// xattr support report ok=false.
func getxattr(path, attr string) ([]byte, bool, error) {
	for attempt := 0; attempt < maxGetxattrAttempts; attempt++ {
		size, err := unix.Getxattr(path, attr, nil)
		if err != nil {
			if isAbsent(err) {
				return nil, false, nil
			}
			return nil, false, err
		}
		if size == 0 {
			return []byte{}, true, nil
		}
		buf := make([]byte, size)
		n, err := unix.Getxattr(path, attr, buf)
		if err != nil {
			if errors.Is(err, unix.ERANGE) {
				// The value grew between the two calls.
				continue
			}
			if isAbsent(err) {
				return nil, false, nil
			}
			return nil, false, err
		}
		return buf[:n], true, nil
	}
	return nil, false, unix.ERANGE
}

func isAbsent(err error) bool {
	return errors.Is(err, errNoAttr) || errors.Is(err, unix.ENOTSUP) || errors.Is(err, unix.EOPNOTSUPP)
}
