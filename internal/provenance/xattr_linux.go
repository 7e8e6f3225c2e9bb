//go:build linux

package provenance

import "golang.org/x/sys/unix"

var errNoAttr error = unix.ENODATA

// Linux only exposes the user namespace to unprivileged processes, so the
// macOS attribute survives copies from a Mac under a "user." prefix.
var platformAttrs = []attrSpec{
	{name: XDGOriginAttr, encoding: EncodingURL},
	{name: "user." + WhereFromsAttr, encoding: EncodingPlist},
}
