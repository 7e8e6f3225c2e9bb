//go:build darwin

package provenance

import "golang.org/x/sys/unix"

var errNoAttr error = unix.ENOATTR

var platformAttrs = []attrSpec{
	{name: WhereFromsAttr, encoding: EncodingPlist},
}
