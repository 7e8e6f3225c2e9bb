package provenance

import "howett.net/plist"

// encodeWhereFroms serializes urls the way browsers write kMDItemWhereFroms.
func encodeWhereFroms(urls ...string) ([]byte, error) {
	return plist.Marshal(urls, plist.BinaryFormat)
}
