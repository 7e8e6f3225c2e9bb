package provenance

import (
	"bytes"
	"fmt"

	"howett.net/plist"

	"nimbus/internal/services"
)

const stageDecode = "decode"

var bplistMagic = []byte("bplist00")

// DecodeWhereFroms decodes a binary property list into a generic value.
// Any input that is not a well-formed binary plist yields an error wrapping
// services.ErrDecodeFailed; decoder panics are recovered.
func DecodeWhereFroms(data []byte) (value any, err error) {
	if !bytes.HasPrefix(data, bplistMagic) {
		return nil, services.Wrap(services.ErrDecodeFailed, stageDecode, "plist", "missing bplist00 header", nil)
	}
	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = services.Wrap(services.ErrDecodeFailed, stageDecode, "plist", "decoder panic", fmt.Errorf("%v", r))
		}
	}()

	var decoded any
	format, decodeErr := plist.Unmarshal(data, &decoded)
	if decodeErr != nil {
		return nil, services.Wrap(services.ErrDecodeFailed, stageDecode, "plist", "malformed property list", decodeErr)
	}
	if format != plist.BinaryFormat {
		return nil, services.Wrap(services.ErrDecodeFailed, stageDecode, "plist", "not a binary property list", nil)
	}
	return decoded, nil
}

// FirstURL returns the first string element of an array value. Non-string
// elements ahead of it are skipped.
func FirstURL(value any) (string, bool) {
	items, ok := value.([]any)
	if !ok {
		return "", false
	}
	for _, item := range items {
		if url, ok := item.(string); ok {
			return url, true
		}
	}
	return "", false
}
