//go:build linux

package provenance

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/sys/unix"
)

func setxattrOrSkip(t *testing.T, path, name string, value []byte) {
	t.Helper()
	if err := unix.Setxattr(path, name, value, 0); err != nil {
		if errors.Is(err, unix.ENOTSUP) || errors.Is(err, unix.EPERM) {
			t.Skipf("filesystem does not support user xattrs: %v", err)
		}
		t.Fatalf("setxattr: %v", err)
	}
}

func TestXattrReaderLinux(t *testing.T) {
	path := filepath.Join(t.TempDir(), "download.pdf")
	if err := os.WriteFile(path, []byte("pdf"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, ok, err := (XattrReader{}).Read(path); err != nil || ok {
		t.Fatalf("expected absent attribute, got ok=%v err=%v", ok, err)
	}

	setxattrOrSkip(t, path, XDGOriginAttr, []byte("https://learn.uwaterloo.ca/file.pdf"))
	attr, ok, err := (XattrReader{}).Read(path)
	if err != nil || !ok {
		t.Fatalf("Read = %v, %v", ok, err)
	}
	if attr.Encoding != EncodingURL || string(attr.Data) != "https://learn.uwaterloo.ca/file.pdf" {
		t.Fatalf("unexpected attribute: %+v", attr)
	}
}

func TestXattrReaderLinuxFallsBackToWhereFroms(t *testing.T) {
	path := filepath.Join(t.TempDir(), "copied-from-mac.pdf")
	if err := os.WriteFile(path, []byte("pdf"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := encodeWhereFroms("https://example.com/copied.pdf")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	setxattrOrSkip(t, path, "user."+WhereFromsAttr, data)

	attr, ok, err := (XattrReader{}).Read(path)
	if err != nil || !ok {
		t.Fatalf("Read = %v, %v", ok, err)
	}
	if attr.Encoding != EncodingPlist {
		t.Fatalf("expected plist encoding, got %v", attr.Encoding)
	}
}

func TestXattrReaderMissingFile(t *testing.T) {
	_, _, err := (XattrReader{}).Read(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, unix.ENOENT) {
		t.Fatalf("expected ENOENT, got %v", err)
	}
}
