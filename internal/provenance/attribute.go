package provenance

// Encoding identifies how an attribute payload is serialized.
type Encoding int

const (
	// EncodingPlist is a binary property list holding an array of URLs.
	EncodingPlist Encoding = iota + 1
	// EncodingURL is a bare URL string.
	EncodingURL
)

const (
	// WhereFromsAttr is the macOS attribute recording download origins.
	WhereFromsAttr = "com.apple.metadata:kMDItemWhereFroms"
	// XDGOriginAttr is the freedesktop attribute recording a download origin.
	XDGOriginAttr = "user.xdg.origin.url"
)

// Attribute is a raw origin attribute read from a file.
type Attribute struct {
	Name     string
	Data     []byte
	Encoding Encoding
}

// Reader reads the origin attribute of a file. ok is false when the file
// carries no such attribute or the filesystem cannot store one.
type Reader interface {
	Read(path string) (attr Attribute, ok bool, err error)
}

// ReaderFunc adapts a function to the Reader interface.
type ReaderFunc func(path string) (Attribute, bool, error)

// Read calls f(path).
func (f ReaderFunc) Read(path string) (Attribute, bool, error) {
	return f(path)
}

type attrSpec struct {
	name     string
	encoding Encoding
}

// XattrReader reads origin attributes through the platform xattr syscalls.
type XattrReader struct{}

// Read returns the first origin attribute present on path, trying the
// platform's attribute names in preference order.
func (XattrReader) Read(path string) (Attribute, bool, error) {
	for _, spec := range platformAttrs {
		data, ok, err := getxattr(path, spec.name)
		if err != nil {
			return Attribute{}, false, err
		}
		if ok {
			return Attribute{Name: spec.name, Data: data, Encoding: spec.encoding}, true, nil
		}
	}
	return Attribute{}, false, nil
}
