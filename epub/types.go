// Package epub provides parsing of zip-based e-book packages into an
// in-memory representation suitable for content extraction.
package epub

// Book is a fully parsed package: metadata, the ordered document spine,
// the binary resource table, and the declared cover resource if one is
// present. A Book is immutable once returned by Open.
type Book struct {
	Metadata  Metadata
	Documents []Document          // spine order
	Resources map[string]Resource // keyed by internal path
	Cover     *Resource
	Version   string // "2.0" or "3.0"
}

// Metadata contains the package's Dublin Core metadata.
type Metadata struct {
	Title        string
	Creators     []string
	Descriptions []string
	Language     string
	Identifier   string
}

// Document is one spine entry: the raw bytes of a content document and
// its internal path within the package, which anchors relative
// references found inside it.
type Document struct {
	Path string
	Data []byte
}

// Resource is a binary entry from the manifest.
type Resource struct {
	Path      string
	MediaType string
	Data      []byte
}
