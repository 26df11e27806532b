package epub

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"path"
	"strings"
)

// opfPackage represents the OPF package document.
type opfPackage struct {
	XMLName  xml.Name    `xml:"package"`
	Version  string      `xml:"version,attr"`
	Metadata opfMetadata `xml:"metadata"`
	Manifest opfManifest `xml:"manifest"`
	Spine    opfSpine    `xml:"spine"`
}

type opfMetadata struct {
	Title       []dcElement `xml:"title"`
	Creator     []dcElement `xml:"creator"`
	Language    []dcElement `xml:"language"`
	Identifier  []dcElement `xml:"identifier"`
	Description []dcElement `xml:"description"`
	Meta        []opfMeta   `xml:"meta"`
}

type dcElement struct {
	ID      string `xml:"id,attr"`
	Content string `xml:",chardata"`
}

type opfMeta struct {
	Property string `xml:"property,attr"`
	Name     string `xml:"name,attr"`    // EPUB 2 style
	Content  string `xml:"content,attr"` // EPUB 2 style
	Value    string `xml:",chardata"`    // EPUB 3 style
}

type opfManifest struct {
	Items []opfItem `xml:"item"`
}

type opfItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

type opfSpine struct {
	ItemRefs []opfItemRef `xml:"itemref"`
}

type opfItemRef struct {
	IDRef  string `xml:"idref,attr"`
	Linear string `xml:"linear,attr"`
}

// parseOPF reads and parses the OPF file. It returns the parsed
// package document and the directory that anchors manifest hrefs.
func parseOPF(zr *zip.Reader, opfPath string) (*opfPackage, string, error) {
	var opfFile *zip.File
	for _, f := range zr.File {
		if f.Name == opfPath {
			opfFile = f
			break
		}
	}

	if opfFile == nil {
		return nil, "", ErrNoOPF
	}

	// Base directory for resolving manifest hrefs
	baseDir := path.Dir(opfPath)
	if baseDir == "." {
		baseDir = ""
	}

	rc, err := opfFile.Open()
	if err != nil {
		return nil, "", ErrInvalidOPF
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, "", ErrInvalidOPF
	}

	var opf opfPackage
	if err := xml.Unmarshal(data, &opf); err != nil {
		return nil, "", ErrInvalidOPF
	}

	return &opf, baseDir, nil
}

// convertMetadata maps the raw OPF metadata into the public shape.
// Missing optional elements become empty values, never errors.
func convertMetadata(m *opfMetadata) Metadata {
	meta := Metadata{}

	if len(m.Title) > 0 {
		meta.Title = strings.TrimSpace(m.Title[0].Content)
	}

	for _, c := range m.Creator {
		if s := strings.TrimSpace(c.Content); s != "" {
			meta.Creators = append(meta.Creators, s)
		}
	}

	for _, d := range m.Description {
		if s := strings.TrimSpace(d.Content); s != "" {
			meta.Descriptions = append(meta.Descriptions, s)
		}
	}

	if len(m.Language) > 0 {
		meta.Language = strings.TrimSpace(m.Language[0].Content)
	}

	if len(m.Identifier) > 0 {
		meta.Identifier = strings.TrimSpace(m.Identifier[0].Content)
	}

	return meta
}

// coverItemID locates the manifest item that carries the cover image.
// EPUB 3 marks it with properties="cover-image"; EPUB 2 points at it
// with <meta name="cover" content="item-id">. Returns "" if neither
// declaration is present.
func coverItemID(opf *opfPackage) string {
	for _, item := range opf.Manifest.Items {
		for _, prop := range strings.Fields(item.Properties) {
			if prop == "cover-image" {
				return item.ID
			}
		}
	}

	for _, mt := range opf.Metadata.Meta {
		if mt.Name == "cover" && mt.Content != "" {
			return mt.Content
		}
	}

	return ""
}
