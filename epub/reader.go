package epub

import (
	"archive/zip"
	"bytes"
	"io"
	"net/url"
	"path"
)

// Open parses raw package bytes into a Book. It returns an error
// wrapping ErrMalformedPackage when the archive is unreadable, the
// required container or package document is missing, or a spine entry
// references a file absent from the archive. Missing optional metadata
// and an empty spine are tolerated.
func Open(data []byte) (*Book, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, ErrInvalidArchive
	}

	if err := checkForDRM(zr); err != nil {
		return nil, err
	}

	opfPath, err := parseContainer(zr)
	if err != nil {
		return nil, err
	}

	opf, baseDir, err := parseOPF(zr, opfPath)
	if err != nil {
		return nil, err
	}

	book := &Book{
		Metadata:  convertMetadata(&opf.Metadata),
		Resources: make(map[string]Resource, len(opf.Manifest.Items)),
		Version:   opf.Version,
	}

	// Build the resource table from the manifest. Manifest entries whose
	// backing file is absent are skipped; only spine entries are required.
	itemPaths := make(map[string]string, len(opf.Manifest.Items))
	for _, item := range opf.Manifest.Items {
		p := resolveManifestHref(baseDir, item.Href)
		itemPaths[item.ID] = p

		content, err := readFile(zr, p)
		if err != nil {
			continue
		}
		book.Resources[p] = Resource{
			Path:      p,
			MediaType: item.MediaType,
			Data:      content,
		}
	}

	// Load spine documents in reading order
	book.Documents = make([]Document, 0, len(opf.Spine.ItemRefs))
	for _, ref := range opf.Spine.ItemRefs {
		p, ok := itemPaths[ref.IDRef]
		if !ok {
			return nil, ErrInvalidOPF
		}
		res, ok := book.Resources[p]
		if !ok {
			return nil, ErrMissingContent
		}
		book.Documents = append(book.Documents, Document{Path: p, Data: res.Data})
	}

	// Locate the declared cover, if any. A cover declaration pointing at
	// a missing file means no cover, not a parse failure.
	if id := coverItemID(opf); id != "" {
		if p, ok := itemPaths[id]; ok {
			if res, ok := book.Resources[p]; ok {
				cover := res
				book.Cover = &cover
			}
		}
	}

	return book, nil
}

// resolveManifestHref resolves a manifest href against the OPF base
// directory.
func resolveManifestHref(baseDir, href string) string {
	if decoded, err := url.QueryUnescape(href); err == nil {
		href = decoded
	}

	if baseDir == "" {
		return path.Clean(href)
	}
	return path.Join(baseDir, href)
}

// readFile reads a single file from the ZIP archive.
func readFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, ErrMissingContent
}
