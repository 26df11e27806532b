package epub

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"
)

// testPackage builds an EPUB archive in memory. Files map internal
// paths to contents; entries are written in map order except mimetype,
// which always goes first and uncompressed.
func testPackage(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	mimeWriter, err := w.CreateHeader(&zip.FileHeader{
		Name:   "mimetype",
		Method: zip.Store,
	})
	if err != nil {
		t.Fatal(err)
	}
	mimeWriter.Write([]byte("application/epub+zip"))

	for name, content := range files {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(content))
	}

	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

const testContainerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

func chapterDoc(title, body string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>` + title + `</title></head>
<body>` + body + `</body>
</html>`
}

func TestOpenFullPackage(t *testing.T) {
	data := testPackage(t, map[string]string{
		"META-INF/container.xml": testContainerXML,
		"OEBPS/content.opf": `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Test Book</dc:title>
    <dc:creator>Test Author</dc:creator>
    <dc:description>A &lt;b&gt;bold&lt;/b&gt; story</dc:description>
    <dc:language>en</dc:language>
    <dc:identifier id="bookid">test-isbn-123</dc:identifier>
  </metadata>
  <manifest>
    <item id="cover-img" href="Images/cover.jpg" media-type="image/jpeg" properties="cover-image"/>
    <item id="chapter1" href="Text/chapter1.xhtml" media-type="application/xhtml+xml"/>
    <item id="chapter2" href="Text/chapter2.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine>
    <itemref idref="chapter1"/>
    <itemref idref="chapter2"/>
  </spine>
</package>`,
		"OEBPS/Images/cover.jpg":    "jpegbytes",
		"OEBPS/Text/chapter1.xhtml": chapterDoc("Chapter One", "<p>one</p>"),
		"OEBPS/Text/chapter2.xhtml": chapterDoc("Chapter Two", "<p>two</p>"),
	})

	book, err := Open(data)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if book.Metadata.Title != "Test Book" {
		t.Errorf("Title = %q, want %q", book.Metadata.Title, "Test Book")
	}
	if len(book.Metadata.Creators) != 1 || book.Metadata.Creators[0] != "Test Author" {
		t.Errorf("Creators = %v", book.Metadata.Creators)
	}
	if len(book.Metadata.Descriptions) != 1 {
		t.Errorf("Descriptions = %v", book.Metadata.Descriptions)
	}

	if len(book.Documents) != 2 {
		t.Fatalf("got %d documents, want 2", len(book.Documents))
	}
	if book.Documents[0].Path != "OEBPS/Text/chapter1.xhtml" {
		t.Errorf("Documents[0].Path = %q", book.Documents[0].Path)
	}
	if book.Documents[1].Path != "OEBPS/Text/chapter2.xhtml" {
		t.Errorf("Documents[1].Path = %q", book.Documents[1].Path)
	}

	if book.Cover == nil {
		t.Fatal("expected a cover resource")
	}
	if book.Cover.MediaType != "image/jpeg" {
		t.Errorf("Cover.MediaType = %q", book.Cover.MediaType)
	}
	if string(book.Cover.Data) != "jpegbytes" {
		t.Errorf("Cover.Data = %q", book.Cover.Data)
	}

	if _, ok := book.Resources["OEBPS/Images/cover.jpg"]; !ok {
		t.Error("cover missing from resource table")
	}
}

func TestOpenMissingOptionalMetadata(t *testing.T) {
	data := testPackage(t, map[string]string{
		"META-INF/container.xml": testContainerXML,
		"OEBPS/content.opf": `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/"></metadata>
  <manifest>
    <item id="c1" href="c1.xhtml" media-type="application/xhtml+xml"/>
    <item id="c2" href="c2.xhtml" media-type="application/xhtml+xml"/>
    <item id="c3" href="c3.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine>
    <itemref idref="c1"/>
    <itemref idref="c2"/>
    <itemref idref="c3"/>
  </spine>
</package>`,
		"OEBPS/c1.xhtml": chapterDoc("", "<p>1</p>"),
		"OEBPS/c2.xhtml": chapterDoc("", "<p>2</p>"),
		"OEBPS/c3.xhtml": chapterDoc("", "<p>3</p>"),
	})

	book, err := Open(data)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if book.Metadata.Title != "" || len(book.Metadata.Creators) != 0 || len(book.Metadata.Descriptions) != 0 {
		t.Errorf("expected empty metadata, got %+v", book.Metadata)
	}
	if len(book.Documents) != 3 {
		t.Errorf("got %d documents, want 3", len(book.Documents))
	}
	if book.Cover != nil {
		t.Error("expected no cover")
	}
}

func TestOpenEmptySpine(t *testing.T) {
	data := testPackage(t, map[string]string{
		"META-INF/container.xml": testContainerXML,
		"OEBPS/content.opf": `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Empty</dc:title>
  </metadata>
  <manifest></manifest>
  <spine></spine>
</package>`,
	})

	book, err := Open(data)
	if err != nil {
		t.Fatalf("empty spine should not fail: %v", err)
	}
	if len(book.Documents) != 0 {
		t.Errorf("got %d documents, want 0", len(book.Documents))
	}
}

func TestOpenEpub2CoverMeta(t *testing.T) {
	data := testPackage(t, map[string]string{
		"META-INF/container.xml": testContainerXML,
		"OEBPS/content.opf": `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Old Style</dc:title>
    <meta name="cover" content="cov"/>
  </metadata>
  <manifest>
    <item id="cov" href="cover.png" media-type="image/png"/>
    <item id="c1" href="c1.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine>
    <itemref idref="c1"/>
  </spine>
</package>`,
		"OEBPS/cover.png": "pngbytes",
		"OEBPS/c1.xhtml":  chapterDoc("One", "<p>x</p>"),
	})

	book, err := Open(data)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if book.Cover == nil {
		t.Fatal("expected EPUB 2 meta cover to be found")
	}
	if book.Cover.Path != "OEBPS/cover.png" {
		t.Errorf("Cover.Path = %q", book.Cover.Path)
	}
}

func TestOpenDeclaredCoverMissingFile(t *testing.T) {
	data := testPackage(t, map[string]string{
		"META-INF/container.xml": testContainerXML,
		"OEBPS/content.opf": `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>No Cover File</dc:title>
  </metadata>
  <manifest>
    <item id="cover-img" href="gone.jpg" media-type="image/jpeg" properties="cover-image"/>
    <item id="c1" href="c1.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine>
    <itemref idref="c1"/>
  </spine>
</package>`,
		"OEBPS/c1.xhtml": chapterDoc("One", "<p>x</p>"),
	})

	book, err := Open(data)
	if err != nil {
		t.Fatalf("missing cover file should not fail the parse: %v", err)
	}
	if book.Cover != nil {
		t.Error("expected no cover when the declared file is absent")
	}
}

func TestOpenInvalidArchive(t *testing.T) {
	_, err := Open([]byte("this is not a zip archive"))
	if !errors.Is(err, ErrMalformedPackage) {
		t.Errorf("err = %v, want ErrMalformedPackage", err)
	}
	if !errors.Is(err, ErrInvalidArchive) {
		t.Errorf("err = %v, want ErrInvalidArchive", err)
	}
}

func TestOpenMissingContainer(t *testing.T) {
	data := testPackage(t, map[string]string{
		"OEBPS/content.opf": "<package/>",
	})

	_, err := Open(data)
	if !errors.Is(err, ErrNoContainer) {
		t.Errorf("err = %v, want ErrNoContainer", err)
	}
}

func TestOpenSpineReferencesMissingFile(t *testing.T) {
	data := testPackage(t, map[string]string{
		"META-INF/container.xml": testContainerXML,
		"OEBPS/content.opf": `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Broken</dc:title>
  </metadata>
  <manifest>
    <item id="c1" href="missing.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine>
    <itemref idref="c1"/>
  </spine>
</package>`,
	})

	_, err := Open(data)
	if !errors.Is(err, ErrMissingContent) {
		t.Errorf("err = %v, want ErrMissingContent", err)
	}
	if !errors.Is(err, ErrMalformedPackage) {
		t.Errorf("err = %v, want ErrMalformedPackage", err)
	}
}

func TestOpenDRMProtected(t *testing.T) {
	data := testPackage(t, map[string]string{
		"META-INF/container.xml": testContainerXML,
		"META-INF/rights.xml":    "<rights/>",
		"OEBPS/content.opf":      "<package/>",
	})

	_, err := Open(data)
	if !errors.Is(err, ErrDRMProtected) {
		t.Errorf("err = %v, want ErrDRMProtected", err)
	}
}
