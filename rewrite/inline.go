package rewrite

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/net/html"
)

// Inline re-hosts inline-encoded images in already-structured HTML: for
// every img whose src is a base64 data URI, the payload is decoded,
// uploaded through the object store, staged, and the src replaced with
// the durable URL. All other references pass through untouched. Used
// for content authored directly rather than imported from a package.
//
// A data URI that cannot be decoded is logged and left in place; it
// never fails the document.
func (rw *Rewriter) Inline(ctx context.Context, htmlContent string) (string, []string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", nil, err
	}

	var uploaded []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "img" {
			if i := attrIndex(n, "", "src"); i >= 0 {
				if url, ok := rw.rewriteDataURI(ctx, n, i); ok {
					uploaded = append(uploaded, url)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return renderBody(doc), uploaded, nil
}

// rewriteDataURI decodes one base64 image data URI, uploads it, and
// rewrites the attribute.
func (rw *Rewriter) rewriteDataURI(ctx context.Context, n *html.Node, attrIdx int) (string, bool) {
	src := n.Attr[attrIdx].Val
	if !strings.HasPrefix(src, "data:image") {
		return "", false
	}

	contentType, data, err := decodeDataURI(src)
	if err != nil {
		rw.log.Warn("skipping undecodable data URI", "error", err)
		return "", false
	}

	name := "image-" + uuid.NewString() + extensionFor(contentType)
	url, err := rw.upload(ctx, name, contentType, data)
	if err != nil {
		rw.log.Error("uploading inline image failed", "error", err)
		return "", false
	}

	n.Attr[attrIdx].Val = url
	return url, true
}

// decodeDataURI splits "data:<mime>;base64,<payload>" into the media
// type and decoded payload.
func decodeDataURI(src string) (contentType string, data []byte, err error) {
	header, payload, ok := strings.Cut(src, ",")
	if !ok {
		return "", nil, base64.CorruptInputError(0)
	}

	contentType = strings.TrimPrefix(header, "data:")
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Some producers omit padding
		data, err = base64.RawStdEncoding.DecodeString(payload)
	}
	if err != nil {
		return "", nil, err
	}

	return contentType, data, nil
}
