// Package rewrite uploads a document's embedded images to object
// storage and rewrites the references in place, producing HTML whose
// image sources are durable URLs instead of in-package paths.
package rewrite

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/tsawler/bookstage/epub"
	"github.com/tsawler/bookstage/staging"
	"github.com/tsawler/bookstage/storage"
)

// Rewriter rewrites image references in content documents, uploading
// each referenced resource through the object store and recording it in
// the staging ledger. A Rewriter tracks uploads for a single extraction
// so a resource referenced from several documents is uploaded once; it
// is not safe for concurrent use.
type Rewriter struct {
	store  storage.Store
	ledger staging.Ledger
	log    *slog.Logger
	now    func() time.Time
	seen   map[string]string // resolved package path -> uploaded URL
}

// New creates a Rewriter for one extraction. A nil logger falls back to
// slog.Default().
func New(store storage.Store, ledger staging.Ledger, log *slog.Logger) *Rewriter {
	if log == nil {
		log = slog.Default()
	}
	return &Rewriter{
		store:  store,
		ledger: ledger,
		log:    log,
		now:    time.Now,
		seen:   make(map[string]string),
	}
}

// Chapter rewrites one spine document. It parses the document
// (tolerating malformed markup and non-UTF-8 encodings), uploads every
// embedded image resource it can resolve, rewrites the references, and
// returns the document's own title (empty when it has none), the
// rewritten body content, and the URLs uploaded by this call.
//
// Individual references never fail the document: an unresolvable path,
// a missing resource, or a rejected upload is logged and the reference
// left as it was.
func (rw *Rewriter) Chapter(ctx context.Context, data []byte, docPath string, book *epub.Book) (title, body string, uploaded []string, err error) {
	doc, err := parseDocument(data)
	if err != nil {
		return "", "", nil, err
	}

	uploaded = rw.rewriteImages(ctx, doc, docPath, book)

	return documentTitle(doc), renderBody(doc), uploaded, nil
}

// rewriteImages walks the parsed document and processes both standard
// <img src> references and SVG <image> references, which may carry
// their target in a namespaced xlink:href attribute.
func (rw *Rewriter) rewriteImages(ctx context.Context, doc *html.Node, docPath string, book *epub.Book) []string {
	var uploaded []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "img":
				// The parser turns a bare SVG <image> into <img> but
				// keeps its original attributes, so fall back to the
				// href forms when src is absent.
				i := attrIndex(n, "", "src")
				if i < 0 {
					i = refAttrIndex(n)
				}
				if url, ok := rw.rewriteAttr(ctx, n, i, docPath, book); ok {
					uploaded = append(uploaded, url)
				}
			case "image":
				if url, ok := rw.rewriteAttr(ctx, n, refAttrIndex(n), docPath, book); ok {
					uploaded = append(uploaded, url)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return uploaded
}

// rewriteAttr resolves, uploads, and rewrites a single reference
// attribute. It returns the uploaded URL and true only when this call
// performed a new upload; rewrites that reuse an earlier upload of the
// same resource report false.
func (rw *Rewriter) rewriteAttr(ctx context.Context, n *html.Node, attrIdx int, docPath string, book *epub.Book) (string, bool) {
	if attrIdx < 0 {
		return "", false
	}

	src := n.Attr[attrIdx].Val
	if src == "" || strings.HasPrefix(src, "http") || strings.HasPrefix(src, "data:") {
		return "", false
	}

	resolved := epub.ResolveHref(docPath, src)

	if url, ok := rw.seen[resolved]; ok {
		n.Attr[attrIdx].Val = url
		return url, false
	}

	res, ok := book.Resources[resolved]
	if !ok {
		rw.log.Warn("image resource not found in package", "path", resolved, "document", docPath)
		return "", false
	}

	contentType := res.MediaType
	if contentType == "" {
		contentType = DetectMediaType(res.Data)
	}

	name := "story-img-" + uuid.NewString() + extensionFor(contentType)
	url, err := rw.upload(ctx, name, contentType, res.Data)
	if err != nil {
		rw.log.Error("uploading image failed", "path", resolved, "error", err)
		return "", false
	}

	rw.seen[resolved] = url
	n.Attr[attrIdx].Val = url
	return url, true
}

// Cover uploads the package's cover resource and stages it, returning
// its durable URL.
func (rw *Rewriter) Cover(ctx context.Context, res epub.Resource) (string, error) {
	contentType := res.MediaType
	if contentType == "" {
		contentType = DetectMediaType(res.Data)
	}

	name := "cover-" + uuid.NewString() + extensionFor(contentType)
	return rw.upload(ctx, name, contentType, res.Data)
}

// upload puts the bytes in the object store and records the returned
// URL in the staging ledger. If the ledger insert fails the object is
// removed again: an upload the ledger cannot track would leak past
// every sweep.
func (rw *Rewriter) upload(ctx context.Context, name, contentType string, data []byte) (string, error) {
	url, err := rw.store.Put(ctx, bytes.NewReader(data), int64(len(data)), name, contentType)
	if err != nil {
		return "", err
	}

	if err := rw.ledger.Insert(ctx, url, rw.now()); err != nil {
		if rmErr := rw.store.Remove(ctx, url); rmErr != nil {
			rw.log.Error("removing untracked upload failed", "url", url, "error", rmErr)
		}
		return "", err
	}

	return url, nil
}

// parseDocument parses document bytes as HTML, decoding the character
// set first. Malformed markup is tolerated by the parser.
func parseDocument(data []byte) (*html.Node, error) {
	r, err := charset.NewReader(bytes.NewReader(data), "")
	if err != nil {
		return html.Parse(bytes.NewReader(data))
	}
	return html.Parse(r)
}

// documentTitle returns the document's <title> text, or the text of its
// first heading when the title is empty or absent.
func documentTitle(doc *html.Node) string {
	if t := findElement(doc, "title"); t != nil {
		if s := strings.TrimSpace(textContent(t)); s != "" {
			return s
		}
	}

	for _, h := range []string{"h1", "h2", "h3", "h4", "h5", "h6"} {
		if n := findElement(doc, h); n != nil {
			if s := strings.TrimSpace(textContent(n)); s != "" {
				return s
			}
		}
	}

	return ""
}

// renderBody renders the body's inner HTML, dropping the document
// wrapper.
func renderBody(doc *html.Node) string {
	body := findElement(doc, "body")
	if body == nil {
		body = doc
	}

	var buf bytes.Buffer
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		html.Render(&buf, c)
	}
	return buf.String()
}

// Text flattens an HTML fragment to its plain text content, used to
// strip markup from package metadata such as descriptions.
func Text(fragment string) string {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	return strings.TrimSpace(textContent(doc))
}

// findElement returns the first element with the given tag name, in
// document order.
func findElement(n *html.Node, name string) *html.Node {
	if n.Type == html.ElementNode && n.Data == name {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, name); found != nil {
			return found
		}
	}
	return nil
}

// textContent collects the concatenated text below a node.
func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}

// refAttrIndex locates an SVG image reference attribute, preferring the
// namespaced xlink form. Inside SVG foreign content the parser splits
// "xlink:href" into namespace and key; elsewhere it survives as a plain
// attribute named "xlink:href".
func refAttrIndex(n *html.Node) int {
	if i := attrIndex(n, "xlink", "href"); i >= 0 {
		return i
	}
	if i := attrIndex(n, "", "xlink:href"); i >= 0 {
		return i
	}
	return attrIndex(n, "", "href")
}

// attrIndex returns the index of the attribute with the given namespace
// and key, or -1.
func attrIndex(n *html.Node, namespace, key string) int {
	for i, attr := range n.Attr {
		if attr.Namespace == namespace && attr.Key == key {
			return i
		}
	}
	return -1
}
