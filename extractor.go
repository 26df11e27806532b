package bookstage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tsawler/bookstage/epub"
	"github.com/tsawler/bookstage/rewrite"
	"github.com/tsawler/bookstage/staging"
	"github.com/tsawler/bookstage/storage"
)

// Extractor runs the ingestion pipeline: package parsing, per-document
// image re-hosting, and assembly of the structured result. It holds no
// per-request state and is safe for concurrent use; each Extract call
// is independent.
type Extractor struct {
	store  storage.Store
	ledger staging.Ledger
	log    *slog.Logger
}

// New creates an Extractor over the given object store and staging
// ledger.
func New(store storage.Store, ledger staging.Ledger, opts ...Option) *Extractor {
	e := &Extractor{
		store:  store,
		ledger: ledger,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract parses raw package bytes and produces the extraction result.
// It fails only when the package itself is malformed (the error wraps
// epub.ErrMalformedPackage); individual missing or failed images never
// surface as a top-level error. Uploads performed before a failure are
// not rolled back here; they stay staged and age out via the sweeper.
func (e *Extractor) Extract(ctx context.Context, data []byte) (*ExtractionResult, error) {
	book, err := epub.Open(data)
	if err != nil {
		return nil, err
	}

	rw := rewrite.New(e.store, e.ledger, e.log)

	result := &ExtractionResult{
		Title:    book.Metadata.Title,
		Chapters: make([]Chapter, 0, len(book.Documents)),
	}

	if len(book.Metadata.Creators) > 0 {
		result.Author = strings.TrimSpace(book.Metadata.Creators[0])
	}
	if len(book.Metadata.Descriptions) > 0 {
		// Descriptions often carry markup; store plain text
		result.Description = rewrite.Text(book.Metadata.Descriptions[0])
	}

	if book.Cover != nil {
		url, err := rw.Cover(ctx, *book.Cover)
		if err != nil {
			e.log.Error("uploading cover failed", "error", err)
		} else {
			result.CoverImageURL = url
		}
	}

	for i, doc := range book.Documents {
		number := i + 1

		title, body, _, err := rw.Chapter(ctx, doc.Data, doc.Path, book)
		if err != nil {
			e.log.Error("rewriting chapter failed, keeping raw content", "path", doc.Path, "error", err)
			body = string(doc.Data)
		}

		result.Chapters = append(result.Chapters, Chapter{
			Title:   chapterTitle(title, number, book, result.Title),
			Number:  number,
			Content: body,
		})
	}

	return result, nil
}

// ExtractHTML is the entry point for content that arrives as
// already-structured HTML with inline base64 images rather than a
// package. It re-hosts each decodable data URI and returns the
// rewritten body along with the uploaded asset URLs.
func (e *Extractor) ExtractHTML(ctx context.Context, htmlContent string) (string, []string, error) {
	if htmlContent == "" {
		return htmlContent, nil, nil
	}

	rw := rewrite.New(e.store, e.ledger, e.log)
	return rw.Inline(ctx, htmlContent)
}

// chapterTitle applies the title fallback chain: the document's own
// title or first heading, then the package title for single-document
// packages, then a synthesized ordinal title.
func chapterTitle(docTitle string, number int, book *epub.Book, packageTitle string) string {
	if docTitle != "" {
		return docTitle
	}
	if len(book.Documents) == 1 && packageTitle != "" {
		return packageTitle
	}
	return fmt.Sprintf("Chapter %d", number)
}
