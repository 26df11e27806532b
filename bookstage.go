// Package bookstage ingests packaged e-books and stages their assets.
//
// Extraction parses a zip-based e-book package, uploads every embedded
// image to durable object storage, rewrites the content to reference
// the uploaded URLs, and returns the structured result: title, author,
// description, cover URL, and ordered chapters. Every upload is
// recorded in a staging ledger; assets stay staged until the caller
// confirms the extracted content was durably saved, and unconfirmed
// assets are swept after a retention window.
//
// Basic usage:
//
//	ex := bookstage.New(store, ledger)
//	result, err := ex.Extract(ctx, epubBytes)
//	if err != nil {
//	    // handle error
//	}
//
//	// ... the caller saves result, then releases the staged assets:
//	sweeper := staging.NewSweeper(ledger, store, staging.SweeperConfig{})
//	for _, ch := range result.Chapters {
//	    sweeper.ConfirmContent(ctx, ch.Content)
//	}
//	sweeper.Confirm(ctx, result.CoverImageURL)
package bookstage

// Chapter is one extracted chapter. Number is the 1-based spine
// position; Content is the rewritten HTML body.
type Chapter struct {
	Title   string `json:"title"`
	Number  int    `json:"chapterNumber"`
	Content string `json:"content"`
}

// ExtractionResult is the structured output of one extraction. It is
// handed to the persistence layer verbatim.
type ExtractionResult struct {
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Description   string    `json:"description"`
	CoverImageURL string    `json:"coverImageUrl,omitempty"`
	Chapters      []Chapter `json:"chapters"`
}
