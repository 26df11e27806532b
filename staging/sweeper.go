package staging

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/tsawler/bookstage/storage"
)

// Default lifecycle parameters. The retention window must comfortably
// exceed the normal extract-to-save latency: confirmation arriving
// after a row has already been selected for sweeping cannot save it.
const (
	DefaultRetention = 24 * time.Hour
	DefaultInterval  = 24 * time.Hour
)

// SweeperConfig configures a Sweeper. Zero values fall back to the
// defaults above and slog.Default().
type SweeperConfig struct {
	Retention time.Duration
	Interval  time.Duration
	Logger    *slog.Logger
}

// Sweeper owns the confirm/sweep lifecycle of staged assets. Confirm
// releases ledger rows whose content has been durably saved; Sweep
// deletes rows (and their backing objects) that outlived the retention
// window without ever being confirmed.
type Sweeper struct {
	ledger    Ledger
	store     storage.Store
	retention time.Duration
	interval  time.Duration
	log       *slog.Logger
	now       func() time.Time
}

// NewSweeper creates a Sweeper over the given ledger and object store.
func NewSweeper(ledger Ledger, store storage.Store, cfg SweeperConfig) *Sweeper {
	if cfg.Retention <= 0 {
		cfg.Retention = DefaultRetention
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Sweeper{
		ledger:    ledger,
		store:     store,
		retention: cfg.Retention,
		interval:  cfg.Interval,
		log:       cfg.Logger,
		now:       time.Now,
	}
}

// Confirm marks the given asset URLs as permanently retained by deleting
// their ledger rows. Confirming a URL that was never staged, or whose
// row already expired, is a no-op.
func (s *Sweeper) Confirm(ctx context.Context, urls ...string) error {
	for _, url := range urls {
		if url == "" {
			continue
		}
		if err := s.ledger.DeleteByURL(ctx, url); err != nil {
			return err
		}
	}
	return nil
}

// ConfirmContent scans persisted HTML for image sources and confirms
// each one that addresses an uploaded asset. Inline data URIs are
// skipped.
func (s *Sweeper) ConfirmContent(ctx context.Context, htmlContent string) error {
	if htmlContent == "" {
		return nil
	}

	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil
	}

	var urls []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "img" || n.Data == "image") {
			for _, attr := range n.Attr {
				if attr.Key != "src" && attr.Key != "href" && attr.Key != "xlink:href" {
					continue
				}
				if attr.Val != "" && !strings.HasPrefix(attr.Val, "data:") {
					urls = append(urls, attr.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return s.Confirm(ctx, urls...)
}

// Sweep deletes every staged asset older than the retention window. The
// expired set is a snapshot taken at sweep start, so assets staged while
// the sweep runs are never included in the same pass. Object deletion is
// best-effort: a failed remote delete is logged and the ledger row is
// removed anyway, so a permanently broken URL is never retried forever.
// Sweep returns the number of ledger rows removed.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.retention)

	urls, err := s.ledger.ListOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, url := range urls {
		if err := s.store.Remove(ctx, url); err != nil {
			s.log.Error("sweep: deleting staged object failed", "url", url, "error", err)
		}

		if err := s.ledger.DeleteByURL(ctx, url); err != nil {
			s.log.Error("sweep: deleting ledger row failed", "url", url, "error", err)
			continue
		}
		removed++
	}

	if len(urls) > 0 {
		s.log.Info("sweep finished", "expired", len(urls), "removed", removed)
	}
	return removed, nil
}

// Run sweeps on a fixed period until the context is cancelled. It is
// meant to be started once at process startup, on its own goroutine.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.log.Error("sweep failed", "error", err)
			}
		}
	}
}
