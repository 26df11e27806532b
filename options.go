package bookstage

import "log/slog"

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger used for per-reference warnings and upload
// failures. The default is slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(e *Extractor) {
		if log != nil {
			e.log = log
		}
	}
}
