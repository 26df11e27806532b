package epub

import (
	"errors"
	"fmt"
)

// ErrMalformedPackage is the terminal parse error. Every specific
// container failure wraps it, so callers can match the whole family
// with errors.Is(err, ErrMalformedPackage).
var ErrMalformedPackage = errors.New("epub: malformed package")

// Specific parse errors.
var (
	ErrInvalidArchive   = fmt.Errorf("%w: invalid or corrupted archive", ErrMalformedPackage)
	ErrNoContainer      = fmt.Errorf("%w: missing META-INF/container.xml", ErrMalformedPackage)
	ErrInvalidContainer = fmt.Errorf("%w: invalid container.xml", ErrMalformedPackage)
	ErrNoRootfile       = fmt.Errorf("%w: no rootfile found in container.xml", ErrMalformedPackage)
	ErrNoOPF            = fmt.Errorf("%w: missing package document (OPF)", ErrMalformedPackage)
	ErrInvalidOPF       = fmt.Errorf("%w: invalid package document", ErrMalformedPackage)
	ErrMissingContent   = fmt.Errorf("%w: spine references a missing content file", ErrMalformedPackage)
	ErrDRMProtected     = fmt.Errorf("%w: DRM-protected content cannot be processed", ErrMalformedPackage)
)
