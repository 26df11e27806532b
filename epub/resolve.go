package epub

import (
	"net/url"
	"strings"
)

// ResolveHref resolves a reference found inside a content document into
// an absolute path within the package. basePath is the internal path of
// the document containing the reference (e.g. "Text/chapter1.html");
// ref is the raw attribute value (e.g. "../Images/pic.jpg").
//
// The reference is joined onto the directory portion of basePath and
// "." / ".." segments are normalized. A ".." that would climb above the
// package root is clamped at the root, since package paths are not a
// real filesystem. References starting with "/" are taken from the
// package root. The function is pure: the same inputs always yield the
// same resolved path.
func ResolveHref(basePath, ref string) string {
	// Hrefs may be percent-encoded in the document
	if decoded, err := url.PathUnescape(ref); err == nil {
		ref = decoded
	}

	var joined string
	if strings.HasPrefix(ref, "/") {
		joined = ref
	} else {
		dir := ""
		if i := strings.LastIndex(basePath, "/"); i >= 0 {
			dir = basePath[:i+1]
		}
		joined = dir + ref
	}

	segments := strings.Split(joined, "/")
	resolved := make([]string, 0, len(segments))
	for _, seg := range segments {
		switch seg {
		case "", ".":
			// skip
		case "..":
			if len(resolved) > 0 {
				resolved = resolved[:len(resolved)-1]
			}
		default:
			resolved = append(resolved, seg)
		}
	}

	return strings.Join(resolved, "/")
}
