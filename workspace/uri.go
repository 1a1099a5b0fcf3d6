package workspace

import (
	"net/url"
	"path"
	"strings"
)

// CanonicalURI normalizes an import URI for graph-edge and cache-key
// comparison: query and fragment are stripped, percent-escapes are
// decoded, and the result is compared case-sensitively (WDL import paths
// are not case-folded, only percent-decoded).
func CanonicalURI(raw string) string {
	if u, err := url.Parse(raw); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		u.RawQuery = ""
		u.Fragment = ""

		decoded, err := url.PathUnescape(u.Path)
		if err == nil {
			u.Path = decoded
		}

		return u.String()
	}

	// Filesystem path: strip any ?query/#fragment a URI-shaped relative
	// import might carry, percent-decode, and clean.
	clean := raw
	if idx := strings.IndexAny(clean, "?#"); idx >= 0 {
		clean = clean[:idx]
	}

	if decoded, err := url.PathUnescape(clean); err == nil {
		clean = decoded
	}

	return path.Clean(clean)
}

// ResolveImportURI joins a raw import path against the URI of the
// document that imports it, producing the canonical URI used as a graph
// node key. An absolute http(s) or file-scheme import is canonicalized
// as-is; a relative import is resolved against fromURI's directory so
// two documents that both import "../common.wdl" resolve to the same
// node regardless of which document is read first.
func ResolveImportURI(fromURI, raw string) string {
	if u, err := url.Parse(raw); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return CanonicalURI(raw)
	}

	const fileScheme = "file://"

	if !strings.HasPrefix(fromURI, fileScheme) {
		// Non-filesystem document (e.g. an in-memory LSP buffer opened
		// under an opaque URI): best effort, treat fromURI itself as the
		// base directory.
		return CanonicalURI(path.Join(fromURI, "..", raw))
	}

	dir := path.Dir(strings.TrimPrefix(fromURI, fileScheme))
	joined := path.Join(dir, raw)

	return fileScheme + CanonicalURI(joined)
}
