package docstore

import (
	"net/url"
	"path/filepath"
)

// URIToPath converts a file URI (or a bare path) to an absolute path.
// Other schemes yield "".
func URIToPath(uri string) string {
	if uri == "" {
		return ""
	}
	parsed, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	if parsed.Scheme != "" && parsed.Scheme != "file" {
		return ""
	}
	path := parsed.Path
	if parsed.Scheme == "" {
		path = uri
	}
	if unescaped, err := url.PathUnescape(path); err == nil {
		path = unescaped
	}
	path = filepath.FromSlash(path)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return path
}

// PathToURI builds a file URI for path.
func PathToURI(path string) string {
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

// canonicalURI makes file URIs and bare paths for the same file compare
// equal. Other URIs are kept as they are.
func canonicalURI(uri string) string {
	if p := URIToPath(uri); p != "" {
		return PathToURI(p)
	}
	return uri
}
