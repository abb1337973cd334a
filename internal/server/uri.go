package server

import (
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/lumosimmo/solidity-analyzer/internal/intern"
)

// uriToPath converts a file:// URI into a normalized workspace path.
// Only the file scheme is supported; everything this server is asked
// about arrives as a file URI.
func uriToPath(uri string) (intern.NormalizedPath, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("parse uri %q: %w", uri, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("not a file uri: %s", uri)
	}
	return intern.Normalize(u.Path), nil
}

// pathToURI is the inverse of uriToPath.
func pathToURI(path intern.NormalizedPath) string {
	p := filepath.ToSlash(string(path))
	u := url.URL{Scheme: "file", Path: p}
	return u.String()
}
