package workspace

import (
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"github.com/lumosimmo/solidity-analyzer/internal/intern"
)

// FileExists abstracts "does this normalized path name a file in the
// current VFS/disk snapshot", letting ResolveImport stay independent of
// the vfs package (avoiding an import cycle: vfs doesn't need to know
// about workspace, but workspace's resolver needs to check existence).
type FileExists func(intern.NormalizedPath) bool

// ResolveImport resolves importPath written in file fromPath to a
// normalized workspace path:
//
//  1. relative imports ("./" and "../") resolve against fromPath's
//     directory first, since Solidity treats those forms as unambiguous;
//  2. otherwise, remappings are tried, preferring a context-scoped
//     remapping over an unscoped one, and the longest `from` among the
//     chosen set;
//  3. otherwise importPath is tried as already workspace-relative;
//  4. otherwise unresolved.
func ResolveImport(importPath string, fromPath intern.NormalizedPath, root string, remappings []Remapping, exists FileExists) (intern.NormalizedPath, bool) {
	// Step 1 takes priority over remappings when the path is explicitly
	// relative, since Solidity treats "./" and "../" as unambiguous.
	if strings.HasPrefix(importPath, "./") || strings.HasPrefix(importPath, "../") {
		resolved := intern.Normalize(path.Join(path.Dir(string(fromPath)), importPath))
		if exists(resolved) {
			return resolved, true
		}
	}

	if rm, ok := selectRemapping(importPath, fromPath, root, remappings); ok {
		remainder := strings.TrimPrefix(importPath, rm.From)
		rewritten := intern.Normalize(path.Join(root, rm.To, remainder))
		if exists(rewritten) {
			return rewritten, true
		}
	}

	// Fall back to resolving the path as already workspace-relative
	// (covers the "on-disk layout" step when no remapping applies).
	direct := intern.Normalize(path.Join(root, importPath))
	if exists(direct) {
		return direct, true
	}

	return "", false
}

// selectRemapping picks the best-matching remapping by prefix, then
// prefers a context-scoped match over an unscoped one, then the
// longest `from` among the surviving candidates.
func selectRemapping(importPath string, fromPath intern.NormalizedPath, root string, remappings []Remapping) (Remapping, bool) {
	relFrom := strings.TrimPrefix(string(fromPath), strings.TrimSuffix(root, "/")+"/")

	var candidates []Remapping
	for _, rm := range remappings {
		if strings.HasPrefix(importPath, rm.From) {
			candidates = append(candidates, rm)
		}
	}
	if len(candidates) == 0 {
		return Remapping{}, false
	}

	var scoped []Remapping
	for _, rm := range candidates {
		if rm.Context != "" && strings.HasPrefix(relFrom, rm.Context) {
			scoped = append(scoped, rm)
		}
	}
	pool := candidates
	if len(scoped) > 0 {
		pool = scoped
	} else {
		// Prefer unscoped remappings over ones scoped to a context that
		// doesn't match, but still consider unscoped entries from the
		// original candidate set.
		var unscoped []Remapping
		for _, rm := range candidates {
			if rm.Context == "" {
				unscoped = append(unscoped, rm)
			}
		}
		if len(unscoped) > 0 {
			pool = unscoped
		}
	}

	best := pool[0]
	for _, rm := range pool[1:] {
		if len(rm.From) > len(best.From) {
			best = rm
		}
	}
	return best, true
}

// DiscoverSolFiles globs root for every .sol file, used for workspace
// symbol fallbacks and the import-path completion source. Paths are
// returned slash-separated and sorted, as doublestar yields them: each
// one includes root's own path without its leading slash.
func DiscoverSolFiles(fs afero.Fs, root string) ([]string, error) {
	matches, err := doublestar.Glob(afero.NewIOFS(fs), strings.TrimPrefix(root, "/")+"/**/*.sol")
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}
