package server

import (
	"fmt"
	"sort"
)

// executeCommand dispatches a workspace/executeCommand request. Both
// commands this server advertises are synchronous and return a plain
// string/slice result rather than applying a WorkspaceEdit.
func (s *Server) executeCommand(command string, args []any) (any, error) {
	switch command {
	case cmdInstallFoundrySolc:
		return s.installFoundrySolc()
	case cmdIndexedFiles:
		return s.indexedFiles(), nil
	default:
		return nil, fmt.Errorf("unknown command %q", command)
	}
}

// installFoundrySolc reports the toolchain status instead of actually
// installing anything: driving `foundryup`/solc-select is out of scope
// for this server, so the command tells the client what it found and
// leaves the install step to the user.
func (s *Server) installFoundrySolc() (string, error) {
	tracker := s.core.Toolchain()
	if !tracker.NeedsInstallPrompt() {
		status := tracker.Status()
		return fmt.Sprintf("solc already available at %s (%s)", status.Path, status.Version), nil
	}
	return "no solc toolchain found; run `foundryup` or install solc and reload the window", nil
}

// indexedFiles returns every file path the incremental database currently
// tracks, sorted for a stable response.
func (s *Server) indexedFiles() []string {
	ids := s.core.DB().FileIDs()
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		path, err := s.core.DB().FilePath(id)
		if err != nil {
			continue
		}
		out = append(out, string(path))
	}
	sort.Strings(out)
	return out
}
