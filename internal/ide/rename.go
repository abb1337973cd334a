package ide

import (
	"fmt"
	"regexp"

	"github.com/lumosimmo/solidity-analyzer/internal/intern"
	"github.com/lumosimmo/solidity-analyzer/internal/sema"
	"github.com/lumosimmo/solidity-analyzer/internal/text"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Edit is one text replacement a rename produces: replace the text at
// Range with NewText.
type Edit struct {
	File    intern.FileID
	Range   text.Range
	NewText string
}

// Rename computes every edit needed to rename the symbol at offset to
// newName: the declaration site and every recorded reference. It refuses
// a newName that isn't a legal Solidity identifier.
func Rename(prog *sema.Program, file intern.FileID, offset int, newName string) ([]Edit, error) {
	if !identifierPattern.MatchString(newName) {
		return nil, fmt.Errorf("rename: %q is not a valid identifier", newName)
	}

	locs := References(prog, file, offset, true)
	if len(locs) == 0 {
		return nil, fmt.Errorf("rename: no symbol at offset %d", offset)
	}

	edits := make([]Edit, len(locs))
	for i, l := range locs {
		edits[i] = Edit{File: l.File, Range: l.Range, NewText: newName}
	}
	return edits, nil
}
