// Package ide answers IDE requests (goto-definition, hover, signature
// help, completion, references, rename, document/workspace symbols)
// against a semantic snapshot. Every function here is a plain, cheap-to-
// call query: the dispatcher that spawns these on a worker pool with
// cancellation lives in internal/server, not here.
package ide

import (
	"github.com/lumosimmo/solidity-analyzer/internal/intern"
	"github.com/lumosimmo/solidity-analyzer/internal/text"
)

// Location names a span in a file, the query layer's answer to "where".
type Location struct {
	File  intern.FileID
	Range text.Range
}
