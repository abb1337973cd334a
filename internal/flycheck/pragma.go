package flycheck

import (
	"fmt"
	"regexp"

	mastersemver "github.com/Masterminds/semver/v3"
	"golang.org/x/mod/semver"

	"github.com/lumosimmo/solidity-analyzer/internal/syntax"
)

// AssumedCompilerVersion is what pragma constraints are checked against
// when the toolchain hasn't reported a real solc version yet.
const AssumedCompilerVersion = "0.8.24"

var versionToken = regexp.MustCompile(`\d+\.\d+\.\d+`)

// LintPragmas checks every `pragma solidity ...;` directive in pragmas
// against compilerVersion (falling back to AssumedCompilerVersion when
// empty), producing the internal-lint diagnostics flycheck merges
// alongside whatever the external compiler reports.
func LintPragmas(pragmas []*syntax.Pragma, compilerVersion string) []Diagnostic {
	if compilerVersion == "" {
		compilerVersion = AssumedCompilerVersion
	}
	var out []Diagnostic
	for _, p := range pragmas {
		if p.Name != "solidity" {
			continue
		}
		out = append(out, lintSolidityPragma(p, compilerVersion)...)
	}
	return out
}

func lintSolidityPragma(p *syntax.Pragma, compilerVersion string) []Diagnostic {
	// x/mod/semver validates the shape of each bare version token in the
	// constraint before Masterminds is asked to parse the whole range —
	// it catches a malformed token (e.g. "0.08.0" with a leading zero)
	// that Masterminds' looser parser might otherwise accept.
	for _, tok := range versionToken.FindAllString(p.Value, -1) {
		if !semver.IsValid("v" + tok) {
			return []Diagnostic{{
				Range:    p.Range,
				Severity: SeverityError,
				Code:     "pragma-version-malformed",
				Message:  fmt.Sprintf("malformed version %q in pragma solidity %q", tok, p.Value),
				Source:   SourceLint,
			}}
		}
	}

	constraint, err := mastersemver.NewConstraint(p.Value)
	if err != nil {
		return []Diagnostic{{
			Range:    p.Range,
			Severity: SeverityError,
			Code:     "pragma-version-invalid",
			Message:  fmt.Sprintf("invalid version constraint %q: %v", p.Value, err),
			Source:   SourceLint,
		}}
	}

	v, err := mastersemver.NewVersion(compilerVersion)
	if err != nil {
		return nil
	}
	if !constraint.Check(v) {
		return []Diagnostic{{
			Range:    p.Range,
			Severity: SeverityWarning,
			Code:     "pragma-version-mismatch",
			Message:  fmt.Sprintf("compiler version %s does not satisfy pragma solidity %q", compilerVersion, p.Value),
			Source:   SourceLint,
		}}
	}
	return nil
}
