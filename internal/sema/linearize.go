// Package sema builds the semantic snapshot: C3-linearized inheritance,
// structural receiver types, member visibility, offset-based resolution
// with overload selection, and a lazily built reference index. It sits
// directly on top of internal/hir and internal/defmap — no separate type
// checker is interned here, types are computed structurally from the
// syntax tree on demand, the way gopls computes types.Info lazily from
// go/types rather than precomputing every expression's type up front.
package sema

import "github.com/lumosimmo/solidity-analyzer/internal/intern"

// ContractInfo is everything the linearization and member-visibility
// rules need about one contract/interface/library declaration: its
// identity and its base list as written. Program (see program.go)
// builds one of these per contract-like declaration directly from the
// parsed ContractDecl, keyed by (file, name).
type ContractInfo struct {
	File  intern.FileID
	Name  string
	Kind  intern.DefKind
	Bases []string // base names as written, same file only
}

// ContractKey identifies one contract-like declaration by the file it
// was declared in and its name.
type ContractKey struct {
	File intern.FileID
	Name string
}

// Linearize computes the linearization of contract's base list: the
// contract itself first, followed by its bases in the order Solidity's
// compiler resolves `super` and overload precedence. Bases are walked
// from the last-listed (most derived) to the first, each contributing its
// own linearization, and a name reached more than once keeps only its
// last position, so a shared ancestor comes after every base deriving
// from it: for `D is B, C` with B and C both deriving from A the result
// is D, C, B, A.
//
// Solidity requires programmers to write base lists in C3-compatible
// order already (the compiler rejects a file whose bases admit no
// linearization), so this merge never needs to fail; a cycle (which a
// well-formed program cannot have) breaks by dropping the repeat rather
// than looping forever.
func Linearize(contracts map[ContractKey]*ContractInfo, file intern.FileID, name string) []string {
	return linearize(contracts, file, name, map[ContractKey]bool{})
}

func linearize(contracts map[ContractKey]*ContractInfo, file intern.FileID, name string, seen map[ContractKey]bool) []string {
	key := ContractKey{File: file, Name: name}
	if seen[key] {
		return nil
	}
	seen[key] = true
	defer delete(seen, key)

	chain := []string{name}
	if info, ok := contracts[key]; ok {
		for i := len(info.Bases) - 1; i >= 0; i-- {
			chain = append(chain, linearize(contracts, file, info.Bases[i], seen)...)
		}
	}
	return dedupKeepLast(chain)
}

func dedupKeepLast(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, len(in))
	n := len(in)
	for i := len(in) - 1; i >= 0; i-- {
		if seen[in[i]] {
			continue
		}
		seen[in[i]] = true
		n--
		out[n] = in[i]
	}
	return out[n:]
}
