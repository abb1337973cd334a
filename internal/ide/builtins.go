package ide

import (
	"github.com/lumosimmo/solidity-analyzer/internal/intern"
	"github.com/lumosimmo/solidity-analyzer/internal/sema"
)

// builtinMembers lists the members Solidity attaches to elementary and
// array types directly, rather than through a contract/struct/library
// declaration — sema's membersOf only walks declared members, so
// completion falls back to this table for the handful of cases the
// language itself defines.
func builtinMembers(t sema.Type) []Item {
	switch {
	case t.Kind == sema.TypeElementary && (t.Name == "address"):
		return []Item{
			{Label: "balance", Kind: intern.KindVariable, InsertText: "balance", Detail: "uint256"},
			{Label: "code", Kind: intern.KindVariable, InsertText: "code", Detail: "bytes memory"},
			{Label: "codehash", Kind: intern.KindVariable, InsertText: "codehash", Detail: "bytes32"},
			{Label: "transfer()", Kind: intern.KindFunction, InsertText: "transfer($0)", Detail: "transfer(uint256 amount)"},
			{Label: "send()", Kind: intern.KindFunction, InsertText: "send($0)", Detail: "send(uint256 amount) returns (bool)"},
			{Label: "call()", Kind: intern.KindFunction, InsertText: "call($0)", Detail: "call(bytes memory) returns (bool, bytes memory)"},
			{Label: "delegatecall()", Kind: intern.KindFunction, InsertText: "delegatecall($0)", Detail: "delegatecall(bytes memory) returns (bool, bytes memory)"},
			{Label: "staticcall()", Kind: intern.KindFunction, InsertText: "staticcall($0)", Detail: "staticcall(bytes memory) returns (bool, bytes memory)"},
		}
	case t.Kind == sema.TypeElementary && t.Name == "bytes":
		return []Item{
			{Label: "length", Kind: intern.KindVariable, InsertText: "length", Detail: "uint256"},
			{Label: "push()", Kind: intern.KindFunction, InsertText: "push($0)", Detail: "push(bytes1 value)"},
			{Label: "pop()", Kind: intern.KindFunction, InsertText: "pop()", Detail: "pop()"},
		}
	case t.Kind == sema.TypeArray:
		items := []Item{
			{Label: "length", Kind: intern.KindVariable, InsertText: "length", Detail: "uint256"},
		}
		if t.Location != "calldata" {
			items = append(items,
				Item{Label: "push()", Kind: intern.KindFunction, InsertText: "push($0)", Detail: "push(" + elemLabel(t) + " value)"},
				Item{Label: "pop()", Kind: intern.KindFunction, InsertText: "pop()", Detail: "pop()"},
			)
		}
		return items
	default:
		return nil
	}
}

func elemLabel(t sema.Type) string {
	if t.Elem == nil {
		return ""
	}
	return t.Elem.Name
}

// globalIdentifiers is the constant table of Solidity's built-in global
// symbols: the magic variables (msg, tx, block, ...) and free functions
// (keccak256, ecrecover, ...) that exist without any declaration for
// identifier completion to find. Listed once here since nothing in sema's
// def map or member tables knows about them.
var globalIdentifiers = []Item{
	{Label: "msg", Kind: intern.KindVariable, InsertText: "msg", Detail: "msg"},
	{Label: "tx", Kind: intern.KindVariable, InsertText: "tx", Detail: "tx"},
	{Label: "block", Kind: intern.KindVariable, InsertText: "block", Detail: "block"},
	{Label: "abi", Kind: intern.KindVariable, InsertText: "abi", Detail: "abi"},
	{Label: "this", Kind: intern.KindVariable, InsertText: "this", Detail: "address"},
	{Label: "super", Kind: intern.KindVariable, InsertText: "super", Detail: "super"},
	{Label: "now", Kind: intern.KindVariable, InsertText: "now", Detail: "uint256 (deprecated)"},
	{Label: "type()", Kind: intern.KindFunction, InsertText: "type($0)", Detail: "type(C) returns (type info)"},
	{Label: "keccak256()", Kind: intern.KindFunction, InsertText: "keccak256($0)", Detail: "keccak256(bytes memory) returns (bytes32)"},
	{Label: "sha256()", Kind: intern.KindFunction, InsertText: "sha256($0)", Detail: "sha256(bytes memory) returns (bytes32)"},
	{Label: "ripemd160()", Kind: intern.KindFunction, InsertText: "ripemd160($0)", Detail: "ripemd160(bytes memory) returns (bytes20)"},
	{Label: "ecrecover()", Kind: intern.KindFunction, InsertText: "ecrecover($0)", Detail: "ecrecover(bytes32, uint8, bytes32, bytes32) returns (address)"},
	{Label: "addmod()", Kind: intern.KindFunction, InsertText: "addmod($0)", Detail: "addmod(uint256, uint256, uint256) returns (uint256)"},
	{Label: "mulmod()", Kind: intern.KindFunction, InsertText: "mulmod($0)", Detail: "mulmod(uint256, uint256, uint256) returns (uint256)"},
	{Label: "selfdestruct()", Kind: intern.KindFunction, InsertText: "selfdestruct($0)", Detail: "selfdestruct(address payable)"},
	{Label: "require()", Kind: intern.KindFunction, InsertText: "require($0)", Detail: "require(bool, string memory)"},
	{Label: "assert()", Kind: intern.KindFunction, InsertText: "assert($0)", Detail: "assert(bool)"},
	{Label: "revert()", Kind: intern.KindFunction, InsertText: "revert($0)", Detail: "revert(string memory)"},
	{Label: "blockhash()", Kind: intern.KindFunction, InsertText: "blockhash($0)", Detail: "blockhash(uint256) returns (bytes32)"},
	{Label: "gasleft()", Kind: intern.KindFunction, InsertText: "gasleft()", Detail: "gasleft() returns (uint256)"},
}
