package db

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint identifies a cacheable computation by the tuple of inputs it
// read (file texts, project config). Equal fingerprints license returning
// a pointer-equal cached result without recomputation.
type Fingerprint uint64

// FingerprintBuilder accumulates the bytes of a fingerprint's inputs in a
// deterministic order before hashing them with xxhash, chosen (per
// DESIGN.md) because standardbeagle-lci already depends on it for exactly
// this kind of content-fingerprinting.
type FingerprintBuilder struct {
	h *xxhash.Digest
}

// NewFingerprintBuilder returns a ready-to-use builder.
func NewFingerprintBuilder() *FingerprintBuilder {
	return &FingerprintBuilder{h: xxhash.New()}
}

// WriteBytes folds raw bytes into the fingerprint, length-prefixed so that
// ("ab","c") and ("a","bc") never collide.
func (b *FingerprintBuilder) WriteBytes(p []byte) *FingerprintBuilder {
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(p)))
	b.h.Write(lenBuf[:])
	b.h.Write(p)
	return b
}

// WriteString folds a string into the fingerprint.
func (b *FingerprintBuilder) WriteString(s string) *FingerprintBuilder {
	return b.WriteBytes([]byte(s))
}

// WriteUint64 folds a fixed-width integer into the fingerprint (used for
// file versions and ids).
func (b *FingerprintBuilder) WriteUint64(v uint64) *FingerprintBuilder {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	b.h.Write(buf[:])
	return b
}

// Build finalizes the fingerprint.
func (b *FingerprintBuilder) Build() Fingerprint {
	return Fingerprint(b.h.Sum64())
}
