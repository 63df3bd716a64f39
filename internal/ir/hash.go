package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainSequence = "slotbench/sequence/v1"
	DomainScenario = "slotbench/scenario/v1"
)

// newDomainHash starts a SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func newDomainHash(domain string) hash.Hash {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	return h
}

// SequenceHash computes a content hash of a set of worker sequences.
//
// Each operation is written as its canonical JSON array followed by a
// newline, and each sequence is terminated by an empty line, so the hash
// distinguishes [[a],[b]] from [[a,b]]. The encoding is streamed; traces
// with millions of operations are never materialised as one document.
func SequenceHash(seqs []Sequence) (string, error) {
	h := newDomainHash(DomainSequence)
	for wi, seq := range seqs {
		for oi, op := range seq {
			b, err := MarshalCanonical(op)
			if err != nil {
				return "", fmt.Errorf("SequenceHash: worker %d op %d: %w", wi, oi, err)
			}
			h.Write(b)
			h.Write([]byte{'\n'})
		}
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ContentHash computes a domain-separated hash of any canonical value.
// Returns error if v cannot be canonically marshaled.
func ContentHash(domain string, v any) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("ContentHash: failed to marshal: %w", err)
	}
	h := newDomainHash(domain)
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}
