package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix allows the encoding to change without ambiguity.
const (
	DomainMethod   = "sif/method/v1"
	DomainFunction = "sif/function/v1"
	DomainProgram  = "sif/program/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// MethodHash computes the content-addressed identity of a translated method.
// Identical translations always hash identically, which is what replay
// checks rely on.
func MethodHash(m *Method) (string, error) {
	canonical, err := MarshalCanonical(EncodeMethod(m))
	if err != nil {
		return "", fmt.Errorf("MethodHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainMethod, canonical), nil
}

// FunctionHash computes the content-addressed identity of a pure function.
func FunctionHash(f *Function) (string, error) {
	canonical, err := MarshalCanonical(EncodeFunction(f))
	if err != nil {
		return "", fmt.Errorf("FunctionHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainFunction, canonical), nil
}

// ProgramHash hashes a whole program. Member order is significant.
func ProgramHash(p *Program) (string, error) {
	members := make(ArrayValue, 0, len(p.Functions)+len(p.Methods))
	for _, f := range p.Functions {
		members = append(members, EncodeFunction(f))
	}
	for _, m := range p.Methods {
		members = append(members, EncodeMethod(m))
	}
	canonical, err := MarshalCanonical(ObjectValue{
		"ir_version": StringValue(IRVersion),
		"members":    members,
	})
	if err != nil {
		return "", fmt.Errorf("ProgramHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainProgram, canonical), nil
}

// ValueHash hashes an already encoded member under domain. Stored
// canonical JSON decoded with UnmarshalValue re-hashes to the original
// MethodHash or FunctionHash.
func ValueHash(domain string, v Value) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("ValueHash: failed to marshal: %w", err)
	}
	return hashWithDomain(domain, canonical), nil
}

// MustMethodHash is like MethodHash but panics on error.
// Use only in tests or when the method is known to encode.
func MustMethodHash(m *Method) string {
	h, err := MethodHash(m)
	if err != nil {
		panic(err)
	}
	return h
}
