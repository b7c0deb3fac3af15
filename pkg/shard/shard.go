// Package shard implements the local keystore types this module's keygen
// protocol produces and its sign protocol consumes: Shard for a single
// (group, threshold) subgroup and MultiShard for a key split across several
// independent subgroups, grounded on the Config type in
// luxfi-threshold/protocols/lss/config, serialized with
// github.com/fxamacker/cbor/v2 for opaque, byte-for-byte round-trippable
// persistence.
package shard

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/thresholdlabs/frost25519/pkg/address"
	"github.com/thresholdlabs/frost25519/pkg/curve25519"
	"github.com/thresholdlabs/frost25519/pkg/frost"
)

// Shard is one party's local keystore after a single-group DKG run: its
// long-term secret contribution u_i, its aggregated secret share x_i, and the
// full VSS commitment grid of every participant in the group.
type Shard struct {
	ID             address.Address                          `cbor:"id"`
	Threshold      int                                       `cbor:"threshold"`
	Ui             *curve25519.Scalar                        `cbor:"u_i"`
	Xi             *curve25519.Scalar                        `cbor:"x_i"`
	VSSCommitments map[address.Address]frost.VSSCommitment   `cbor:"vss_com_dict"`
	Aux            []byte                                    `cbor:"aux,omitempty"`
}

// PublicKey returns PK = Sum_j C_0^(j), the joint public key every party in
// the group can recompute locally from the commitment grid alone.
func (s *Shard) PublicKey() *curve25519.Point {
	pk := curve25519.IdentityPoint()
	for _, C := range s.VSSCommitments {
		pk = pk.Add(C[0])
	}
	return pk
}

// Validate checks the Shard invariant x_i*P == Sum_j evalPolyCom(C^(j), id).
func (s *Shard) Validate() error {
	expected := frost.VerifyingPoint(s.ID, s.VSSCommitments)
	if !s.Xi.BasePoint().Equal(expected) {
		return fmt.Errorf("shard: x_i does not match the commitment grid for %s", s.ID)
	}
	return nil
}

// Clone returns a deep copy of s, the local copy the sign protocol mutates
// when applying a BIP32 derivation tweak.
func (s *Shard) Clone() *Shard {
	commitments := make(map[address.Address]frost.VSSCommitment, len(s.VSSCommitments))
	for addr, C := range s.VSSCommitments {
		row := make(frost.VSSCommitment, len(C))
		for i, p := range C {
			row[i] = p.Clone()
		}
		commitments[addr] = row
	}
	return &Shard{
		ID:             s.ID,
		Threshold:      s.Threshold,
		Ui:             s.Ui.Clone(),
		Xi:             s.Xi.Clone(),
		VSSCommitments: commitments,
		Aux:            append([]byte(nil), s.Aux...),
	}
}

// ApplyTweak mutates s in place so that PK' = PK + tweak*P, by adding
// tweak*P to the pivot's C_0 commitment row (every signer does this, so every
// signer recomputes the same PK') and adding tweak to x_i only if s itself is
// the pivot. Callers must apply this to a Clone, never to the stored Shard.
func (s *Shard) ApplyTweak(tweak *curve25519.Scalar, pivot address.Address) error {
	row, ok := s.VSSCommitments[pivot]
	if !ok {
		return fmt.Errorf("shard: pivot %s is not in the commitment grid", pivot)
	}
	tweaked := make(frost.VSSCommitment, len(row))
	copy(tweaked, row)
	tweaked[0] = tweaked[0].Add(tweak.BasePoint())
	s.VSSCommitments[pivot] = tweaked

	if s.ID == pivot {
		s.Xi = s.Xi.Add(tweak)
	}
	return nil
}

// Zeroize overwrites s's secret scalars. The commitment grid is public and is
// left untouched.
func (s *Shard) Zeroize() {
	if s == nil {
		return
	}
	s.Ui.Zeroize()
	s.Xi.Zeroize()
}

// Marshal encodes s as canonical CBOR (sorted map keys) for opaque keystore
// persistence, so the same Shard always encodes to the same bytes.
func Marshal(s *Shard) ([]byte, error) {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("shard: building canonical encoder: %w", err)
	}
	return em.Marshal(s)
}

// Unmarshal decodes a Shard from its CBOR encoding, round-tripping
// byte-for-byte with Marshal.
func Unmarshal(b []byte) (*Shard, error) {
	var s Shard
	if err := cbor.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("shard: decoding: %w", err)
	}
	return &s, nil
}

// MultiShard is a keystore spanning several independent (group, threshold)
// subgroups whose public keys sum to one logical public key.
type MultiShard struct {
	Groups map[uint16]*Shard  `cbor:"groups"`
	Owned  []address.Address  `cbor:"owned"`
	Aux    []byte             `cbor:"aux,omitempty"`
}

// PublicKey returns the sum of every subgroup's public key.
func (m *MultiShard) PublicKey() *curve25519.Point {
	pk := curve25519.IdentityPoint()
	for _, g := range m.Groups {
		pk = pk.Add(g.PublicKey())
	}
	return pk
}

// Validate checks every owned address is present in Groups and that each
// subgroup's own invariant holds.
func (m *MultiShard) Validate() error {
	for _, addr := range m.Owned {
		g, ok := m.Groups[addr.GroupID()]
		if !ok {
			return fmt.Errorf("multishard: owned address %s has no group entry", addr)
		}
		if err := g.Validate(); err != nil {
			return fmt.Errorf("multishard: group %d: %w", addr.GroupID(), err)
		}
	}
	return nil
}

// Clone returns a deep copy of m.
func (m *MultiShard) Clone() *MultiShard {
	groups := make(map[uint16]*Shard, len(m.Groups))
	for id, g := range m.Groups {
		groups[id] = g.Clone()
	}
	return &MultiShard{
		Groups: groups,
		Owned:  append([]address.Address(nil), m.Owned...),
		Aux:    append([]byte(nil), m.Aux...),
	}
}

// Zeroize overwrites every subgroup's secret scalars.
func (m *MultiShard) Zeroize() {
	if m == nil {
		return
	}
	for _, g := range m.Groups {
		g.Zeroize()
	}
}

// MarshalMulti encodes m as CBOR for opaque keystore persistence.
func MarshalMulti(m *MultiShard) ([]byte, error) {
	return cbor.Marshal(m)
}

// UnmarshalMulti decodes a MultiShard from its CBOR encoding.
func UnmarshalMulti(b []byte) (*MultiShard, error) {
	var m MultiShard
	if err := cbor.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("multishard: decoding: %w", err)
	}
	return &m, nil
}
