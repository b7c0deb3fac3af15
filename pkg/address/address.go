// Package address implements the 32-bit party addressing scheme shared by
// every layer of the protocol: a group identifier in the high 16 bits and a
// member identifier in the low 16 bits.
package address

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Address identifies one party within one group: (group_id: u16, member_id: u16)
// packed as group_id<<16 | member_id.
type Address uint32

// New packs a group and member ID into an Address.
func New(groupID, memberID uint16) Address {
	return Address(uint32(groupID)<<16 | uint32(memberID))
}

// GroupID returns the high 16 bits.
func (a Address) GroupID() uint16 {
	return uint16(uint32(a) >> 16)
}

// MemberID returns the low 16 bits.
func (a Address) MemberID() uint16 {
	return uint16(uint32(a))
}

// GlobalBroadcast is address (0,0), the sink for broadcasts to every party in
// every group. Real participants must never be assigned this address.
const GlobalBroadcast Address = 0

// GroupBroadcast returns address (groupID,0), the sink for broadcasts to every
// member of one group.
func GroupBroadcast(groupID uint16) Address {
	return New(groupID, 0)
}

// IsBroadcastSink reports whether a is a reserved broadcast address
// (member_id == 0): either the global sink or a group's sink.
func (a Address) IsBroadcastSink() bool {
	return a.MemberID() == 0
}

// String renders the address in its wire text form "<group_id>.<member_id>".
func (a Address) String() string {
	return fmt.Sprintf("%d.%d", a.GroupID(), a.MemberID())
}

// Parse decodes the "<group_id>.<member_id>" text form produced by String.
func Parse(s string) (Address, error) {
	parts := strings.SplitN(s, ".", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("address: malformed %q: expected \"<group_id>.<member_id>\"", s)
	}
	g, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil {
		return 0, fmt.Errorf("address: invalid group id in %q: %w", s, err)
	}
	m, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil {
		return 0, fmt.Errorf("address: invalid member id in %q: %w", s, err)
	}
	return New(uint16(g), uint16(m)), nil
}

// Less gives addresses the lexicographic ordering the protocol requires when
// sorting commitments, picking the pivot signer, or iterating a signer set
// deterministically.
func Less(a, b Address) bool { return a < b }

// Sorted returns a sorted copy of addrs, ascending.
func Sorted(addrs []Address) []Address {
	out := make([]Address, len(addrs))
	copy(out, addrs)
	sort.Slice(out, func(i, j int) bool { return Less(out[i], out[j]) })
	return out
}

// Pivot returns the lexicographically smallest address in addrs, the single
// signer onto which a BIP32 tweak is applied. addrs must be non-empty.
func Pivot(addrs []Address) Address {
	p := addrs[0]
	for _, a := range addrs[1:] {
		if Less(a, p) {
			p = a
		}
	}
	return p
}

// ShardConfig is the per-group configuration (th, members) a local party
// holds during keygen or signing: the threshold and the full member set of
// one group, all sharing that group's group_id.
type ShardConfig struct {
	Threshold int
	Members   []Address
}

// Validate checks the structural preconditions spec.md places on a
// ShardConfig: th >= 1, th <= |members|, every member shares one group_id, and
// self belongs to members.
func (c ShardConfig) Validate(self Address) error {
	if c.Threshold < 1 {
		return fmt.Errorf("address: threshold must be at least 1, got %d", c.Threshold)
	}
	if c.Threshold > len(c.Members) {
		return fmt.Errorf("address: threshold %d exceeds %d members", c.Threshold, len(c.Members))
	}
	if len(c.Members) == 0 {
		return fmt.Errorf("address: shard config has no members")
	}
	groupID := c.Members[0].GroupID()
	found := false
	seen := make(map[Address]bool, len(c.Members))
	for _, m := range c.Members {
		if m.GroupID() != groupID {
			return fmt.Errorf("address: member %s does not share group id %d", m, groupID)
		}
		if m.MemberID() == 0 {
			return fmt.Errorf("address: member %s has reserved member id 0", m)
		}
		if seen[m] {
			return fmt.Errorf("address: duplicate member %s", m)
		}
		seen[m] = true
		if m == self {
			found = true
		}
	}
	if !found {
		return fmt.Errorf("address: self %s is not among the group's members", self)
	}
	return nil
}

// GroupID returns the shared group identifier of this config's members.
func (c ShardConfig) GroupID() uint16 {
	if len(c.Members) == 0 {
		return 0
	}
	return c.Members[0].GroupID()
}

// Architecture maps each group_id participating in a keygen session to that
// group's ShardConfig; signing uses SigningArchitecture instead. It is the
// "key architecture" parameter of spec.md's external interfaces.
type Architecture map[uint16]ShardConfig

// SortedGroupIDs returns the group IDs in ascending order, the iteration
// order spec.md's concurrency model mandates for multi-shard runs to avoid
// circular gather waits.
func (a Architecture) SortedGroupIDs() []uint16 {
	ids := make([]uint16, 0, len(a))
	for g := range a {
		ids = append(ids, g)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SigningArchitecture maps each participating group_id to that group's
// signer set. It is the "session architecture" parameter of spec.md's sign
// entry point.
type SigningArchitecture map[uint16][]Address

// SortedGroupIDs returns the group IDs in ascending order.
func (a SigningArchitecture) SortedGroupIDs() []uint16 {
	ids := make([]uint16, 0, len(a))
	for g := range a {
		ids = append(ids, g)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// AllSigners returns every signer across every group, sorted ascending. The
// binding value rho_i is computed over this full, globally ordered set, even
// though Lagrange coefficients are computed within each signer's own group.
func (a SigningArchitecture) AllSigners() []Address {
	var all []Address
	for _, g := range a.SortedGroupIDs() {
		all = append(all, a[g]...)
	}
	return Sorted(all)
}

// Pivot returns the globally lexicographically smallest signer address
// across every group, the signer onto which a BIP32 tweak is applied.
func (a SigningArchitecture) Pivot() Address {
	return Pivot(a.AllSigners())
}
