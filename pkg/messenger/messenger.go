// Package messenger implements the abstract mailbox contract this module's
// protocols synchronize rounds through: four verbs (send, receive, scatter,
// gather) keyed by (topic, src, dst), asynchronous and fallible, generic over
// payload type via an encode/decode capability. The contract itself is
// transport-agnostic; pkg/messenger/inmem provides the one concrete,
// in-process implementation this module ships.
package messenger

import (
	"context"
	"fmt"

	"github.com/thresholdlabs/frost25519/pkg/address"
)

// Topic names one of the wire-level message kinds the protocols exchange.
// All parties in a run must agree on these names; an implementation may
// rename them, but this module does not.
type Topic string

const (
	// DKGCommit carries round 1 of keygen: a ProposedCommitment.
	DKGCommit Topic = "dkg_com"
	// AEADShare carries round 2 of keygen: one encrypted VSS share.
	AEADShare Topic = "aead_share"
	// NonceCommit carries round 1 of signing: a NonceCommitment. Also known
	// as "nonce_com" in some deployments.
	NonceCommit Topic = "com_pair"
	// Response carries round 2 of signing: one signer's response scalar.
	// Also known as "sign_resp" in some deployments.
	Response Topic = "response"
)

// Mailbox is the raw-bytes transport this module's protocols are built
// against. Encoding/decoding of a specific message type lives in
// pkg/messenger/codec, layered on top of this interface.
type Mailbox interface {
	// Send delivers payload to the mailbox slot keyed (topic, src, dst).
	Send(ctx context.Context, topic Topic, src, dst address.Address, payload []byte) error
	// Receive blocks until a payload exists at (topic, src, dst) and returns
	// it.
	Receive(ctx context.Context, topic Topic, src, dst address.Address) ([]byte, error)
	// Scatter sends payload to every address in dsts.
	Scatter(ctx context.Context, topic Topic, src address.Address, dsts []address.Address, payload []byte) error
	// Gather receives one payload from every address in srcs, returning them
	// keyed by sender.
	Gather(ctx context.Context, topic Topic, srcs []address.Address, dst address.Address) (map[address.Address][]byte, error)
}

// ErrSlotOccupied is returned by an implementation's Send when a second
// payload is posted to a slot that already holds one. The messenger contract
// leaves a second write implementation-defined; this module's protocols
// never perform one, so any occurrence is surfaced as an error rather than
// silently overwriting or queuing.
var ErrSlotOccupied = fmt.Errorf("messenger: slot already occupied")
