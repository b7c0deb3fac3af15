// Package codec layers typed, generic send/receive/scatter/gather helpers
// over a messenger.Mailbox, using CBOR (github.com/fxamacker/cbor/v2) as the
// concrete encode/decode capability the protocols use for every wire
// message.
package codec

import (
	"context"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/thresholdlabs/frost25519/pkg/address"
	"github.com/thresholdlabs/frost25519/pkg/messenger"
)

// Send CBOR-encodes v and delivers it to (topic, src, dst).
func Send[T any](ctx context.Context, m messenger.Mailbox, topic messenger.Topic, src, dst address.Address, v T) error {
	b, err := cbor.Marshal(v)
	if err != nil {
		return fmt.Errorf("codec: encoding payload for topic %q: %w", topic, err)
	}
	return m.Send(ctx, topic, src, dst, b)
}

// Receive blocks for a payload at (topic, src, dst) and CBOR-decodes it as T.
func Receive[T any](ctx context.Context, m messenger.Mailbox, topic messenger.Topic, src, dst address.Address) (T, error) {
	var out T
	b, err := m.Receive(ctx, topic, src, dst)
	if err != nil {
		return out, err
	}
	if err := cbor.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("codec: decoding payload for topic %q from %s: %w", topic, src, err)
	}
	return out, nil
}

// Scatter CBOR-encodes v once and delivers it to every address in dsts.
func Scatter[T any](ctx context.Context, m messenger.Mailbox, topic messenger.Topic, src address.Address, dsts []address.Address, v T) error {
	b, err := cbor.Marshal(v)
	if err != nil {
		return fmt.Errorf("codec: encoding payload for topic %q: %w", topic, err)
	}
	return m.Scatter(ctx, topic, src, dsts, b)
}

// Gather receives one payload from every address in srcs, CBOR-decoding each
// as T and returning them keyed by sender.
func Gather[T any](ctx context.Context, m messenger.Mailbox, topic messenger.Topic, srcs []address.Address, dst address.Address) (map[address.Address]T, error) {
	raw, err := m.Gather(ctx, topic, srcs, dst)
	if err != nil {
		return nil, err
	}
	out := make(map[address.Address]T, len(raw))
	for src, b := range raw {
		var v T
		if err := cbor.Unmarshal(b, &v); err != nil {
			return nil, fmt.Errorf("codec: decoding payload for topic %q from %s: %w", topic, src, err)
		}
		out[src] = v
	}
	return out, nil
}
