// Package inmem implements the reference messenger.Mailbox: an in-process
// mailbox keyed by (topic, src, dst), used by this module's tests and by
// single-process simulations of multi-party runs. Scatter and Gather fan out
// concurrently via golang.org/x/sync/errgroup so a run's wall-clock time is
// bounded by the slowest single send/receive, not their sum.
package inmem

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/thresholdlabs/frost25519/pkg/address"
	"github.com/thresholdlabs/frost25519/pkg/messenger"
)

type slotKey struct {
	topic    messenger.Topic
	src, dst address.Address
}

// Mailbox is an in-process messenger.Mailbox backed by one buffered channel
// per (topic, src, dst) slot.
type Mailbox struct {
	mu    sync.Mutex
	slots map[slotKey]chan []byte
}

// New returns an empty Mailbox.
func New() *Mailbox {
	return &Mailbox{slots: make(map[slotKey]chan []byte)}
}

func (m *Mailbox) slot(k slotKey) chan []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.slots[k]
	if !ok {
		ch = make(chan []byte, 1)
		m.slots[k] = ch
	}
	return ch
}

// Send implements messenger.Mailbox. A second Send to an already-occupied
// slot returns messenger.ErrSlotOccupied rather than blocking or
// overwriting.
func (m *Mailbox) Send(ctx context.Context, topic messenger.Topic, src, dst address.Address, payload []byte) error {
	ch := m.slot(slotKey{topic, src, dst})
	select {
	case ch <- payload:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("%w: (%s,%s,%s)", messenger.ErrSlotOccupied, topic, src, dst)
	}
}

// Receive implements messenger.Mailbox. The payload stays in its slot, so
// every party reading a broadcast sink such as (topic, src, GlobalBroadcast)
// receives the same object.
func (m *Mailbox) Receive(ctx context.Context, topic messenger.Topic, src, dst address.Address) ([]byte, error) {
	ch := m.slot(slotKey{topic, src, dst})
	select {
	case payload := <-ch:
		select {
		case ch <- payload:
		default:
		}
		return payload, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Scatter implements messenger.Mailbox.
func (m *Mailbox) Scatter(ctx context.Context, topic messenger.Topic, src address.Address, dsts []address.Address, payload []byte) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, dst := range dsts {
		dst := dst
		g.Go(func() error {
			return m.Send(ctx, topic, src, dst, payload)
		})
	}
	return g.Wait()
}

// Gather implements messenger.Mailbox.
func (m *Mailbox) Gather(ctx context.Context, topic messenger.Topic, srcs []address.Address, dst address.Address) (map[address.Address][]byte, error) {
	var mu sync.Mutex
	result := make(map[address.Address][]byte, len(srcs))

	g, ctx := errgroup.WithContext(ctx)
	for _, src := range srcs {
		src := src
		g.Go(func() error {
			payload, err := m.Receive(ctx, topic, src, dst)
			if err != nil {
				return fmt.Errorf("inmem: receiving from %s on %q: %w", src, topic, err)
			}
			mu.Lock()
			result[src] = payload
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}
