package pairing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/wcpairing/core"
)

// run is the single writer of the pairing set.
func (c *Client) run() {
	defer close(c.loopDone)

	var tick <-chan time.Time
	if c.expiryInterval > 0 {
		ticker := time.NewTicker(c.expiryInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	deletions := c.relay.Deletions()

	for {
		select {
		case op := <-c.ops:
			op()
		case d, ok := <-deletions:
			if !ok {
				c.console.Warn("relay deletion stream closed")
				deletions = nil
				continue
			}
			c.applyRemoteDeletion(d)
		case <-tick:
			c.sweepExpired(c.clock())
		case <-c.done:
			return
		}
	}
}

// do hands fn to the coordinator and waits until it was applied.
func (c *Client) do(fn func()) error {
	applied := make(chan struct{})
	select {
	case c.ops <- func() { fn(); close(applied) }:
	case <-c.done:
		return core.ErrClientClosed
	}
	<-applied
	return nil
}

// reserve moves topic from None to Proposed.
func (c *Client) reserve(topic string) error {
	if _, ok := c.proposed[topic]; ok {
		return fmt.Errorf("%w: %s is being proposed", core.ErrAlreadyPaired, topic)
	}
	if _, err := c.store.Get(topic); err == nil {
		return fmt.Errorf("%w: %s", core.ErrAlreadyPaired, topic)
	} else if !errors.Is(err, core.ErrUnknownTopic) {
		return fmt.Errorf("lookup pairing %s: %w", topic, err)
	}
	c.proposed[topic] = struct{}{}
	return nil
}

// commit moves topic from Proposed to Active.
func (c *Client) commit(p core.Pairing) error {
	delete(c.proposed, p.Topic)
	if err := c.store.Save(p); err != nil {
		return fmt.Errorf("save pairing %s: %w", p.Topic, err)
	}
	return nil
}

// beginClose marks an active topic as being torn down so a concurrent
// Disconnect on the same topic fails fast with ErrUnknownTopic. The returned
// token identifies this teardown in remove and releaseClose.
func (c *Client) beginClose(topic string) (uint64, error) {
	if _, ok := c.closing[topic]; ok {
		return 0, fmt.Errorf("%w: %s is already disconnecting", core.ErrUnknownTopic, topic)
	}
	if _, err := c.lookup(topic); err != nil {
		return 0, err
	}
	c.closeSeq++
	c.closing[topic] = c.closeSeq
	return c.closeSeq, nil
}

// releaseClose drops the closing mark if it still belongs to token.
func (c *Client) releaseClose(topic string, token uint64) bool {
	if c.closing[topic] != token {
		return false
	}
	delete(c.closing, topic)
	return true
}

// remove moves topic from Active to Deleted. It reports false when a remote
// deletion got there first, in which case the topic may already carry a new
// pairing and is left alone.
func (c *Client) remove(topic string, token uint64) bool {
	if !c.releaseClose(topic, token) {
		return false
	}
	if err := c.store.Delete(topic); err != nil && !errors.Is(err, core.ErrUnknownTopic) {
		c.console.Error("removing pairing failed", "topic", topic, "error", err)
	}
	return true
}

// applyRemoteDeletion moves topic from Active to Deleted and publishes
// exactly one PairingDeleteEvent.
func (c *Client) applyRemoteDeletion(d core.RemoteDeletion) {
	if _, err := c.store.Get(d.Topic); err != nil {
		c.console.Debug("remote deletion for unknown topic ignored", "topic", d.Topic)
		return
	}
	if err := c.store.Delete(d.Topic); err != nil {
		c.console.Error("removing pairing failed", "topic", d.Topic, "error", err)
		return
	}
	delete(c.closing, d.Topic)

	c.deletes.Publish(core.PairingDeleteEvent{Topic: d.Topic, Code: d.Code, Message: d.Message})
	c.console.Debug("pairing deleted by peer", "topic", d.Topic, "code", d.Code, "message", d.Message)

	c.unsubscribeAsync(d.Topic)
}

// sweepExpired moves every expired pairing to Expired. No event is published.
func (c *Client) sweepExpired(now time.Time) {
	list, err := c.store.List()
	if err != nil {
		c.console.Error("expiry sweep failed", "error", err)
		return
	}
	for _, p := range list {
		if !p.IsExpired(now) {
			continue
		}
		if _, busy := c.closing[p.Topic]; busy {
			continue
		}
		if err := c.store.Delete(p.Topic); err != nil {
			c.console.Error("removing pairing failed", "topic", p.Topic, "error", err)
			continue
		}
		c.console.Debug("pairing expired", "topic", p.Topic)
		c.unsubscribeAsync(p.Topic)
	}
}

// unsubscribeAsync runs outside the coordinator so relay latency never
// stalls state transitions. Close waits for it.
func (c *Client) unsubscribeAsync(topic string) {
	c.cleanup.Add(1)
	go func() {
		defer c.cleanup.Done()
		c.unsubscribe(context.Background(), topic)
	}()
}
