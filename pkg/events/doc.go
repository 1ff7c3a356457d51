/*
Package events provides change notification for the EcoAction client core.

The cache publishes an event whenever an entry is written, invalidated, or
evicted, and the coordinator publishes enroll/cancel outcomes. Presentation
code subscribes to recompute derived views; the derived view builder itself
is pure and never touches the broker.

Delivery is best-effort: sends to a subscriber with a full buffer are
dropped rather than blocking the publisher.

# Usage

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe()
	go func() {
		for ev := range sub {
			if ev.Type == events.EventEntryUpdated {
				// re-read the cache and rebuild the visible list
			}
		}
	}()
*/
package events
