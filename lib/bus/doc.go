// Package bus implements the change bus of a pocket: a generic, hot, in-process
// multicast channel.
//
// Semantics:
//
//   - Hot: a subscription only sees messages published after Subscribe returned.
//
//   - Non-blocking publishers: Publish never waits for a subscriber. Every
//     subscription owns a buffered channel; when it is full the message is dropped
//     for that subscription only and counted (Subscription.Dropped). Consumers
//     that must not miss changes have to keep up or re-read the state.
//
//   - Ordering: messages published by one goroutine arrive in publish order at
//     every subscription (minus dropped ones).
//
// The registry of subscriptions is an xsync.MapOf, so publishing does not take a
// global lock; each subscription has its own lock only to make closing its channel
// safe against concurrent publishers.
//
// Example:
//
//	b := bus.New[string](64)
//	sub := b.Subscribe()
//	defer sub.Cancel()
//	b.Publish("users/1")
//	key := <-sub.C()
package bus
